package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var errNoInput = errors.New("no input")

// secretPrompt reads one secret per line. Echo is switched off while a
// terminal user types; piped input is read unchanged.
type secretPrompt struct {
	stdin    *os.File
	reader   *bufio.Reader
	out      io.Writer
	terminal bool
}

func newSecretPrompt(stdin *os.File, out io.Writer) (*secretPrompt, error) {
	if stdin == nil {
		return nil, errors.New("stdin unavailable")
	}
	info, err := stdin.Stat()
	if err != nil {
		return nil, fmt.Errorf("inspect stdin: %w", err)
	}
	return &secretPrompt{
		stdin:    stdin,
		reader:   bufio.NewReader(stdin),
		out:      out,
		terminal: info.Mode()&os.ModeCharDevice != 0,
	}, nil
}

func (prompt *secretPrompt) ask(label string) (string, error) {
	fmt.Fprint(prompt.out, label)
	defer fmt.Fprintln(prompt.out)

	if prompt.terminal {
		restore, err := disableEcho(prompt.stdin.Fd())
		if err != nil {
			return "", fmt.Errorf("disable echo: %w", err)
		}
		defer restore()
	}

	line, err := prompt.reader.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		if line == "" {
			return "", errNoInput
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}
