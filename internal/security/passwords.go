package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// Look-alike characters (0/O, 1/l/I) are left out so a temporary password
// read over the phone survives.
const (
	upperLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerLetters = "abcdefghijkmnopqrstuvwxyz"
	digits       = "23456789"

	TemporaryPasswordAlphabet = upperLetters + lowerLetters + digits
	MinTemporaryPasswordLen   = 8
)

var (
	ErrNegativeLength = errors.New("length must be non-negative")
	ErrEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// RandomString draws length characters uniformly from alphabet using
// crypto/rand. Multi-byte runes in alphabet are treated as single characters.
func RandomString(length int, alphabet string) (string, error) {
	switch {
	case length < 0:
		return "", ErrNegativeLength
	case length == 0:
		return "", nil
	case alphabet == "":
		return "", ErrEmptyAlphabet
	}

	symbols := []rune(alphabet)
	picked := make([]rune, length)
	for index := range picked {
		position, err := randomIndex(len(symbols))
		if err != nil {
			return "", err
		}
		picked[index] = symbols[position]
	}
	return string(picked), nil
}

// TemporaryPassword returns a password of at least MinTemporaryPasswordLen
// characters that always holds an upper-case letter, a lower-case letter
// and a digit, so it passes the account password policy as issued.
func TemporaryPassword(length int) (string, error) {
	if length < MinTemporaryPasswordLen {
		length = MinTemporaryPasswordLen
	}

	password := make([]rune, 0, length)
	for _, class := range []string{upperLetters, lowerLetters, digits} {
		symbol, err := RandomString(1, class)
		if err != nil {
			return "", err
		}
		password = append(password, []rune(symbol)...)
	}
	rest, err := RandomString(length-len(password), TemporaryPasswordAlphabet)
	if err != nil {
		return "", err
	}
	password = append(password, []rune(rest)...)

	// Fisher-Yates so the guaranteed classes do not sit at fixed positions.
	for index := len(password) - 1; index > 0; index-- {
		swap, err := randomIndex(index + 1)
		if err != nil {
			return "", err
		}
		password[index], password[swap] = password[swap], password[index]
	}
	return string(password), nil
}

func randomIndex(upper int) (int, error) {
	position, err := rand.Int(rand.Reader, big.NewInt(int64(upper)))
	if err != nil {
		return 0, err
	}
	return int(position.Int64()), nil
}
