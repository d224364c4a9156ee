//go:build windows

package cli

import "golang.org/x/sys/windows"

func disableEcho(fd uintptr) (func(), error) {
	console := windows.Handle(fd)
	var saved uint32
	if err := windows.GetConsoleMode(console, &saved); err != nil {
		return nil, err
	}
	if err := windows.SetConsoleMode(console, saved&^windows.ENABLE_ECHO_INPUT); err != nil {
		return nil, err
	}
	return func() {
		_ = windows.SetConsoleMode(console, saved)
	}, nil
}
