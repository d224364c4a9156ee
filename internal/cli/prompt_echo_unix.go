//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package cli

import "golang.org/x/sys/unix"

func disableEcho(fd uintptr) (func(), error) {
	handle := int(fd)
	saved, err := unix.IoctlGetTermios(handle, getTermiosRequest)
	if err != nil {
		return nil, err
	}

	silent := *saved
	silent.Lflag &^= unix.ECHO
	if err := unix.IoctlSetTermios(handle, setTermiosRequest, &silent); err != nil {
		return nil, err
	}
	return func() {
		_ = unix.IoctlSetTermios(handle, setTermiosRequest, saved)
	}, nil
}
