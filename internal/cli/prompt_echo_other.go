//go:build !windows && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package cli

import "errors"

func disableEcho(uintptr) (func(), error) {
	return nil, errors.New("hidden terminal input is not supported on this platform; pipe the password instead")
}
