//go:build linux || darwin || freebsd || openbsd || netbsd

package auth

import (
	"golang.org/x/sys/unix"
)

func writable(dir string) error {
	return unix.Access(dir, unix.W_OK)
}
