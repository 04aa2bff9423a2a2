//go:build !linux && !darwin

package auth

import (
	"errors"
)

func browse(url string) error {
	return errors.New("no browser launcher for this platform")
}
