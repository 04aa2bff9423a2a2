//go:build !linux && !darwin && !freebsd && !openbsd && !netbsd

package auth

// writable is a no-op on platforms without access(2); a read-only directory is
// reported when the token file is opened instead.
func writable(dir string) error {
	return nil
}
