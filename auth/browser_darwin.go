package auth

import (
	"os/exec"
)

func browse(url string) error {
	return exec.Command("open", url).Start()
}
