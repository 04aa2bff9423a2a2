package auth

import (
	"os/exec"
)

func browse(url string) error {
	return exec.Command("xdg-open", url).Start()
}
