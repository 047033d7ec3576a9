package utils

import (
	"os/exec"
	"runtime"

	"github.com/cockroachdb/errors"
)

func OpenURL(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}

	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "open url")
	}
	return cmd.Wait()
}
