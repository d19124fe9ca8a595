package shell

import (
	"context"
	"os/exec"
	"runtime"
)

const defaultLiveMapURL = "https://liveuamap.com"

// OpenBrowser hands url to the platform's default opener without waiting
// for the browser to exit.
func OpenBrowser(_ context.Context, url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
