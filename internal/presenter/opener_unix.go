//go:build !windows && !darwin

package presenter

import "os/exec"

// openerAvailable reports whether one of the commands pkg/browser shells out
// to is installed.
func openerAvailable() bool {
	for _, name := range []string{"xdg-open", "x-www-browser", "www-browser"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}
