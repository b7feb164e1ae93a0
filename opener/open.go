// Package opener hands result URLs to the user's browser.
package opener

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoBrowser is returned when no launcher can be found
var ErrNoBrowser = errors.New("no browser found (set $BROWSER)")

// Command returns the program and arguments used to open target on goos.
// A non-empty browserEnv ($BROWSER) always wins; it may carry its own
// arguments and may contain a %s placeholder for the URL.
func Command(goos, browserEnv, target string) (string, []string) {
	if fields := strings.Fields(browserEnv); len(fields) > 0 {
		args := make([]string, 0, len(fields))
		substituted := false
		for _, f := range fields[1:] {
			if strings.Contains(f, "%s") {
				f = strings.ReplaceAll(f, "%s", target)
				substituted = true
			}
			args = append(args, f)
		}
		if !substituted {
			args = append(args, target)
		}
		return fields[0], args
	}

	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}

// Open opens target in the default browser without waiting for it to exit
func Open(target string) error {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("refusing to open %q: not an http(s) URL", target)
	}

	name, args := Command(runtime.GOOS, os.Getenv("BROWSER"), target)
	if _, err := exec.LookPath(name); err != nil {
		return ErrNoBrowser
	}

	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil

	// Start in the background so the TUI keeps drawing
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	go cmd.Wait()

	return nil
}
