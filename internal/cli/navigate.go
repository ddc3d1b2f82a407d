package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"
)

// navigator opens event detail pages in the user's browser. Selections with
// unusable URLs are ignored; nothing it does returns an error to the user.
type navigator struct {
	goos   string
	start  func(name string, args ...string) error
	logger *slog.Logger
}

func newNavigator(start func(name string, args ...string) error, logger *slog.Logger) navigator {
	return navigator{goos: runtime.GOOS, start: start, logger: logger}
}

// Navigate launches the platform opener for rawURL.
func (n navigator) Navigate(rawURL string) {
	name, args, err := openerCommand(n.goos, rawURL)
	if err != nil {
		n.logger.Debug("ignoring selection", "url", rawURL, "reason", err)
		return
	}
	if err := n.start(name, args...); err != nil {
		n.logger.Warn("open detail page failed", "url", rawURL, "error", err)
		return
	}
	n.logger.Debug("opened detail page", "url", rawURL)
}

// openerCommand validates rawURL and returns the command that opens it on goos.
func openerCommand(goos, rawURL string) (string, []string, error) {
	if rawURL == "" {
		return "", nil, errors.New("empty URL")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return "", nil, fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", nil, errors.New("URL has no host")
	}

	switch goos {
	case "darwin":
		return "open", []string{rawURL}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{rawURL}, nil
	case "windows":
		return "cmd", []string{"/c", "start", rawURL}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// startProcess starts name without waiting for it and reaps it in the background.
func startProcess(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait() //nolint:errcheck // the opener's exit status is not actionable
	return nil
}
