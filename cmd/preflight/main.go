// cmd/preflight/main.go
package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/hamed0406/smokecheck/internal/config"
)

// chromeBinaries are the names chromedp looks for on PATH.
var chromeBinaries = []string{
	"headless_shell",
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"google-chrome-beta",
	"google-chrome-unstable",
}

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg, err := config.FromEnv()
	if err != nil {
		if errors.Is(err, config.ErrMissingURL) {
			fail("URL is empty (the smoke check will exit 1 before any request).")
		}
		fail(err.Error())
	}
	ok("URL=" + cfg.URL)
	ok("mode=" + string(cfg.Mode) + " style=" + cfg.MessageStyle)

	if cfg.NotificationsEnabled() {
		ok("SLACK_WEBHOOK_URL present")
	} else {
		warn("SLACK_WEBHOOK_URL empty — results will only be printed, not posted.")
	}

	if cfg.Mode == config.ModeBrowser {
		bin, err := findChrome(cfg.ChromePath)
		if err != nil {
			fail("no Chrome/Chromium binary found (" + err.Error() + "); install one, set CHROME_PATH, or use SMOKE_MODE=http.")
		}
		ok("browser=" + bin)
	}

	if cfg.LogDir == "" {
		warn("LOG_DIR empty — JSON logs go to stderr.")
	} else {
		ok("LOG_DIR=" + cfg.LogDir)
	}

	ok("preflight passed")
}

func findChrome(explicit string) (string, error) {
	if explicit != "" {
		return exec.LookPath(explicit)
	}
	for _, name := range chromeBinaries {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", errors.New("searched PATH")
}
