// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"github.com/hamed0406/uptimereport/internal/config"
	"github.com/hamed0406/uptimereport/internal/registry"
	"github.com/hamed0406/uptimereport/internal/repo/file"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		for _, e := range multierr.Errors(err) {
			fmt.Fprintln(os.Stderr, "✖", e)
		}
		os.Exit(1)
	}
	ok(fmt.Sprintf("config valid (source=%s, window=%dd, tz=%s)", cfg.LogSource, cfg.WindowDays, cfg.Location))

	targets, err := registry.Load(cfg.TargetsFile)
	if err != nil {
		fail(err.Error())
	}
	if len(targets) == 0 {
		warn(cfg.TargetsFile + " has no key=url entries; reports will be empty.")
	} else {
		ok(fmt.Sprintf("%s: %d targets", cfg.TargetsFile, len(targets)))
	}

	if cfg.LogSource == config.SourceFile {
		missing := 0
		for _, t := range targets {
			if _, err := os.Stat(filepath.Join(cfg.LogsDir, file.LogName(t.Key))); err != nil {
				missing++
			}
		}
		if missing > 0 {
			warn(fmt.Sprintf("%d of %d targets have no log in %s (they will show No Data).", missing, len(targets), cfg.LogsDir))
		}
	}

	// Normalize and sanity-check lists (no spaces around commas).
	for name, v := range map[string]string{"ADMIN_API_KEYS": os.Getenv("ADMIN_API_KEYS"), "PUBLIC_API_KEYS": os.Getenv("PUBLIC_API_KEYS")} {
		if strings.Contains(strings.TrimSpace(v), " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}
	if len(cfg.PublicAPIKeys) == 0 && len(cfg.AdminAPIKeys) == 0 {
		warn("no API keys set; read routes are open.")
	}
	if len(cfg.AdminAPIKeys) == 0 {
		warn("ADMIN_API_KEYS is empty; admin routes are open.")
	}

	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty; any origin may read reports from a browser.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}

	if cfg.SlackWebhook == "" && cfg.BrevoAPIKey == "" {
		warn("no SLACK_WEBHOOK or BREVO_API_KEY; alerts are off.")
	}
	if cfg.CheckInterval > 0 && (cfg.LogSource == config.SourceFile || cfg.LogSource == config.SourceHTTP) {
		warn("CHECK_INTERVAL_MS is set but the " + cfg.LogSource + " source is read-only; probes will not run.")
	}

	ok("preflight passed")
}
