package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"playtab/internal/cmd"
	"playtab/internal/config"
	"playtab/internal/ui"
)

// Build information injected at build time via ldflags
// Example: -ldflags="-X main.Version=v1.0.0 -X main.Commit=abc123 ..."
var (
	Commit  = "unknown"
	Date    = "unknown"
	Version = "dev"
)

// Tagline is the application's tagline used in help text
const Tagline = "Session timers and shift billing for the floor"

func versionInfo() string {
	return fmt.Sprintf("playtab %s (commit: %s, built: %s)", Version, Commit, Date)
}

func main() {
	ui.SetVersionInfo(ui.VersionInfo{
		Commit:  Commit,
		Date:    Date,
		Version: Version,
	})

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load settings: %v\n", err)
		settings = &config.Settings{}
	}

	// Container is created in CLI.AfterApply() after logging is initialized
	var cli cmd.CLI
	cli.SetSettings(settings)
	ctx := kong.Parse(&cli,
		kong.Name("playtab"),
		kong.Description(Tagline),
		kong.Vars{
			"version": versionInfo(),
		},
		kong.UsageOnError(),
		kong.Bind(&cli),
	)
	defer cli.Close()

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
