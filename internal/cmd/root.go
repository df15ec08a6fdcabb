package cmd

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"playtab/internal/config"
	"playtab/internal/logging"
)

// CLI represents the command-line interface structure
type CLI struct {
	Version     kong.VersionFlag `help:"Show version information"`
	Debug       bool             `help:"Enable debug logging to file" short:"d"`
	DebugFile   string           `help:"Custom path for debug log file (disables automatic cleanup)"`
	MaxLogFiles int              `help:"Maximum number of log files to keep (0 = unlimited)" default:"1000"`

	Store         string `help:"Store backend (sqlite, mongo or memory)"`
	DBPath        string `help:"Path to the sqlite database file"`
	MongoURI      string `help:"MongoDB connection string" env:"PLAYTAB_MONGO_URI"`
	MongoDatabase string `help:"MongoDB database name" env:"PLAYTAB_MONGO_DATABASE"`
	PollSeconds   int    `help:"Full reconciliation poll interval in seconds" default:"30"`

	Watch     WatchCmd     `cmd:"" help:"Start the playtab TUI (default)" default:"1"`
	Serve     ServeCmd     `cmd:"serve" help:"Serve the TUI over SSH for floor terminals"`
	ServeHTTP ServeHTTPCmd `cmd:"serve-http" help:"Serve the read-only JSON API"`
	Sessions  SessionsCmd  `cmd:"sessions" help:"Manage active sessions (add, list, pause, close, ...)"`
	History   HistoryCmd   `cmd:"history" help:"List finalized history records"`
	Summary   SummaryCmd   `cmd:"summary" help:"Show the per-shift revenue summary for a business day"`

	// Internal fields (not flags)
	Container *Container       `kong:"-"`
	settings  *config.Settings `kong:"-"`
}

// SetSettings sets the settings on the CLI struct
func (c *CLI) SetSettings(settings *config.Settings) {
	c.settings = settings
}

// Settings returns the loaded settings file content.
func (c *CLI) Settings() *config.Settings {
	if c.settings == nil {
		return &config.Settings{}
	}
	return c.settings
}

// AfterApply initializes logging after CLI parsing and applies settings.
// Precedence: CLI flags > env vars > settings.json > defaults. A flag
// still at its default and with no env var set yields to settings.json.
func (c *CLI) AfterApply() error {
	if c.settings != nil {
		if c.MaxLogFiles == 1000 {
			if _, hasEnv := os.LookupEnv("PLAYTAB_MAX_LOG_FILES"); !hasEnv {
				if c.settings.MaxLogFiles != nil {
					c.MaxLogFiles = *c.settings.MaxLogFiles
				}
			}
		}

		if !c.Debug {
			if _, hasEnv := os.LookupEnv("PLAYTAB_DEBUG"); !hasEnv {
				if c.settings.Debug != nil && *c.settings.Debug {
					c.Debug = true
				}
			}
		}

		if c.Store == "" {
			c.Store = c.settings.Store
		}
		if c.DBPath == "" {
			c.DBPath = c.settings.DBPath
		}
		if c.MongoURI == "" {
			c.MongoURI = c.settings.MongoURI
		}
		if c.MongoDatabase == "" {
			c.MongoDatabase = c.settings.MongoDatabase
		}
		if c.PollSeconds == 30 && c.settings.PollIntervalSeconds != nil {
			c.PollSeconds = *c.settings.PollIntervalSeconds
		}
	}

	switch c.Store {
	case "", config.StoreSQLite, config.StoreMongo, config.StoreMemory:
	default:
		return fmt.Errorf("unknown store backend '%s' (expected %s, %s or %s)",
			c.Store, config.StoreSQLite, config.StoreMongo, config.StoreMemory)
	}
	if c.Store == config.StoreMongo && c.MongoURI == "" {
		return fmt.Errorf("store 'mongo' requires --mongo-uri")
	}

	logFilePath, err := logging.Initialize(c.Debug, c.DebugFile, c.MaxLogFiles)
	if err != nil {
		return err
	}

	// Child processes inherit debug settings and append to the same
	// log file.
	if c.Debug || c.DebugFile != "" {
		os.Setenv("PLAYTAB_DEBUG", "1")
		if logFilePath != "" {
			os.Setenv("PLAYTAB_DEBUG_FILE", logFilePath)
		}
	}

	container, err := NewContainer(c)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	c.Container = container

	return nil
}

// Close closes all resources held by the CLI
func (c *CLI) Close() error {
	if c.Container != nil {
		return c.Container.Close()
	}
	return nil
}
