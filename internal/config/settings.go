package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"playtab/internal/paths"
)

// Store backend names accepted in settings.json and on the CLI.
const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// DefaultHourlyRate is used for pro-rated sessions when neither the
// settings file nor the operator provides a rate.
const DefaultHourlyRate = "159"

// Settings represents the structure of $PLAYTAB_HOME/settings.json.
// Pointer fields distinguish "not configured" from a zero value so the
// CLI can layer flags > env > settings > defaults.
type Settings struct {
	Store               string `json:"store,omitempty"`
	DBPath              string `json:"db_path,omitempty"`
	MongoURI            string `json:"mongo_uri,omitempty"`
	MongoDatabase       string `json:"mongo_database,omitempty"`
	PollIntervalSeconds *int   `json:"poll_interval_seconds,omitempty"`
	Debug               *bool  `json:"debug,omitempty"`
	MaxLogFiles         *int   `json:"max_log_files,omitempty"`
	HTTPAddr            string `json:"http_addr,omitempty"`
	SSHAddr             string `json:"ssh_addr,omitempty"`
	AuthorizedKeysPath  string `json:"authorized_keys_path,omitempty"`
	HostKeyPath         string `json:"host_key_path,omitempty"`
	HourlyRate          string `json:"hourly_rate,omitempty"`
}

// Validate checks for configuration errors that would only surface
// much later, like an unknown backend or an unparseable rate.
func (s *Settings) Validate() error {
	switch s.Store {
	case "", StoreSQLite, StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("unknown store backend '%s' (expected %s, %s or %s)",
			s.Store, StoreSQLite, StoreMongo, StoreMemory)
	}

	if s.Store == StoreMongo && s.MongoURI == "" {
		return fmt.Errorf("store 'mongo' requires mongo_uri")
	}

	if s.HourlyRate != "" {
		rate, err := decimal.NewFromString(s.HourlyRate)
		if err != nil {
			return fmt.Errorf("invalid hourly_rate '%s': %w", s.HourlyRate, err)
		}
		if rate.IsNegative() {
			return fmt.Errorf("hourly_rate must not be negative")
		}
	}

	return nil
}

// EffectiveHourlyRate returns the configured rate or the built-in
// default. Call Validate first; an unparseable configured value falls
// back to the default here.
func (s *Settings) EffectiveHourlyRate() decimal.Decimal {
	if s.HourlyRate != "" {
		if rate, err := decimal.NewFromString(s.HourlyRate); err == nil {
			return rate
		}
	}
	rate, _ := decimal.NewFromString(DefaultHourlyRate)
	return rate
}

// LoadSettings loads settings from $PLAYTAB_HOME/settings.json (or ~/.playtab/settings.json if not set)
// Returns empty Settings if file doesn't exist (not an error)
func LoadSettings() (*Settings, error) {
	path := paths.GetSettingsPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil // Not an error, use defaults
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("invalid settings.json: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	// Expand path-valued fields that may start with ~
	settings.DBPath = expandIfSet(settings.DBPath)
	settings.AuthorizedKeysPath = expandIfSet(settings.AuthorizedKeysPath)
	settings.HostKeyPath = expandIfSet(settings.HostKeyPath)

	return &settings, nil
}

// SaveSettings saves settings to $PLAYTAB_HOME/settings.json
func SaveSettings(settings *Settings) error {
	path := paths.GetSettingsPath()
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

func expandIfSet(path string) string {
	if path == "" {
		return ""
	}
	return paths.ExpandPath(path)
}
