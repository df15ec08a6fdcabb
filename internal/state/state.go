// Package state persists the per-client identity used to tag broadcast
// events, plus bookkeeping about the last completed reconciliation.
// Multiple processes on one till share the file, so writes take an
// exclusive lock.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"playtab/internal/paths"
)

// ClientState represents the persistent state of one till client
type ClientState struct {
	ClientID   string    `json:"client_id"`    // Stable UUID for this installation
	LastSyncAt time.Time `json:"last_sync_at"` // Completion time of the last full refetch
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewClientID generates a new UUID for a till installation
func NewClientID() string {
	return uuid.New().String()
}

// statePathFunc is a function variable that returns the path to the state file
// Can be overridden in tests
var statePathFunc = getDefaultStatePath

func getDefaultStatePath() (string, error) {
	return paths.GetStatePath(), nil
}

// GetStatePath returns the path to the state file
func GetStatePath() (string, error) {
	return statePathFunc()
}

// Load reads the state from disk. Returns empty state if file doesn't exist.
func Load() (*ClientState, error) {
	path, err := GetStatePath()
	if err != nil {
		return &ClientState{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ClientState{}, nil
		}
		return &ClientState{}, fmt.Errorf("failed to read state file: %w", err)
	}

	var st ClientState
	if err := json.Unmarshal(data, &st); err != nil {
		return &ClientState{}, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	return &st, nil
}

// Save writes the state to disk with file locking
func (s *ClientState) Save() error {
	path, err := GetStatePath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open state file: %w", err)
	}
	defer file.Close()

	if err := lockFile(file); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer unlockFile(file)

	s.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := file.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate file: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to seek to beginning: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}

	return nil
}

// EnsureClientID returns the stored client identity, minting and
// persisting one on first run.
func EnsureClientID() (string, error) {
	st, err := Load()
	if err != nil {
		return "", err
	}

	if st.ClientID != "" {
		return st.ClientID, nil
	}

	st.ClientID = NewClientID()
	if err := st.Save(); err != nil {
		return "", err
	}
	return st.ClientID, nil
}

// RecordSync stamps the completion time of a full reconciliation
func (s *ClientState) RecordSync(at time.Time) error {
	s.LastSyncAt = at
	return s.Save()
}
