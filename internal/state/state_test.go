package state

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestState creates a temporary directory and overrides statePathFunc for testing
func setupTestState(t *testing.T) (string, func()) {
	tempDir := t.TempDir()
	statePath := filepath.Join(tempDir, "client.json")

	origStatePathFunc := statePathFunc
	statePathFunc = func() (string, error) {
		return statePath, nil
	}

	cleanup := func() {
		statePathFunc = origStatePathFunc
	}

	return statePath, cleanup
}

func TestNewClientID(t *testing.T) {
	id1 := NewClientID()
	id2 := NewClientID()

	assert.NotEmpty(t, id1)
	assert.NotEmpty(t, id2)
	assert.NotEqual(t, id1, id2, "Each client ID should be unique")
}

func TestLoadEmptyState(t *testing.T) {
	_, cleanup := setupTestState(t)
	defer cleanup()

	st, err := Load()

	require.NoError(t, err)
	assert.NotNil(t, st)
	assert.Empty(t, st.ClientID)
	assert.True(t, st.LastSyncAt.IsZero())
}

func TestSaveAndLoad(t *testing.T) {
	_, cleanup := setupTestState(t)
	defer cleanup()

	syncedAt := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	st := &ClientState{
		ClientID:   NewClientID(),
		LastSyncAt: syncedAt,
	}

	err := st.Save()
	require.NoError(t, err)

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, st.ClientID, loaded.ClientID)
	assert.True(t, loaded.LastSyncAt.Equal(syncedAt))
	assert.False(t, loaded.UpdatedAt.IsZero(), "Save should stamp UpdatedAt")
}

func TestLoadCorruptFile(t *testing.T) {
	statePath, cleanup := setupTestState(t)
	defer cleanup()

	require.NoError(t, os.WriteFile(statePath, []byte("{not json"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestEnsureClientID_Stable(t *testing.T) {
	_, cleanup := setupTestState(t)
	defer cleanup()

	first, err := EnsureClientID()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := EnsureClientID()
	require.NoError(t, err)
	assert.Equal(t, first, second, "identity must survive restarts")
}

func TestRecordSync(t *testing.T) {
	_, cleanup := setupTestState(t)
	defer cleanup()

	st := &ClientState{ClientID: NewClientID()}
	at := time.Now().Truncate(time.Second)
	require.NoError(t, st.RecordSync(at))

	loaded, err := Load()
	require.NoError(t, err)
	assert.True(t, loaded.LastSyncAt.Equal(at))
}

func TestConcurrentSaves(t *testing.T) {
	statePath, cleanup := setupTestState(t)
	defer cleanup()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st := &ClientState{ClientID: NewClientID()}
			assert.NoError(t, st.Save())
		}()
	}
	wg.Wait()

	// Whatever write won, the file must parse.
	_, err := Load()
	require.NoError(t, err)
	_, err = os.Stat(statePath)
	require.NoError(t, err)
}
