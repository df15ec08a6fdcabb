package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PLAYTAB_HOME", t.TempDir())

	settings, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "", settings.Store)
	assert.Equal(t, DefaultHourlyRate, settings.EffectiveHourlyRate().String())
}

func TestLoadSettings_RoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PLAYTAB_HOME", home)

	debug := true
	in := &Settings{
		Store:      StoreSQLite,
		DBPath:     filepath.Join(home, "playtab.db"),
		Debug:      &debug,
		HourlyRate: "200",
	}
	require.NoError(t, SaveSettings(in))

	out, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, in.Store, out.Store)
	assert.Equal(t, in.DBPath, out.DBPath)
	require.NotNil(t, out.Debug)
	assert.True(t, *out.Debug)
	assert.Equal(t, "200", out.EffectiveHourlyRate().String())
}

func TestLoadSettings_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"unknown backend", `{"store": "postgres"}`},
		{"mongo without uri", `{"store": "mongo"}`},
		{"garbage rate", `{"hourly_rate": "a lot"}`},
		{"negative rate", `{"hourly_rate": "-5"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			t.Setenv("PLAYTAB_HOME", home)
			require.NoError(t, os.WriteFile(
				filepath.Join(home, "settings.json"), []byte(tt.json), 0644))

			_, err := LoadSettings()
			assert.Error(t, err)
		})
	}
}
