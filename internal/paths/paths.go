package paths

import (
	"os"
	"path/filepath"
)

// GetPlaytabHome returns PLAYTAB_HOME or ~/.playtab default
func GetPlaytabHome() string {
	home := os.Getenv("PLAYTAB_HOME")
	if home == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".playtab"
		}
		return filepath.Join(homeDir, ".playtab")
	}
	return ExpandPath(home)
}

// GetDBPath returns $PLAYTAB_HOME/playtab.db
func GetDBPath() string {
	return filepath.Join(GetPlaytabHome(), "playtab.db")
}

// GetSettingsPath returns $PLAYTAB_HOME/settings.json
func GetSettingsPath() string {
	return filepath.Join(GetPlaytabHome(), "settings.json")
}

// GetStatePath returns $PLAYTAB_HOME/client.json
func GetStatePath() string {
	return filepath.Join(GetPlaytabHome(), "client.json")
}

// GetAuthorizedKeysPath returns $PLAYTAB_HOME/authorized_keys
func GetAuthorizedKeysPath() string {
	return filepath.Join(GetPlaytabHome(), "authorized_keys")
}

// GetHostKeyPath returns $PLAYTAB_HOME/ssh_host_ed25519
func GetHostKeyPath() string {
	return filepath.Join(GetPlaytabHome(), "ssh_host_ed25519")
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			if len(path) == 1 {
				return homeDir
			}
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}
