package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dirs lists where the application keeps its files.
type Dirs struct {
	Config   string
	Data     string
	Database string
}

// ConfigDir returns the OS-standard configuration directory.
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(homeDir), nil
}

// AppDirs resolves and creates the per-application directories under root.
// An empty root uses ConfigDir.
func AppDirs(root, appName string) (Dirs, error) {
	if root == "" {
		configDir, err := ConfigDir()
		if err != nil {
			return Dirs{}, err
		}
		root = configDir
	}

	appDir := filepath.Join(root, appName)
	dirs := Dirs{
		Config:   appDir,
		Data:     filepath.Join(appDir, "data"),
		Database: filepath.Join(appDir, "fittrack.db"),
	}
	if err := os.MkdirAll(dirs.Config, 0o755); err != nil {
		return Dirs{}, fmt.Errorf("create app dir: %w", err)
	}
	return dirs, nil
}
