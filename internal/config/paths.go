package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chgk"

// GetAppDir returns the per-user configuration directory.
func GetAppDir() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(appData, appName)
	case "darwin": // MacOS
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", appName)
	default: // Linux
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, _ := os.UserHomeDir()
			configHome = filepath.Join(home, ".config")
		}
		return filepath.Join(configHome, appName)
	}
}

// Returns directory for logs
func GetLogsDir() string {
	return filepath.Join(GetAppDir(), "logs")
}

// GetSettingsPath returns the path to the settings JSON file.
func GetSettingsPath() string {
	return filepath.Join(GetAppDir(), "settings.json")
}

// EnsureDirs creates all required directories
func EnsureDirs() error {
	dirs := []string{GetAppDir(), GetLogsDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
