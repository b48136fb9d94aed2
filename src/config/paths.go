package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
)

const appName = "gemchat"

// DefaultDatabasePath returns the default chat history database path.
// Chat history is runtime state, so it lives under XDG_STATE_HOME.
func DefaultDatabasePath() string {
	return filepath.Join(xdg.StateHome, appName, "chat_history.db")
}

// DefaultLogPath returns the log file used by interactive sessions
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, appName, "logs", appName+".log")
}

// UserConfigPath returns the per-user configuration file
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.json")
}

// GetConfigPaths returns the configuration file paths to check
func GetConfigPaths() ConfigPrecedence {
	// System config path varies by OS
	systemConfigPath := filepath.Join("/etc", appName, "config.json")
	if runtime.GOOS == "windows" {
		systemConfigPath = filepath.Join(os.Getenv("PROGRAMDATA"), appName, "config.json")
	}

	return ConfigPrecedence{
		SystemConfig:      systemConfigPath,
		UserConfig:        UserConfigPath(),
		ProjectConfig:     filepath.Join("."+appName, "config.json"),
		LocalConfig:       filepath.Join("."+appName, "config.local.json"),
		EnvironmentPrefix: "GEMCHAT",
	}
}
