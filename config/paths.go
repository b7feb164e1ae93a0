// Package config resolves grepapp's configuration from defaults, the config
// file, GREPAPP_* environment variables and command-line flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appName = "grepapp"

// ConfigDir returns the config directory
// Linux: $XDG_CONFIG_HOME/grepapp or ~/.config/grepapp
// Windows: %APPDATA%\grepapp
func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), appName)
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// LogDir returns the log directory
// Linux: $XDG_STATE_HOME/grepapp or ~/.local/state/grepapp
// Windows: %LOCALAPPDATA%\grepapp\log
func LogDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName, "log")
	}
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", appName)
}

// ConfigFile returns the default config file path
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yml")
}

// LogFile returns the default log file path
func LogFile() string {
	return filepath.Join(LogDir(), "cli.log")
}

// ResolveConfigPath resolves the --config flag to a file path.
// Relative names are looked up in the config directory and get a .yml
// extension when they have none.
func ResolveConfigPath(configFlag string) string {
	if configFlag == "" {
		return ConfigFile()
	}

	if strings.HasPrefix(configFlag, "~/") {
		home, _ := os.UserHomeDir()
		configFlag = filepath.Join(home, configFlag[2:])
	}

	path := configFlag
	if !filepath.IsAbs(path) && !strings.ContainsRune(path, filepath.Separator) {
		path = filepath.Join(ConfigDir(), path)
	}

	if filepath.Ext(path) == "" {
		path += ".yml"
	}
	return path
}
