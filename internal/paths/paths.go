// Package paths resolves where typesmith keeps its configuration, its UI
// state database and its logs.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "typesmith"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "TYPESMITH_CONFIG_DIR"
	EnvDataDir   = "TYPESMITH_DATA_DIR"
)

// File names inside the resolved directories.
const (
	ConfigFileName = "config.yaml"
	StateFileName  = "state.db"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/typesmith (fallback ~/.config/typesmith)
// macOS:   ~/Library/Application Support/typesmith
// Windows: %APPDATA%/typesmith
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/typesmith (fallback ~/.local/share/typesmith)
// macOS and Windows: same as the config dir.
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

func xdgDir(env, homeRel string) (string, error) {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, appName), nil
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > TYPESMITH_CONFIG_DIR > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	return resolve(flag, EnvConfigDir, DefaultConfigDir)
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > TYPESMITH_DATA_DIR > DefaultDataDir().
func ResolveDataDir(flag string) (string, error) {
	return resolve(flag, EnvDataDir, DefaultDataDir)
}

func resolve(flag, env string, def func() (string, error)) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if v := os.Getenv(env); v != "" {
		return filepath.Abs(v)
	}
	return def()
}

// InDir returns value made absolute against dir. An empty value selects
// fallback inside dir; an empty fallback keeps the result empty.
func InDir(dir, value, fallback string) string {
	switch {
	case value == "" && fallback == "":
		return ""
	case value == "":
		return filepath.Join(dir, fallback)
	case filepath.IsAbs(value):
		return value
	}
	return filepath.Join(dir, value)
}
