// Package paths resolves configuration and data directory locations.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names the per-user platform directories.
const appName = "nodeattrs"

// CWD-relative directory names.
const (
	DefaultConfigDirName = ".nodeattrs"
	DefaultDataDirName   = ".nodeattrs-db"
)

// Scope selects the fallback used when no override is set.
type Scope int

const (
	// ScopeProject falls back to directories under the working directory.
	ScopeProject Scope = iota
	// ScopeUser falls back to the per-user platform directories.
	ScopeUser
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "NODEATTRS_CONFIG_DIR"
	EnvDataDir   = "NODEATTRS_DATA_DIR"
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
// Linux:   $XDG_CONFIG_HOME/nodeattrs (fallback ~/.config/nodeattrs)
// macOS:   ~/Library/Application Support/nodeattrs
// Windows: %APPDATA%/nodeattrs
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	return userConfigSubdir()
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/nodeattrs (fallback ~/.local/share/nodeattrs)
// macOS and Windows: same as DefaultConfigDir
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	}
	return userConfigSubdir()
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

// userConfigSubdir uses os.UserConfigDir, which is ~/Library/Application
// Support on macOS and %APPDATA% on Windows.
func userConfigSubdir() (string, error) {
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > NODEATTRS_CONFIG_DIR env > scope default, which
// is $(CWD)/.nodeattrs for ScopeProject and DefaultConfigDir for ScopeUser.
func ResolveConfigDir(flag string, scope Scope) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	if scope == ScopeUser {
		return DefaultConfigDir()
	}
	return cwdJoin(DefaultConfigDirName)
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > config.yaml data_dir > NODEATTRS_DATA_DIR env > scope default, which
// is $(CWD)/.nodeattrs-db for ScopeProject and DefaultDataDir for ScopeUser.
func ResolveDataDir(flag, configYAMLValue string, scope Scope) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	if scope == ScopeUser {
		return DefaultDataDir()
	}
	return cwdJoin(DefaultDataDirName)
}

func cwdJoin(name string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, name), nil
}
