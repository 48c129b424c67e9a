// Package paths locates the configuration and data directories. Every
// command resolves both before touching the store; the precedence chain
// is flag > config.yaml (data dir only) > environment > platform default.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appDirName is the per-application subdirectory created under the
// platform config and data roots.
const appDirName = "biblio"

// DefaultDataDirName is the CWD-relative data directory used when no
// override is in effect.
const DefaultDataDirName = ".biblio-db"

// Override environment variables.
const (
	EnvConfigDir = "BIBLIO_CONFIG_DIR"
	EnvDataDir   = "BIBLIO_DATA_DIR"
)

// DefaultConfigDir returns the platform configuration directory:
// $XDG_CONFIG_HOME/biblio on Linux (fallback ~/.config/biblio),
// ~/Library/Application Support/biblio on macOS, %APPDATA%/biblio on
// Windows.
func DefaultConfigDir() (string, error) {
	return platformDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory:
// $XDG_DATA_HOME/biblio on Linux (fallback ~/.local/share/biblio), and
// the same directory as DefaultConfigDir on macOS and Windows.
func DefaultDataDir() (string, error) {
	return platformDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// platformDir applies the XDG convention on Linux; elsewhere it defers
// to os.UserConfigDir, which already resolves Application Support on
// macOS and APPDATA on Windows.
func platformDir(xdgVar, homeFallback string) (string, error) {
	if runtime.GOOS != "linux" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, appDirName), nil
	}
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeFallback, appDirName), nil
}

// ResolveConfigDir picks the configuration directory: an explicit flag
// wins, then EnvConfigDir, then the platform default. Relative
// overrides are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	if dir := firstSet(flag, os.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir picks the data directory: flag, then the data_dir
// value from config.yaml, then EnvDataDir, then $(CWD)/.biblio-db so a
// bare invocation keeps its database next to where it runs.
func ResolveDataDir(flag, configured string) (string, error) {
	if dir := firstSet(flag, configured, os.Getenv(EnvDataDir)); dir != "" {
		return filepath.Abs(dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// firstSet returns the first non-empty candidate.
func firstSet(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
