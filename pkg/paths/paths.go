// Package paths provides centralized path handling for dotsctl.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/dotsctl/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for dotsctl
	EnvConfigDir = "DOTSCTL_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for dotsctl
	EnvStateDir = "DOTSCTL_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files.
// These constants define dotsctl's on-disk layout and are not
// user-configurable.
const (
	// AppDirName is the directory name for dotsctl-specific files
	AppDirName = "dotsctl"

	// SourcesFileName is the registry file listing managed sources
	SourcesFileName = "sources.yml"

	// ConfigFileName is the optional user configuration file
	ConfigFileName = "config.toml"

	// LogFileName is the name of the log file
	LogFileName = "dotsctl.log"
)

// Paths provides centralized path management for dotsctl
type Paths struct {
	configDir string
	stateDir  string
}

// New creates a new Paths instance, respecting environment overrides
func New() (*Paths, error) {
	p := &Paths{}

	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.configDir = ExpandHome(configDir)
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	if stateDir := os.Getenv(EnvStateDir); stateDir != "" {
		p.stateDir = ExpandHome(stateDir)
	} else if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
		p.stateDir = filepath.Join(xdgState, AppDirName)
	} else {
		homeDir, err := GetHomeDirectory()
		if err != nil {
			return nil, err
		}
		p.stateDir = filepath.Join(homeDir, ".local", "state", AppDirName)
	}

	return p, nil
}

// ConfigDir returns the XDG config directory for dotsctl
func (p *Paths) ConfigDir() string {
	return p.configDir
}

// StateDir returns the XDG state directory for dotsctl
func (p *Paths) StateDir() string {
	return p.stateDir
}

// SourcesFilePath returns the path to the persisted source registry
func (p *Paths) SourcesFilePath() string {
	return filepath.Join(p.configDir, SourcesFileName)
}

// ConfigFilePath returns the path to the user configuration file
func (p *Paths) ConfigFilePath() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

// LogFilePath returns the path to the dotsctl log file
func (p *Paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}

// ExpandHome expands a leading ~ to the home directory. Expansion happens
// at call time, so directive values registered earlier still resolve
// against the invoking user's home.
func ExpandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to HOME env var
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				// Can't expand, return as-is
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		// Handle both ~/ and ~
		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}

// NormalizePath normalizes a path by expanding home, making it absolute,
// cleaning it, and resolving symlinks, so aliases of the same location
// compare equal
func NormalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}

	expanded := ExpandHome(path)

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path")
	}
	abs = filepath.Clean(abs)

	// A path that does not exist yet cannot be resolved; keep it as is
	// and let the caller decide whether existence matters.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	return abs, nil
}

// GetHomeDirectory returns the user's home directory with proper error
// handling
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Try the HOME environment variable as a fallback
		if home := os.Getenv(EnvHome); home != "" {
			return home, nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get home directory")
	}
	return homeDir, nil
}
