// Package config loads the layered dotsctl configuration: embedded
// defaults, then the user's config.toml from the config directory, then
// DOTSCTL_ environment variables, each layer overriding the previous.
package config

import (
	_ "embed"
	goerrors "errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/dotsctl/pkg/errors"
	"github.com/arthur-debert/dotsctl/pkg/paths"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, goerrors.New("not implemented")
}

// Config is the resolved dotsctl configuration
type Config struct {
	Scan struct {
		// Window is how many leading lines are searched for the
		// metadata marker
		Window int `koanf:"window"`
	} `koanf:"scan"`

	Install struct {
		// StripExtension is the default for directives that do not set
		// strip_extension themselves
		StripExtension bool `koanf:"strip_extension"`
	} `koanf:"install"`

	Ignore struct {
		// Patterns are doublestar globs, matched against paths relative
		// to each source root, whose matches are skipped during
		// traversal
		Patterns []string `koanf:"patterns"`
	} `koanf:"ignore"`

	Packages struct {
		// Manager selects the package manager collaborator
		Manager string `koanf:"manager"`
	} `koanf:"packages"`
}

// Load builds the configuration from defaults, the optional user config
// file, and environment overrides
func Load(p *paths.Paths) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User config file, if present
	configPath := p.ConfigFilePath()
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load %s", configPath)
		}
	}

	// 3. Environment variables: DOTSCTL_SCAN_WINDOW -> scan.window.
	// The first underscore separates section from key.
	if err := k.Load(env.Provider("DOTSCTL_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "DOTSCTL_"))
		return strings.Replace(key, "_", ".", 1)
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal config")
	}
	return &cfg, nil
}
