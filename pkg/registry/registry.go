// Package registry persists the list of managed source directories.
//
// The registry is an explicit state object: loaded at process start,
// mutated in memory, written back with Save. The on-disk format is a
// YAML list of absolute paths in the dotsctl config directory, ordered
// by first addition so traversal stays deterministic.
package registry

import (
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/dotsctl/pkg/errors"
	"github.com/arthur-debert/dotsctl/pkg/logging"
	"github.com/arthur-debert/dotsctl/pkg/paths"
	"github.com/arthur-debert/dotsctl/pkg/types"
)

const fileHeader = "# Automatically written file, edit with care\n"

// Registry holds the persisted ordered set of source directories
type Registry struct {
	fs      types.FS
	path    string
	sources []string
}

// Load reads the registry from the config directory. A missing file is
// an empty registry, not an error.
func Load(fsys types.FS, p *paths.Paths) (*Registry, error) {
	r := &Registry{fs: fsys, path: p.SourcesFilePath()}

	content, err := fsys.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, errors.Wrapf(err, errors.ErrRegistryLoad, "failed to read %s", r.path)
	}

	if err := yaml.Unmarshal(content, &r.sources); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRegistryLoad, "failed to parse %s", r.path)
	}
	return r, nil
}

// Add normalizes the path and appends it if not already present. The
// path must exist. Set semantics: duplicates are ignored and first-add
// order is preserved.
func (r *Registry) Add(path string) (added bool, err error) {
	normalized, err := paths.NormalizePath(path)
	if err != nil {
		return false, err
	}

	if _, err := r.fs.Stat(normalized); err != nil {
		if os.IsNotExist(err) {
			return false, errors.Newf(errors.ErrSourceNotFound, "%s does not exist", normalized)
		}
		return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", normalized)
	}

	if slices.Contains(r.sources, normalized) {
		logger := logging.GetLogger("registry")
		logger.Debug().Str("source", normalized).Msg("source already registered")
		return false, nil
	}

	r.sources = append(r.sources, normalized)
	return true, nil
}

// Sources returns the registered source paths in first-add order
func (r *Registry) Sources() []string {
	return slices.Clone(r.sources)
}

// Save writes the registry back to disk, creating the config directory
// if needed
func (r *Registry) Save() error {
	content, err := yaml.Marshal(r.sources)
	if err != nil {
		return errors.Wrap(err, errors.ErrRegistrySave, "failed to marshal sources")
	}

	dir := filepath.Dir(r.path)
	if err := r.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrRegistrySave, "failed to create %s", dir)
	}

	data := append([]byte(fileHeader), content...)
	if err := r.fs.WriteFile(r.path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrRegistrySave, "failed to write %s", r.path)
	}
	return nil
}
