// Package core wires discovery, extraction, and installation into the
// operations the CLI exposes.
package core

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/arthur-debert/dotsctl/pkg/errors"
	"github.com/arthur-debert/dotsctl/pkg/logging"
	"github.com/arthur-debert/dotsctl/pkg/metadata"
	"github.com/arthur-debert/dotsctl/pkg/types"
)

// ScanOptions control source discovery and metadata extraction
type ScanOptions struct {
	// FS is the filesystem to scan
	FS types.FS

	// Sources are files or directories to scan, in order
	Sources []string

	// Window is how many leading lines are searched for the marker
	Window int

	// IgnorePatterns are doublestar globs, relative to each source
	// root, that are skipped during traversal
	IgnorePatterns []string
}

// ScannedFile is one regular file found under a source, with its
// extracted directive. Directive is nil when the file carries no
// metadata. Err is set when the source was unreadable or the block
// malformed.
type ScannedFile struct {
	Path      string
	Directive *types.Directive
	Err       error
}

// Scan enumerates every regular file under the given sources in
// deterministic order and extracts metadata from each. Symlinked
// directories are not followed, to avoid cycles. Errors are recorded
// per file and never abort the traversal.
func Scan(opts ScanOptions) []ScannedFile {
	logger := logging.GetLogger("core.scan")
	var results []ScannedFile

	for _, source := range opts.Sources {
		info, err := opts.FS.Stat(source)
		if err != nil {
			if os.IsNotExist(err) {
				err = errors.Newf(errors.ErrSourceNotFound, "%s does not exist", source)
			} else {
				err = errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", source)
			}
			results = append(results, ScannedFile{Path: source, Err: err})
			continue
		}

		if !info.IsDir() {
			results = append(results, scanFile(opts.FS, source, opts.Window))
			continue
		}

		walkSource(opts, source, source, &results)
		logger.Debug().Str("source", source).Int("files", len(results)).Msg("scanned source")
	}

	return results
}

// walkSource recurses through dir, collecting scan results for every
// regular file. ReadDir returns entries sorted by name, which gives
// the deterministic traversal order.
func walkSource(opts ScanOptions, root, dir string, results *[]ScannedFile) {
	entries, err := opts.FS.ReadDir(dir)
	if err != nil {
		*results = append(*results, ScannedFile{
			Path: dir,
			Err:  errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", dir),
		})
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = entry.Name()
		}
		if ignored(opts.IgnorePatterns, rel) {
			continue
		}

		switch {
		case entry.IsDir():
			walkSource(opts, root, path, results)
		case entry.Type()&fs.ModeSymlink != 0:
			// A symlink to a regular file is scanned; a symlink to a
			// directory is not followed, to avoid cycles.
			if info, err := opts.FS.Stat(path); err == nil && info.Mode().IsRegular() {
				*results = append(*results, scanFile(opts.FS, path, opts.Window))
			}
		case entry.Type().IsRegular():
			*results = append(*results, scanFile(opts.FS, path, opts.Window))
		}
	}
}

func ignored(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// scanFile extracts and parses the metadata block of one file
func scanFile(fsys types.FS, path string, window int) ScannedFile {
	logger := logging.GetLogger("core.scan")

	content, err := fsys.ReadFile(path)
	if err != nil {
		return ScannedFile{
			Path: path,
			Err:  errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", path),
		}
	}

	block := metadata.Extract(content, window)
	if block == nil {
		return ScannedFile{Path: path}
	}
	if !block.Terminated {
		logger.Warn().Str("path", path).Msg("metadata block has no terminator")
	}

	directive, err := metadata.ParseDirective(block.Text())
	if err != nil {
		return ScannedFile{Path: path, Err: err}
	}
	return ScannedFile{Path: path, Directive: directive}
}
