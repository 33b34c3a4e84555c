// Package installer turns parsed directives into ordered filesystem
// operations and applies them.
//
// Compilation and execution are separate phases, so a dry run can show
// exactly what would happen and tests can assert on the operation list
// without touching a filesystem.
package installer

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/dotsctl/pkg/paths"
	"github.com/arthur-debert/dotsctl/pkg/types"
)

// Options control directive compilation
type Options struct {
	// StripExtensionDefault applies when a directive does not set
	// strip_extension itself
	StripExtensionDefault bool
}

// Plan is the compiled form of one file's directive: the filesystem
// operations in execution order, plus the declared system packages.
type Plan struct {
	Ops      []types.Operation
	Packages []string
}

// Compile flattens a directive into a plan. Operation order within one
// file is fixed: directories first, then file placement, then symlinks,
// then nested directives (each nested directive repeating the same order
// with its synthetic name). The ~ in every path is expanded here, at
// install time.
func Compile(d *types.Directive, sourcePath string, opts Options) *Plan {
	plan := &Plan{}
	compileInto(plan, d, sourcePath, opts)
	return plan
}

func compileInto(plan *Plan, d *types.Directive, sourcePath string, opts Options) {
	for _, dir := range d.Mkdir {
		target := paths.ExpandHome(dir)
		plan.Ops = append(plan.Ops, types.Operation{
			Type:        types.OperationCreateDir,
			Target:      target,
			Description: "MKDIR " + target,
		})
	}

	if dest := destination(d, sourcePath, opts); dest != "" {
		plan.Ops = append(plan.Ops, types.Operation{
			Type:        types.OperationInstallFile,
			Source:      sourcePath,
			Target:      dest,
			Description: "INSTALL " + dest,
		})
	}

	for _, linkPath := range sortedKeys(d.Symlink) {
		target := paths.ExpandHome(d.Symlink[linkPath])
		link := paths.ExpandHome(linkPath)
		plan.Ops = append(plan.Ops, types.Operation{
			Type:        types.OperationCreateSymlink,
			Source:      target,
			Target:      link,
			Description: "SYMLINK " + link,
		})
	}

	// Nested directives install as if the synthetic name were a sibling
	// of the real file, so destdir/basename computation uses the
	// synthetic name.
	for _, name := range sortedKeys(d.Dotsctl) {
		syntheticPath := filepath.Join(filepath.Dir(sourcePath), name)
		compileInto(plan, d.Dotsctl[name], syntheticPath, opts)
	}

	plan.Packages = append(plan.Packages, d.Dpkg...)
}

// destination computes the primary install path. dest wins over destdir;
// neither means no file placement. Extension stripping applies only to
// the destdir form, dest is used verbatim.
func destination(d *types.Directive, sourcePath string, opts Options) string {
	if d.Dest != "" {
		return paths.ExpandHome(d.Dest)
	}
	if d.DestDir == "" {
		return ""
	}

	base := filepath.Base(sourcePath)
	if d.StripExt(opts.StripExtensionDefault) {
		if ext := filepath.Ext(base); ext != "" && ext != base {
			base = strings.TrimSuffix(base, ext)
		}
	}
	return filepath.Join(paths.ExpandHome(d.DestDir), base)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
