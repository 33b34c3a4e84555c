package types

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// StringList is a YAML field that accepts either a single string or a
// sequence of strings. The original metadata format allows both forms
// for mkdir, so both are preserved here.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler
func (s *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*s = StringList{single}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*s = StringList(many)
		return nil
	default:
		return fmt.Errorf("expected string or list of strings, got %v node", value.Kind)
	}
}

// Directive is the parsed install instructions embedded in one source file.
// All fields are optional; unknown keys in the metadata block are ignored
// so files authored for later versions still install.
type Directive struct {
	// Mkdir lists directories to create before any file placement
	Mkdir StringList `yaml:"mkdir,omitempty"`

	// Dest is the exact destination path for this file
	Dest string `yaml:"dest,omitempty"`

	// DestDir is a destination directory; the final path is DestDir
	// plus the source file's basename
	DestDir string `yaml:"destdir,omitempty"`

	// StripExtension controls whether the basename's extension is
	// dropped when DestDir is used. Nil means "use the default".
	StripExtension *bool `yaml:"strip_extension,omitempty"`

	// Symlink maps link path -> link target
	Symlink map[string]string `yaml:"symlink,omitempty"`

	// Dotsctl maps synthetic filenames to nested directives, letting one
	// physical file declare installs for several logical artifacts
	Dotsctl map[string]*Directive `yaml:"dotsctl,omitempty"`

	// Dpkg lists system packages this file needs
	Dpkg []string `yaml:"dpkg,omitempty"`
}

// AllPackages returns the dpkg names declared by this directive and any
// nested directives
func (d *Directive) AllPackages() []string {
	names := append([]string(nil), d.Dpkg...)
	for _, nested := range d.Dotsctl {
		names = append(names, nested.AllPackages()...)
	}
	return names
}

// StripExt resolves the effective strip_extension value against the
// configured default.
func (d *Directive) StripExt(def bool) bool {
	if d.StripExtension != nil {
		return *d.StripExtension
	}
	return def
}

// FileStatus is the outcome category for one scanned file
type FileStatus string

const (
	// FileInstalled means the file's directives were all applied
	FileInstalled FileStatus = "installed"

	// FileSkipped means the file carries no metadata block
	FileSkipped FileStatus = "skipped"

	// FileFailed means parsing or at least one action failed
	FileFailed FileStatus = "failed"
)

// FileResult records what happened to a single scanned file
type FileResult struct {
	// Path is the absolute path of the scanned file
	Path string

	// Status is the outcome category
	Status FileStatus

	// Directive is the parsed metadata, nil when Status is FileSkipped
	Directive *Directive

	// Operations are the filesystem steps that were attempted
	Operations []OperationResult

	// MissingPackages lists declared packages the package manager
	// reported as not installed
	MissingPackages []string

	// Err is the first error for this file (parse failure, or the first
	// failed operation)
	Err error
}

// RunSummary aggregates the results of one install traversal
type RunSummary struct {
	Results   []FileResult
	Installed int
	Skipped   int
	Failed    int
}

// Add appends a file result and updates the counters
func (s *RunSummary) Add(r FileResult) {
	s.Results = append(s.Results, r)
	switch r.Status {
	case FileInstalled:
		s.Installed++
	case FileSkipped:
		s.Skipped++
	case FileFailed:
		s.Failed++
	}
}

// HasFailures reports whether any file failed; this drives the process
// exit status
func (s *RunSummary) HasFailures() bool {
	return s.Failed > 0
}
