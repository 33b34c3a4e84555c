// Package packages is the thin collaborator around the system package
// manager. Install runs never invoke it for filesystem work; it only
// answers which declared packages are missing, and failures here never
// block filesystem steps.
package packages

import (
	"os/exec"
	"sort"
	"strings"

	"github.com/arthur-debert/dotsctl/pkg/errors"
	"github.com/arthur-debert/dotsctl/pkg/logging"
)

// Manager answers queries about system packages
type Manager interface {
	// Name identifies the manager ("dpkg", "none")
	Name() string

	// Missing returns the subset of names that are not installed
	Missing(names []string) ([]string, error)
}

// ForName returns the manager configured by the packages.manager setting
func ForName(name string) (Manager, error) {
	switch name {
	case "dpkg":
		return NewDpkg(), nil
	case "none", "":
		return Noop(), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown package manager %q", name)
	}
}

// runnerFunc executes a command and returns its combined output; swapped
// out in tests
type runnerFunc func(name string, args ...string) ([]byte, error)

type dpkgManager struct {
	run runnerFunc
}

// NewDpkg creates a Manager backed by dpkg-query
func NewDpkg() Manager {
	return &dpkgManager{
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).Output()
		},
	}
}

func (d *dpkgManager) Name() string { return "dpkg" }

// Missing queries dpkg for each package. A query that exits non-zero
// means the package is unknown to dpkg, which counts as missing; a
// missing dpkg-query binary is a real error.
func (d *dpkgManager) Missing(names []string) ([]string, error) {
	logger := logging.GetLogger("packages.dpkg")

	var missing []string
	for _, name := range names {
		out, err := d.run("dpkg-query", "-W", "-f=${Status}", name)
		if err != nil {
			if _, isExit := err.(*exec.ExitError); isExit {
				missing = append(missing, name)
				continue
			}
			return nil, errors.Wrap(err, errors.ErrPackageCheck, "failed to run dpkg-query")
		}
		if !strings.Contains(string(out), "install ok installed") {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		logger.Debug().Strs("missing", missing).Msg("packages not installed")
	}
	return missing, nil
}

type noopManager struct{}

// Noop creates a Manager that treats every package as installed, used
// when package checking is disabled
func Noop() Manager {
	return noopManager{}
}

func (noopManager) Name() string { return "none" }

func (noopManager) Missing(names []string) ([]string, error) {
	return nil, nil
}

// Union returns the sorted de-duplicated union of package name lists
func Union(lists ...[]string) []string {
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, name := range list {
			seen[name] = struct{}{}
		}
	}

	result := make([]string, 0, len(seen))
	for name := range seen {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
