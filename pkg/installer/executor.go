package installer

import (
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotsctl/pkg/errors"
	"github.com/arthur-debert/dotsctl/pkg/logging"
	"github.com/arthur-debert/dotsctl/pkg/types"
)

// Executor applies compiled plans against a filesystem
type Executor struct {
	fs     types.FS
	dryRun bool
	logger zerolog.Logger
}

// NewExecutor creates an executor. With dryRun set, operations are logged
// and reported as skipped without touching the filesystem.
func NewExecutor(fsys types.FS, dryRun bool) *Executor {
	return &Executor{
		fs:     fsys,
		dryRun: dryRun,
		logger: logging.GetLogger("installer.executor"),
	}
}

// Execute applies every operation in the plan, in order. A failed
// operation is recorded and execution continues with the next one;
// nothing that already succeeded is undone.
func (e *Executor) Execute(plan *Plan) []types.OperationResult {
	results := make([]types.OperationResult, 0, len(plan.Ops))

	for _, op := range plan.Ops {
		result := types.OperationResult{Operation: op}

		if e.dryRun {
			e.logger.Info().Str("op", string(op.Type)).Str("target", op.Target).Msg("dry run, skipping")
			result.Status = types.StatusSkipped
			results = append(results, result)
			continue
		}

		var err error
		var skipped bool
		switch op.Type {
		case types.OperationCreateDir:
			skipped, err = e.createDir(op)
		case types.OperationInstallFile:
			err = e.installFile(op)
		case types.OperationCreateSymlink:
			skipped, err = e.createSymlink(op)
		default:
			err = errors.Newf(errors.ErrInternal, "unknown operation type %q", op.Type)
		}

		switch {
		case err != nil:
			e.logger.Error().Err(err).Str("target", op.Target).Msg("operation failed")
			result.Status = types.StatusError
			result.Err = err
		case skipped:
			result.Status = types.StatusSkipped
		default:
			e.logger.Info().Str("target", op.Target).Msg(op.Description)
			result.Status = types.StatusDone
		}
		results = append(results, result)
	}

	return results
}

// createDir creates the directory and missing ancestors. An existing
// directory is not an error; an existing non-directory is.
func (e *Executor) createDir(op types.Operation) (bool, error) {
	if info, err := e.fs.Stat(op.Target); err == nil {
		if info.IsDir() {
			return true, nil
		}
		return false, errors.Newf(errors.ErrDirCreate, "%s exists and is not a directory", op.Target)
	}

	if err := e.fs.MkdirAll(op.Target, 0755); err != nil {
		return false, errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", op.Target)
	}
	return false, nil
}

// installFile copies the source file's content and mode to the target,
// overwriting whatever is there. Re-running produces the same end state.
func (e *Executor) installFile(op types.Operation) error {
	content, err := e.fs.ReadFile(op.Source)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileInstall, "failed to read %s", op.Source)
	}

	mode := fs.FileMode(0644)
	if info, err := e.fs.Stat(op.Source); err == nil {
		mode = info.Mode().Perm()
	}

	// A symlink at the destination would redirect the write, so clear
	// it first.
	if info, err := e.fs.Lstat(op.Target); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if err := e.fs.Remove(op.Target); err != nil {
			return errors.Wrapf(err, errors.ErrFileInstall, "failed to replace symlink at %s", op.Target)
		}
	}

	if err := e.fs.WriteFile(op.Target, content, mode); err != nil {
		return errors.Wrapf(err, errors.ErrFileInstall, "failed to write %s", op.Target)
	}
	return nil
}

// createSymlink replaces whatever occupies the link path with a symlink
// to the target. A link already pointing at the target is left alone.
// Dangling targets are allowed.
func (e *Executor) createSymlink(op types.Operation) (bool, error) {
	if info, err := e.fs.Lstat(op.Target); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			if current, err := e.fs.Readlink(op.Target); err == nil && current == op.Source {
				// Don't report making changes if there are none
				return true, nil
			}
		}
		if err := e.fs.Remove(op.Target); err != nil {
			return false, errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to remove existing %s", op.Target)
		}
	}

	if err := e.fs.Symlink(op.Source, op.Target); err != nil {
		return false, errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s", op.Target)
	}
	return false, nil
}
