package core

import (
	"github.com/arthur-debert/dotsctl/pkg/config"
	"github.com/arthur-debert/dotsctl/pkg/installer"
	"github.com/arthur-debert/dotsctl/pkg/logging"
	"github.com/arthur-debert/dotsctl/pkg/packages"
	"github.com/arthur-debert/dotsctl/pkg/types"
)

// InstallOptions describe one install run
type InstallOptions struct {
	// FS is the filesystem to install onto
	FS types.FS

	// Sources are the directories or files to process, in order
	Sources []string

	// Config is the resolved application configuration
	Config *config.Config

	// Manager answers package queries; failures here never block
	// filesystem steps
	Manager packages.Manager

	// DryRun logs actions without executing them
	DryRun bool
}

// Install runs the full pipeline over every source: enumerate files,
// extract metadata, compile directives, execute. Each file is processed
// independently; no failure aborts the traversal, and the summary's
// Failed count is what drives the process exit status.
func Install(opts InstallOptions) *types.RunSummary {
	logger := logging.GetLogger("core.install")
	summary := &types.RunSummary{}

	exec := installer.NewExecutor(opts.FS, opts.DryRun)
	compileOpts := installer.Options{
		StripExtensionDefault: opts.Config.Install.StripExtension,
	}

	scanned := Scan(ScanOptions{
		FS:             opts.FS,
		Sources:        opts.Sources,
		Window:         opts.Config.Scan.Window,
		IgnorePatterns: opts.Config.Ignore.Patterns,
	})

	for _, file := range scanned {
		result := types.FileResult{Path: file.Path, Directive: file.Directive}

		switch {
		case file.Err != nil:
			result.Status = types.FileFailed
			result.Err = file.Err

		case file.Directive == nil:
			result.Status = types.FileSkipped

		default:
			plan := installer.Compile(file.Directive, file.Path, compileOpts)
			result.Operations = exec.Execute(plan)
			result.Status = types.FileInstalled
			for _, op := range result.Operations {
				if op.Err != nil {
					result.Status = types.FileFailed
					result.Err = op.Err
					break
				}
			}

			checkPackages(opts.Manager, plan, &result)
		}

		summary.Add(result)
	}

	logger.Info().
		Int("installed", summary.Installed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Bool("dryRun", opts.DryRun).
		Msg("install run finished")
	return summary
}

// checkPackages asks the package manager which declared packages are
// missing. A failed check marks the file failed but the filesystem
// steps that already ran stay in place.
func checkPackages(mgr packages.Manager, plan *installer.Plan, result *types.FileResult) {
	if mgr == nil || len(plan.Packages) == 0 {
		return
	}

	logger := logging.GetLogger("core.install")
	missing, err := mgr.Missing(plan.Packages)
	if err != nil {
		logger.Error().Err(err).Str("path", result.Path).Msg("package check failed")
		if result.Status != types.FileFailed {
			result.Status = types.FileFailed
			result.Err = err
		}
		return
	}

	if len(missing) > 0 {
		logger.Warn().Strs("packages", missing).Str("path", result.Path).Msg("declared packages not installed")
		result.MissingPackages = missing
	}
}

// CollectDirectives scans the sources and returns only the files that
// carry metadata, plus the files whose metadata was unreadable. Used by
// the meta and packages commands.
func CollectDirectives(opts ScanOptions) []ScannedFile {
	var results []ScannedFile
	for _, file := range Scan(opts) {
		if file.Directive != nil || file.Err != nil {
			results = append(results, file)
		}
	}
	return results
}
