// Package cli wires the dotsctl commands together.
package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/dotsctl/internal/version"
	"github.com/arthur-debert/dotsctl/pkg/config"
	"github.com/arthur-debert/dotsctl/pkg/core"
	"github.com/arthur-debert/dotsctl/pkg/errors"
	"github.com/arthur-debert/dotsctl/pkg/filesystem"
	"github.com/arthur-debert/dotsctl/pkg/logging"
	"github.com/arthur-debert/dotsctl/pkg/packages"
	"github.com/arthur-debert/dotsctl/pkg/paths"
	"github.com/arthur-debert/dotsctl/pkg/registry"
	"github.com/arthur-debert/dotsctl/pkg/style"
	"github.com/arthur-debert/dotsctl/pkg/types"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity int
		dryRun    bool
	)

	rootCmd := &cobra.Command{
		Use:   "dotsctl",
		Short: "Install dotfiles driven by metadata embedded in the files themselves",
		Long: `dotsctl installs configuration files whose installation instructions
live inside the files, in a small YAML block marked with :dotsctl:.
Point it at a directory or register your sources once, then re-run
install whenever the files change.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			style.DisableColorIfNotTerminal()
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Preview changes without executing them")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newInstallCmd(&verbosity, &dryRun))
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newMetaCmd())
	rootCmd.AddCommand(newPackagesCmd())

	return rootCmd
}

// initEnv loads the paths and configuration every command starts from
func initEnv() (*paths.Paths, *config.Config, error) {
	p, err := paths.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize paths: %w", err)
	}
	cfg, err := config.Load(p)
	if err != nil {
		return nil, nil, err
	}
	return p, cfg, nil
}

// resolveSources returns the ad-hoc sources when given, otherwise the
// registered ones
func resolveSources(args []string, p *paths.Paths) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	reg, err := registry.Load(filesystem.NewOS(), p)
	if err != nil {
		return nil, err
	}
	sources := reg.Sources()
	if len(sources) == 0 {
		return nil, errors.New(errors.ErrInvalidInput,
			"no sources given and none registered, run 'dotsctl add' first")
	}
	return sources, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including commit hash and build date`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dotsctl version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(out, "Built:  %s\n", version.Date)
			}
		},
	}
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>...",
		Short: "Register files or directories as dotfile sources",
		Long: `Add records the given paths in the source registry so that future
'dotsctl install' runs pick them up without arguments. Paths are
normalized to absolute form and must exist.`,
		Example: `  # Register your dotfiles checkout
  dotsctl add ~/dotfiles

  # Register a single file
  dotsctl add ~/dotfiles/bashrc.sh`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := initEnv()
			if err != nil {
				return err
			}

			reg, err := registry.Load(filesystem.NewOS(), p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			changed := false
			for _, arg := range args {
				added, err := reg.Add(arg)
				if err != nil {
					return err
				}
				if added {
					changed = true
					fmt.Fprintf(out, "added %s\n", arg)
				} else {
					fmt.Fprintf(out, "already registered %s\n", arg)
				}
			}

			if changed {
				if err := reg.Save(); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newInstallCmd(verbosity *int, dryRun *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "install [source...]",
		Short: "Install every file that carries dotsctl metadata",
		Long: `Install walks the given sources, or the registered ones when no
arguments are given, extracts the metadata block from each file and
executes its directives. Files are processed independently; a failure
in one never stops the others.`,
		Example: `  # Install from the registered sources
  dotsctl install

  # Install from an ad-hoc directory, without touching the registry
  dotsctl install ~/dotfiles

  # Preview without changing anything
  dotsctl install --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, cfg, err := initEnv()
			if err != nil {
				return err
			}

			sources, err := resolveSources(args, p)
			if err != nil {
				return err
			}

			mgr, err := packages.ForName(cfg.Packages.Manager)
			if err != nil {
				return err
			}

			log.Info().
				Strs("sources", sources).
				Bool("dry_run", *dryRun).
				Msg("Installing")

			summary := core.Install(core.InstallOptions{
				FS:      filesystem.NewOS(),
				Sources: sources,
				Config:  cfg,
				Manager: mgr,
				DryRun:  *dryRun,
			})

			out := cmd.OutOrStdout()
			if *dryRun {
				fmt.Fprintln(out, "DRY RUN MODE - no changes were made")
			}
			fmt.Fprint(out, style.RenderSummary(summary, *verbosity > 0))

			if summary.HasFailures() {
				return errors.Newf(errors.ErrFileInstall,
					"%d file(s) failed to install", summary.Failed)
			}
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := initEnv()
			if err != nil {
				return err
			}

			reg, err := registry.Load(filesystem.NewOS(), p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			sources := reg.Sources()
			if len(sources) == 0 {
				fmt.Fprintln(out, "no sources registered")
				return nil
			}
			for _, s := range sources {
				fmt.Fprintln(out, s)
			}
			return nil
		},
	}
}

func newMetaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "meta [source...]",
		Short: "Show the parsed metadata of every annotated file",
		Long: `Meta walks the sources like install does, but only prints the parsed
directives as YAML instead of executing them. Useful to check what a
metadata block actually resolves to.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, cfg, err := initEnv()
			if err != nil {
				return err
			}

			sources, err := resolveSources(args, p)
			if err != nil {
				return err
			}

			found := core.CollectDirectives(core.ScanOptions{
				FS:             filesystem.NewOS(),
				Sources:        sources,
				Window:         cfg.Scan.Window,
				IgnorePatterns: cfg.Ignore.Patterns,
			})

			directives := make(map[string]*types.Directive)
			for _, f := range found {
				if f.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", f.Path, f.Err)
					continue
				}
				directives[f.Path] = f.Directive
			}

			data, err := yaml.Marshal(directives)
			if err != nil {
				return errors.Wrap(err, errors.ErrInternal, "failed to render metadata")
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newPackagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "packages [source...]",
		Short: "List every package the sources declare",
		Long: `Packages collects the dpkg lists from every annotated file, including
nested directives, and prints the deduplicated union one per line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, cfg, err := initEnv()
			if err != nil {
				return err
			}

			sources, err := resolveSources(args, p)
			if err != nil {
				return err
			}

			found := core.CollectDirectives(core.ScanOptions{
				FS:             filesystem.NewOS(),
				Sources:        sources,
				Window:         cfg.Scan.Window,
				IgnorePatterns: cfg.Ignore.Patterns,
			})

			var lists [][]string
			for _, f := range found {
				if f.Directive != nil {
					lists = append(lists, f.Directive.AllPackages())
				}
			}

			out := cmd.OutOrStdout()
			for _, name := range packages.Union(lists...) {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}
