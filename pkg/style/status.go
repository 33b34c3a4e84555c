// Package style renders install results for the terminal.
package style

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/dotsctl/pkg/types"
)

// StatusStyle returns the appropriate pterm style for a file status
func StatusStyle(status types.FileStatus) *pterm.Style {
	switch status {
	case types.FileInstalled:
		return pterm.NewStyle(pterm.FgGreen)
	case types.FileFailed:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// DisableColorIfNotTerminal turns pterm color off when stdout is not a
// TTY, so piped output stays clean
func DisableColorIfNotTerminal() {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		pterm.DisableColor()
	}
}

// RenderFileResult renders a single file result line
func RenderFileResult(r types.FileResult) string {
	label := fmt.Sprintf("%-9s", string(r.Status))
	styled := StatusStyle(r.Status).Sprint(label)

	var note string
	switch r.Status {
	case types.FileFailed:
		note = r.Err.Error()
	case types.FileInstalled:
		done := 0
		for _, op := range r.Operations {
			if op.Status == types.StatusDone {
				done++
			}
		}
		switch {
		case done == 0 && len(r.Operations) > 0:
			note = "no changes"
		case done == 1:
			note = "1 action"
		default:
			note = fmt.Sprintf("%d actions", done)
		}
	case types.FileSkipped:
		note = "no metadata"
	}

	line := fmt.Sprintf("  %s %s : %s", styled, r.Path, note)
	if len(r.MissingPackages) > 0 {
		line += pterm.NewStyle(pterm.FgYellow).Sprintf(
			" (missing packages: %s)", strings.Join(r.MissingPackages, ", "))
	}
	return line
}

// RenderSummary renders the per-file lines followed by the run totals.
// Skipped files only appear in verbose mode; they are the common case.
func RenderSummary(s *types.RunSummary, verbose bool) string {
	var b strings.Builder

	for _, r := range s.Results {
		if r.Status == types.FileSkipped && !verbose {
			continue
		}
		b.WriteString(RenderFileResult(r) + "\n")
	}

	totals := fmt.Sprintf("%d installed, %d skipped, %d failed",
		s.Installed, s.Skipped, s.Failed)
	if s.HasFailures() {
		totals = pterm.NewStyle(pterm.FgRed).Sprint(totals)
	}
	b.WriteString(totals + "\n")
	return b.String()
}
