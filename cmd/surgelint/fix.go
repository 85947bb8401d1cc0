package main

// todo: tui mode
// флаг --interactive/--tui включает интерактивный режим подтверждения правок

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"surgelint/internal/config"
	"surgelint/internal/diag"
	"surgelint/internal/driver"
	"surgelint/internal/fix"
	"surgelint/internal/version"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <bundle.sgir|directory>",
	Short: "Apply suggested fixes to the lint sources of a bundle",
	Long:  "Run the lints, surface available fixes, and apply them to the source files according to the chosen strategy. Bundles become stale afterwards and need a compiler re-run.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply all safe fixes")
	fixCmd.Flags().Bool("once", false, "apply the first available fix (default)")
	fixCmd.Flags().String("id", "", "apply fix with a specific identifier")
	fixCmd.Flags().Bool("heuristics", false, "also apply fixes that rely on heuristics")
}

func runFix(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	applyAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	applyOnceFlag, err := cmd.Flags().GetBool("once")
	if err != nil {
		return err
	}
	targetID, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}
	heuristics, err := cmd.Flags().GetBool("heuristics")
	if err != nil {
		return err
	}

	if targetID != "" && (applyAll || applyOnceFlag) {
		return exitWith(2, fmt.Errorf("--id cannot be combined with --all or --once"))
	}
	if applyAll && applyOnceFlag {
		return exitWith(2, fmt.Errorf("--all and --once are mutually exclusive"))
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return exitWith(2, err)
	}
	defer cleanup()

	cfg, err := config.Discover(".")
	if err != nil {
		return exitWith(2, err)
	}
	if err := cfg.CheckVersion(version.Number); err != nil {
		return exitWith(2, err)
	}
	registry := newRegistry()
	if err := cfg.CheckLintNames(lintNames(registry)); err != nil {
		return exitWith(2, err)
	}

	info, err := os.Stat(targetPath)
	if err != nil {
		return exitWith(2, fmt.Errorf("fix: %w", err))
	}
	// fix id уникален только внутри одного бандла
	if info.IsDir() && targetID != "" {
		return exitWith(2, fmt.Errorf("fix: --id can only be used with a single bundle"))
	}

	mode := fix.ApplyModeOnce
	if targetID != "" {
		mode = fix.ApplyModeID
	} else if applyAll {
		mode = fix.ApplyModeAll
	}
	applyOpts := fix.ApplyOptions{
		Mode:            mode,
		TargetID:        targetID,
		AllowHeuristics: heuristics || cfg.FixFloor >= diag.FixApplicabilitySafeWithHeuristics,
	}

	res, err := driver.Run(cmd.Context(), []string{targetPath}, driver.Options{
		Registry:       registry,
		Config:         cfg,
		Tool:           version.Number,
		MaxDiagnostics: maxDiagnostics,
	})
	if err != nil {
		return exitWith(2, fmt.Errorf("fix: %w", err))
	}

	combined := &fix.ApplyResult{}
	var lastErr error
	for i := range res.Modules {
		m := &res.Modules[i]
		if m.Err != nil {
			return exitWith(2, fmt.Errorf("fix: %w", m.Err))
		}
		if m.Skipped {
			fmt.Fprintf(cmd.ErrOrStderr(), "surgelint: skipped stale bundle %s\n", m.Path)
			continue
		}
		if m.Bundle == nil || len(m.Findings) == 0 {
			continue
		}
		applied, applyErr := fix.Apply(m.Bundle.Files, m.Findings, applyOpts)
		if applied != nil {
			combined.Applied = append(combined.Applied, applied.Applied...)
			combined.Skipped = append(combined.Skipped, applied.Skipped...)
			combined.FileChanges = append(combined.FileChanges, applied.FileChanges...)
		}
		if applyErr != nil && !errors.Is(applyErr, fix.ErrNoFixes) {
			lastErr = applyErr
			break
		}
		// в режимах once/id останавливаемся после первого применения
		if mode != fix.ApplyModeAll && len(combined.Applied) > 0 {
			break
		}
	}
	return handleApplyResult(cmd, combined, lastErr)
}

func handleApplyResult(cmd *cobra.Command, res *fix.ApplyResult, applyErr error) error {
	if res == nil {
		return applyErr
	}
	out := cmd.OutOrStdout()

	if len(res.Applied) > 0 {
		fmt.Fprintf(out, "Applied %d fix(es):\n", len(res.Applied))
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			fmt.Fprintf(out, "  %s [%s] - %s (%d edits, %s)\n",
				item.Title, item.ID, location, item.EditCount, item.Applicability.String())
		}
	}

	if len(res.FileChanges) > 0 {
		fmt.Fprintln(out, "Updated files:")
		for _, change := range res.FileChanges {
			fmt.Fprintf(out, "  %s (%d edits)\n", change.Path, change.EditCount)
		}
		fmt.Fprintln(out, "Re-run the compiler to refresh the affected bundles.")
	}

	if len(res.Skipped) > 0 {
		fmt.Fprintln(out, "Skipped fixes:")
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			if skip.Title != "" {
				fmt.Fprintf(out, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
			} else {
				fmt.Fprintf(out, "  [%s]: %s\n", id, skip.Reason)
			}
		}
	}

	if applyErr != nil {
		return exitWith(3, applyErr)
	}
	if len(res.Applied) == 0 {
		fmt.Fprintln(out, "No applicable fixes found.")
	}
	return nil
}
