package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"surgelint/internal/baseline"
	"surgelint/internal/config"
	"surgelint/internal/driver"
	"surgelint/internal/version"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Manage the findings baseline",
	Long:  "A baseline records the current findings so that later runs only report new ones. Adopt it when introducing surgelint into an existing codebase.",
}

var baselineWriteCmd = &cobra.Command{
	Use:   "write [paths]",
	Short: "Record the current findings as the baseline",
	Args:  cobra.ArbitraryArgs,
	RunE:  runBaselineWrite,
}

func init() {
	baselineWriteCmd.Flags().String("output", "surgelint-baseline.yaml", "baseline file to write")
	baselineCmd.AddCommand(baselineWriteCmd)
}

func runBaselineWrite(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

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

	res, err := driver.Run(cmd.Context(), args, driver.Options{
		Registry: registry,
		Config:   cfg,
		Tool:     version.Number,
	})
	if err != nil {
		return exitWith(2, err)
	}

	var entries []baseline.Entry
	for i := range res.Modules {
		m := &res.Modules[i]
		if m.Err != nil {
			return exitWith(2, fmt.Errorf("baseline: %w", m.Err))
		}
		if m.Skipped {
			return exitWith(2, fmt.Errorf("baseline: bundle %s is stale, re-run the compiler first", m.Path))
		}
		if m.Bundle == nil {
			continue
		}
		entries = append(entries, baseline.Collect(m.Findings, m.Bundle.Files)...)
	}

	if err := baseline.Write(output, entries); err != nil {
		return exitWith(3, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d baseline entries to %s\n", len(entries), output)
	return nil
}
