package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"surgelint/internal/baseline"
	"surgelint/internal/config"
	"surgelint/internal/diag"
	"surgelint/internal/diagfmt"
	"surgelint/internal/driver"
	"surgelint/internal/fix"
	"surgelint/internal/lint"
	"surgelint/internal/lint/deref"
	"surgelint/internal/observ"
	"surgelint/internal/trace"
	"surgelint/internal/ui"
	"surgelint/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [paths]",
	Short: "Lint IR bundles and report findings",
	Long:  "Discover .sgir bundles under the given paths (default: the current directory), run every enabled lint and report findings with suggested fixes.",
	Args:  cobra.ArbitraryArgs,
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Bool("fix", false, "apply always-safe fixes")
	checkCmd.Flags().Bool("fix-all", false, "also apply fixes that rely on heuristics")
	checkCmd.Flags().Int("jobs", 0, "max parallel bundle analyses (0 = config, then GOMAXPROCS)")
	checkCmd.Flags().Bool("no-cache", false, "bypass the findings cache")
	checkCmd.Flags().Bool("watch", false, "re-run whenever a bundle or the config changes")
	checkCmd.Flags().String("baseline", "", "baseline file of recorded findings to ignore")
	checkCmd.Flags().String("stale", "skip", "stale bundle handling (skip|error)")
}

// newRegistry assembles the built-in pass set.
func newRegistry() *lint.Registry {
	reg := lint.NewRegistry()
	reg.MustRegister(deref.New())
	return reg
}

func lintNames(reg *lint.Registry) []string {
	lints := reg.Lints()
	names := make([]string, len(lints))
	for i, l := range lints {
		names[i] = l.Name
	}
	return names
}

type checkSettings struct {
	format     string
	applyFixes bool
	fixAll     bool
	jobs       int
	noCache    bool
	watch      bool
	staleError bool

	quiet   bool
	timings bool
	maxDiag int
	color   bool
	tui     bool

	cfg      *config.Config
	registry *lint.Registry
	baseline string
}

func readCheckSettings(cmd *cobra.Command) (*checkSettings, error) {
	s := &checkSettings{}
	flags := cmd.Flags()
	var err error
	if s.format, err = flags.GetString("format"); err != nil {
		return nil, err
	}
	if s.format != "pretty" && s.format != "json" {
		return nil, fmt.Errorf("unsupported format %q (must be pretty or json)", s.format)
	}
	if s.applyFixes, err = flags.GetBool("fix"); err != nil {
		return nil, err
	}
	if s.fixAll, err = flags.GetBool("fix-all"); err != nil {
		return nil, err
	}
	if s.jobs, err = flags.GetInt("jobs"); err != nil {
		return nil, err
	}
	if s.noCache, err = flags.GetBool("no-cache"); err != nil {
		return nil, err
	}
	if s.watch, err = flags.GetBool("watch"); err != nil {
		return nil, err
	}
	if s.baseline, err = flags.GetString("baseline"); err != nil {
		return nil, err
	}
	stale, err := flags.GetString("stale")
	if err != nil {
		return nil, err
	}
	switch stale {
	case "skip":
	case "error":
		s.staleError = true
	default:
		return nil, fmt.Errorf("invalid --stale value %q (expected skip|error)", stale)
	}

	persistent := cmd.Root().PersistentFlags()
	if s.quiet, err = persistent.GetBool("quiet"); err != nil {
		return nil, err
	}
	if s.timings, err = persistent.GetBool("timings"); err != nil {
		return nil, err
	}
	if s.maxDiag, err = persistent.GetInt("max-diagnostics"); err != nil {
		return nil, err
	}
	colorValue, err := persistent.GetString("color")
	if err != nil {
		return nil, err
	}
	cm, err := readColorMode(colorValue)
	if err != nil {
		return nil, err
	}
	s.color = useColor(cm)
	color.NoColor = !s.color

	uiValue, err := persistent.GetString("ui")
	if err != nil {
		return nil, err
	}
	um, err := readUIMode(uiValue)
	if err != nil {
		return nil, err
	}
	// прогресс-бар только для pretty-вывода без watch
	s.tui = shouldUseTUI(um) && s.format == "pretty" && !s.quiet && !s.watch
	return s, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	settings, err := readCheckSettings(cmd)
	if err != nil {
		return exitWith(2, err)
	}

	traceCleanup, err := setupTracing(cmd)
	if err != nil {
		return exitWith(2, err)
	}
	defer traceCleanup()
	profCleanup, err := setupProfiling(cmd)
	if err != nil {
		return exitWith(2, err)
	}
	defer profCleanup()

	cfg, err := config.Discover(".")
	if err != nil {
		return exitWith(2, err)
	}
	if err := cfg.CheckVersion(version.Number); err != nil {
		return exitWith(2, err)
	}
	settings.cfg = cfg
	settings.registry = newRegistry()
	if err := cfg.CheckLintNames(lintNames(settings.registry)); err != nil {
		return exitWith(2, err)
	}

	ctx := cmd.Context()
	if settings.watch {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer cancel()
	}

	code, err := checkOnce(ctx, cmd, args, settings)
	if err != nil {
		return err
	}
	if !settings.watch {
		if code != 0 {
			return exitWith(code, nil)
		}
		return nil
	}

	bundles, err := driver.Discover(args)
	if err != nil {
		return exitWith(2, err)
	}
	watched := bundles
	if cfg.Path != "" {
		watched = append(watched, cfg.Path)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "watching for changes, ^C to stop")
	err = driver.Watch(ctx, watched, 0, func() {
		fmt.Fprintln(cmd.ErrOrStderr(), "--- change detected, re-running ---")
		if _, err := checkOnce(ctx, cmd, args, settings); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "surgelint: %v\n", err)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return exitWith(3, err)
	}
	return nil
}

// checkOnce performs one full run and renders it. The returned code follows
// the process exit convention.
func checkOnce(ctx context.Context, cmd *cobra.Command, args []string, s *checkSettings) (int, error) {
	timer := observ.NewTimer()

	var bl *baseline.Baseline
	if s.baseline != "" {
		// перечитываем на каждый прогон: baseline расходуется при фильтрации
		loaded, err := baseline.Load(s.baseline)
		if err != nil {
			return 0, exitWith(2, err)
		}
		bl = loaded
	}

	opts := driver.Options{
		Registry:       s.registry,
		Config:         s.cfg,
		Tool:           version.Number,
		Jobs:           s.jobs,
		MaxDiagnostics: s.maxDiag,
		NoCache:        s.noCache,
		StaleError:     s.staleError,
		Baseline:       bl,
		Timer:          timer,
		Tracer:         trace.FromContext(ctx),
	}

	var res *driver.Result
	var runErr error
	if s.tui {
		res, runErr = runWithProgress(ctx, args, opts)
	} else {
		res, runErr = driver.Run(ctx, args, opts)
	}
	if runErr != nil {
		if strings.Contains(runErr.Error(), diag.DriverNoInput.ID()) {
			return 0, exitWith(2, runErr)
		}
		return 0, exitWith(3, runErr)
	}

	phase := timer.Begin("render")
	code := renderResult(cmd, res, s)
	timer.End(phase, "")

	if s.applyFixes || s.fixAll {
		if err := applyResultFixes(cmd, res, s); err != nil {
			return 0, err
		}
	}

	if s.timings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	return code, nil
}

// runWithProgress drives the lint run behind a Bubble Tea progress model.
func runWithProgress(ctx context.Context, args []string, opts driver.Options) (*driver.Result, error) {
	bundles, err := driver.Discover(args)
	if err != nil {
		return nil, err
	}

	events := make(chan driver.Event, 256)
	opts.Events = events

	type outcome struct {
		res *driver.Result
		err error
	}
	outcomeCh := make(chan outcome, 1)
	go func() {
		res, err := driver.Run(ctx, bundles, opts)
		outcomeCh <- outcome{res: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("surgelint check", bundles, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	out := <-outcomeCh
	if uiErr != nil && out.err == nil {
		return out.res, uiErr
	}
	return out.res, out.err
}

// renderResult prints findings and the summary, returning the exit code.
func renderResult(cmd *cobra.Command, res *driver.Result, s *checkSettings) int {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	code := 0
	internal := false
	for i := range res.Modules {
		m := &res.Modules[i]
		if m.Skipped {
			if !s.quiet {
				fmt.Fprintf(errOut, "surgelint: skipped stale bundle %s (re-run the compiler)\n", m.Path)
			}
			continue
		}
		if m.Err != nil {
			fmt.Fprintf(errOut, "surgelint: %v\n", m.Err)
			if strings.Contains(m.Err.Error(), diag.DriverInternal.ID()) {
				internal = true
			}
			continue
		}
	}

	if s.format == "json" {
		if err := renderJSON(out, res, s); err != nil {
			fmt.Fprintf(errOut, "surgelint: %v\n", err)
			internal = true
		}
	} else {
		renderPretty(out, res, s)
	}

	if !s.quiet && s.format == "pretty" {
		summary := fmt.Sprintf("%d findings across %d bundles", res.FindingCount(), len(res.Modules))
		var extras []string
		if res.Cached > 0 {
			extras = append(extras, fmt.Sprintf("%d cached", res.Cached))
		}
		if res.Skipped > 0 {
			extras = append(extras, fmt.Sprintf("%d stale", res.Skipped))
		}
		if res.Baselined > 0 {
			extras = append(extras, fmt.Sprintf("%d baselined", res.Baselined))
		}
		if len(extras) > 0 {
			summary += " (" + strings.Join(extras, ", ") + ")"
		}
		fmt.Fprintln(errOut, summary)
	}

	switch {
	case internal:
		code = 3
	case res.Failed > 0:
		code = 2
	case res.HasErrors():
		code = 1
	}
	return code
}

func renderPretty(out io.Writer, res *driver.Result, s *checkSettings) {
	opts := diagfmt.PrettyOpts{
		Color:       s.color,
		Context:     1,
		PathMode:    diagfmt.PathModeAuto,
		ShowNotes:   true,
		ShowFixes:   true,
		ShowPreview: false,
	}
	for i := range res.Modules {
		m := &res.Modules[i]
		if m.Bundle == nil || len(m.Findings) == 0 {
			continue
		}
		bag := diag.NewBag(len(m.Findings))
		for _, d := range m.Findings {
			bag.Add(d)
		}
		diagfmt.Pretty(out, bag, m.Bundle.Files, opts)
		if m.Dropped > 0 {
			fmt.Fprintf(out, "... and %d more findings in %s\n", m.Dropped, m.Path)
		}
	}
}

func renderJSON(out io.Writer, res *driver.Result, s *checkSettings) error {
	opts := diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         diagfmt.PathModeAuto,
		IncludeNotes:     true,
		IncludeFixes:     true,
		IncludePreviews:  false,
	}
	combined := diagfmt.DiagnosticsOutput{Diagnostics: []diagfmt.DiagnosticJSON{}}
	for i := range res.Modules {
		m := &res.Modules[i]
		if m.Bundle == nil || len(m.Findings) == 0 {
			continue
		}
		bag := diag.NewBag(len(m.Findings))
		for _, d := range m.Findings {
			bag.Add(d)
		}
		part, err := diagfmt.BuildDiagnosticsOutput(bag, m.Bundle.Files, opts)
		if err != nil {
			return err
		}
		combined.Diagnostics = append(combined.Diagnostics, part.Diagnostics...)
	}
	combined.Count = len(combined.Diagnostics)
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(combined)
}

// applyResultFixes applies fixes per module, since every bundle carries its
// own file set.
func applyResultFixes(cmd *cobra.Command, res *driver.Result, s *checkSettings) error {
	allowHeuristics := s.fixAll || s.cfg.FixFloor >= diag.FixApplicabilitySafeWithHeuristics
	opts := fix.ApplyOptions{
		Mode:            fix.ApplyModeAll,
		AllowHeuristics: allowHeuristics,
	}
	applied := 0
	for i := range res.Modules {
		m := &res.Modules[i]
		if m.Bundle == nil || len(m.Findings) == 0 {
			continue
		}
		result, err := fix.Apply(m.Bundle.Files, m.Findings, opts)
		if err != nil && !errors.Is(err, fix.ErrNoFixes) {
			return exitWith(3, fmt.Errorf("apply fixes for %s: %w", m.Path, err))
		}
		if result != nil {
			applied += len(result.Applied)
			for _, change := range result.FileChanges {
				if !s.quiet {
					fmt.Fprintf(cmd.ErrOrStderr(), "fixed %s (%d edits)\n", change.Path, change.EditCount)
				}
			}
		}
	}
	if !s.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "applied %d fix(es); affected bundles are stale until the compiler re-runs\n", applied)
	}
	return nil
}
