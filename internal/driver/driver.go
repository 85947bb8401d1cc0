// Package driver discovers IR bundles, loads them, runs the lint registry
// over each module in parallel and reuses cached findings when nothing
// relevant changed.
package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"surgelint/internal/baseline"
	"surgelint/internal/bundle"
	"surgelint/internal/config"
	"surgelint/internal/diag"
	"surgelint/internal/lint"
	"surgelint/internal/observ"
	"surgelint/internal/trace"
)

const defaultMaxDiagnostics = 256

// Options configures one driver run.
type Options struct {
	// Registry holds the passes to run. Required.
	Registry *lint.Registry
	// Config is the loaded surgelint.toml; nil means defaults.
	Config *config.Config
	// Tool is the tool version, part of the findings cache key.
	Tool string

	// Jobs caps parallelism; 0 falls back to config, then GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps findings per module.
	MaxDiagnostics int
	// NoCache bypasses the findings cache entirely.
	NoCache bool
	// StaleError escalates stale bundles instead of skipping them.
	StaleError bool

	// Baseline drops recorded findings; nil filters nothing.
	Baseline *baseline.Baseline

	// Timer, Tracer and Events are optional observability hooks.
	Timer  *observ.Timer
	Tracer trace.Tracer
	Events chan<- Event
}

// ModuleResult is the outcome for one bundle.
type ModuleResult struct {
	Path   string
	Bundle *bundle.Bundle

	// Findings are sorted, fix-materialized and baseline-filtered.
	Findings   []diag.Diagnostic
	Dropped    int
	Suppressed int
	Baselined  int

	FromCache bool
	// Skipped marks a stale bundle that was left out of the run.
	Skipped bool
	Err     error
}

// HasErrors reports whether any finding is at error severity.
func (r *ModuleResult) HasErrors() bool {
	for i := range r.Findings {
		if r.Findings[i].Severity >= diag.SevError {
			return true
		}
	}
	return false
}

// Result aggregates a whole run.
type Result struct {
	Modules   []ModuleResult
	Cached    int
	Skipped   int
	Failed    int
	Baselined int
}

// FindingCount sums findings across modules.
func (r *Result) FindingCount() int {
	n := 0
	for i := range r.Modules {
		n += len(r.Modules[i].Findings)
	}
	return n
}

// HasErrors reports whether any module has an error-severity finding.
func (r *Result) HasErrors() bool {
	for i := range r.Modules {
		if r.Modules[i].HasErrors() {
			return true
		}
	}
	return false
}

func (o *Options) emit(ev Event) {
	if o.Events != nil {
		o.Events <- ev
	}
}

// Run lints every bundle under the given paths.
func Run(ctx context.Context, paths []string, opts Options) (*Result, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("%s: no lint registry", diag.DriverInternal.ID())
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	timer := opts.Timer
	if timer == nil {
		timer = observ.NewTimer()
	}
	tr := opts.Tracer
	if tr == nil {
		tr = trace.FromContext(ctx)
	}

	runSpan := trace.Begin(tr, trace.ScopeDriver, "lint", 0)

	phase := timer.Begin("discover")
	bundles, err := Discover(paths)
	timer.End(phase, fmt.Sprintf("%d bundles", len(bundles)))
	if err != nil {
		runSpan.End("discover failed")
		return nil, err
	}
	if len(bundles) == 0 {
		runSpan.End("no input")
		return nil, fmt.Errorf("%s: no %s bundles under the given paths", diag.DriverNoInput.ID(), bundle.Ext)
	}

	var cache *FindingsCache
	if !opts.NoCache {
		// кэш — ускорение; если открыть не удалось, просто работаем без него
		if c, err := OpenFindingsCache("surgelint"); err == nil {
			cache = c
		}
	}

	lints := opts.Registry.Lints()
	lintNames := make([]string, len(lints))
	for i, l := range lints {
		lintNames[i] = l.Name
	}

	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = defaultMaxDiagnostics
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = cfg.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	for _, path := range bundles {
		opts.emit(Event{Path: path, Stage: StageLoad, Status: StatusQueued})
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]ModuleResult, len(bundles))

	phase = timer.Begin("analyze")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(bundles)))
	for i, path := range bundles {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = opts.analyzeOne(tr, cache, runSpan.ID(), path, cfg, lintNames, maxDiag)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		runSpan.End("cancelled")
		return nil, err
	}

	res := &Result{Modules: results}
	for i := range res.Modules {
		r := &res.Modules[i]
		// baseline consumes entries, so filtering stays sequential and
		// deterministic in bundle path order
		if opts.Baseline != nil && r.Bundle != nil {
			kept, dropped := opts.Baseline.Filter(r.Findings, r.Bundle.Files)
			r.Findings = kept
			r.Baselined = dropped
			res.Baselined += dropped
		}
		switch {
		case r.Skipped:
			res.Skipped++
		case r.Err != nil:
			res.Failed++
		case r.FromCache:
			res.Cached++
		}
	}
	timer.End(phase, fmt.Sprintf("%d bundles, %d cached, %d skipped", len(bundles), res.Cached, res.Skipped))

	runSpan.End(fmt.Sprintf("%d findings", res.FindingCount()))
	return res, nil
}

func (o *Options) analyzeOne(tr trace.Tracer, cache *FindingsCache, parent uint64, path string, cfg *config.Config, lintNames []string, maxDiag int) ModuleResult {
	res := ModuleResult{Path: path}
	start := time.Now()
	span := trace.Begin(tr, trace.ScopeModule, path, parent)

	o.emit(Event{Path: path, Stage: StageLoad, Status: StatusWorking})
	b, err := bundle.Load(path)
	if err != nil {
		if errors.Is(err, bundle.ErrStale) && !o.StaleError {
			res.Skipped = true
			res.Err = err
			o.emit(Event{Path: path, Stage: StageLoad, Status: StatusSkipped, Err: err, Elapsed: time.Since(start)})
			span.End("stale")
			return res
		}
		res.Err = err
		o.emit(Event{Path: path, Stage: StageLoad, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		span.End("load failed")
		return res
	}
	res.Bundle = b

	key := CacheKey(b.Digest, cfg.Digest(), o.Tool, lintNames)
	if cache != nil {
		var payload findingsPayload
		if ok, err := cache.Get(key, &payload); err == nil && ok {
			res.Findings = payload.Findings
			res.Suppressed = payload.Suppressed
			res.FromCache = true
			o.emit(Event{Path: path, Stage: StageAnalyze, Status: StatusCached, Elapsed: time.Since(start)})
			span.End("cache hit")
			return res
		}
	}

	o.emit(Event{Path: path, Stage: StageAnalyze, Status: StatusWorking})
	bag := diag.NewBag(maxDiag)
	lctx := lint.NewContext(b.Module, b.Files, diag.BagReporter{Bag: bag})
	for name, sev := range cfg.Severity {
		lctx.SetSeverity(name, sev)
	}
	for _, name := range cfg.Disabled {
		lctx.Disable(name)
	}
	if err := o.Registry.Run(lctx); err != nil {
		res.Err = fmt.Errorf("%s: %w", diag.DriverInternal.ID(), err)
		o.emit(Event{Path: path, Stage: StageAnalyze, Status: StatusError, Err: res.Err, Elapsed: time.Since(start)})
		span.End("pass failed")
		return res
	}

	bag.Sort()
	items := bag.Items()
	fctx := diag.FixBuildContext{FileSet: b.Files}
	for i := range items {
		// thunks cannot be cached or rendered, resolve them now; a fix whose
		// thunk fails is dropped, the finding stays
		fixes, err := diag.MaterializeFixes(fctx, items[i].Fixes)
		if err != nil {
			fixes = nil
		}
		items[i].Fixes = fixes
	}
	res.Findings = items
	res.Dropped = bag.Dropped()
	res.Suppressed = lctx.SuppressedCount()

	if cache != nil {
		_ = cache.Put(key, &findingsPayload{
			Schema:     cacheSchemaVersion,
			Findings:   res.Findings,
			Suppressed: res.Suppressed,
		})
	}
	o.emit(Event{Path: path, Stage: StageAnalyze, Status: StatusDone, Elapsed: time.Since(start)})
	span.End(fmt.Sprintf("%d findings", len(items)))
	return res
}
