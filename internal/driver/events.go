package driver

import "time"

// Stage describes a high-level phase of processing one bundle.
type Stage string

const (
	// StageLoad is the bundle decode and source verification stage.
	StageLoad Stage = "load"
	// StageAnalyze is the lint pass stage.
	StageAnalyze Stage = "analyze"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the bundle is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the bundle is currently being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the bundle is done.
	StatusDone Status = "done"
	// StatusCached indicates findings came from the cache.
	StatusCached Status = "cached"
	// StatusSkipped indicates a stale bundle was skipped.
	StatusSkipped Status = "skipped"
	// StatusError indicates the bundle failed.
	StatusError Status = "error"
)

// Event reports progress for one bundle (or the overall run when Path is
// empty).
type Event struct {
	Path    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}
