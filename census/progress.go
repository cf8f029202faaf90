package census

import "time"

// Stage identifies a phase of a data request.
type Stage string

const (
	StageCacheCheck    Stage = "cache_check"
	StageFetchData     Stage = "fetch_data"
	StageFetchGeometry Stage = "fetch_geometry"
	StageNormalize     Stage = "normalize"
	StageJoin          Stage = "join"
	StageCacheWrite    Stage = "cache_write"
	StageDone          Stage = "done"
)

// ProgressEvent reports the completion of a stage within a request.
// RequestID is stable for all events of one Fetch call.
type ProgressEvent struct {
	RequestID string
	Dataset   string
	Stage     Stage
	Rows      int
	FromCache bool
	Elapsed   time.Duration
}

// Observer receives progress events. Implementations must be fast; they are
// called synchronously on the request path.
type Observer interface {
	Progress(ProgressEvent)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ProgressEvent)

// Progress implements Observer.
func (f ObserverFunc) Progress(ev ProgressEvent) { f(ev) }

type nopObserver struct{}

func (nopObserver) Progress(ProgressEvent) {}
