package orchestrator

import "github.com/goliatone/go-scaffold/pkg/templates"

// EventType names the lifecycle events a scaffold run emits.
type EventType string

const (
	EventScaffoldStarted   EventType = "scaffoldStarted"
	EventFileGenerated     EventType = "fileGenerated"
	EventScaffoldCompleted EventType = "scaffoldCompleted"
	EventScaffoldFailed    EventType = "scaffoldFailed"
)

// Event is one lifecycle notification. File is set for fileGenerated,
// Result for scaffoldCompleted, and Err carries the original error for
// scaffoldFailed.
type Event struct {
	Type   EventType
	Spec   Spec
	File   *templates.GeneratedFile
	Result *Result
	Err    error
}

// Listener receives lifecycle events. Listeners run synchronously on the
// scaffolding goroutine; keep them fast.
type Listener func(Event)

// On registers a lifecycle listener. Not safe to call concurrently with
// Scaffold; wire listeners before starting runs.
func (o *Orchestrator) On(listener Listener) {
	if listener == nil {
		return
	}
	o.listeners = append(o.listeners, listener)
}

func (o *Orchestrator) emit(event Event) {
	for _, listener := range o.listeners {
		listener(event)
	}
}
