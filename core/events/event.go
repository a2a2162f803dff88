package events

// Event is a structured state change emitted by the ledger.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (RPC, indexers). The
// ledger never consumes its own events.
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies Emitter while discarding everything. Components use
// it as the default so event wiring stays optional.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Recorder is an Emitter that retains every event it sees, newest last. It is
// used by tests and by the RPC event feed.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Emit(evt Event) {
	if evt == nil {
		return
	}
	r.Events = append(r.Events, evt)
}
