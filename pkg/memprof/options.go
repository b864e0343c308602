package memprof

import (
	"github.com/jonboulle/clockwork"
)

// EnvEnableDecorator is the process-wide switch callers read at setup time.
// This package never reads it; see IsEnabled.
const EnvEnableDecorator = "ENABLE_MEMORY_PROFILING_DECORATOR"

// Options are injected by the caller (no env dependency in this package).
type Options struct {
	// Enabled is decided once, when a Binder is built. Flipping the
	// environment afterwards has no effect on operations already bound.
	Enabled bool

	Sink  Sink
	Heap  HeapReader
	Clock clockwork.Clock
}

// IsEnabled reports whether a raw flag value turns instrumentation on.
// Only the exact literal "true" does; "1", "TRUE" and "" do not.
func IsEnabled(value string) bool {
	return value == "true"
}

// Validate applies safe defaults and returns a normalized copy.
func (o Options) Validate() Options {
	out := o

	if out.Sink == nil {
		out.Sink = NopSink{}
	}
	if out.Heap == nil {
		out.Heap = RuntimeHeap
	}
	if out.Clock == nil {
		out.Clock = clockwork.NewRealClock()
	}
	return out
}
