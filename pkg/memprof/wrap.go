package memprof

import (
	"fmt"
	"reflect"
	"time"

	"github.com/jonboulle/clockwork"
)

// Wrapper produces measuring replacements for funcs. It holds no per-call
// state; every invocation snapshots into its own locals.
type Wrapper struct {
	sink  Sink
	heap  HeapReader
	clock clockwork.Clock
}

// NewWrapper builds a Wrapper. opts.Enabled is ignored here: a Wrapper
// always wraps, and gating is the Binder's job.
func NewWrapper(opts Options) *Wrapper {
	o := opts.Validate()
	return &Wrapper{
		sink:  o.Sink,
		heap:  o.Heap,
		clock: o.Clock,
	}
}

// snapshot is the "before" half of one invocation.
type snapshot struct {
	startMB float64
	startAt time.Time
}

func (w *Wrapper) start() snapshot {
	return snapshot{
		startMB: bytesToMB(w.heap()),
		startAt: w.clock.Now(),
	}
}

// end takes the "after" half and computes the deltas.
func (w *Wrapper) end(name string, kind Kind, s snapshot) Record {
	endMB := bytesToMB(w.heap())
	elapsed := w.clock.Since(s.startAt)

	return Record{
		Name:          name,
		StartMemoryMB: s.startMB,
		EndMemoryMB:   endMB,
		DeltaMemoryMB: endMB - s.startMB,
		DurationMs:    elapsed.Milliseconds(),
		Kind:          kind,
	}
}

// Wrap returns a func with fn's exact type that measures every successful
// call and reports it under name. kind must come from Classify on the
// original, never on an already wrapped value.
//
// Panics from fn propagate untouched. A trailing non-nil error (sync) or a
// rejected future (async) is passed back unchanged and produces no record.
func (w *Wrapper) Wrap(name string, fn any, kind Kind) any {
	t := funcType(fn)
	orig := reflect.ValueOf(fn)

	var impl func([]reflect.Value) []reflect.Value
	switch kind {
	case KindSync:
		impl = w.syncImpl(name, t, orig)
	case KindAsync:
		if classifyType(t) != KindAsync {
			panic(fmt.Sprintf("memprof: %s (%s) does not return a *Future", name, t))
		}
		impl = w.asyncImpl(name, orig)
	default:
		panic(fmt.Sprintf("memprof: unknown kind %s", kind))
	}
	return reflect.MakeFunc(t, impl).Interface()
}

func (w *Wrapper) syncImpl(name string, t reflect.Type, orig reflect.Value) func([]reflect.Value) []reflect.Value {
	return func(args []reflect.Value) []reflect.Value {
		s := w.start()
		out := call(orig, args)
		if failed(t, out) {
			return out
		}
		w.sink.Info(w.end(name, KindSync, s))
		return out
	}
}

func (w *Wrapper) asyncImpl(name string, orig reflect.Value) func([]reflect.Value) []reflect.Value {
	return func(args []reflect.Value) []reflect.Value {
		s := w.start()
		out := call(orig, args)
		if out[0].IsNil() {
			return out
		}
		next := out[0].Interface().(deferred).chain(func(err error) {
			if err != nil {
				return
			}
			w.sink.Warn(w.end(name, KindAsync, s))
		})
		return []reflect.Value{reflect.ValueOf(next)}
	}
}

func call(fn reflect.Value, args []reflect.Value) []reflect.Value {
	if fn.Type().IsVariadic() {
		return fn.CallSlice(args)
	}
	return fn.Call(args)
}

func failed(t reflect.Type, out []reflect.Value) bool {
	n := len(out)
	return n > 0 && t.Out(n-1) == errorType && !out[n-1].IsNil()
}

// Wrap classifies fn, names it after its declaration and wraps it.
func Wrap[F any](w *Wrapper, fn F) F {
	return WrapAs(w, fn, Classify(fn))
}

// WrapAs wraps fn with an explicit kind.
func WrapAs[F any](w *Wrapper, fn F, kind Kind) F {
	return w.Wrap(FuncName(fn), fn, kind).(F)
}
