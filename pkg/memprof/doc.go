// Package memprof wraps funcs so that every successful call logs its wall-clock
// duration and the heap-used delta across it, without the caller or the
// wrapped body knowing.
//
// A call is synchronous unless its only result is a *Future; async calls are
// measured until the future settles. Binder applies the wrapping to one
// operation or to every operation of a component, once, at setup time, and
// only when Options.Enabled is set.
//
//	b := memprof.NewBinder(memprof.Options{Enabled: enabled, Sink: memprof.NewZapSink(log)})
//	svc = memprof.BindStruct(b, svc)
package memprof
