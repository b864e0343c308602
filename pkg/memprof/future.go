package memprof

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
)

// Future is a value that settles later, exactly once, with (T, error).
// Functions returning a *Future are classified as KindAsync.
type Future[T any] struct {
	mu      sync.Mutex
	done    chan struct{}
	settled bool
	val     T
	err     error
	then    []func()
}

// PanicError is the rejection produced when a Go body panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("memprof: future body panicked: %v", e.Value)
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Go runs fn on its own goroutine and returns a future for its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		var (
			v   T
			err error
		)
		defer func() {
			if r := recover(); r != nil {
				var zero T
				v, err = zero, &PanicError{Value: r, Stack: debug.Stack()}
			}
			f.settle(v, err)
		}()
		v, err = fn()
	}()
	return f
}

// NewPromise returns an unsettled future plus its resolve/reject functions.
// Only the first call to either has an effect.
func NewPromise[T any]() (*Future[T], func(T), func(error)) {
	f := newFuture[T]()
	resolve := func(v T) { f.settle(v, nil) }
	reject := func(err error) {
		var zero T
		f.settle(zero, err)
	}
	return f, resolve, reject
}

func Resolved[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.settle(v, nil)
	return f
}

func Rejected[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.settle(zero, err)
	return f
}

// Done is closed once the future has settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future settles or ctx ends. Giving up on ctx does
// not stop the underlying computation.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	default:
	}

	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (f *Future[T]) settle(v T, err error) {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return
	}
	f.settled = true
	f.val, f.err = v, err
	then := f.then
	f.then = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range then {
		fn()
	}
}

// onSettle runs fn on the settling goroutine, or right away if already settled.
func (f *Future[T]) onSettle(fn func()) {
	f.mu.Lock()
	if !f.settled {
		f.then = append(f.then, fn)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	fn()
}

// chain returns a new *Future[T] that settles with f's outcome after
// onSettle has observed it.
func (f *Future[T]) chain(onSettle func(err error)) any {
	next := newFuture[T]()
	f.onSettle(func() {
		// next settles even if onSettle panics
		defer next.settle(f.val, f.err)
		onSettle(f.err)
	})
	return next
}
