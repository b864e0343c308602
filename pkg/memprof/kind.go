package memprof

import (
	"fmt"
	"reflect"
)

// Kind classifies a callable by how its result is produced.
type Kind uint8

const (
	KindSync Kind = iota
	KindAsync
)

func (k Kind) String() string {
	switch k {
	case KindSync:
		return "Sync"
	case KindAsync:
		return "Async"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Sync":
		*k = KindSync
	case "Async":
		*k = KindAsync
	default:
		return fmt.Errorf("memprof: unknown kind %q", b)
	}
	return nil
}

// deferred is implemented by *Future[T] and nothing else.
type deferred interface {
	chain(onSettle func(err error)) any
}

var (
	deferredType = reflect.TypeOf((*deferred)(nil)).Elem()
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
)

// Classify returns KindAsync when fn's only result is a *Future, and
// KindSync otherwise. Functions handing back channels or other deferred-ish
// values are Sync: their result is opaque to the wrapper.
//
// Wrapping preserves the func type, so a wrapped callable classifies the same
// as its source. Classify panics if fn is not a func.
func Classify(fn any) Kind {
	return classifyType(funcType(fn))
}

func classifyType(t reflect.Type) Kind {
	if t.NumOut() == 1 && t.Out(0).Implements(deferredType) {
		return KindAsync
	}
	return KindSync
}

func funcType(fn any) reflect.Type {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		panic(fmt.Sprintf("memprof: expected a func, got %T", fn))
	}
	return t
}

func isFunc(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}
