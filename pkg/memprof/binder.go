package memprof

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// ConstructorName is the operation slot Binder never wraps.
const ConstructorName = "New"

// Operations is a component's named operations. Non-func values are ignored.
type Operations map[string]any

// Binder installs wrapped operations at setup time. The enable decision is
// taken once, in NewBinder; a disabled Binder hands every input back as-is.
//
// Binding is not safe to run concurrently with calls to the component being
// bound. Bind first, then publish.
type Binder struct {
	enabled bool
	wrapper *Wrapper
}

func NewBinder(opts Options) *Binder {
	return &Binder{
		enabled: opts.Enabled,
		wrapper: NewWrapper(opts),
	}
}

func (b *Binder) Enabled() bool {
	return b.enabled
}

// One wraps the single operation name, classifying it first.
// The input map is never modified; an enabled Binder returns a copy.
func (b *Binder) One(ops Operations, name string) Operations {
	if !b.enabled || !isFunc(ops[name]) {
		return ops
	}
	return b.OneAs(ops, name, Classify(ops[name]))
}

// OneAs wraps the single operation name as kind.
func (b *Binder) OneAs(ops Operations, name string, kind Kind) Operations {
	if !b.enabled || !isFunc(ops[name]) {
		return ops
	}
	out := maps.Clone(ops)
	out[name] = b.wrapper.Wrap(name, ops[name], kind)
	return out
}

// All wraps every operation except the constructor.
func (b *Binder) All(ops Operations) Operations {
	if !b.enabled {
		return ops
	}

	async, sync := Partition(ops)
	out := maps.Clone(ops)
	for _, name := range async {
		out[name] = b.wrapper.Wrap(name, ops[name], KindAsync)
	}
	for _, name := range sync {
		out[name] = b.wrapper.Wrap(name, ops[name], KindSync)
	}
	return out
}

// Partition splits ops into async and sync operation names, each sorted.
// The constructor slot and non-func values are left out.
func Partition(ops Operations) (async, sync []string) {
	for name, fn := range ops {
		if name == ConstructorName || !isFunc(fn) {
			continue
		}
		if Classify(fn) == KindAsync {
			async = append(async, name)
		} else {
			sync = append(sync, name)
		}
	}
	slices.Sort(async)
	slices.Sort(sync)
	return async, sync
}

// BindStruct wraps every own operation of a struct component: each exported,
// non-nil func field declared directly on T. Fields promoted from embedded
// structs and the New field are left alone. The result is a copy; component
// itself is untouched.
func BindStruct[T any](b *Binder, component T) T {
	if !b.enabled {
		return component
	}

	v := structValue(&component)
	for _, i := range operationFields(v.Type()) {
		f := v.Field(i)
		if f.IsNil() {
			continue
		}
		name := v.Type().Field(i).Name
		f.Set(reflect.ValueOf(b.wrapper.Wrap(name, f.Interface(), classifyType(f.Type()))))
	}
	return component
}

// BindField wraps the single func field named field of a struct component.
func BindField[T any](b *Binder, component T, field string) T {
	if !b.enabled {
		return component
	}

	v := structValue(&component)
	sf, ok := v.Type().FieldByName(field)
	if !ok || len(sf.Index) != 1 || sf.Type.Kind() != reflect.Func {
		panic(fmt.Sprintf("memprof: %s has no func field %q", v.Type(), field))
	}
	f := v.Field(sf.Index[0])
	if !f.IsNil() {
		f.Set(reflect.ValueOf(b.wrapper.Wrap(field, f.Interface(), classifyType(f.Type()))))
	}
	return component
}

func structValue(ptr any) reflect.Value {
	v := reflect.ValueOf(ptr).Elem()
	if v.Kind() != reflect.Struct {
		panic(fmt.Sprintf("memprof: component must be a struct, got %s", v.Type()))
	}
	return v
}

func operationFields(t reflect.Type) []int {
	var idx []int
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous || !sf.IsExported() || sf.Name == ConstructorName {
			continue
		}
		if sf.Type.Kind() == reflect.Func {
			idx = append(idx, i)
		}
	}
	return idx
}
