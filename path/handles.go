package path

import "reflect"

// Predicate is an opaque handle to caller-supplied filter logic. The
// compiler forwards it to the query engine untouched and never calls it.
//
// Handles built from Go funcs carry identity through the func value;
// handles built by the textual grammar carry identity through their name.
// Structural path equality ignores both.
type Predicate struct {
	name string
	fn   interface{}
}

// Pred wraps a filter func in an opaque handle
func Pred(fn interface{}) Predicate {
	return Predicate{fn: fn}
}

// NamedPred wraps a filter in an opaque handle with an explicit name.
// The textual grammar produces named handles with a nil func.
func NamedPred(name string, fn interface{}) Predicate {
	return Predicate{name: name, fn: fn}
}

// IsZero reports whether the handle carries no filter
func (p Predicate) IsZero() bool {
	return p.name == "" && p.fn == nil
}

// Name returns the handle's name, empty for unnamed func handles
func (p Predicate) Name() string {
	return p.name
}

// Fn returns the captured filter logic for the query engine to evaluate
func (p Predicate) Fn() interface{} {
	return p.fn
}

// Equal reports whether two handles refer to the same filter: func handles
// compare by pointer identity, named handles by name.
func (p Predicate) Equal(o Predicate) bool {
	return handleEqual(p.name, p.fn, o.name, o.fn)
}

// Key is an opaque handle to caller-supplied ordering-key logic. Like
// Predicate, it is forwarded but never invoked by the compiler.
type Key struct {
	name string
	fn   interface{}
}

// KeyOf wraps a key-selector func in an opaque handle
func KeyOf(fn interface{}) Key {
	return Key{fn: fn}
}

// NamedKey wraps a key selector in an opaque handle with an explicit name
func NamedKey(name string, fn interface{}) Key {
	return Key{name: name, fn: fn}
}

// IsZero reports whether the handle carries no key selector
func (k Key) IsZero() bool {
	return k.name == "" && k.fn == nil
}

// Name returns the handle's name, empty for unnamed func handles
func (k Key) Name() string {
	return k.name
}

// Fn returns the captured key-selector logic
func (k Key) Fn() interface{} {
	return k.fn
}

// Equal reports whether two handles refer to the same key selector
func (k Key) Equal(o Key) bool {
	return handleEqual(k.name, k.fn, o.name, o.fn)
}

func handleEqual(aName string, aFn interface{}, bName string, bFn interface{}) bool {
	if aFn != nil || bFn != nil {
		if aFn == nil || bFn == nil {
			return false
		}
		return reflect.ValueOf(aFn).Pointer() == reflect.ValueOf(bFn).Pointer()
	}
	return aName == bName
}
