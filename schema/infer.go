// Package schema provides reflection-based schema inference from Go structs
package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// FromStruct infers an entity schema from a Go struct type. Exported fields
// become members: slices and arrays of struct types become collection edges,
// struct pointers become nullable reference edges, plain struct values
// become reference edges, and everything else becomes a scalar field.
// time.Time is treated as a scalar.
//
// Struct tags adjust inference: `fetch:"-"` skips a field and `fetch:"name"`
// renames the member.
func FromStruct(v interface{}) (*EntitySchema, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, fmt.Errorf("cannot infer schema from nil")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot infer schema from %s, expected struct", t.Kind())
	}
	return fromStructType(t)
}

func fromStructType(t reflect.Type) (*EntitySchema, error) {
	entity := NewEntitySchema(t.Name())
	if entity.Name == "" {
		return nil, fmt.Errorf("cannot infer schema from anonymous struct")
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name := f.Name
		if tag, ok := f.Tag.Lookup("fetch"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
		}

		switch target, kind := classify(f.Type); kind {
		case memberCollection:
			entity.AddCollection(name, target)
		case memberReference:
			entity.AddReference(name, target, false)
		case memberNullableRef:
			entity.AddReference(name, target, true)
		default:
			entity.AddField(name, f.Type.String())
		}
	}

	return entity, nil
}

type memberClass int

const (
	memberScalar memberClass = iota
	memberReference
	memberNullableRef
	memberCollection
)

// classify determines what kind of member a struct field type produces.
// Returns the target entity name for edges, empty for scalars.
func classify(t reflect.Type) (string, memberClass) {
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		elem := t.Elem()
		if elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}
		if elem.Kind() == reflect.Struct && elem != timeType && elem.Name() != "" {
			return elem.Name(), memberCollection
		}
	case reflect.Ptr:
		elem := t.Elem()
		if elem.Kind() == reflect.Struct && elem != timeType && elem.Name() != "" {
			return elem.Name(), memberNullableRef
		}
	case reflect.Struct:
		if t != timeType && t.Name() != "" {
			return t.Name(), memberReference
		}
	}
	return "", memberScalar
}

// RegisterStructs infers schemas for the given struct values and every
// struct type reachable through their edges, and registers all of them.
// Already-registered entities are left untouched.
func RegisterStructs(r *Registry, values ...interface{}) error {
	queue := make([]reflect.Type, 0, len(values))
	for _, v := range values {
		t := reflect.TypeOf(v)
		if t == nil {
			return fmt.Errorf("cannot infer schema from nil")
		}
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			return fmt.Errorf("cannot infer schema from %s, expected struct", t.Kind())
		}
		queue = append(queue, t)
	}

	seen := make(map[string]bool)
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		if seen[t.Name()] {
			continue
		}
		seen[t.Name()] = true

		if _, exists := r.Get(t.Name()); exists {
			continue
		}

		entity, err := fromStructType(t)
		if err != nil {
			return err
		}
		if err := r.Register(entity); err != nil {
			return err
		}

		// Queue edge targets so the whole reachable graph is registered
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			if tag, ok := f.Tag.Lookup("fetch"); ok && strings.Split(tag, ",")[0] == "-" {
				continue
			}
			ft := f.Type
			for ft.Kind() == reflect.Slice || ft.Kind() == reflect.Array || ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && ft != timeType && ft.Name() != "" && !seen[ft.Name()] {
				queue = append(queue, ft)
			}
		}
	}

	return r.ValidateAll()
}
