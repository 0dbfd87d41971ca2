package converter

import (
	"reflect"
	"strconv"
	"strings"
)

// Enumer can be implemented by types whose values form a closed set.
// Such types are always expanded inline as an enum and never guarded.
//
//	func (Status) OpenAPIEnum() []any { return []any{"open", "closed"} }
//
// See: https://json-schema.org/draft/2020-12/json-schema-validation#section-6.1.2
type Enumer interface {
	OpenAPIEnum() []any
}

// BoundTyper can be implemented by generic wrappers to report the type
// argument they carry when it cannot be derived structurally.
//
//	func (Future[T]) OpenAPIBoundType() reflect.Type { return reflect.TypeFor[T]() }
type BoundTyper interface {
	OpenAPIBoundType() reflect.Type
}

// TypeProvider describes Go types to the pipeline.
type TypeProvider interface {
	// TypeName returns "<package path>.<name>" without type arguments,
	// or "" for unnamed types.
	TypeName(t reflect.Type) string

	// BoundType returns the single type argument carried by t, or nil.
	BoundType(t reflect.Type) reflect.Type

	// IsEnum reports whether t is a closed set of symbolic values.
	IsEnum(t reflect.Type) bool
}

// ReflectProvider is the TypeProvider backed by package reflect.
type ReflectProvider struct{}

var _ TypeProvider = ReflectProvider{}

// TypeName implements TypeProvider.
func (ReflectProvider) TypeName(t reflect.Type) string {
	if t == nil || t.Name() == "" {
		return ""
	}
	base, _, _ := strings.Cut(t.Name(), "[")
	if t.PkgPath() == "" {
		return base
	}
	return t.PkgPath() + "." + base
}

// BoundType implements TypeProvider. It tries, in order: BoundTyper, the
// channel element, the element of a func(func(T) bool) sequence, and for a
// generic struct with one type argument, the first field of that type.
// A panic in user code yields nil.
func (ReflectProvider) BoundType(t reflect.Type) (bound reflect.Type) {
	if t == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			bound = nil
		}
	}()

	if bt, ok := reflect.New(t).Interface().(BoundTyper); ok {
		return bt.OpenAPIBoundType()
	}

	switch t.Kind() {
	case reflect.Chan:
		return t.Elem()

	case reflect.Func:
		if t.NumIn() != 1 || t.NumOut() != 0 {
			return nil
		}
		yield := t.In(0)
		if yield.Kind() == reflect.Func && yield.NumIn() == 1 &&
			yield.NumOut() == 1 && yield.Out(0).Kind() == reflect.Bool {
			return yield.In(0)
		}
		return nil

	case reflect.Struct:
		args := typeArgs(t.Name())
		if len(args) != 1 {
			return nil
		}
		for i := range t.NumField() {
			if ft := t.Field(i).Type; qualifiedName(ft) == args[0] {
				return ft
			}
		}
	}

	return nil
}

// IsEnum implements TypeProvider. A panic in user code yields false.
func (ReflectProvider) IsEnum(t reflect.Type) (enum bool) {
	_, enum = enumValues(t)
	return enum
}

// enumValues returns the values reported by an Enumer implementation.
func enumValues(t reflect.Type) (values []any, ok bool) {
	if t == nil || t.Name() == "" {
		return nil, false
	}
	defer func() {
		if recover() != nil {
			values, ok = nil, false
		}
	}()

	e, ok := reflect.New(t).Interface().(Enumer)
	if !ok {
		return nil, false
	}
	return e.OpenAPIEnum(), true
}

// typeArgs splits the type argument list of an instantiated generic type
// name, e.g. "Pair[int,map[string]int]" -> ["int", "map[string]int"].
func typeArgs(name string) []string {
	open := strings.IndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, "]") {
		return nil
	}
	inner := name[open+1 : len(name)-1]

	var args []string
	depth, start := 0, 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, inner[start:i])
				start = i + 1
			}
		}
	}
	return append(args, inner[start:])
}

// qualifiedName renders t the way the runtime spells type arguments in
// generic type names: named types carry their full package path.
func qualifiedName(t reflect.Type) string {
	if t.Name() != "" {
		if t.PkgPath() == "" {
			return t.Name()
		}
		return t.PkgPath() + "." + t.Name()
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + qualifiedName(t.Elem())
	case reflect.Slice:
		return "[]" + qualifiedName(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + qualifiedName(t.Elem())
	case reflect.Map:
		return "map[" + qualifiedName(t.Key()) + "]" + qualifiedName(t.Elem())
	}

	return t.String()
}
