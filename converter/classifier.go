package converter

import (
	"path"
	"reflect"
	"strings"
)

// Classifier decides which types need recursion protection: named structs,
// maps, slices and arrays from the configured packages, except byte slices,
// enums and well-known library types.
type Classifier struct {
	patterns []string
	provider TypeProvider
}

// NewClassifier creates a classifier for the given package patterns.
func NewClassifier(patterns []string, provider TypeProvider) *Classifier {
	if provider == nil {
		provider = ReflectProvider{}
	}
	return &Classifier{patterns: patterns, provider: provider}
}

// Guarded reports whether t is guarded. It never panics: any failure while
// inspecting t reports false, so the type falls through to normal
// resolution.
func (c *Classifier) Guarded(t reflect.Type) (guarded bool) {
	defer func() {
		if recover() != nil {
			guarded = false
		}
	}()

	if t == nil || !composite(t) || t.Name() == "" || t.PkgPath() == "" {
		return false
	}
	if _, ok := wellKnownTypes[t]; ok {
		return false
	}
	if !c.matches(t.PkgPath()) {
		return false
	}
	return !c.provider.IsEnum(t)
}

// composite reports the kinds that can contain themselves and become
// components when named.
func composite(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Struct, reflect.Map, reflect.Array:
		return true
	case reflect.Slice:
		return t.Elem().Kind() != reflect.Uint8
	}
	return false
}

func (c *Classifier) matches(pkg string) bool {
	for _, pattern := range c.patterns {
		if matchPackage(pattern, pkg) {
			return true
		}
	}
	return false
}

// matchPackage matches pkg against a go-tool style pattern. Malformed
// patterns match nothing.
func matchPackage(pattern, pkg string) bool {
	if pattern == "..." {
		return true
	}

	if base, ok := strings.CutSuffix(pattern, "/..."); ok {
		for p := pkg; p != "." && p != "/" && p != ""; p = path.Dir(p) {
			if matchPackage(base, p) {
				return true
			}
		}
		return false
	}

	ok, err := path.Match(pattern, pkg)
	return err == nil && ok
}
