package converter

import (
	"reflect"
	"strconv"
	"strings"
)

// Request describes one step of a schema walk. It is passed by value;
// stages that rewrite it work on their own copy.
type Request struct {
	// Type is the type to resolve. Its identity is the stack and cache key.
	Type reflect.Type

	// Parent is the enclosing type, nil at the top level.
	Parent reflect.Type

	// PropertyName is the JSON name of the declaring property, if any.
	PropertyName string

	// Annotations holds the contextual annotations of the property, in
	// declaration order. SchemaAnnotation values carry schema overrides.
	Annotations []any

	// ResolveAsRef asks for a reference instead of an inline definition.
	ResolveAsRef bool

	// SchemaProperty is set when the request resolves a property of an
	// enclosing schema rather than a root.
	SchemaProperty bool
}

// WithType returns a copy of the request targeting t.
func (r Request) WithType(t reflect.Type) Request {
	r.Type = t
	return r
}

// SchemaAnnotation returns the first schema annotation attached to the
// request. Both SchemaAnnotation and *SchemaAnnotation values match.
func (r Request) SchemaAnnotation() (SchemaAnnotation, bool) {
	for _, a := range r.Annotations {
		switch v := a.(type) {
		case SchemaAnnotation:
			return v, true
		case *SchemaAnnotation:
			if v != nil {
				return *v, true
			}
		}
	}
	return SchemaAnnotation{}, false
}

// SchemaAnnotation carries explicit schema overrides for a property. When a
// reference is synthesized for the property, every set value replaces the
// derived default.
type SchemaAnnotation struct {
	// Ref is an explicit reference target.
	Ref string
	// AsRef requests a reference even without an explicit target.
	AsRef bool

	Description string
	Type        string
	Format      string
	Title       string
	MinLength   *int
	MaxLength   *int
}

// wantsRef reports whether the annotation asks for a reference.
func (a SchemaAnnotation) wantsRef() bool {
	return a.AsRef || a.Ref != ""
}

// annotationKeys are the tag keys read by ParseSchemaTag.
var annotationKeys = map[string]bool{
	"ref":         true,
	"description": true,
	"type":        true,
	"format":      true,
	"title":       true,
	"minLength":   true,
	"maxLength":   true,
}

// ParseSchemaTag extracts the schema annotation from an `openapi` struct
// tag. Only the ref, description, type, format, title, minLength and
// maxLength keys are read; a bare "ref" key sets AsRef. The boolean is
// false when none of these keys is present. Unparsable lengths are ignored.
//
//	Parent *Node `json:"parent" openapi:"ref,description=Owning node"`
func ParseSchemaTag(tag string) (SchemaAnnotation, bool) {
	var (
		a     SchemaAnnotation
		found bool
	)
	if tag == "" {
		return a, false
	}

	for part := range strings.SplitSeq(tag, ",") {
		key, value, hasValue := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "ref":
			if hasValue {
				a.Ref = value
			} else {
				a.AsRef = true
			}
		case "description":
			a.Description = value
		case "type":
			a.Type = value
		case "format":
			a.Format = value
		case "title":
			a.Title = value
		case "minLength":
			if v, err := strconv.Atoi(value); err == nil {
				a.MinLength = &v
			}
		case "maxLength":
			if v, err := strconv.Atoi(value); err == nil {
				a.MaxLength = &v
			}
		default:
			continue
		}
		found = true
	}

	return a, found
}
