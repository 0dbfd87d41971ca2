package converter

import (
	"reflect"

	"github.com/vitalvas/schemagen/oas"
)

const unknownContext = "(unknown)"

// Reference builds the reference schema for req pointing at prefix+name.
// Values of the request's schema annotation replace the derived defaults
// verbatim; without an annotation the description records where the
// reference was taken ("Parent.property:Name"), with "(unknown)" standing
// in for missing context.
func Reference(req Request, name, prefix string) *oas.Schema {
	ann, ok := req.SchemaAnnotation()
	if !ok {
		return &oas.Schema{
			Ref:         prefix + name,
			Description: parentName(req.Parent) + "." + propertyName(req.PropertyName) + ":" + name,
		}
	}

	s := &oas.Schema{
		Ref:         ann.Ref,
		Description: ann.Description,
		Format:      ann.Format,
		Title:       ann.Title,
		MinLength:   ann.MinLength,
		MaxLength:   ann.MaxLength,
	}
	if s.Ref == "" {
		s.Ref = prefix + name
	}
	if ann.Type != "" {
		s.Type = oas.TypeString(ann.Type)
	}
	return s
}

func parentName(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return unknownContext
	}
	if name := SimpleName(t); name != "" {
		return name
	}
	return t.String()
}

func propertyName(name string) string {
	if name == "" {
		return unknownContext
	}
	return name
}
