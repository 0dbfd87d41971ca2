package converter

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/vitalvas/schemagen/oas"
)

// Exampler can be implemented by types to provide an example value
// for the generated JSON Schema. The returned value is set as the "example"
// field on the component schema.
//
//	func (u User) OpenAPIExample() any {
//	    return User{ID: "550e8400-e29b-41d4-a716-446655440000", Name: "Alice"}
//	}
//
// See: https://json-schema.org/draft/2020-12/json-schema-validation#section-9.5
type Exampler interface {
	OpenAPIExample() any
}

// ModelResolver is the last stage of the pipeline. It builds schemas from
// Go types field by field, sending every nested type back through the
// pass. Named structs, maps, slices and arrays are registered as
// components and returned in full; the position that uses them embeds a
// $ref.
//
// A named type reached again while it is still being built, which happens
// when the recursion guard does not cover it, yields a $ref as well.
//
// See: https://spec.openapis.org/oas/v3.1.0#schema-object
type ModelResolver struct {
	provider TypeProvider
}

// NewModelResolver creates the terminal resolver.
func NewModelResolver(provider TypeProvider) *ModelResolver {
	if provider == nil {
		provider = ReflectProvider{}
	}
	return &ModelResolver{provider: provider}
}

// Resolve implements Resolver. Types it cannot describe (functions,
// channels, unsafe pointers) are passed on.
func (m *ModelResolver) Resolve(req Request, pass *Pass, next Chain) *oas.Schema {
	if s := m.build(req, pass); s != nil {
		return s
	}
	return next.Next(req, pass)
}

func (m *ModelResolver) build(req Request, pass *Pass) *oas.Schema {
	t := req.Type

	if t.Name() != "" && (composite(t) || t.Kind() == reflect.Pointer) {
		if !pass.enter(t) {
			if t.Kind() == reflect.Pointer {
				return &oas.Schema{}
			}
			return pass.Reference(req)
		}
		defer pass.leave(t)
	}

	if m.provider.IsEnum(t) {
		values, _ := enumValues(t)
		return enumSchema(t, values)
	}

	switch t.Kind() {
	case reflect.Pointer:
		return m.pointerSchema(req, pass)

	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return &oas.Schema{Type: oas.TypeString(primitiveType(t.Kind()))}

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return &oas.Schema{Type: oas.TypeString("string"), Format: "byte"}
		}
		return m.named(req, pass, func() *oas.Schema {
			return &oas.Schema{
				Type:  oas.TypeString("array"),
				Items: m.element(req, t.Elem(), pass),
			}
		})

	case reflect.Array:
		return m.named(req, pass, func() *oas.Schema {
			return &oas.Schema{
				Type:  oas.TypeString("array"),
				Items: m.element(req, t.Elem(), pass),
			}
		})

	case reflect.Map:
		return m.named(req, pass, func() *oas.Schema {
			if t.Key().Kind() != reflect.String {
				return &oas.Schema{Type: oas.TypeString("object")}
			}
			return &oas.Schema{
				Type:                 oas.TypeString("object"),
				AdditionalProperties: m.element(req, t.Elem(), pass),
			}
		})

	case reflect.Interface:
		return &oas.Schema{}

	case reflect.Struct:
		if t.Name() == "" {
			return m.structSchema(t, pass)
		}
		return m.named(req, pass, func() *oas.Schema {
			schema := m.structSchema(t, pass)
			if ex, ok := exampleOf(t); ok {
				schema.Example = ex
			}
			return schema
		})
	}

	return nil
}

// named builds the schema of a composite type with build. Named types are
// registered as components; a property position asking for a reference
// gets one without building.
func (m *ModelResolver) named(req Request, pass *Pass, build func() *oas.Schema) *oas.Schema {
	t := req.Type
	if t.Name() == "" || t.PkgPath() == "" {
		return build()
	}
	if req.ResolveAsRef && req.SchemaProperty {
		return pass.Reference(req)
	}

	schema := build()
	pass.Define(t, schema)
	return schema
}

// pointerSchema resolves the pointee through the pipeline and marks the
// result nullable. References are wrapped in anyOf; inline schemas are
// copied before their type is widened, as they may be cached.
func (m *ModelResolver) pointerSchema(req Request, pass *Pass) *oas.Schema {
	elem := req.Type.Elem()
	s := pass.Embed(elem, pass.Resolve(req.WithType(elem)))
	if s == nil {
		return nil
	}

	if s.IsRef() {
		return &oas.Schema{
			AnyOf: []*oas.Schema{
				s,
				{Type: oas.TypeString("null")},
			},
		}
	}

	cp := s.Clone()
	applyNullable(cp)
	return cp
}

// element resolves the item or value type of a container. The container's
// position flags carry over; its annotations only when a reference was asked for.
func (m *ModelResolver) element(req Request, elem reflect.Type, pass *Pass) *oas.Schema {
	child := Request{
		Type:           elem,
		Parent:         req.Parent,
		PropertyName:   req.PropertyName,
		ResolveAsRef:   req.ResolveAsRef,
		SchemaProperty: req.SchemaProperty,
	}
	if req.ResolveAsRef {
		child.Annotations = req.Annotations
	}
	return pass.Embed(elem, pass.Resolve(child))
}

// structSchema builds an object schema from struct fields.
//
// See: https://json-schema.org/draft/2020-12/json-schema-core#section-10.3.2 (properties)
// See: https://json-schema.org/draft/2020-12/json-schema-validation#section-6.5.3 (required)
func (m *ModelResolver) structSchema(t reflect.Type, pass *Pass) *oas.Schema {
	schema := &oas.Schema{
		Type:       oas.TypeString("object"),
		Properties: make(map[string]*oas.Schema),
	}

	m.collectFields(t, t, pass, schema, false)

	if len(schema.Properties) == 0 {
		schema.Properties = nil
	}

	return schema
}

// collectFields collects the fields of t into schema. owner is the type the
// properties are reported on; it differs from t for embedded structs.
// When allOptional is true, all fields are treated as optional regardless
// of their json tags. This is used for pointer-embedded structs where the
// entire embedded struct can be nil and thus all its fields may be absent.
func (m *ModelResolver) collectFields(owner, t reflect.Type, pass *Pass, schema *oas.Schema, allOptional bool) {
	for i := range t.NumField() {
		field := t.Field(i)

		if !field.IsExported() && !field.Anonymous {
			continue
		}

		// encoding/json treats an anonymous field with a tag name as a
		// regular named field, not inlined.
		if field.Anonymous {
			jsonName, _ := parseJSONTag(field.Tag.Get("json"))
			if jsonName == "" {
				ft := field.Type
				isPtr := ft.Kind() == reflect.Pointer
				if isPtr {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					m.collectFields(owner, ft, pass, schema, allOptional || isPtr)
					continue
				}
			}
			if !field.IsExported() {
				continue
			}
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name, opts := parseJSONTag(jsonTag)
		if name == "" {
			name = field.Name
		}

		openapiTag := field.Tag.Get("openapi")
		child := Request{
			Type:           field.Type,
			Parent:         owner,
			PropertyName:   name,
			SchemaProperty: true,
		}
		if ann, ok := ParseSchemaTag(openapiTag); ok {
			child.Annotations = []any{ann}
			child.ResolveAsRef = ann.wantsRef()
		}

		fieldSchema := pass.Embed(field.Type, pass.Resolve(child))
		if fieldSchema == nil {
			continue
		}

		// A reference request already carries the annotation keys.
		if child.ResolveAsRef {
			openapiTag = withoutAnnotationKeys(openapiTag)
		}

		if openapiTag != "" || opts.stringEncode {
			cp := fieldSchema.Clone()
			pass.copied(fieldSchema, cp)
			fieldSchema = cp
			applyOpenAPITag(fieldSchema, openapiTag)

			// The encoding/json ",string" option encodes numeric and boolean
			// values as JSON strings.
			if opts.stringEncode && !fieldSchema.IsRef() && len(fieldSchema.AnyOf) == 0 {
				applyStringEncoding(fieldSchema)
			}
		}

		schema.Properties[name] = fieldSchema

		if !opts.omitempty && !allOptional {
			schema.Required = append(schema.Required, name)
		}
	}
}

type jsonTagOpts struct {
	omitempty    bool
	stringEncode bool // encoding/json ",string" option
}

func parseJSONTag(tag string) (string, jsonTagOpts) {
	if tag == "" {
		return "", jsonTagOpts{}
	}
	name, rest, _ := strings.Cut(tag, ",")
	var opts jsonTagOpts
	for opt := range strings.SplitSeq(rest, ",") {
		switch opt {
		case "omitempty", "omitzero":
			opts.omitempty = true
		case "string":
			opts.stringEncode = true
		}
	}
	return name, opts
}

// refTagKeys are the tag keys that may accompany a $ref.
var refTagKeys = map[string]bool{
	"description": true,
	"title":       true,
	"deprecated":  true,
	"readOnly":    true,
	"writeOnly":   true,
}

// applyOpenAPITag parses the `openapi` struct tag and applies constraints to
// the schema. The ref key is handled by ParseSchemaTag and ignored here. A
// $ref schema only takes the annotation keys in refTagKeys.
//
// See: https://spec.openapis.org/oas/v3.1.0#schema-object
// See: https://json-schema.org/draft/2020-12/json-schema-validation
func applyOpenAPITag(schema *oas.Schema, tag string) {
	if tag == "" {
		return
	}

	for part := range strings.SplitSeq(tag, ",") {
		key, value, _ := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if schema.IsRef() && !refTagKeys[key] {
			continue
		}

		switch key {
		case "description":
			schema.Description = value
		case "title":
			schema.Title = value
		case "type":
			schema.Type = oas.TypeString(value)
		case "format":
			schema.Format = value
		case "example":
			schema.Example = parseExampleValue(schema, value)
		case "minimum":
			schema.Minimum = parseFloat(value)
		case "maximum":
			schema.Maximum = parseFloat(value)
		case "exclusiveMinimum":
			schema.ExclusiveMinimum = parseFloat(value)
		case "exclusiveMaximum":
			schema.ExclusiveMaximum = parseFloat(value)
		case "multipleOf":
			schema.MultipleOf = parseFloat(value)
		case "minLength":
			schema.MinLength = parseInt(value)
		case "maxLength":
			schema.MaxLength = parseInt(value)
		case "minItems":
			schema.MinItems = parseInt(value)
		case "maxItems":
			schema.MaxItems = parseInt(value)
		case "minProperties":
			schema.MinProperties = parseInt(value)
		case "maxProperties":
			schema.MaxProperties = parseInt(value)
		case "pattern":
			schema.Pattern = value
		case "enum":
			values := strings.Split(value, "|")
			schema.Enum = make([]any, len(values))
			for i, v := range values {
				schema.Enum[i] = parseExampleValue(schema, v)
			}
		case "deprecated":
			schema.Deprecated = true
		case "readOnly":
			schema.ReadOnly = true
		case "writeOnly":
			schema.WriteOnly = true
		case "uniqueItems":
			schema.UniqueItems = true
		}
	}
}

// withoutAnnotationKeys drops the keys ParseSchemaTag consumes from tag.
func withoutAnnotationKeys(tag string) string {
	var kept []string
	for part := range strings.SplitSeq(tag, ",") {
		key, _, _ := strings.Cut(part, "=")
		if annotationKeys[strings.TrimSpace(key)] {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, ",")
}

func parseFloat(value string) *float64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(value string) *int {
	v, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &v
}

// parseExampleValue converts a string tag value to the Go type matching the
// schema's type.
func parseExampleValue(schema *oas.Schema, value string) any {
	types := schema.Type.Values()
	if len(types) == 0 {
		return value
	}

	switch types[0] {
	case "integer":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	case "number":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	case "boolean":
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return value
}

// applyNullable widens the type to include null (e.g., "string" becomes
// ["string", "null"]), the JSON Schema Draft 2020-12 form of nullable.
func applyNullable(schema *oas.Schema) {
	if schema.IsRef() || schema.Type.IsEmpty() || schema.Type.Has("null") {
		return
	}
	schema.Type = append(schema.Type, "null")
}

// applyStringEncoding overrides the schema type to "string" to match the
// encoding/json ",string" tag option. Nullable types keep the "null" variant.
func applyStringEncoding(schema *oas.Schema) {
	if schema.Type.IsEmpty() {
		return
	}
	if schema.Type.Has("null") {
		schema.Type = oas.TypeArray("string", "null")
	} else {
		schema.Type = oas.TypeString("string")
	}
}

func primitiveType(k reflect.Kind) string {
	switch k {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	}
	return ""
}

// enumSchema renders an Enumer as an inline enum. The JSON type follows the
// first value, falling back to the underlying kind.
func enumSchema(t reflect.Type, values []any) *oas.Schema {
	s := &oas.Schema{Enum: values}

	kind := t.Kind()
	if len(values) > 0 && values[0] != nil {
		kind = reflect.TypeOf(values[0]).Kind()
	}
	if jt := primitiveType(kind); jt != "" {
		s.Type = oas.TypeString(jt)
	}
	return s
}

// exampleOf returns the example reported by an Exampler implementation. A
// panic in user code yields no example.
func exampleOf(t reflect.Type) (ex any, ok bool) {
	defer func() {
		if recover() != nil {
			ex, ok = nil, false
		}
	}()

	e, ok := reflect.New(t).Interface().(Exampler)
	if !ok {
		return nil, false
	}
	return e.OpenAPIExample(), true
}
