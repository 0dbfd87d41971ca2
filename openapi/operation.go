package openapi

import (
	"maps"
	"net/http"
	"slices"
	"strconv"

	"github.com/vitalvas/schemagen/converter"
	"github.com/vitalvas/schemagen/oas"
)

const (
	contentTypeJSON = "application/json"
	defaultKey      = "default"
)

// operationMeta stores metadata collected via the fluent builder
// before the document is built. Fields correspond to the Operation Object.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object
type operationMeta struct {
	operationID string
	summary     string
	description string
	tags        []string
	deprecated  bool
	parameters  []*oas.Parameter

	requestContents      map[string]any            // contentType -> body
	requestDescription   string                    // request body description
	requestRequired      *bool                     // nil = default (true), non-nil = explicit
	responseContents     map[string]map[string]any // statusKey -> contentType -> body
	responseDescriptions map[string]string         // statusKey -> custom description
}

// OperationBuilder provides a fluent API for attaching OpenAPI metadata
// to an operation. Bodies are Go values whose types are converted when the
// document is built, or *oas.Schema values used as is.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object
type OperationBuilder struct {
	meta *operationMeta
}

func newOperationBuilder() *OperationBuilder {
	return &OperationBuilder{
		meta: &operationMeta{
			requestContents:  make(map[string]any),
			responseContents: make(map[string]map[string]any),
		},
	}
}

// OperationID sets the operation ID.
func (b *OperationBuilder) OperationID(id string) *OperationBuilder {
	b.meta.operationID = id
	return b
}

// Summary sets the operation summary.
func (b *OperationBuilder) Summary(s string) *OperationBuilder {
	b.meta.summary = s
	return b
}

// Description sets the operation description.
func (b *OperationBuilder) Description(d string) *OperationBuilder {
	b.meta.description = d
	return b
}

// Tags adds one or more tags to the operation.
func (b *OperationBuilder) Tags(tags ...string) *OperationBuilder {
	b.meta.tags = append(b.meta.tags, tags...)
	return b
}

// Deprecated marks the operation as deprecated.
func (b *OperationBuilder) Deprecated() *OperationBuilder {
	b.meta.deprecated = true
	return b
}

// Parameter adds a custom parameter to the operation. A parameter with the
// same name and location as a path variable replaces the generated one.
//
// See: https://spec.openapis.org/oas/v3.1.0#parameter-object
func (b *OperationBuilder) Parameter(param *oas.Parameter) *OperationBuilder {
	if param != nil {
		b.meta.parameters = append(b.meta.parameters, param)
	}
	return b
}

// Request registers an application/json request body.
// This is a shortcut for RequestContent("application/json", body).
//
// See: https://spec.openapis.org/oas/v3.1.0#request-body-object
func (b *OperationBuilder) Request(body any) *OperationBuilder {
	return b.RequestContent(contentTypeJSON, body)
}

// RequestContent registers a request body with the given content type.
// A nil body declares the content type without a schema.
func (b *OperationBuilder) RequestContent(contentType string, body any) *OperationBuilder {
	b.meta.requestContents[contentType] = body
	return b
}

// RequestDescription sets the description for the request body.
func (b *OperationBuilder) RequestDescription(desc string) *OperationBuilder {
	b.meta.requestDescription = desc
	return b
}

// RequestRequired sets whether the request body is required.
// By default, request bodies are required.
func (b *OperationBuilder) RequestRequired(required bool) *OperationBuilder {
	b.meta.requestRequired = &required
	return b
}

// Response registers an application/json response for the given HTTP
// status code. Pass a nil body for responses with no content (e.g., 204).
//
// See: https://spec.openapis.org/oas/v3.1.0#responses-object
func (b *OperationBuilder) Response(statusCode int, body any) *OperationBuilder {
	b.response(strconv.Itoa(statusCode), body)
	return b
}

// ResponseContent registers a response with the given status code and
// content type.
func (b *OperationBuilder) ResponseContent(statusCode int, contentType string, body any) *OperationBuilder {
	b.content(strconv.Itoa(statusCode))[contentType] = body
	return b
}

// DefaultResponse registers an application/json response for the "default"
// status key, which covers every status code not listed explicitly.
func (b *OperationBuilder) DefaultResponse(body any) *OperationBuilder {
	b.response(defaultKey, body)
	return b
}

// ResponseDescription overrides the description derived from the HTTP
// status text.
func (b *OperationBuilder) ResponseDescription(statusCode int, desc string) *OperationBuilder {
	if b.meta.responseDescriptions == nil {
		b.meta.responseDescriptions = make(map[string]string)
	}
	b.meta.responseDescriptions[strconv.Itoa(statusCode)] = desc
	return b
}

func (b *OperationBuilder) response(key string, body any) {
	if body == nil {
		if _, ok := b.meta.responseContents[key]; !ok {
			b.meta.responseContents[key] = nil
		}
		return
	}
	b.content(key)[contentTypeJSON] = body
}

func (b *OperationBuilder) content(key string) map[string]any {
	if b.meta.responseContents[key] == nil {
		b.meta.responseContents[key] = make(map[string]any)
	}
	return b.meta.responseContents[key]
}

// mergeParameters combines generated path parameters with custom
// parameters. Custom parameters with the same name+in override the
// generated ones.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object (parameters)
func mergeParameters(auto, custom []*oas.Parameter) []*oas.Parameter {
	if len(auto) == 0 && len(custom) == 0 {
		return nil
	}

	overrides := make(map[[2]string]struct{}, len(custom))
	for _, p := range custom {
		overrides[[2]string{p.Name, p.In}] = struct{}{}
	}

	var merged []*oas.Parameter
	for _, p := range auto {
		if _, ok := overrides[[2]string{p.Name, p.In}]; !ok {
			merged = append(merged, p)
		}
	}

	return append(merged, custom...)
}

// resolveSchema returns the schema for a body value: *oas.Schema values are
// used directly, anything else is converted in the current pass.
func resolveSchema(pass *converter.Pass, body any) *oas.Schema {
	switch v := body.(type) {
	case nil:
		return nil
	case *oas.Schema:
		return v
	default:
		return pass.Generate(v)
	}
}

// responseDescription returns a human-readable description for a response key.
func responseDescription(key string) string {
	if key == defaultKey {
		return "Default response"
	}
	if code, err := strconv.Atoi(key); err == nil {
		if text := http.StatusText(code); text != "" {
			return text
		}
	}
	return key
}

func mediaTypes(pass *converter.Pass, contents map[string]any) map[string]*oas.MediaType {
	if len(contents) == 0 {
		return nil
	}
	out := make(map[string]*oas.MediaType, len(contents))
	for _, ct := range slices.Sorted(maps.Keys(contents)) {
		out[ct] = &oas.MediaType{Schema: resolveSchema(pass, contents[ct])}
	}
	return out
}

// buildOperation converts the collected metadata into an Operation Object.
func (b *OperationBuilder) buildOperation(pass *converter.Pass, pathParams []*oas.Parameter) *oas.Operation {
	op := &oas.Operation{
		OperationID: b.meta.operationID,
		Summary:     b.meta.summary,
		Description: b.meta.description,
		Tags:        b.meta.tags,
		Deprecated:  b.meta.deprecated,
		Parameters:  mergeParameters(pathParams, b.meta.parameters),
	}

	if len(b.meta.requestContents) > 0 {
		required := true
		if b.meta.requestRequired != nil {
			required = *b.meta.requestRequired
		}
		op.RequestBody = &oas.RequestBody{
			Description: b.meta.requestDescription,
			Required:    required,
			Content:     mediaTypes(pass, b.meta.requestContents),
		}
	}

	if len(b.meta.responseContents) > 0 {
		op.Responses = make(map[string]*oas.Response, len(b.meta.responseContents))
		for _, key := range slices.Sorted(maps.Keys(b.meta.responseContents)) {
			contents := b.meta.responseContents[key]
			desc := responseDescription(key)
			if custom, ok := b.meta.responseDescriptions[key]; ok {
				desc = custom
			}
			op.Responses[key] = &oas.Response{
				Description: desc,
				Content:     mediaTypes(pass, contents),
			}
		}
	}

	return op
}
