package openapi

import (
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/vitalvas/schemagen/converter"
	"github.com/vitalvas/schemagen/oas"
)

// Version is the OpenAPI Specification version of built documents.
const Version = "3.1.0"

// macroTypeMap maps path variable macros to OpenAPI type and format.
var macroTypeMap = map[string][2]string{
	"uuid":     {"string", "uuid"},
	"int":      {"integer", ""},
	"float":    {"number", ""},
	"slug":     {"string", ""},
	"alpha":    {"string", ""},
	"alphanum": {"string", ""},
	"date":     {"string", "date"},
	"hex":      {"string", ""},
	"domain":   {"string", "hostname"},
}

// pathVarRegexp matches path variables in the form {name} or {name:macro}.
var pathVarRegexp = regexp.MustCompile(`\{([^}]+)\}`)

type options struct {
	config    converter.Config
	converter []converter.Option
}

// Option configures the converter behind a Spec.
type Option func(*options)

// WithConfig replaces converter.DefaultConfig.
func WithConfig(cfg converter.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithResolvers adds resolvers to the converter chain.
func WithResolvers(r ...converter.Resolver) Option {
	return func(o *options) {
		o.converter = append(o.converter, converter.WithResolvers(r...))
	}
}

// WithProvider replaces the reflection based type provider.
func WithProvider(p converter.TypeProvider) Option {
	return func(o *options) {
		o.converter = append(o.converter, converter.WithProvider(p))
	}
}

// WithTrace forwards converter events to fn.
func WithTrace(fn converter.TraceFunc) Option {
	return func(o *options) {
		o.converter = append(o.converter, converter.WithTrace(fn))
	}
}

// operationKey identifies an operation by method and OpenAPI path.
type operationKey struct {
	method string
	path   string
}

// Spec collects OpenAPI metadata for operations and models and builds a
// complete Document. Every Build runs a fresh conversion pass.
type Spec struct {
	info         oas.Info
	servers      []oas.Server
	tags         []oas.Tag
	externalDocs *oas.ExternalDocs
	models       []any

	order      []operationKey
	operations map[operationKey]*OperationBuilder
	params     map[operationKey][]*oas.Parameter

	conv *converter.Converter
}

// NewSpec creates a new spec builder with the given API info. It fails only
// when the converter configuration is invalid.
func NewSpec(info oas.Info, opts ...Option) (*Spec, error) {
	o := &options{config: converter.DefaultConfig()}
	for _, opt := range opts {
		opt(o)
	}

	conv, err := converter.New(o.config, o.converter...)
	if err != nil {
		return nil, err
	}

	return &Spec{
		info:       info,
		operations: make(map[operationKey]*OperationBuilder),
		params:     make(map[operationKey][]*oas.Parameter),
		conv:       conv,
	}, nil
}

// Converter returns the converter used by Build.
func (s *Spec) Converter() *converter.Converter {
	return s.conv
}

// AddServer adds a server to the spec.
func (s *Spec) AddServer(server oas.Server) *Spec {
	s.servers = append(s.servers, server)
	return s
}

// AddTag adds a user-defined tag with optional description and external docs.
func (s *Spec) AddTag(tag oas.Tag) *Spec {
	s.tags = append(s.tags, tag)
	return s
}

// SetExternalDocs sets the document-level external documentation link.
func (s *Spec) SetExternalDocs(url, description string) *Spec {
	s.externalDocs = &oas.ExternalDocs{URL: url, Description: description}
	return s
}

// Model registers the type of v as a component even when no operation uses it.
func (s *Spec) Model(v any) *Spec {
	if v != nil {
		s.models = append(s.models, v)
	}
	return s
}

// Op returns the operation builder for method and path, creating it on first
// use. Path variables may carry a type macro ("/users/{id:uuid}"); the
// document path drops it ("/users/{id}") and a typed path parameter is added.
func (s *Spec) Op(method, path string) *OperationBuilder {
	openAPIPath, pathParams := parsePath(path)
	key := operationKey{method: strings.ToUpper(method), path: openAPIPath}

	if b, ok := s.operations[key]; ok {
		return b
	}

	b := newOperationBuilder()
	s.operations[key] = b
	s.params[key] = pathParams
	s.order = append(s.order, key)
	return b
}

// Build assembles a complete OpenAPI Document. Component schemas are
// collected from a single conversion pass over all registered models and
// operations, so recursive models are expanded once and referenced elsewhere.
func (s *Spec) Build() *oas.Document {
	pass := s.conv.NewPass()

	doc := &oas.Document{
		OpenAPI:      Version,
		Info:         s.info,
		Servers:      s.servers,
		ExternalDocs: s.externalDocs,
	}

	for _, m := range s.models {
		pass.Generate(m)
	}

	for _, key := range s.order {
		if doc.Paths == nil {
			doc.Paths = make(map[string]*oas.PathItem)
		}

		pathItem, ok := doc.Paths[key.path]
		if !ok {
			pathItem = &oas.PathItem{}
			doc.Paths[key.path] = pathItem
		}

		op := s.operations[key].buildOperation(pass, s.params[key])
		assignOperation(pathItem, key.method, op)
	}

	if schemas := pass.Components(); len(schemas) > 0 {
		doc.Components = &oas.Components{Schemas: schemas}
	}

	doc.Tags = s.mergeTags(doc.Paths)

	return doc
}

// mergeTags combines auto-collected tags from operations with user-defined tags.
// User-defined tags take precedence (their description and externalDocs are kept).
// Tags not seen in operations but defined by the user are still included.
// The result is sorted alphabetically.
func (s *Spec) mergeTags(paths map[string]*oas.PathItem) []oas.Tag {
	userTags := make(map[string]oas.Tag, len(s.tags))
	for _, tag := range s.tags {
		userTags[tag.Name] = tag
	}

	seen := make(map[string]bool)
	var tags []oas.Tag

	for _, pathItem := range paths {
		for _, op := range pathItem.Operations() {
			for _, name := range op.Tags {
				if seen[name] {
					continue
				}
				seen[name] = true
				if userTag, ok := userTags[name]; ok {
					tags = append(tags, userTag)
				} else {
					tags = append(tags, oas.Tag{Name: name})
				}
			}
		}
	}

	for _, tag := range s.tags {
		if !seen[tag.Name] {
			seen[tag.Name] = true
			tags = append(tags, tag)
		}
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})

	return tags
}

// assignOperation assigns an operation to the correct HTTP method field
// on the path item. Unknown methods are dropped.
func assignOperation(pathItem *oas.PathItem, method string, op *oas.Operation) {
	switch method {
	case http.MethodGet:
		pathItem.Get = op
	case http.MethodPost:
		pathItem.Post = op
	case http.MethodPut:
		pathItem.Put = op
	case http.MethodDelete:
		pathItem.Delete = op
	case http.MethodPatch:
		pathItem.Patch = op
	case http.MethodHead:
		pathItem.Head = op
	case http.MethodOptions:
		pathItem.Options = op
	case http.MethodTrace:
		pathItem.Trace = op
	}
}

// parsePath extracts variables from a path template, converts it to
// OpenAPI format, and generates path parameter objects.
func parsePath(tpl string) (string, []*oas.Parameter) {
	var params []*oas.Parameter

	openAPIPath := pathVarRegexp.ReplaceAllStringFunc(tpl, func(match string) string {
		inner := match[1 : len(match)-1]
		varName, macroName, _ := strings.Cut(inner, ":")
		varName = strings.TrimSuffix(varName, "...")

		param := &oas.Parameter{
			Name:     varName,
			In:       "path",
			Required: true,
			Schema:   &oas.Schema{Type: oas.TypeString("string")},
		}

		if typeInfo, ok := macroTypeMap[macroName]; ok {
			param.Schema = &oas.Schema{Type: oas.TypeString(typeInfo[0]), Format: typeInfo[1]}
		}

		params = append(params, param)
		return "{" + varName + "}"
	})

	return openAPIPath, params
}
