// Package openapi assembles OpenAPI v3.1.0 documents from explicitly
// registered operations and Go model types, and serves them over net/http.
//
// Schemas are produced by the converter package in a single pass per
// build, so self-referential and mutually referential models become
// components referenced by $ref instead of expanding without end.
//
// See: https://spec.openapis.org/oas/v3.1.0
// See: https://json-schema.org/draft/2020-12/json-schema-core
//
// # Spec Builder
//
//	spec, err := openapi.NewSpec(oas.Info{Title: "Catalog API", Version: "1.0.0"})
//	if err != nil {
//	    return err
//	}
//
//	spec.Op(http.MethodGet, "/categories/{id:uuid}").
//	    Summary("Get a category").
//	    Tags("categories").
//	    Response(http.StatusOK, Category{}).
//	    Response(http.StatusNotFound, nil)
//
//	spec.Op(http.MethodPost, "/categories").
//	    Request(CreateCategory{}).
//	    Response(http.StatusCreated, Category{})
//
//	doc := spec.Build()
//
// Path variables may carry a type macro. "{id:uuid}" becomes the document
// path "{id}" with a path parameter of type string and format uuid.
// Supported macros: uuid, int, float, slug, alpha, alphanum, date, hex,
// domain.
//
// # Models
//
// Bodies are Go values; their types are converted when the document is
// built. Named structs become components:
//
//	type Category struct {
//	    ID       uuid.UUID   `json:"id"`
//	    Name     string      `json:"name" openapi:"minLength=1,maxLength=64"`
//	    Parent   *Category   `json:"parent,omitempty" openapi:"ref,description=Parent category"`
//	    Children []Category  `json:"children"`
//	}
//
// Types that no operation uses can be registered with Model. A *oas.Schema
// body is used as is.
//
// # Converter options
//
// NewSpec accepts options configuring the converter: WithConfig (guarded
// packages, stream, future and envelope wrapper types), WithResolvers,
// WithProvider and WithTrace.
//
// # Serving
//
//	mux := http.NewServeMux()
//	spec.Handle(mux, "/swagger", nil)
//	// GET /swagger/             -> Swagger UI
//	// GET /swagger/schema.json  -> JSON document
//	// GET /swagger/schema.yaml  -> YAML document
package openapi
