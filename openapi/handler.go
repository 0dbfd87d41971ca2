package openapi

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/vitalvas/schemagen/oas"
)

// DocsUI selects which interactive documentation UI to serve.
type DocsUI int

const (
	DocsSwaggerUI DocsUI = iota
	DocsRapiDoc
	DocsRedoc
)

// HandleConfig configures the endpoints registered by Handle.
type HandleConfig struct {
	// UI selects the interactive docs UI (default: DocsSwaggerUI).
	UI DocsUI

	// Title overrides the HTML page title (default: document info.title).
	Title string

	// JSONFilename is the path for the JSON document endpoint
	// (default: "schema.json"). Set to "-" to disable.
	//
	// Relative paths are joined with the base path, absolute paths
	// (starting with "/") are used as-is:
	//
	//	"schema.json"          -> <basePath>/schema.json
	//	"/api/v1/swagger.json" -> /api/v1/swagger.json
	JSONFilename string

	// YAMLFilename is the path for the YAML document endpoint
	// (default: "schema.yaml"). Set to "-" to disable.
	// Follows the same absolute/relative rules as JSONFilename.
	YAMLFilename string

	// DisableDocs disables the interactive HTML docs UI endpoint.
	DisableDocs bool

	// SwaggerUIConfig provides additional SwaggerUIBundle configuration
	// options, rendered as JavaScript object properties alongside the url
	// and dom_id defaults. Only used with DocsSwaggerUI.
	//
	// See: https://swagger.io/docs/open-source-tools/swagger-ui/usage/configuration/
	SwaggerUIConfig map[string]any

	// CacheControl is the Cache-Control value sent with the documents and
	// the docs page (e.g. "public, max-age=300"). Empty sends no header.
	// Documents always carry an ETag and answer a matching If-None-Match
	// with 304.
	CacheControl string
}

func (cfg HandleConfig) jsonFilename() string {
	if cfg.JSONFilename == "" {
		return "schema.json"
	}
	return cfg.JSONFilename
}

func (cfg HandleConfig) yamlFilename() string {
	if cfg.YAMLFilename == "" {
		return "schema.yaml"
	}
	return cfg.YAMLFilename
}

// resolvePath returns the full route path for a filename.
func resolvePath(basePath, filename string) string {
	if strings.HasPrefix(filename, "/") {
		return filename
	}
	return basePath + "/" + filename
}

// Handle registers the document endpoints under basePath on mux:
//
//	GET <basePath>/          - interactive HTML docs (unless DisableDocs)
//	GET <JSONFilename path>  - document as JSON      (unless JSONFilename is "-")
//	GET <YAMLFilename path>  - document as YAML      (unless YAMLFilename is "-")
//
// The config parameter is optional; pass nil for defaults:
//
//	spec.Handle(mux, "/swagger", nil)
//
// The document is built on first request and cached. A failure while
// building or encoding it is answered with 500 on every request.
func (s *Spec) Handle(mux *http.ServeMux, basePath string, cfg *HandleConfig) {
	if cfg == nil {
		cfg = &HandleConfig{}
	}
	basePath = strings.TrimRight(basePath, "/")

	doc := s.lazyDocument()

	var jsonPath, yamlPath string

	if file := cfg.jsonFilename(); file != "-" {
		jsonPath = resolvePath(basePath, file)
		mux.Handle("GET "+jsonPath, documentHandler(doc, "application/json", cfg.CacheControl, (*oas.Document).JSON))
	}

	if file := cfg.yamlFilename(); file != "-" {
		yamlPath = resolvePath(basePath, file)
		mux.Handle("GET "+yamlPath, documentHandler(doc, "application/x-yaml", cfg.CacheControl, (*oas.Document).YAML))
	}

	if cfg.DisableDocs {
		return
	}

	specURL := jsonPath
	if specURL == "" {
		specURL = yamlPath
	}
	if specURL == "" {
		return
	}

	title := cfg.Title
	if title == "" {
		title = s.info.Title
	}
	page := []byte(docsPage(cfg.UI, title, specURL, cfg.SwaggerUIConfig))

	docs := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if cfg.CacheControl != "" {
			w.Header().Set("Cache-Control", cfg.CacheControl)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(page)
	})

	mux.Handle("GET "+basePath+"/{$}", docs)
	if basePath != "" {
		mux.Handle("GET "+basePath, docs)
	}
}

// lazyDocument builds the document once and shares it between the JSON and
// YAML endpoints. A panic during the build is turned into an error.
func (s *Spec) lazyDocument() func() (*oas.Document, error) {
	return sync.OnceValues(func() (doc *oas.Document, err error) {
		defer func() {
			if rv := recover(); rv != nil {
				doc, err = nil, fmt.Errorf("openapi: build document: %v", rv)
			}
		}()
		return s.Build(), nil
	})
}

type encodedDocument struct {
	body []byte
	etag string
}

func documentHandler(doc func() (*oas.Document, error), contentType, cacheControl string, encode func(*oas.Document) ([]byte, error)) http.Handler {
	data := sync.OnceValues(func() (encodedDocument, error) {
		d, err := doc()
		if err != nil {
			return encodedDocument{}, err
		}
		body, err := encode(d)
		if err != nil {
			return encodedDocument{}, err
		}
		sum := sha256.Sum256(body)
		return encodedDocument{body: body, etag: `"` + hex.EncodeToString(sum[:16]) + `"`}, nil
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enc, err := data()
		if err != nil {
			http.Error(w, "failed to serialize OpenAPI document", http.StatusInternalServerError)
			return
		}

		h := w.Header()
		h.Set("ETag", enc.etag)
		if cacheControl != "" {
			h.Set("Cache-Control", cacheControl)
		}

		if etagMatches(r.Header.Get("If-None-Match"), enc.etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		h.Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(enc.body)
	})
}

// etagMatches reports whether an If-None-Match header value lists etag.
// Weak validators compare equal to their strong form.
func etagMatches(header, etag string) bool {
	for candidate := range strings.SplitSeq(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

func docsPage(ui DocsUI, title, specURL string, swaggerConfig map[string]any) string {
	var head, body string

	switch ui {
	case DocsRapiDoc:
		head = `<script type="module" src="https://unpkg.com/rapidoc/dist/rapidoc-min.js"></script>`
		body = fmt.Sprintf(`<rapi-doc spec-url=%q></rapi-doc>`, specURL)
	case DocsRedoc:
		body = fmt.Sprintf(`<redoc spec-url=%q></redoc>
<script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>`, specURL)
	default:
		head = `<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">`
		body = fmt.Sprintf(`<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({url: %q, dom_id: "#swagger-ui"%s});
</script>`, specURL, swaggerOptions(swaggerConfig))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
%s
</head>
<body>
%s
</body>
</html>`, html.EscapeString(title), head, body)
}

// swaggerOptions renders extra SwaggerUIBundle options in key order.
// Values that cannot be encoded are skipped.
func swaggerOptions(config map[string]any) string {
	if len(config) == 0 {
		return ""
	}

	keys := make([]string, 0, len(config))
	for k := range config {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf strings.Builder
	for _, k := range keys {
		v, err := json.Marshal(config[k])
		if err != nil {
			continue
		}
		fmt.Fprintf(&buf, ", %s: %s", k, v)
	}
	return buf.String()
}
