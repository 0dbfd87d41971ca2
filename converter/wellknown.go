package converter

import (
	"encoding/json"
	"net"
	"net/url"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/vitalvas/schemagen/oas"
)

// wellKnownTypes maps library types whose JSON encoding differs from their
// Go shape to [type, format]. An empty type yields the empty schema.
var wellKnownTypes = map[reflect.Type][2]string{
	reflect.TypeFor[time.Time]():       {"string", "date-time"},
	reflect.TypeFor[time.Duration]():   {"integer", "int64"},
	reflect.TypeFor[uuid.UUID]():       {"string", "uuid"},
	reflect.TypeFor[net.IP]():          {"string", "ip"},
	reflect.TypeFor[url.URL]():         {"string", "uri"},
	reflect.TypeFor[json.RawMessage](): {"", ""},
}

// WellKnown resolves standard library and common third-party types to their
// JSON representation and delegates everything else.
type WellKnown struct{}

// Resolve implements Resolver.
func (WellKnown) Resolve(req Request, pass *Pass, next Chain) *oas.Schema {
	tf, ok := wellKnownTypes[req.Type]
	if !ok {
		return next.Next(req, pass)
	}

	s := &oas.Schema{Format: tf[1]}
	if tf[0] != "" {
		s.Type = oas.TypeString(tf[0])
	}
	return s
}
