package converter

import (
	"encoding/json"
	"net"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/vitalvas/schemagen/oas"
)

func TestWellKnown(t *testing.T) {
	pass := newTestConverter(t, DefaultConfig()).NewPass()

	tests := []struct {
		name string
		typ  reflect.Type
		want *oas.Schema
	}{
		{"time", reflect.TypeFor[time.Time](), &oas.Schema{Type: oas.TypeString("string"), Format: "date-time"}},
		{"nullable time", reflect.TypeFor[*time.Time](), &oas.Schema{Type: oas.TypeArray("string", "null"), Format: "date-time"}},
		{"duration", reflect.TypeFor[time.Duration](), &oas.Schema{Type: oas.TypeString("integer"), Format: "int64"}},
		{"uuid", reflect.TypeFor[uuid.UUID](), &oas.Schema{Type: oas.TypeString("string"), Format: "uuid"}},
		{"ip", reflect.TypeFor[net.IP](), &oas.Schema{Type: oas.TypeString("string"), Format: "ip"}},
		{"url", reflect.TypeFor[url.URL](), &oas.Schema{Type: oas.TypeString("string"), Format: "uri"}},
		{"raw json", reflect.TypeFor[json.RawMessage](), &oas.Schema{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pass.GenerateType(tt.typ))
		})
	}

	assert.Empty(t, pass.Components())
	assert.Equal(t, 0, pass.Cache().Len())
}

func TestWellKnownDelegates(t *testing.T) {
	called := false
	next := Chain{ResolverFunc(func(Request, *Pass, Chain) *oas.Schema {
		called = true
		return &oas.Schema{Title: "delegated"}
	})}

	s := WellKnown{}.Resolve(Request{Type: reflect.TypeFor[User]()}, nil, next)

	assert.True(t, called)
	assert.Equal(t, "delegated", s.Title)
}
