package converter

import (
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMatchPackage(t *testing.T) {
	tests := []struct {
		pattern string
		pkg     string
		want    bool
	}{
		{"...", "example.com/models", true},
		{"example.com/models", "example.com/models", true},
		{"example.com/models", "example.com/models/v2", false},
		{"example.com/models/...", "example.com/models", true},
		{"example.com/models/...", "example.com/models/v2/inner", true},
		{"example.com/models/...", "example.com/modelsx", false},
		{"example.com/*/models", "example.com/billing/models", true},
		{"example.com/*/models", "example.com/billing/other", false},
		{"example.com/*/...", "example.com/billing/models", true},
		{"example.com/[models", "example.com/models", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.pkg, func(t *testing.T) {
			assert.Equal(t, tt.want, matchPackage(tt.pattern, tt.pkg))
		})
	}
}

func TestClassifierGuarded(t *testing.T) {
	c := NewClassifier([]string{testPkg}, nil)

	tests := []struct {
		name string
		typ  reflect.Type
		want bool
	}{
		{"named struct", reflect.TypeFor[Node](), true},
		{"generic instance", reflect.TypeFor[Page[User]](), true},
		{"pointer", reflect.TypeFor[*Node](), false},
		{"slice", reflect.TypeFor[[]Node](), false},
		{"named map", reflect.TypeFor[Tree](), true},
		{"named slice", reflect.TypeFor[List](), true},
		{"named array", reflect.TypeFor[Ring](), true},
		{"named byte slice", reflect.TypeFor[Blob](), false},
		{"named channel", reflect.TypeFor[Pipe](), false},
		{"named string", reflect.TypeFor[Status](), false},
		{"struct enum", reflect.TypeFor[Color](), false},
		{"anonymous struct", reflect.TypeFor[struct{ X int }](), false},
		{"other package", reflect.TypeFor[url.Userinfo](), false},
		{"panicking enum method", reflect.TypeFor[BrokenEnum](), true},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Guarded(tt.typ))
		})
	}

	t.Run("well-known types are never guarded", func(t *testing.T) {
		all := NewClassifier([]string{"..."}, nil)
		assert.False(t, all.Guarded(reflect.TypeFor[time.Time]()))
		assert.False(t, all.Guarded(reflect.TypeFor[url.URL]()))
		assert.True(t, all.Guarded(reflect.TypeFor[url.Userinfo]()))
	})

	t.Run("no patterns guard nothing", func(t *testing.T) {
		none := NewClassifier(nil, nil)
		assert.False(t, none.Guarded(reflect.TypeFor[Node]()))
	})
}

type enumEverything struct{ ReflectProvider }

func (enumEverything) IsEnum(reflect.Type) bool { return true }

type panickingProvider struct{ ReflectProvider }

func (panickingProvider) IsEnum(reflect.Type) bool { panic("provider failure") }

func TestClassifierProvider(t *testing.T) {
	t.Run("provider decides enums", func(t *testing.T) {
		c := NewClassifier([]string{"..."}, enumEverything{})
		assert.False(t, c.Guarded(reflect.TypeFor[Node]()))
	})

	t.Run("provider panic fails open", func(t *testing.T) {
		c := NewClassifier([]string{"..."}, panickingProvider{})
		assert.NotPanics(t, func() {
			assert.False(t, c.Guarded(reflect.TypeFor[Node]()))
		})
	})
}
