package converter

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/schemagen/oas"
)

func newTestConverter(t *testing.T, cfg Config, opts ...Option) *Converter {
	t.Helper()

	c, err := New(cfg, opts...)
	require.NoError(t, err)
	return c
}

func ref(name string) string {
	return DefaultRefPrefix + name
}

type Email string

func TestNew(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		c, err := New(Config{Packages: []string{""}})
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Nil(t, c)
	})

	t.Run("chain order", func(t *testing.T) {
		custom := ResolverFunc(func(req Request, pass *Pass, next Chain) *oas.Schema {
			return next.Next(req, pass)
		})
		c := newTestConverter(t, DefaultConfig(), WithResolvers(custom))

		chain := c.Chain()
		require.Len(t, chain, 5)
		assert.IsType(t, &StreamUnwrapper{}, chain[0])
		assert.IsType(t, &RecursionGuard{}, chain[1])
		assert.IsType(t, ResolverFunc(nil), chain[2])
		assert.IsType(t, WellKnown{}, chain[3])
		assert.IsType(t, &ModelResolver{}, chain[4])
	})

	t.Run("chain copy is detached", func(t *testing.T) {
		c := newTestConverter(t, DefaultConfig())
		chain := c.Chain()
		chain[0] = nil

		assert.NotNil(t, c.Chain()[0])
	})

	t.Run("config kept", func(t *testing.T) {
		cfg := Config{Packages: []string{testPkg}, RefPrefix: "#/$defs/"}
		c := newTestConverter(t, cfg)
		assert.Equal(t, cfg, c.Config())

		root := c.NewPass().Generate(User{})
		assert.Equal(t, &oas.Schema{Ref: "#/$defs/User"}, root)
	})

	t.Run("nil provider ignored", func(t *testing.T) {
		c := newTestConverter(t, DefaultConfig(), WithProvider(nil))
		assert.Equal(t, ReflectProvider{}, c.provider)
	})
}

func TestConverterGenerate(t *testing.T) {
	c := newTestConverter(t, DefaultConfig())

	t.Run("component", func(t *testing.T) {
		root, components := c.Generate(Page[User]{})

		assert.Equal(t, &oas.Schema{Ref: ref("PageUser")}, root)
		require.Contains(t, components, "PageUser")
		require.Contains(t, components, "User")

		page := components["PageUser"]
		assert.Equal(t, oas.TypeString("array"), page.Properties["items"].Type)
		assert.Equal(t, &oas.Schema{Ref: ref("User")}, page.Properties["items"].Items)
		assert.Equal(t, oas.TypeString("integer"), page.Properties["total"].Type)
	})

	t.Run("inline", func(t *testing.T) {
		root, components := c.Generate([]string{})

		assert.Equal(t, oas.TypeString("array"), root.Type)
		assert.Empty(t, components)
	})

	t.Run("nil", func(t *testing.T) {
		root, components := c.Generate(nil)
		assert.Nil(t, root)
		assert.Nil(t, components)
	})

	t.Run("passes are independent", func(t *testing.T) {
		first := c.NewPass()
		second := c.NewPass()
		first.Generate(User{})

		assert.NotEqual(t, first.ID(), second.ID())
		assert.Contains(t, first.Components(), "User")
		assert.Empty(t, second.Components())
		assert.Equal(t, 0, second.Cache().Len())
	})
}

func TestUserResolvers(t *testing.T) {
	emailType := reflect.TypeFor[Email]()
	email := ResolverFunc(func(req Request, pass *Pass, next Chain) *oas.Schema {
		if req.Type != emailType {
			return next.Next(req, pass)
		}
		return &oas.Schema{Type: oas.TypeString("string"), Format: "email"}
	})

	type Contact struct {
		Address Email  `json:"address"`
		Backup  *Email `json:"backup"`
	}

	c := newTestConverter(t, DefaultConfig(), WithResolvers(email))
	pass := c.NewPass()
	pass.Generate(Contact{})

	contact := pass.Components()["Contact"]
	require.NotNil(t, contact)
	assert.Equal(t, &oas.Schema{Type: oas.TypeString("string"), Format: "email"}, contact.Properties["address"])
	assert.Equal(t, &oas.Schema{Type: oas.TypeArray("string", "null"), Format: "email"}, contact.Properties["backup"])
}

func TestChainNext(t *testing.T) {
	t.Run("empty chain", func(t *testing.T) {
		assert.Nil(t, Chain(nil).Next(Request{Type: reflect.TypeFor[int]()}, nil))
	})

	t.Run("each stage sees the remainder", func(t *testing.T) {
		var seen []int
		stage := func(id int) Resolver {
			return ResolverFunc(func(req Request, pass *Pass, next Chain) *oas.Schema {
				seen = append(seen, id)
				return next.Next(req, pass)
			})
		}
		terminal := ResolverFunc(func(Request, *Pass, Chain) *oas.Schema {
			return &oas.Schema{Type: oas.TypeString("string")}
		})

		s := Chain{stage(1), stage(2), terminal}.Next(Request{}, nil)

		assert.Equal(t, []int{1, 2}, seen)
		assert.Equal(t, oas.TypeString("string"), s.Type)
	})
}
