package converter

import (
	"reflect"

	"github.com/vitalvas/schemagen/oas"
)

// Option configures a Converter.
type Option func(*Converter)

// WithResolvers inserts resolvers between the recursion guard and the
// built-in resolvers, in the order given.
func WithResolvers(r ...Resolver) Option {
	return func(c *Converter) {
		c.extra = append(c.extra, r...)
	}
}

// WithProvider replaces the reflection based TypeProvider.
func WithProvider(p TypeProvider) Option {
	return func(c *Converter) {
		if p != nil {
			c.provider = p
		}
	}
}

// WithTrace sets a callback receiving pipeline events.
func WithTrace(fn TraceFunc) Option {
	return func(c *Converter) {
		c.trace = fn
	}
}

// Converter holds the resolver chain built from a Config. It is immutable
// after New and safe for concurrent use; all per-generation state lives in
// the passes it creates.
type Converter struct {
	cfg      Config
	provider TypeProvider
	extra    []Resolver
	trace    TraceFunc
	chain    Chain
}

// New validates cfg and assembles the chain: stream unwrapper, recursion
// guard, the resolvers passed with WithResolvers, well-known types and the
// model resolver.
func New(cfg Config, opts ...Option) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Converter{
		cfg:      cfg,
		provider: ReflectProvider{},
	}
	for _, opt := range opts {
		opt(c)
	}

	chain := Chain{
		NewStreamUnwrapper(cfg, c.provider),
		NewRecursionGuard(NewClassifier(cfg.Packages, c.provider)),
	}
	chain = append(chain, c.extra...)
	chain = append(chain, WellKnown{}, NewModelResolver(c.provider))
	c.chain = chain

	return c, nil
}

// Config returns the configuration the converter was built with.
func (c *Converter) Config() Config {
	return c.cfg
}

// Chain returns a copy of the resolver chain.
func (c *Converter) Chain() Chain {
	return append(Chain(nil), c.chain...)
}

// NewPass starts a generation with its own cache.
func (c *Converter) NewPass() *Pass {
	return c.NewPassWithCache(nil)
}

// NewPassWithCache starts a pass that shares cache with other passes of the
// same generation. A nil cache creates a fresh one.
func (c *Converter) NewPassWithCache(cache *Cache) *Pass {
	return newPass(c.chain, c.cfg.refPrefix(), cache, c.trace)
}

// Generate resolves the type of v in a fresh pass and returns the root
// schema with the components it defined.
func (c *Converter) Generate(v any) (*oas.Schema, map[string]*oas.Schema) {
	if v == nil {
		return nil, nil
	}
	return c.GenerateType(reflect.TypeOf(v))
}

// GenerateType is Generate for a reflect.Type.
func (c *Converter) GenerateType(t reflect.Type) (*oas.Schema, map[string]*oas.Schema) {
	pass := c.NewPass()
	root := pass.GenerateType(t)
	return root, pass.Components()
}
