package converter

import (
	"reflect"
	"sync"

	"github.com/vitalvas/schemagen/oas"
)

// CacheEntry is a finalized expansion.
type CacheEntry struct {
	Schema *oas.Schema
	// Component is set when the schema was registered as a named component.
	Component bool
}

// refSite is a derived $ref written into some schema. Its target is
// rewritten when component names are finalized, and so is a derived
// description, which ends in the name.
type refSite struct {
	target reflect.Type
	prefix string
	name   string
	label  string
}

// Cache is the state of one document generation: finished expansions,
// component names and definitions, and the types referenced but not yet
// defined. Expansions are stored at most once per type; references made to
// break a cycle are never stored.
//
// A Cache is safe for concurrent use, so several passes of the same
// generation may share one. No lock is held while a schema is being
// expanded: two passes may compute the same type, and the first store wins.
//
// Component names are settled by Schemas. Until then a type whose simple
// name collides with another may carry a provisional name.
type Cache struct {
	mu      sync.RWMutex
	entries map[reflect.Type]CacheEntry
	names   *namer
	final   map[reflect.Type]string
	defined map[reflect.Type]*oas.Schema
	refs    map[*oas.Schema]refSite
	pending []reflect.Type
	seen    map[reflect.Type]bool
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[reflect.Type]CacheEntry),
		names:   newNamer(),
		final:   make(map[reflect.Type]string),
		defined: make(map[reflect.Type]*oas.Schema),
		refs:    make(map[*oas.Schema]refSite),
		seen:    make(map[reflect.Type]bool),
	}
}

// Load returns the entry stored for t.
func (c *Cache) Load(t reflect.Type) (CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[t]
	return e, ok
}

// Store records e for t unless an entry exists. It returns the entry now
// held by the cache and whether e was the one stored.
func (c *Cache) Store(t reflect.Type, e CacheEntry) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[t]; ok {
		return existing, false
	}
	c.entries[t] = e
	return e, true
}

// Len returns the number of cached types.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Name returns the component name of t: the settled name once Schemas has
// run, a provisional one before.
func (c *Cache) Name(t reflect.Type) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.nameLocked(t)
}

func (c *Cache) nameLocked(t reflect.Type) string {
	if name, ok := c.final[t]; ok {
		return name
	}
	return c.names.name(t)
}

// Schemas settles the component names and returns the definitions keyed by
// them. Names depend only on the set of types defined or referenced, never
// on the order they were reached; every derived $ref handed out so far is
// rewritten to the settled name. Call it once the generation is complete.
func (c *Cache) Schemas() map[string]*oas.Schema {
	c.mu.Lock()
	defer c.mu.Unlock()

	claimants := make(map[reflect.Type]bool, len(c.defined)+len(c.seen))
	for t := range c.defined {
		claimants[t] = true
	}
	for t := range c.seen {
		claimants[t] = true
	}
	for _, site := range c.refs {
		claimants[site.target] = true
	}

	types := make([]reflect.Type, 0, len(claimants))
	for t := range claimants {
		types = append(types, t)
	}
	c.final = settleNames(types)

	for s, site := range c.refs {
		name := c.final[site.target]
		s.Ref = site.prefix + name
		if site.label != "" && s.Description == site.label+site.name {
			s.Description = site.label + name
		}
	}

	out := make(map[string]*oas.Schema, len(c.defined))
	for t, s := range c.defined {
		if name := c.final[t]; name != "" {
			out[name] = s
		}
	}
	return out
}

func (c *Cache) define(t reflect.Type, s *oas.Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.nameLocked(t) == "" {
		return
	}
	if _, ok := c.defined[t]; !ok {
		c.defined[t] = s
	}
}

func (c *Cache) componentName(t reflect.Type) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.defined[t]; !ok {
		return "", false
	}
	return c.nameLocked(t), true
}

// track registers s as a derived reference to target, made under name. A
// non-empty label is the part of a derived description before the name.
func (c *Cache) track(target reflect.Type, s *oas.Schema, prefix, name, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refs[s] = refSite{target: target, prefix: prefix, name: name, label: label}
}

// trackCopy registers cp as a derived reference when orig is one.
func (c *Cache) trackCopy(orig, cp *oas.Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if site, ok := c.refs[orig]; ok {
		c.refs[cp] = site
	}
}

func (c *Cache) referenced(t reflect.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seen[t] {
		c.seen[t] = true
		c.pending = append(c.pending, t)
	}
}

func (c *Cache) nextPending() (reflect.Type, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pending) == 0 {
		return nil, false
	}
	t := c.pending[0]
	c.pending = c.pending[1:]
	return t, true
}
