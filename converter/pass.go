package converter

import (
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/vitalvas/schemagen/oas"
)

// maxResolveDepth bounds the nesting of Resolve calls on one pass. Types
// that keep producing new requests without ever revisiting a named
// composite, such as a channel of itself, stop there.
const maxResolveDepth = 512

// EventKind names a pipeline decision reported to a TraceFunc.
type EventKind string

const (
	// EventExpand is emitted when a guarded type is handed down the chain.
	EventExpand EventKind = "expand"
	// EventCacheHit is emitted when a finished expansion is reused.
	EventCacheHit EventKind = "cache-hit"
	// EventCycle is emitted when a revisit is turned into a reference.
	EventCycle EventKind = "cycle"
	// EventExplicitRef is emitted for the explicit reference short-circuit.
	EventExplicitRef EventKind = "explicit-ref"
	// EventUnwrap is emitted when a stream wrapper is rewritten.
	EventUnwrap EventKind = "unwrap"
	// EventFallback is emitted when a wrapper has no usable element type
	// or a request is nested past maxResolveDepth.
	EventFallback EventKind = "fallback"
)

// Event describes one pipeline decision.
type Event struct {
	Pass  uuid.UUID
	Kind  EventKind
	Type  reflect.Type
	Depth int
}

// TraceFunc receives pipeline events. It is called synchronously on the
// goroutine running the pass.
type TraceFunc func(Event)

// Pass is one top-level generation invocation. It owns the path stack;
// finished expansions, component names and definitions live in its Cache,
// which may be shared with other passes of the same generation. A Pass must
// not be used from more than one goroutine.
type Pass struct {
	id     uuid.UUID
	chain  Chain
	prefix string
	trace  TraceFunc
	stack  []reflect.Type
	active map[reflect.Type]bool
	depth  int
	cache  *Cache
}

func newPass(chain Chain, prefix string, cache *Cache, trace TraceFunc) *Pass {
	if cache == nil {
		cache = NewCache()
	}
	return &Pass{
		id:     uuid.New(),
		chain:  chain,
		prefix: prefix,
		trace:  trace,
		active: make(map[reflect.Type]bool),
		cache:  cache,
	}
}

// ID identifies the pass in trace events.
func (p *Pass) ID() uuid.UUID {
	return p.id
}

// Depth returns the number of guarded types currently in progress.
func (p *Pass) Depth() int {
	return len(p.stack)
}

// Cache returns the generation state used by the pass.
func (p *Pass) Cache() *Cache {
	return p.cache
}

// Resolve runs req through the whole chain, starting at its first stage.
// Stages use it for every rewritten or nested request. Past
// maxResolveDepth nested calls it yields the empty schema.
func (p *Pass) Resolve(req Request) *oas.Schema {
	if req.Type == nil {
		return nil
	}
	if p.depth >= maxResolveDepth {
		p.emit(EventFallback, req.Type)
		return &oas.Schema{}
	}

	p.depth++
	defer func() { p.depth-- }()
	return p.chain.Next(req, p)
}

// Generate produces the schema for the type of v at the root position.
// Component types come back as a $ref; everything else inline.
func (p *Pass) Generate(v any) *oas.Schema {
	if v == nil {
		return nil
	}
	return p.GenerateType(reflect.TypeOf(v))
}

// GenerateType is Generate for a reflect.Type.
func (p *Pass) GenerateType(t reflect.Type) *oas.Schema {
	if t == nil {
		return nil
	}
	return p.Embed(t, p.Resolve(Request{Type: t}))
}

// Embed returns the schema to place where t is used: a plain reference
// when t is a registered component, s otherwise.
func (p *Pass) Embed(t reflect.Type, s *oas.Schema) *oas.Schema {
	if s == nil || s.IsRef() {
		return s
	}
	if name, ok := p.cache.componentName(t); ok {
		ref := &oas.Schema{Ref: p.prefix + name}
		p.cache.track(t, ref, p.prefix, name, "")
		return ref
	}
	return s
}

// ComponentName returns the component name of t. Names are settled by
// Components; before that a colliding name may still change.
func (p *Pass) ComponentName(t reflect.Type) string {
	t = deref(t)
	if t == nil {
		return ""
	}
	return p.cache.Name(t)
}

// Define registers s as the component for t. The first definition of a
// name is kept.
func (p *Pass) Define(t reflect.Type, s *oas.Schema) {
	if t = deref(t); t == nil || s == nil {
		return
	}
	p.cache.define(t, s)
}

// Defined reports whether t has been registered as a component.
func (p *Pass) Defined(t reflect.Type) bool {
	_, ok := p.cache.componentName(deref(t))
	return ok
}

// Reference synthesizes the reference schema for req and remembers the
// target so Components can define it if nothing else does.
func (p *Pass) Reference(req Request) *oas.Schema {
	t := deref(req.Type)
	if t == nil {
		return Reference(req, "", p.prefix)
	}
	p.cache.referenced(t)

	name := p.ComponentName(t)
	s := Reference(req, name, p.prefix)
	if s.Ref != p.prefix+name {
		return s
	}

	var label string
	if _, ok := req.SchemaAnnotation(); !ok {
		label = strings.TrimSuffix(s.Description, name)
	}
	p.cache.track(t, s, p.prefix, name, label)
	return s
}

// Components returns the component schemas collected so far. Types that
// were only referenced are expanded first, so every derived $ref has a
// definition. Component names are settled here and the $ref values
// already produced are updated to match.
func (p *Pass) Components() map[string]*oas.Schema {
	for {
		t, ok := p.cache.nextPending()
		if !ok {
			break
		}
		if !p.Defined(t) {
			p.Resolve(Request{Type: t})
		}
	}
	return p.cache.Schemas()
}

// copied reports that cp is a copy of s, so a $ref in it follows the
// component name of s.
func (p *Pass) copied(s, cp *oas.Schema) {
	if s.IsRef() {
		p.cache.trackCopy(s, cp)
	}
}

// enter marks t as being built by a resolver. It reports false when t is
// already in progress on this pass.
func (p *Pass) enter(t reflect.Type) bool {
	if p.active[t] {
		return false
	}
	p.active[t] = true
	return true
}

func (p *Pass) leave(t reflect.Type) {
	delete(p.active, t)
}

func (p *Pass) emit(kind EventKind, t reflect.Type) {
	if p.trace == nil {
		return
	}
	p.trace(Event{Pass: p.id, Kind: kind, Type: t, Depth: len(p.stack)})
}

func (p *Pass) push(t reflect.Type) {
	p.stack = append(p.stack, t)
}

func (p *Pass) pop() {
	p.stack = p.stack[:len(p.stack)-1]
}

// revisited reports whether the type on top of the stack already occurs
// below it. The scan starts one frame under the top and walks down.
func (p *Pass) revisited() bool {
	top := len(p.stack) - 1
	if top < 1 {
		return false
	}
	t := p.stack[top]
	for i := top - 1; i >= 0; i-- {
		if p.stack[i] == t {
			return true
		}
	}
	return false
}

func deref(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
