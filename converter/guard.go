package converter

import "github.com/vitalvas/schemagen/oas"

// RecursionGuard keeps guarded types from expanding forever. Per request it
// applies, in order: the explicit reference short-circuit, the cache, and
// the path stack cycle check, and only then delegates. References made to
// break a cycle are never cached, so another path can still produce the
// full expansion.
type RecursionGuard struct {
	classifier *Classifier
}

// NewRecursionGuard creates a guard using the given classifier.
func NewRecursionGuard(c *Classifier) *RecursionGuard {
	return &RecursionGuard{classifier: c}
}

// Resolve implements Resolver.
func (g *RecursionGuard) Resolve(req Request, pass *Pass, next Chain) *oas.Schema {
	t := req.Type
	if !g.classifier.Guarded(t) {
		return next.Next(req, pass)
	}

	if req.ResolveAsRef && req.SchemaProperty {
		pass.emit(EventExplicitRef, t)
		return pass.Reference(req)
	}

	if e, ok := pass.cache.Load(t); ok {
		pass.emit(EventCacheHit, t)
		return e.Schema
	}

	pass.push(t)
	if pass.revisited() {
		pass.pop()
		pass.emit(EventCycle, t)
		return pass.Reference(req)
	}

	pass.emit(EventExpand, t)
	s := next.Next(req, pass)
	pass.pop()

	if s == nil {
		return nil
	}
	e, _ := pass.cache.Store(t, CacheEntry{Schema: s, Component: pass.Defined(t)})
	return e.Schema
}
