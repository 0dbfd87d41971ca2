package converter

import "github.com/vitalvas/schemagen/oas"

// Resolver is one stage of the resolution pipeline. It either produces a
// schema, or hands the request to next, or returns nil to signal that it
// has no opinion. A stage delegates at most once per request.
type Resolver interface {
	Resolve(req Request, pass *Pass, next Chain) *oas.Schema
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(req Request, pass *Pass, next Chain) *oas.Schema

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(req Request, pass *Pass, next Chain) *oas.Schema {
	return f(req, pass, next)
}

// Chain is the ordered remainder of the pipeline. It is never mutated:
// Next hands the head the tail, so a stage can only advance it by one.
type Chain []Resolver

// Next passes req to the first stage with the rest of the chain. It returns
// nil when the chain is exhausted.
func (c Chain) Next(req Request, pass *Pass) *oas.Schema {
	if len(c) == 0 {
		return nil
	}
	return c[0].Resolve(req, pass, c[1:])
}
