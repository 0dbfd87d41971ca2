// Package converter turns Go types into OpenAPI 3.1 schemas without
// looping on self-referential or mutually referential models.
//
// A Converter is built once from a Config and holds an immutable chain of
// resolvers:
//
//	StreamUnwrapper -> RecursionGuard -> user resolvers -> WellKnown -> ModelResolver
//
// Every generation runs in its own Pass. The pass owns the stack of guarded
// types currently being expanded; a revisit of a type already on the stack
// becomes a $ref instead of another expansion. Finished expansions are kept
// in the pass Cache and reused by every later request for the same type.
//
//	conv, err := converter.New(converter.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
//	pass := conv.NewPass()
//	root := pass.Generate(Node{})     // {"$ref": "#/components/schemas/Node"}
//	components := pass.Components()   // {"Node": {...}}
//
// # Guarded types
//
// Named struct types from the packages listed in Config.Packages are
// guarded. Types implementing Enumer are always expanded inline.
//
// # Wrappers
//
// Channels, iter.Seq and the configured stream types become arrays of their
// element; configured futures become their element. When the element is a
// configured envelope, the envelope's payload is referenced instead.
//
// # Struct tags
//
// The openapi tag carries schema constraints. The ref key asks for a
// reference instead of an inline expansion:
//
//	type Node struct {
//	    Parent *Node `json:"parent,omitempty" openapi:"ref,description=Owning node"`
//	}
//
// See: https://spec.openapis.org/oas/v3.1.0#schema-object
package converter
