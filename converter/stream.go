package converter

import (
	"reflect"

	"github.com/vitalvas/schemagen/oas"
)

type wrapperShape int

const (
	notWrapper wrapperShape = iota
	singleValue
	multiValue
)

// StreamUnwrapper pierces asynchronous and stream wrapper types. A request
// for a wrapper is rewritten to target its element and sent through the
// whole pipeline again, so the element still passes the recursion guard.
type StreamUnwrapper struct {
	provider  TypeProvider
	channels  bool
	streams   map[string]bool
	futures   map[string]bool
	envelopes map[string]bool
}

// NewStreamUnwrapper creates an unwrapper for the wrapper names in cfg.
func NewStreamUnwrapper(cfg Config, provider TypeProvider) *StreamUnwrapper {
	if provider == nil {
		provider = ReflectProvider{}
	}
	return &StreamUnwrapper{
		provider:  provider,
		channels:  !cfg.DisableBuiltinStreams,
		streams:   nameSet(cfg.streams()),
		futures:   nameSet(cfg.Futures),
		envelopes: nameSet(cfg.Envelopes),
	}
}

// Resolve implements Resolver.
//
// A wrapper without a usable element type yields a string schema. An
// element that is itself an envelope is replaced by the envelope payload
// and resolved as a reference. Otherwise a single-value wrapper resolves to
// its element and a stream to an array of its element. The array is
// resolved outside property position, so its items match the element
// resolved on its own.
func (u *StreamUnwrapper) Resolve(req Request, pass *Pass, next Chain) *oas.Schema {
	shape := u.shape(req.Type)
	if shape == notWrapper {
		return next.Next(req, pass)
	}

	elem := u.provider.BoundType(req.Type)
	if indeterminate(elem) {
		pass.emit(EventFallback, req.Type)
		return &oas.Schema{Type: oas.TypeString("string")}
	}

	if u.envelopes[u.provider.TypeName(elem)] {
		payload := u.provider.BoundType(elem)
		if indeterminate(payload) {
			pass.emit(EventFallback, elem)
			return &oas.Schema{Type: oas.TypeString("string")}
		}

		pass.emit(EventUnwrap, req.Type)
		rewritten := Request{
			Type:         payload,
			Parent:       req.Parent,
			PropertyName: req.PropertyName,
			ResolveAsRef: true,
		}
		return pass.Embed(payload, pass.Resolve(rewritten))
	}

	pass.emit(EventUnwrap, req.Type)
	if shape == singleValue {
		return pass.Embed(elem, pass.Resolve(req.WithType(elem)))
	}

	return pass.Resolve(Request{
		Type:         reflect.SliceOf(elem),
		Parent:       req.Parent,
		PropertyName: req.PropertyName,
		ResolveAsRef: true,
	})
}

func (u *StreamUnwrapper) shape(t reflect.Type) wrapperShape {
	if t == nil {
		return notWrapper
	}
	if u.channels && t.Kind() == reflect.Chan {
		return multiValue
	}

	name := u.provider.TypeName(t)
	switch {
	case name == "":
		return notWrapper
	case u.streams[name]:
		return multiValue
	case u.futures[name]:
		return singleValue
	}
	return notWrapper
}

// indeterminate reports an element type that carries no shape: missing,
// or the empty interface.
func indeterminate(t reflect.Type) bool {
	return t == nil || (t.Kind() == reflect.Interface && t.NumMethod() == 0)
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
