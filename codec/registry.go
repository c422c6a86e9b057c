// File: codec/registry.go
// Author: momentics <momentics@gmail.com>
//
// Type tags, the registry lookup contract and a map-backed registry.

package codec

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Tag is a stable name for a concrete type, used as the registry key.
// Named tags that do not correspond to a Go type serve as forward
// references resolved through a Context.
type Tag string

// TagFor returns the tag of T.
func TagFor[T any]() Tag {
	return tagOfType(reflect.TypeOf((*T)(nil)).Elem())
}

// TagOf returns the tag of v's dynamic type. A nil interface has tag "nil".
func TagOf(v any) Tag {
	if v == nil {
		return "nil"
	}
	return tagOfType(reflect.TypeOf(v))
}

func tagOfType(t reflect.Type) Tag {
	if t.PkgPath() != "" && t.Name() != "" {
		return Tag(t.PkgPath() + "." + t.Name())
	}
	return Tag(t.String())
}

// Registry resolves codecs by tag. Implementations must be safe for
// concurrent lookup.
type Registry interface {
	// Codec returns the codec registered for tag. ctx carries the resolution
	// scope for nested or forward references and may be nil.
	Codec(tag Tag, ctx *Context) (Codec[any], bool)
}

// ErrUnknownTag reports a tag with no codec, factory or alias behind it.
var ErrUnknownTag = errors.New("codec: unknown tag")

// Resolver is a Registry that can explain why a lookup failed, for example
// because a factory could not build its codec.
type Resolver interface {
	Registry

	// Resolve returns the codec for tag, or ErrUnknownTag, or the error of
	// the factory bound to tag.
	Resolve(tag Tag, ctx *Context) (Codec[any], error)
}

// Context lets a codec resolve the codecs of nested values through the
// registry that resolved it.
type Context struct {
	registry Registry
}

// NewContext binds a resolution context to r.
func NewContext(r Registry) *Context {
	return &Context{registry: r}
}

// Codec resolves tag within this context.
func (c *Context) Codec(tag Tag) (Codec[any], bool) {
	if c == nil || c.registry == nil {
		return nil, false
	}
	return c.registry.Codec(tag, c)
}

// Lookup resolves the codec for T from r.
func Lookup[T any](r Registry) (Codec[T], bool) {
	if r == nil {
		return nil, false
	}
	c, ok := r.Codec(TagFor[T](), nil)
	if !ok {
		return nil, false
	}
	return Typed[T](c), true
}

// Factory builds a codec lazily, with access to the resolution context for
// nested lookups.
type Factory func(ctx *Context) (Codec[any], error)

// MapRegistry is a thread-safe Registry keyed by Tag. Aliases map a name to
// another tag, which is how forward references are declared.
type MapRegistry struct {
	mu        sync.RWMutex
	codecs    map[Tag]Codec[any]
	factories map[Tag]Factory
	aliases   map[Tag]Tag
}

// NewMapRegistry creates an empty registry.
func NewMapRegistry() *MapRegistry {
	return &MapRegistry{
		codecs:    make(map[Tag]Codec[any]),
		factories: make(map[Tag]Factory),
		aliases:   make(map[Tag]Tag),
	}
}

// Register binds c to the tag of T.
func Register[T any](r *MapRegistry, c Codec[T]) {
	r.Put(TagFor[T](), Erase(c))
}

// Put binds c to tag, replacing any previous binding.
func (r *MapRegistry) Put(tag Tag, c Codec[any]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[tag] = c
	delete(r.factories, tag)
}

// PutFactory binds a lazily built codec to tag. The factory runs on every
// lookup; codecs are stateless so callers may cache the result.
func (r *MapRegistry) PutFactory(tag Tag, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[tag] = f
	delete(r.codecs, tag)
}

// Alias makes name resolve to whatever target resolves to.
func (r *MapRegistry) Alias(name, target Tag) error {
	if name == target {
		return fmt.Errorf("codec: alias %s refers to itself", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[name] = target
	return nil
}

// Unregister removes any binding for tag.
func (r *MapRegistry) Unregister(tag Tag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codecs, tag)
	delete(r.factories, tag)
	delete(r.aliases, tag)
}

// Tags lists the bound tags in sorted order.
func (r *MapRegistry) Tags() []Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tag, 0, len(r.codecs)+len(r.factories)+len(r.aliases))
	for t := range r.codecs {
		out = append(out, t)
	}
	for t := range r.factories {
		out = append(out, t)
	}
	for t := range r.aliases {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// maxAliasDepth bounds alias chains so a cycle cannot hang a lookup.
const maxAliasDepth = 16

// Codec implements Registry.
func (r *MapRegistry) Codec(tag Tag, ctx *Context) (Codec[any], bool) {
	c, err := r.Resolve(tag, ctx)
	return c, err == nil
}

// Resolve implements Resolver.
func (r *MapRegistry) Resolve(tag Tag, ctx *Context) (Codec[any], error) {
	if ctx == nil {
		ctx = NewContext(r)
	}
	r.mu.RLock()
	for i := 0; i < maxAliasDepth; i++ {
		target, ok := r.aliases[tag]
		if !ok {
			break
		}
		tag = target
	}
	c, ok := r.codecs[tag]
	f, hasFactory := r.factories[tag]
	r.mu.RUnlock()

	if ok {
		return c, nil
	}
	if !hasFactory {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTag, tag)
	}
	// Factories run unlocked: they may recurse into ctx.Codec.
	built, err := f(ctx)
	if err != nil {
		return nil, fmt.Errorf("codec: factory for %s: %w", tag, err)
	}
	if built == nil {
		return nil, fmt.Errorf("codec: factory for %s returned no codec", tag)
	}
	return built, nil
}
