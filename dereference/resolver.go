// Package dereference inlines named schema references into self-contained schema trees.
//
// Resolution works on yaml.Node trees taken from an API description's
// components.schemas. Every $ref, array-of-$ref, allOf and oneOf-of-$ref reachable from
// the starting schema is replaced by a fresh copy of its target, resolved the same way,
// and readOnly markers are dropped from every property along the way. The source nodes
// are never modified.
package dereference

import (
	"net/url"
	"slices"
	"strings"

	"github.com/29next/devdocs/errors"
	"github.com/29next/devdocs/jsonpointer"
	"github.com/29next/devdocs/yml"
	"gopkg.in/yaml.v3"
)

const (
	// ErrSchemaResolution is returned when a reference names a schema that does not exist,
	// or is not a local components.schemas reference.
	ErrSchemaResolution = errors.Error("schema resolution failed")
	// ErrCycleDetected is returned when resolving a schema requires resolving itself.
	ErrCycleDetected = errors.Error("schema reference cycle detected")
	// ErrMaxDepthExceeded is returned when nesting goes deeper than the configured limit.
	ErrMaxDepthExceeded = errors.Error("schema nesting exceeds maximum depth")
)

// ComponentSchemaPrefix is the only reference form the resolver follows.
const ComponentSchemaPrefix = "#/components/schemas/"

// DefaultMaxDepth bounds how deeply nested schemas are descended.
const DefaultMaxDepth = 128

// ResolutionPolicy decides which alternative of an allOf or oneOf stands in for the composite.
type ResolutionPolicy int

const (
	// FirstAlternative replaces the composite with its first listed alternative. For oneOf
	// the first alternative must be a reference, otherwise the composite is left untouched.
	FirstAlternative ResolutionPolicy = iota
)

func (p ResolutionPolicy) String() string {
	switch p {
	case FirstAlternative:
		return "first-alternative"
	default:
		return "unknown"
	}
}

// pick returns the alternative standing in for a composite of the given kind.
func (p ResolutionPolicy) pick(kind Kind, alternatives *yaml.Node) (*yaml.Node, bool) {
	if alternatives == nil || len(alternatives.Content) == 0 {
		return nil, false
	}

	first := yml.ResolveAlias(alternatives.Content[0])
	if kind == KindOneOf && !IsReference(first) {
		return nil, false
	}

	return first, true
}

// SchemaSource looks up named schemas.
type SchemaSource interface {
	Schema(name string) (*yaml.Node, bool)
}

// Schemas is a SchemaSource backed by a components.schemas mapping node.
type Schemas struct {
	node *yaml.Node
}

var _ SchemaSource = Schemas{}

// NewSchemas wraps a components.schemas mapping node.
func NewSchemas(node *yaml.Node) Schemas {
	return Schemas{node: node}
}

func (s Schemas) Schema(name string) (*yaml.Node, bool) {
	return yml.GetMapElement(s.node, name)
}

// RefName returns the schema name a local components.schemas reference points at.
func RefName(ref string) (string, error) {
	fragment, ok := strings.CutPrefix(ref, "#")
	if !ok {
		return "", ErrSchemaResolution.Wrapf("unsupported reference %q, expected %s<name>", ref, ComponentSchemaPrefix)
	}

	if decoded, err := url.PathUnescape(fragment); err == nil {
		fragment = decoded
	}

	parts, err := jsonpointer.JSONPointer(fragment).Parts()
	if err != nil || len(parts) != 3 || parts[0] != "components" || parts[1] != "schemas" {
		return "", ErrSchemaResolution.Wrapf("unsupported reference %q, expected %s<name>", ref, ComponentSchemaPrefix)
	}

	return parts[2], nil
}

// Option configures a Resolver.
type Option func(r *Resolver)

// WithPolicy sets the composite resolution policy. Defaults to FirstAlternative.
func WithPolicy(policy ResolutionPolicy) Option {
	return func(r *Resolver) {
		r.policy = policy
	}
}

// WithMaxDepth sets how many nested schema levels may be descended. Defaults to DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// Resolver dereferences schemas from a single SchemaSource.
//
// A Resolver remembers every named schema it has fully resolved and hands out copies on
// later requests, so one Resolver should be used for a whole run. It is not safe for
// concurrent use; create one per goroutine.
type Resolver struct {
	source   SchemaSource
	policy   ResolutionPolicy
	maxDepth int

	resolved map[string]cacheEntry
}

// cacheEntry is a fully resolved named schema. height is how many nested levels below the
// schema itself resolving it descended, so a copy inlined at depth d reaches d+height.
type cacheEntry struct {
	node   *yaml.Node
	height int
}

// New creates a Resolver over source.
func New(source SchemaSource, opts ...Option) *Resolver {
	r := &Resolver{
		source:   source,
		policy:   FirstAlternative,
		maxDepth: DefaultMaxDepth,
		resolved: make(map[string]cacheEntry),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve is shorthand for New(source, opts...).Resolve(schema).
func Resolve(source SchemaSource, schema *yaml.Node, opts ...Option) (*yaml.Node, error) {
	return New(source, opts...).Resolve(schema)
}

// Resolve returns a fully inlined copy of schema. The returned tree is owned by the caller.
func (r *Resolver) Resolve(schema *yaml.Node) (*yaml.Node, error) {
	resolved, _, err := r.resolveNode(schema, frame{})
	return resolved, err
}

// ResolveRef resolves a reference such as "#/components/schemas/Order".
func (r *Resolver) ResolveRef(ref string) (*yaml.Node, error) {
	resolved, _, err := r.resolveRef(ref, frame{})
	return resolved, err
}

// ResolveName resolves the schema registered under name.
func (r *Resolver) ResolveName(name string) (*yaml.Node, error) {
	resolved, _, err := r.resolveName(name, frame{})
	return resolved, err
}

// frame is the resolution state of one branch of the tree. It is passed by value and
// chain is copied on push, so sibling branches never observe each other's state.
type frame struct {
	chain []string
	depth int
}

func (f frame) push(name string) frame {
	return frame{
		chain: append(slices.Clip(f.chain), name),
		depth: f.depth,
	}
}

func (f frame) deeper() frame {
	return frame{chain: f.chain, depth: f.depth + 1}
}

func (f frame) location() string {
	if len(f.chain) == 0 {
		return "<root>"
	}
	return strings.Join(f.chain, " -> ")
}

// The resolve functions return the resolved copy and the deepest level its resolution
// reached.
func (r *Resolver) resolveRef(ref string, f frame) (*yaml.Node, int, error) {
	name, err := RefName(ref)
	if err != nil {
		return nil, 0, err
	}

	return r.resolveName(name, f)
}

func (r *Resolver) resolveName(name string, f frame) (*yaml.Node, int, error) {
	if slices.Contains(f.chain, name) {
		return nil, 0, ErrCycleDetected.Wrapf("%s -> %s", f.location(), name)
	}

	if cached, ok := r.resolved[name]; ok {
		reached := f.depth + cached.height
		if reached > r.maxDepth {
			return nil, 0, ErrMaxDepthExceeded.Wrapf("limit %d reached in %s", r.maxDepth, f.push(name).location())
		}
		return yml.Clone(cached.node), reached, nil
	}

	target, ok := r.source.Schema(name)
	if !ok {
		return nil, 0, ErrSchemaResolution.Wrapf("schema %q referenced from %s does not exist", name, f.location())
	}

	resolved, reached, err := r.resolveNode(target, f.push(name))
	if err != nil {
		return nil, 0, err
	}

	r.resolved[name] = cacheEntry{node: resolved, height: reached - f.depth}

	return yml.Clone(resolved), reached, nil
}

func (r *Resolver) resolveNode(node *yaml.Node, f frame) (*yaml.Node, int, error) {
	node = yml.ResolveAlias(node)

	if f.depth > r.maxDepth {
		return nil, 0, ErrMaxDepthExceeded.Wrapf("limit %d reached in %s", r.maxDepth, f.location())
	}

	kind := KindOf(node)

	switch kind {
	case KindReference:
		ref, _ := refOf(node)
		return r.resolveRef(ref, f)
	case KindAllOf, KindOneOf:
		keyword := keyAllOf
		if kind == KindOneOf {
			keyword = keyOneOf
		}
		alternatives, _ := yml.GetMapElement(node, keyword)

		chosen, ok := r.policy.pick(kind, alternatives)
		if !ok {
			return yml.Clone(node), f.depth, nil
		}
		return r.resolveNode(chosen, f.deeper())
	case KindArray:
		return r.resolveArray(node, f)
	case KindObject:
		return r.resolveObject(node, f)
	default:
		return yml.Clone(node), f.depth, nil
	}
}

// resolveArray copies an array schema with its items resolved. Other array keywords are kept.
func (r *Resolver) resolveArray(node *yaml.Node, f frame) (*yaml.Node, int, error) {
	reached := f.depth

	out, err := r.copyMapping(node, func(key string, value *yaml.Node) (*yaml.Node, error) {
		if key != keyItems {
			return yml.Clone(value), nil
		}

		items, itemsReached, err := r.resolveNode(value, f.deeper())
		reached = max(reached, itemsReached)
		return items, err
	})

	return out, reached, err
}

// resolveObject copies an object schema with every property resolved and readOnly removed.
func (r *Resolver) resolveObject(node *yaml.Node, f frame) (*yaml.Node, int, error) {
	reached := f.depth

	out, err := r.copyMapping(node, func(key string, value *yaml.Node) (*yaml.Node, error) {
		if key != keyProperties {
			return yml.Clone(value), nil
		}

		return r.copyMapping(value, func(name string, property *yaml.Node) (*yaml.Node, error) {
			resolved, propertyReached, err := r.resolveNode(property, f.deeper())
			if err != nil {
				return nil, err
			}
			reached = max(reached, propertyReached)

			if resolved != nil && resolved.Kind == yaml.MappingNode {
				yml.DeleteMapNodeElement(resolved, keyReadOnly)
			}

			return resolved, nil
		})
	})

	return out, reached, err
}

// copyMapping builds a new mapping node with every value passed through fn.
func (r *Resolver) copyMapping(node *yaml.Node, fn func(key string, value *yaml.Node) (*yaml.Node, error)) (*yaml.Node, error) {
	node = yml.ResolveAlias(node)

	out := &yaml.Node{
		Kind:        node.Kind,
		Style:       node.Style,
		Tag:         node.Tag,
		HeadComment: node.HeadComment,
		LineComment: node.LineComment,
		FootComment: node.FootComment,
		Content:     make([]*yaml.Node, 0, len(node.Content)),
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := yml.ResolveAlias(node.Content[i])

		value, err := fn(keyNode.Value, node.Content[i+1])
		if err != nil {
			return nil, err
		}

		out.Content = append(out.Content, yml.Clone(keyNode), value)
	}

	return out, nil
}
