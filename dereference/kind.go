package dereference

import (
	"github.com/29next/devdocs/yml"
	"gopkg.in/yaml.v3"
)

// Kind is the structural shape of a schema node as far as dereferencing is concerned.
type Kind int

const (
	// KindLeaf is anything without nested structure the resolver acts on: primitives,
	// enums, boolean schemas and shapes it does not recognise.
	KindLeaf Kind = iota
	// KindObject has a properties mapping.
	KindObject
	// KindReference has a $ref.
	KindReference
	// KindArray has an items schema.
	KindArray
	// KindAllOf has a non-empty allOf list.
	KindAllOf
	// KindOneOf has a non-empty oneOf list.
	KindOneOf
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindReference:
		return "reference"
	case KindArray:
		return "array"
	case KindAllOf:
		return "allOf"
	case KindOneOf:
		return "oneOf"
	default:
		return "leaf"
	}
}

const (
	keyRef        = "$ref"
	keyItems      = "items"
	keyAllOf      = "allOf"
	keyOneOf      = "oneOf"
	keyProperties = "properties"
	keyReadOnly   = "readOnly"
)

// KindOf classifies schema. Checks run in a fixed order (items, $ref, allOf, oneOf,
// properties) so a node carrying several keywords always lands in the same kind.
func KindOf(schema *yaml.Node) Kind {
	schema = yml.ResolveAlias(schema)
	if schema == nil || schema.Kind != yaml.MappingNode {
		return KindLeaf
	}

	if items, ok := yml.GetMapElement(schema, keyItems); ok && items.Kind == yaml.MappingNode {
		return KindArray
	}
	if _, ok := refOf(schema); ok {
		return KindReference
	}
	if alts, ok := yml.GetMapElement(schema, keyAllOf); ok && alts.Kind == yaml.SequenceNode && len(alts.Content) > 0 {
		return KindAllOf
	}
	if alts, ok := yml.GetMapElement(schema, keyOneOf); ok && alts.Kind == yaml.SequenceNode && len(alts.Content) > 0 {
		return KindOneOf
	}
	if props, ok := yml.GetMapElement(schema, keyProperties); ok && props.Kind == yaml.MappingNode {
		return KindObject
	}

	return KindLeaf
}

// refOf returns the $ref string of schema, if it has one.
func refOf(schema *yaml.Node) (string, bool) {
	ref, ok := yml.GetMapElement(schema, keyRef)
	if !ok || ref.Kind != yaml.ScalarNode {
		return "", false
	}
	return ref.Value, true
}

// IsReference reports whether schema is a $ref.
func IsReference(schema *yaml.Node) bool {
	schema = yml.ResolveAlias(schema)
	if schema == nil || schema.Kind != yaml.MappingNode {
		return false
	}
	_, ok := refOf(schema)
	return ok
}
