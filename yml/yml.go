// Package yml provides helpers for building, reading and copying yaml.Node trees.
package yml

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

func CreateStringNode(value string) *yaml.Node {
	return &yaml.Node{
		Value: value,
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
	}
}

func CreateIntNode(value int64) *yaml.Node {
	return &yaml.Node{
		Value: strconv.FormatInt(value, 10),
		Kind:  yaml.ScalarNode,
		Tag:   "!!int",
	}
}

func CreateMapNode(content ...*yaml.Node) *yaml.Node {
	return &yaml.Node{
		Content: content,
		Kind:    yaml.MappingNode,
		Tag:     "!!map",
	}
}

func CreateSequenceNode(elements ...*yaml.Node) *yaml.Node {
	return &yaml.Node{
		Content: elements,
		Kind:    yaml.SequenceNode,
		Tag:     "!!seq",
	}
}

// ResolveAlias follows alias nodes until a concrete node is reached.
func ResolveAlias(node *yaml.Node) *yaml.Node {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case yaml.AliasNode:
		return ResolveAlias(node.Alias)
	default:
		return node
	}
}

// ResolveDocument returns the root mapping of a document node, or the node itself.
func ResolveDocument(node *yaml.Node) *yaml.Node {
	node = ResolveAlias(node)
	if node != nil && node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		return ResolveAlias(node.Content[0])
	}
	return node
}

func GetMapElementNodes(mapNode *yaml.Node, key string) (*yaml.Node, *yaml.Node, bool) {
	resolvedMapNode := ResolveAlias(mapNode)
	if resolvedMapNode == nil || resolvedMapNode.Kind != yaml.MappingNode {
		return nil, nil, false
	}

	for i := 0; i+1 < len(resolvedMapNode.Content); i += 2 {
		keyNode := resolvedMapNode.Content[i]
		if ResolveAlias(keyNode).Value == key {
			return keyNode, ResolveAlias(resolvedMapNode.Content[i+1]), true
		}
	}

	return nil, nil, false
}

// GetMapElement returns the value stored under key in mapNode.
func GetMapElement(mapNode *yaml.Node, key string) (*yaml.Node, bool) {
	_, valueNode, ok := GetMapElementNodes(mapNode, key)
	return valueNode, ok
}

// Lookup walks mapping keys from node and returns the value at the end of path.
func Lookup(node *yaml.Node, path ...string) (*yaml.Node, bool) {
	current := ResolveDocument(node)
	for _, key := range path {
		next, ok := GetMapElement(current, key)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, current != nil
}

// SetMapElement replaces the value under key, or appends key and value when absent.
func SetMapElement(mapNode *yaml.Node, key string, valueNode *yaml.Node) {
	resolvedMapNode := ResolveAlias(mapNode)

	for i := 0; i+1 < len(resolvedMapNode.Content); i += 2 {
		if ResolveAlias(resolvedMapNode.Content[i]).Value == key {
			resolvedMapNode.Content[i+1] = valueNode
			return
		}
	}

	resolvedMapNode.Content = append(resolvedMapNode.Content, CreateStringNode(key), valueNode)
}

func DeleteMapNodeElement(mapNode *yaml.Node, key string) bool {
	resolvedMapNode := ResolveAlias(mapNode)
	if resolvedMapNode == nil || resolvedMapNode.Kind != yaml.MappingNode {
		return false
	}

	for i := 0; i+1 < len(resolvedMapNode.Content); i += 2 {
		if ResolveAlias(resolvedMapNode.Content[i]).Value == key {
			resolvedMapNode.Content = append(resolvedMapNode.Content[:i:i], resolvedMapNode.Content[i+2:]...)
			return true
		}
	}

	return false
}

// Clone returns a deep copy of node. Aliases are expanded so the copy shares nothing with the source.
func Clone(node *yaml.Node) *yaml.Node {
	if node == nil {
		return nil
	}

	if node.Kind == yaml.AliasNode {
		return Clone(node.Alias)
	}

	newNode := &yaml.Node{
		Kind:        node.Kind,
		Style:       node.Style,
		Tag:         node.Tag,
		Value:       node.Value,
		HeadComment: node.HeadComment,
		LineComment: node.LineComment,
		FootComment: node.FootComment,
		Line:        node.Line,
		Column:      node.Column,
	}

	if node.Content != nil {
		newNode.Content = make([]*yaml.Node, len(node.Content))
		for i, child := range node.Content {
			newNode.Content[i] = Clone(child)
		}
	}

	return newNode
}

// EqualNodes compares two yaml.Node instances for equality.
// It performs a deep comparison of the essential fields.
func EqualNodes(a, b *yaml.Node) bool {
	resolvedA := ResolveAlias(a)
	resolvedB := ResolveAlias(b)

	if resolvedA == nil || resolvedB == nil {
		return resolvedA == resolvedB
	}

	if resolvedA.Kind != resolvedB.Kind || resolvedA.Tag != resolvedB.Tag || resolvedA.Value != resolvedB.Value {
		return false
	}

	if len(resolvedA.Content) != len(resolvedB.Content) {
		return false
	}
	for i, contentA := range resolvedA.Content {
		if !EqualNodes(contentA, resolvedB.Content[i]) {
			return false
		}
	}

	return true
}

// NodeKindToString returns a human-readable string representation of a yaml.Kind.
func NodeKindToString(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "object"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
