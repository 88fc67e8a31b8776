package jsonpointer

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// GetTarget evaluates pointer against node and returns the node it points at. Document
// and alias nodes are followed, and mapping lookups fall back to YAML merge keys.
func GetTarget(node *yaml.Node, pointer JSONPointer) (*yaml.Node, error) {
	tokens, err := pointer.tokens()
	if err != nil {
		return nil, ErrValidation.Wrap(err)
	}

	currentPath := ""
	current, err := resolve(node, "/")
	if err != nil {
		return nil, err
	}

	for _, t := range tokens {
		currentPath = buildPath(currentPath, t)

		switch current.Kind {
		case yaml.MappingNode:
			current, err = getYamlMappingTarget(current, t, currentPath)
		case yaml.SequenceNode:
			current, err = getYamlSequenceTarget(current, t, currentPath)
		case yaml.ScalarNode:
			return nil, ErrInvalidPath.Wrap(fmt.Errorf("cannot navigate through scalar yaml node at %s", currentPath))
		default:
			return nil, ErrInvalidPath.Wrap(fmt.Errorf("unsupported yaml node kind %v at %s", current.Kind, currentPath))
		}
		if err != nil {
			return nil, err
		}

		if current, err = resolve(current, currentPath); err != nil {
			return nil, err
		}
	}

	return current, nil
}

// resolve follows aliases and unwraps document nodes.
func resolve(node *yaml.Node, currentPath string) (*yaml.Node, error) {
	for {
		if node == nil {
			return nil, ErrNotFound.Wrap(fmt.Errorf("yaml node is nil at %s", currentPath))
		}

		switch node.Kind {
		case yaml.AliasNode:
			node = node.Alias
		case yaml.DocumentNode:
			if len(node.Content) == 0 {
				return nil, ErrNotFound.Wrap(fmt.Errorf("document node has no content at %s", currentPath))
			}
			node = node.Content[0]
		default:
			return node, nil
		}
	}
}

func getYamlMappingTarget(node *yaml.Node, currentPart token, currentPath string) (*yaml.Node, error) {
	key := currentPart.unescape()

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, err := resolve(node.Content[i], currentPath)
		if err != nil {
			continue
		}

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return node.Content[i+1], nil
		}
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Kind != yaml.ScalarNode || node.Content[i].Value != "<<" {
			continue
		}

		merged, err := resolve(node.Content[i+1], currentPath)
		if err != nil || merged.Kind != yaml.MappingNode {
			continue
		}

		if target, err := getYamlMappingTarget(merged, currentPart, currentPath); err == nil {
			return target, nil
		}
	}

	return nil, ErrNotFound.Wrap(fmt.Errorf("key %s not found in yaml mapping at %s", key, currentPath))
}

func getYamlSequenceTarget(node *yaml.Node, currentPart token, currentPath string) (*yaml.Node, error) {
	if !currentPart.index {
		return nil, ErrInvalidPath.Wrap(fmt.Errorf("expected index, got %s at %s", currentPart.raw, currentPath))
	}

	index, err := strconv.Atoi(currentPart.raw)
	if err != nil {
		return nil, ErrInvalidPath.Wrap(fmt.Errorf("invalid index %s at %s", currentPart.raw, currentPath))
	}

	if index < 0 || index >= len(node.Content) {
		return nil, ErrNotFound.Wrap(fmt.Errorf("index %d out of range for yaml sequence of length %d at %s", index, len(node.Content), currentPath))
	}

	return node.Content[index], nil
}
