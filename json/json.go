// Package json converts yaml.Node trees to JSON without reordering keys.
package json

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/29next/devdocs/sequencedmap"
	"github.com/29next/devdocs/yml"
	"gopkg.in/yaml.v3"
)

// YAMLToJSON writes node to w as JSON, keeping mapping keys in document order.
func YAMLToJSON(node *yaml.Node, indentation int, w io.Writer) error {
	v, err := ToValue(node)
	if err != nil {
		return err
	}

	e := json.NewEncoder(w)
	e.SetIndent("", strings.Repeat(" ", indentation))
	e.SetEscapeHTML(false)

	return e.Encode(v)
}

// ToValue converts node into plain Go values. Mappings become ordered maps so that
// encoding/json output follows the document.
func ToValue(node *yaml.Node) (any, error) {
	if node == nil {
		return nil, nil
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return ToValue(node.Content[0])
	case yaml.SequenceNode:
		v := make([]any, 0, len(node.Content))
		for _, n := range node.Content {
			vv, err := ToValue(n)
			if err != nil {
				return nil, err
			}
			v = append(v, vv)
		}
		return v, nil
	case yaml.MappingNode:
		return handleMappingNode(node)
	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case yaml.AliasNode:
		return ToValue(node.Alias)
	default:
		return nil, fmt.Errorf("unknown node kind: %s", yml.NodeKindToString(node.Kind))
	}
}

func handleMappingNode(node *yaml.Node) (any, error) {
	v := sequencedmap.New[string, any]()
	for i := 0; i+1 < len(node.Content); i += 2 {
		kv, err := ToValue(node.Content[i])
		if err != nil {
			return nil, err
		}

		key, ok := kv.(string)
		if !ok {
			keyData, err := json.Marshal(kv)
			if err != nil {
				return nil, err
			}
			key = string(keyData)
		}

		vv, err := ToValue(node.Content[i+1])
		if err != nil {
			return nil, err
		}

		v.Set(key, vv)
	}

	return v, nil
}
