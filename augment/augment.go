// Package augment merges supplementary metadata into a downloaded API description.
//
// Each Addition names a JSONPath (RFC 9535) target and a mapping of keys to set on every
// node the path selects. Keys already present are replaced unless their value is unchanged,
// new keys are appended.
package augment

import (
	"strings"

	"github.com/29next/devdocs/errors"
	"github.com/29next/devdocs/yml"
	"github.com/speakeasy-api/jsonpath/pkg/jsonpath"
	"github.com/speakeasy-api/jsonpath/pkg/jsonpath/config"
	"gopkg.in/yaml.v3"
)

const (
	// ErrInvalidTarget is returned for a target that is not a valid JSONPath, or that selects
	// something other than a mapping.
	ErrInvalidTarget = errors.Error("invalid addition target")
	// ErrTargetNotFound is returned when a target selects nothing.
	ErrTargetNotFound = errors.Error("addition target not found")
	// ErrInvalidUpdate is returned when an addition's update is not a mapping.
	ErrInvalidUpdate = errors.Error("invalid addition update")
)

// Addition sets the keys of Update on every mapping Target selects.
type Addition struct {
	Target string
	Update *yaml.Node
}

// ForAPI returns the additions applied to every published API: the description goes into
// info, and the keys of extra (servers, security, ...) into the document root. extra may be nil.
func ForAPI(description string, extra *yaml.Node) []Addition {
	var additions []Addition

	if description != "" {
		value := yml.CreateStringNode(description)
		if strings.Contains(description, "\n") {
			value.Style = yaml.LiteralStyle
		}
		additions = append(additions, Addition{
			Target: "$.info",
			Update: yml.CreateMapNode(yml.CreateStringNode("description"), value),
		})
	}

	if extra = yml.ResolveDocument(extra); extra != nil && len(extra.Content) > 0 {
		additions = append(additions, Addition{Target: "$", Update: extra})
	}

	return additions
}

// Apply applies additions to root in order. root is modified in place; update values are
// copied so root never shares nodes with the additions.
func Apply(root *yaml.Node, additions []Addition) error {
	root = yml.ResolveDocument(root)

	for _, addition := range additions {
		if err := apply(root, addition); err != nil {
			return err
		}
	}

	return nil
}

func apply(root *yaml.Node, addition Addition) error {
	update := yml.ResolveDocument(addition.Update)
	if update == nil || update.Kind != yaml.MappingNode {
		return ErrInvalidUpdate.Wrapf("update for %s must be a mapping", addition.Target)
	}

	path, err := jsonpath.NewPath(addition.Target, config.WithPropertyNameExtension())
	if err != nil {
		return ErrInvalidTarget.Wrapf("%s: %s", addition.Target, err)
	}

	nodes := path.Query(root)
	if len(nodes) == 0 {
		return ErrTargetNotFound.Wrapf("%s", addition.Target)
	}

	for _, node := range nodes {
		node = yml.ResolveAlias(node)
		if node.Kind != yaml.MappingNode {
			return ErrInvalidTarget.Wrapf("%s selects a %s, expected a mapping", addition.Target, yml.NodeKindToString(node.Kind))
		}

		for i := 0; i+1 < len(update.Content); i += 2 {
			key := yml.ResolveAlias(update.Content[i]).Value
			// an equal value is left in place so its comments and position survive
			if existing, ok := yml.GetMapElement(node, key); ok && yml.EqualNodes(existing, update.Content[i+1]) {
				continue
			}
			yml.SetMapElement(node, key, yml.Clone(update.Content[i+1]))
		}
	}

	return nil
}
