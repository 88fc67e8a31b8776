// Package document loads and writes OpenAPI descriptions as yaml.Node trees.
//
// Documents are kept as raw nodes rather than typed models so that keywords this tool
// does not know about are written back unchanged and in their original order.
package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"iter"
	"slices"

	"github.com/29next/devdocs/errors"
	"github.com/29next/devdocs/json"
	"github.com/29next/devdocs/jsonpointer"
	"github.com/29next/devdocs/yml"
	"gopkg.in/yaml.v3"
)

const (
	// ErrInvalidDocument is returned when the input does not hold a single mapping document.
	ErrInvalidDocument = errors.Error("invalid document")
)

// methods are the path item keys that hold operations, in the order OpenAPI lists them.
var methods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// Document is a parsed API description.
type Document struct {
	root   *yaml.Node
	config *yml.Config
}

// New wraps an existing mapping node. The document takes ownership of root.
func New(root *yaml.Node) (*Document, error) {
	root = yml.ResolveDocument(root)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, ErrInvalidDocument.Wrapf("expected a mapping at the document root")
	}

	return &Document{root: root, config: yml.GetDefaultConfig()}, nil
}

// Unmarshal reads a YAML or JSON document from r. The input format and indentation are
// remembered so Marshal writes the document back the same way.
func Unmarshal(_ context.Context, r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, ErrInvalidDocument.Wrap(err)
	}

	if node.Kind != yaml.DocumentNode || len(node.Content) != 1 {
		return nil, ErrInvalidDocument.Wrapf("expected 1 document, got an empty input")
	}

	doc, err := New(&node)
	if err != nil {
		return nil, err
	}
	doc.config = yml.GetConfigFromDoc(data)

	return doc, nil
}

// Marshal writes doc to w. The format stored in ctx (see yml.ContextWithConfig) wins over
// the format the document was read in.
func Marshal(ctx context.Context, doc *Document, w io.Writer) error {
	cfg := doc.config
	if ctxCfg, ok := yml.ConfigFromContext(ctx); ok {
		cfg = ctxCfg
	}

	switch cfg.OutputFormat {
	case yml.OutputFormatYAML:
		root := doc.root
		if cfg.OriginalFormat == yml.OutputFormatJSON {
			root = yml.Clone(root)
			resetStyles(root)
		}

		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(cfg.Indentation)
		if err := enc.Encode(root); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}

		_, err := w.Write(buf.Bytes())
		return err
	case yml.OutputFormatJSON:
		return json.YAMLToJSON(doc.root, cfg.Indentation, w)
	default:
		return fmt.Errorf("unsupported output format: %s", cfg.OutputFormat)
	}
}

// resetStyles drops the flow and quoting styles a JSON input carries so the YAML output
// reads like YAML.
func resetStyles(node *yaml.Node) {
	if node == nil {
		return
	}

	switch node.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		node.Style &^= yaml.FlowStyle
	case yaml.ScalarNode:
		if node.Tag == "!!str" {
			node.Style &^= yaml.DoubleQuotedStyle
		}
	}

	for _, child := range node.Content {
		resetStyles(child)
	}
}

// Root returns the root mapping node. Changes to it change the document.
func (d *Document) Root() *yaml.Node {
	return d.root
}

// Config returns the format the document was read in.
func (d *Document) Config() *yml.Config {
	return d.config
}

// Version returns info.version, or an empty string when it is not set.
func (d *Document) Version() string {
	version, ok := yml.Lookup(d.root, "info", "version")
	if !ok || version.Kind != yaml.ScalarNode {
		return ""
	}
	return version.Value
}

// Schema returns the components.schemas entry called name. The node belongs to the document.
func (d *Document) Schema(name string) (*yaml.Node, bool) {
	pointer := jsonpointer.PartsToJSONPointer([]string{"components", "schemas", name})

	schema, err := jsonpointer.GetTarget(d.root, pointer)
	if err != nil {
		return nil, false
	}
	return schema, true
}

// SchemaNames lists components.schemas in document order.
func (d *Document) SchemaNames() []string {
	schemas, ok := yml.Lookup(d.root, "components", "schemas")
	if !ok || schemas.Kind != yaml.MappingNode {
		return nil
	}

	names := make([]string, 0, len(schemas.Content)/2)
	for i := 0; i+1 < len(schemas.Content); i += 2 {
		names = append(names, yml.ResolveAlias(schemas.Content[i]).Value)
	}
	return names
}

// SetWebhooks replaces the top-level webhooks key with the YAML encoding of webhooks.
// Ordered maps keep their order.
func (d *Document) SetWebhooks(webhooks any) error {
	var node yaml.Node
	if err := node.Encode(webhooks); err != nil {
		return fmt.Errorf("failed to encode webhooks: %w", err)
	}

	yml.SetMapElement(d.root, "webhooks", &node)
	return nil
}

// Operation is one HTTP operation of a path item, or the operation a webhook receives.
type Operation struct {
	// Path is the path template, or the event name for webhooks.
	Path        string
	Method      string
	OperationID string
	// Tag is the first tag of the operation.
	Tag         string
	Summary     string
	Description string
}

// Operations iterates paths and their operations in document order.
func (d *Document) Operations() iter.Seq[Operation] {
	return d.operationsOf("paths")
}

// Webhooks iterates webhooks and their operations in document order.
func (d *Document) Webhooks() iter.Seq[Operation] {
	return d.operationsOf("webhooks")
}

func (d *Document) operationsOf(key string) iter.Seq[Operation] {
	return func(yield func(Operation) bool) {
		items, ok := yml.GetMapElement(d.root, key)
		if !ok || items.Kind != yaml.MappingNode {
			return
		}

		for i := 0; i+1 < len(items.Content); i += 2 {
			path := yml.ResolveAlias(items.Content[i]).Value
			pathItem := yml.ResolveAlias(items.Content[i+1])
			if pathItem.Kind != yaml.MappingNode {
				continue
			}

			for j := 0; j+1 < len(pathItem.Content); j += 2 {
				method := yml.ResolveAlias(pathItem.Content[j]).Value
				if !slices.Contains(methods, method) {
					continue
				}

				if !yield(newOperation(path, method, pathItem.Content[j+1])) {
					return
				}
			}
		}
	}
}

func newOperation(path, method string, node *yaml.Node) Operation {
	op := Operation{Path: path, Method: method}

	op.OperationID = scalar(node, "operationId")
	op.Summary = scalar(node, "summary")
	op.Description = scalar(node, "description")

	if tags, ok := yml.GetMapElement(node, "tags"); ok && tags.Kind == yaml.SequenceNode && len(tags.Content) > 0 {
		op.Tag = yml.ResolveAlias(tags.Content[0]).Value
	}

	return op
}

func scalar(node *yaml.Node, key string) string {
	v, ok := yml.GetMapElement(node, key)
	if !ok || v.Kind != yaml.ScalarNode {
		return ""
	}
	return v.Value
}
