// Package webhooks builds the request schemas of webhook events from an API description.
//
// Each event in a Catalog becomes a PathItem whose post request body is the standard event
// envelope. The envelope's data property is either the fully dereferenced resource schema
// the event points at, or a literal payload supplied by the caller.
package webhooks

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/29next/devdocs/dereference"
	"github.com/29next/devdocs/sequencedmap"
	"github.com/29next/devdocs/yml"
	"gopkg.in/yaml.v3"
)

const (
	ContentTypeJSON = "application/json"

	ResponseReceived = "Return a 200 status to indicate that the data was received successfully."
	ResponseDisabled = "Return a 410 status to indicate that the webhook target is gone and the webhook should be disabled."
)

//go:embed envelope.yaml
var envelopeData []byte

var loadEnvelope = sync.OnceValues(func() (*yaml.Node, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(envelopeData, &node); err != nil {
		return nil, fmt.Errorf("failed to parse envelope: %w", err)
	}
	return yml.ResolveDocument(&node), nil
})

// Source is the part of an API description webhooks are generated from.
type Source interface {
	dereference.SchemaSource
	// Version is copied into every envelope's api_version examples.
	Version() string
}

// Webhooks maps event names to their path items, in catalog order.
type Webhooks = sequencedmap.Map[string, *PathItem]

// PathItem is the webhooks entry of a single event.
type PathItem struct {
	Post *Operation `yaml:"post"`
}

type Operation struct {
	Tags        []string                             `yaml:"tags"`
	Security    []map[string][]string                `yaml:"security"`
	Description string                               `yaml:"description"`
	RequestBody *RequestBody                         `yaml:"requestBody"`
	Responses   *sequencedmap.Map[string, *Response] `yaml:"responses"`
}

type RequestBody struct {
	Content *sequencedmap.Map[string, *MediaType] `yaml:"content"`
}

type MediaType struct {
	Schema *yaml.Node `yaml:"schema"`
}

type Response struct {
	Description string `yaml:"description"`
}

// Schema returns the envelope schema of the item's post operation, or nil.
func (p *PathItem) Schema() *yaml.Node {
	if p == nil || p.Post == nil || p.Post.RequestBody == nil {
		return nil
	}
	mt, ok := p.Post.RequestBody.Content.Get(ContentTypeJSON)
	if !ok || mt == nil {
		return nil
	}
	return mt.Schema
}

// Data returns the envelope's data schema, or nil.
func (p *PathItem) Data() *yaml.Node {
	data, _ := yml.Lookup(p.Schema(), "properties", "data")
	return data
}

type Option func(o *options)

type options struct {
	resolverOpts []dereference.Option
}

// WithResolverOptions passes options to the dereference.Resolver used for the run.
func WithResolverOptions(opts ...dereference.Option) Option {
	return func(o *options) {
		o.resolverOpts = append(o.resolverOpts, opts...)
	}
}

// Generate builds the webhooks of every event in catalog. Neither source nor payloads are
// modified; every returned schema is a fresh tree. The first failing event aborts the run
// and nothing is returned.
func Generate(source Source, catalog Catalog, payloads Payloads, opts ...Option) (*Webhooks, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	envelope, err := loadEnvelope()
	if err != nil {
		return nil, err
	}

	resolver := dereference.New(source, o.resolverOpts...)
	version := source.Version()

	out := sequencedmap.New[string, *PathItem]()

	for _, spec := range catalog {
		data, err := dataSchema(resolver, spec, payloads)
		if err != nil {
			return nil, fmt.Errorf("failed to generate webhook %s: %w", spec.Event, err)
		}

		out.Set(spec.Event, newPathItem(spec, newEnvelope(envelope, spec, version, data)))
	}

	return out, nil
}

func dataSchema(resolver *dereference.Resolver, spec EventSpec, payloads Payloads) (*yaml.Node, error) {
	if spec.SchemaRef != "" {
		return resolver.ResolveRef(spec.SchemaRef)
	}

	payload, ok := payloads[spec.Event]
	if !ok || payload == nil {
		return nil, ErrMissingPayload.Wrapf("event %s has no schema_ref and no custom payload", spec.Event)
	}

	return yml.Clone(yml.ResolveDocument(payload)), nil
}

func newEnvelope(template *yaml.Node, spec EventSpec, version string, data *yaml.Node) *yaml.Node {
	envelope := yml.Clone(template)
	properties, _ := yml.GetMapElement(envelope, "properties")

	setExample(properties, "api_version", version)
	setExample(properties, "object", spec.Object)
	setExample(properties, "event_type", spec.Event)
	yml.SetMapElement(properties, "data", data)

	return envelope
}

func setExample(properties *yaml.Node, property, example string) {
	schema, ok := yml.GetMapElement(properties, property)
	if !ok {
		return
	}
	yml.SetMapElement(schema, "examples", yml.CreateSequenceNode(yml.CreateStringNode(example)))
}

func newPathItem(spec EventSpec, schema *yaml.Node) *PathItem {
	return &PathItem{
		Post: &Operation{
			Tags:        []string{spec.Tag},
			Security:    []map[string][]string{},
			Description: spec.Description,
			RequestBody: &RequestBody{
				Content: sequencedmap.New(
					sequencedmap.NewElem(ContentTypeJSON, &MediaType{Schema: schema}),
				),
			},
			Responses: sequencedmap.New(
				sequencedmap.NewElem("200", &Response{Description: ResponseReceived}),
				sequencedmap.NewElem("410", &Response{Description: ResponseDisabled}),
			),
		},
	}
}
