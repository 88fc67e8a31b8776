package webhooks

import (
	"github.com/29next/devdocs/dereference"
	"github.com/29next/devdocs/errors"
	"gopkg.in/yaml.v3"
)

const (
	// ErrMissingPayload is returned when an event has no schema reference and no custom payload.
	ErrMissingPayload = errors.Error("missing custom payload")
	// ErrDuplicateEvent is returned when a catalog lists the same event more than once.
	ErrDuplicateEvent = errors.Error("duplicate event")
	// ErrInvalidEvent is returned when an event is missing its name or object type.
	ErrInvalidEvent = errors.Error("invalid event")
)

// EventSpec maps one webhook event to the resource it delivers.
type EventSpec struct {
	// Event is the dot separated event name, e.g. order.created.
	Event string `yaml:"event" json:"event"`
	// Object is the short type tag sent in the envelope, e.g. order.
	Object string `yaml:"object" json:"object"`
	// SchemaRef points at the components.schemas entry used as the event data. When empty
	// the event's custom payload is used instead.
	SchemaRef   string `yaml:"schema_ref,omitempty" json:"schema_ref,omitempty"`
	Tag         string `yaml:"tag" json:"tag"`
	Description string `yaml:"description" json:"description"`
}

// Catalog is the ordered list of events to document. Generated webhooks follow catalog order.
type Catalog []EventSpec

// Validate checks every event has a name and object type, that no event is listed twice
// and that schema references are local components.schemas references.
func (c Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c))

	for i, spec := range c {
		if spec.Event == "" {
			return ErrInvalidEvent.Wrapf("event at index %d has no name", i)
		}
		if spec.Object == "" {
			return ErrInvalidEvent.Wrapf("event %s has no object type", spec.Event)
		}
		if spec.SchemaRef != "" {
			if _, err := dereference.RefName(spec.SchemaRef); err != nil {
				return ErrInvalidEvent.Wrapf("event %s: %w", spec.Event, err)
			}
		}

		if _, ok := seen[spec.Event]; ok {
			return ErrDuplicateEvent.Wrapf("%s", spec.Event)
		}
		seen[spec.Event] = struct{}{}
	}

	return nil
}

// Events returns the event names in catalog order.
func (c Catalog) Events() []string {
	events := make([]string, 0, len(c))
	for _, spec := range c {
		events = append(events, spec.Event)
	}
	return events
}

// Payloads holds literal data schemas keyed by event name, for events without a SchemaRef.
type Payloads map[string]*yaml.Node
