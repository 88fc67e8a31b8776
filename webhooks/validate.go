package webhooks

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/29next/devdocs/errors"
	"github.com/29next/devdocs/json"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

const (
	// ErrInvalidSchema is returned by Validate for a data schema that does not compile.
	ErrInvalidSchema = errors.Error("invalid webhook data schema")
)

var printer = message.NewPrinter(language.English)

// Validate compiles the data schema of every webhook as a standalone JSON Schema (2020-12).
// A schema that still holds a reference, or that breaks the meta-schema, fails. All failures
// are returned joined.
func Validate(webhooks *Webhooks) error {
	var errs []error

	for event, item := range webhooks.All() {
		if err := compile(event, item.Data()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func compile(event string, data *yaml.Node) error {
	if data == nil {
		return ErrInvalidSchema.Wrapf("%s: no data schema", event)
	}

	var buf bytes.Buffer
	if err := json.YAMLToJSON(data, 0, &buf); err != nil {
		return ErrInvalidSchema.Wrapf("%s: %s", event, err)
	}

	doc, err := jsonschema.UnmarshalJSON(&buf)
	if err != nil {
		return ErrInvalidSchema.Wrapf("%s: %s", event, err)
	}

	url := "webhook://" + event + "/data.json"

	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft2020)
	if err := c.AddResource(url, doc); err != nil {
		return ErrInvalidSchema.Wrapf("%s: %s", event, err)
	}

	if _, err := c.Compile(url); err != nil {
		return ErrInvalidSchema.Wrapf("%s: %s", event, describe(err))
	}

	return nil
}

// describe flattens a compile error into its root causes.
func describe(err error) string {
	var schemaErr *jsonschema.SchemaValidationError
	if errors.As(err, &schemaErr) {
		var validationErr *jsonschema.ValidationError
		if errors.As(schemaErr.Err, &validationErr) {
			return strings.Join(rootCauses(validationErr), "; ")
		}
	}

	return err.Error()
}

func rootCauses(err *jsonschema.ValidationError) []string {
	if len(err.Causes) == 0 {
		location := "/" + strings.Join(err.InstanceLocation, "/")
		return []string{fmt.Sprintf("%s %s", location, err.ErrorKind.LocalizedString(printer))}
	}

	var causes []string
	for _, cause := range err.Causes {
		causes = append(causes, rootCauses(cause)...)
	}
	return causes
}
