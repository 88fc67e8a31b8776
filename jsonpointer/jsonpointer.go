// Package jsonpointer implements RFC6901 JSON Pointers over yaml.Node trees.
package jsonpointer

import (
	"strings"

	"github.com/29next/devdocs/errors"
)

const (
	// ErrNotFound is returned when the target is not found.
	ErrNotFound = errors.Error("not found")
	// ErrInvalidPath is returned when the path cannot be followed through the tree.
	ErrInvalidPath = errors.Error("invalid path")
	// ErrValidation is returned when the jsonpointer is invalid.
	ErrValidation = errors.Error("validation error")
)

// JSONPointer represents a JSON Pointer value as defined by RFC6901 https://datatracker.ietf.org/doc/html/rfc6901
type JSONPointer string

// Validate will validate the JSONPointer is valid as per RFC6901.
func (j JSONPointer) Validate() error {
	_, err := j.tokens()
	if err != nil {
		return ErrValidation.Wrap(err)
	}
	return nil
}

// Parts returns the unescaped reference tokens of the pointer. "/" has none.
func (j JSONPointer) Parts() ([]string, error) {
	tokens, err := j.tokens()
	if err != nil {
		return nil, ErrValidation.Wrap(err)
	}

	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.unescape()
	}
	return parts, nil
}

// PartsToJSONPointer will convert the exploded parts of a JSONPointer to a JSONPointer.
func PartsToJSONPointer(parts []string) JSONPointer {
	if len(parts) == 0 {
		return "/"
	}

	var sb strings.Builder
	for _, part := range parts {
		sb.WriteByte('/')
		sb.WriteString(escape(part))
	}
	return JSONPointer(sb.String())
}

// EscapeString escapes a string for use as a reference token in a JSON pointer according to RFC6901.
// It replaces "~" with "~0" and "/" with "~1".
func EscapeString(s string) string {
	return escape(s)
}

func escape(part string) string {
	return strings.ReplaceAll(strings.ReplaceAll(part, "~", "~0"), "/", "~1")
}
