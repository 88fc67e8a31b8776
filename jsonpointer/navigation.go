package jsonpointer

import (
	"fmt"
	"regexp"
	"strings"
)

// token is one escaped reference token of a pointer.
type token struct {
	raw string
	// index is set for tokens that can address a sequence element: digits without a
	// leading zero.
	index bool
}

func (t token) unescape() string {
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(t.raw)
}

var (
	// validToken matches an escaped reference token: any character but "/" and "~", or an escape.
	validToken = regexp.MustCompile("^(?:[\x00-\x2E\x30-\x7D\x7F-\uffff]|~[01])+$")
	arrayIndex = regexp.MustCompile("^(?:0|[1-9][0-9]*)$")
)

func (j JSONPointer) tokens() ([]token, error) {
	switch {
	case j == "":
		return nil, fmt.Errorf("jsonpointer must not be empty")
	case j == "/":
		return nil, nil
	case !strings.HasPrefix(string(j), "/"):
		return nil, fmt.Errorf("jsonpointer must start with /: %s", j)
	}

	raw := strings.Split(string(j)[1:], "/")
	tokens := make([]token, 0, len(raw))

	for _, part := range raw {
		if part == "" {
			return nil, fmt.Errorf("jsonpointer part must not be empty: %s", j)
		}
		if !validToken.MatchString(part) {
			return nil, fmt.Errorf("jsonpointer part %q is not a valid token: %s", part, j)
		}

		tokens = append(tokens, token{raw: part, index: arrayIndex.MatchString(part)})
	}

	return tokens, nil
}

func buildPath(currentPath string, t token) string {
	return currentPath + "/" + t.raw
}
