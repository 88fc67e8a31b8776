package dereference_test

import (
	"testing"

	"github.com/29next/devdocs/dereference"
	"github.com/stretchr/testify/assert"
)

func TestKindOf_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		schema   string
		expected dereference.Kind
	}{
		{name: "primitive", schema: "type: string", expected: dereference.KindLeaf},
		{name: "enum", schema: "enum: [a, b]", expected: dereference.KindLeaf},
		{name: "boolean schema", schema: "true", expected: dereference.KindLeaf},
		{name: "empty allOf", schema: "allOf: []", expected: dereference.KindLeaf},
		{name: "object", schema: "properties: {id: {type: integer}}", expected: dereference.KindObject},
		{name: "reference", schema: "$ref: '#/components/schemas/User'", expected: dereference.KindReference},
		{name: "array", schema: "items: {type: string}", expected: dereference.KindArray},
		{name: "allOf", schema: "allOf: [{type: string}]", expected: dereference.KindAllOf},
		{name: "oneOf", schema: "oneOf: [{type: string}]", expected: dereference.KindOneOf},
		{name: "items wins over $ref", schema: "{items: {type: string}, $ref: '#/components/schemas/User'}", expected: dereference.KindArray},
		{name: "$ref wins over properties", schema: "{$ref: '#/components/schemas/User', properties: {}}", expected: dereference.KindReference},
		{name: "allOf wins over oneOf", schema: "{oneOf: [{type: string}], allOf: [{type: string}]}", expected: dereference.KindAllOf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, dereference.KindOf(mustParse(t, tt.schema)))
		})
	}
}

func TestKindOf_Nil(t *testing.T) {
	t.Parallel()

	assert.Equal(t, dereference.KindLeaf, dereference.KindOf(nil))
	assert.Equal(t, "leaf", dereference.KindOf(nil).String())
}

func TestIsReference_Success(t *testing.T) {
	t.Parallel()

	assert.True(t, dereference.IsReference(mustParse(t, "$ref: '#/components/schemas/User'")))
	assert.False(t, dereference.IsReference(mustParse(t, "type: object")))
	assert.False(t, dereference.IsReference(mustParse(t, "$ref: {nested: true}")))
	assert.False(t, dereference.IsReference(nil))
}
