package sequencedmap_test

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/29next/devdocs/sequencedmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMap_Set_PreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	m := sequencedmap.New[string, int]()
	m.Set("order.created", 1)
	m.Set("cart.abandoned", 2)
	m.Set("app.uninstalled", 3)

	assert.Equal(t, []string{"order.created", "cart.abandoned", "app.uninstalled"}, slices.Collect(m.Keys()))
	assert.Equal(t, []int{1, 2, 3}, slices.Collect(m.Values()))
	assert.Equal(t, 3, m.Len())
}

func TestMap_Set_ExistingKeyKeepsPosition(t *testing.T) {
	t.Parallel()

	m := sequencedmap.New(
		sequencedmap.NewElem("a", 1),
		sequencedmap.NewElem("b", 2),
	)
	m.Set("a", 10)

	assert.Equal(t, []string{"a", "b"}, slices.Collect(m.Keys()))
	assert.Equal(t, 10, m.GetOrZero("a"))
	assert.Equal(t, 2, m.Len())
}

func TestMap_Delete_Success(t *testing.T) {
	t.Parallel()

	m := sequencedmap.New(
		sequencedmap.NewElem("a", 1),
		sequencedmap.NewElem("b", 2),
		sequencedmap.NewElem("c", 3),
	)
	m.Delete("b")
	m.Delete("missing")

	assert.False(t, m.Has("b"))
	assert.Equal(t, []string{"a", "c"}, slices.Collect(m.Keys()))
}

func TestMap_NilSafe(t *testing.T) {
	t.Parallel()

	var m *sequencedmap.Map[string, int]

	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Has("a"))
	v, ok := m.Get("a")
	assert.False(t, ok)
	assert.Zero(t, v)
	assert.Empty(t, slices.Collect(m.Keys()))

	data, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestMap_MarshalJSON_KeepsOrder(t *testing.T) {
	t.Parallel()

	m := sequencedmap.New(
		sequencedmap.NewElem("z", 1),
		sequencedmap.NewElem("a", 2),
	)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"z":1,"a":2}`, string(data))
	assert.Equal(t, `{"z":1,"a":2}`, string(data))
}

func TestMap_MarshalYAML_KeepsOrder(t *testing.T) {
	t.Parallel()

	m := sequencedmap.New(
		sequencedmap.NewElem("z", "last"),
		sequencedmap.NewElem("a", "first"),
	)

	data, err := yaml.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, "z: last\na: first\n", string(data))
}

func TestFrom_Success(t *testing.T) {
	t.Parallel()

	src := sequencedmap.New(
		sequencedmap.NewElem("x", 1),
		sequencedmap.NewElem("y", 2),
	)

	dst := sequencedmap.From(src.All())
	assert.Equal(t, []string{"x", "y"}, slices.Collect(dst.Keys()))
}
