// Package sequencedmap provides a map implementation that maintains the order of keys as they are added.
package sequencedmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"

	"gopkg.in/yaml.v3"
)

// Element is a key-value pair that is stored in a sequenced map.
type Element[K comparable, V any] struct {
	Key   K
	Value V
}

// NewElem creates a new element with the specified key and value.
func NewElem[K comparable, V any](key K, value V) *Element[K, V] {
	return &Element[K, V]{
		Key:   key,
		Value: value,
	}
}

// Map is a map implementation that maintains the order of keys as they are added.
type Map[K comparable, V any] struct {
	m map[K]*Element[K, V]
	l []*Element[K, V]
}

// New creates a new map with the specified elements.
func New[K comparable, V any](elements ...*Element[K, V]) *Map[K, V] {
	m := &Map[K, V]{
		m: make(map[K]*Element[K, V], len(elements)),
		l: make([]*Element[K, V], 0, len(elements)),
	}

	for _, element := range elements {
		m.Set(element.Key, element.Value)
	}

	return m
}

// Len returns the number of elements in the map. nil safe.
func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.l)
}

// Set sets the value for the specified key. Existing keys keep their position.
func (m *Map[K, V]) Set(key K, value V) {
	if m.m == nil {
		m.m = make(map[K]*Element[K, V])
	}

	if element, ok := m.m[key]; ok {
		element.Value = value
		return
	}

	element := NewElem(key, value)
	m.m[key] = element
	m.l = append(m.l, element)
}

// Get returns the value for the specified key and a boolean indicating whether the key was found.
func (m *Map[K, V]) Get(key K) (V, bool) {
	var zero V
	if m == nil {
		return zero, false
	}

	element, ok := m.m[key]
	if !ok {
		return zero, false
	}

	return element.Value, true
}

// GetOrZero returns the value for the specified key or the zero value if the key is not found.
func (m *Map[K, V]) GetOrZero(key K) V {
	v, _ := m.Get(key)
	return v
}

// Has returns a boolean indicating whether the map contains the specified key.
func (m *Map[K, V]) Has(key K) bool {
	if m == nil {
		return false
	}

	_, ok := m.m[key]
	return ok
}

// Delete removes the element with the specified key from the map.
func (m *Map[K, V]) Delete(key K) {
	if m == nil {
		return
	}

	delete(m.m, key)

	m.l = slices.DeleteFunc(m.l, func(e *Element[K, V]) bool {
		return e.Key == key
	})
}

// All returns an iterator that iterates over all elements in the map, in the order they were added.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if m == nil {
			return
		}

		for _, element := range m.l {
			if !yield(element.Key, element.Value) {
				return
			}
		}
	}
}

// Keys returns an iterator that iterates over all keys in the map, in the order they were added.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values returns an iterator that iterates over all values in the map, in the order they were added.
func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// MarshalJSON returns the JSON representation of the map with keys in insertion order.
func (m *Map[K, V]) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer

	buf.WriteString("{")

	for i, element := range m.l {
		kb, err := json.Marshal(fmt.Sprintf("%v", element.Key))
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteString(":")
		vb, err := json.Marshal(element.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(vb)

		if i < len(m.l)-1 {
			buf.WriteString(",")
		}
	}

	buf.WriteString("}")

	return buf.Bytes(), nil
}

// MarshalYAML returns a mapping node with keys in insertion order.
func (m *Map[K, V]) MarshalYAML() (any, error) {
	node := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for k, v := range m.All() {
		var valueNode yaml.Node
		if err := valueNode.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode value for key %v: %w", k, err)
		}

		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprintf("%v", k)},
			&valueNode,
		)
	}

	return node, nil
}

// From creates a new map from the given sequence.
func From[K comparable, V any](seq iter.Seq2[K, V]) *Map[K, V] {
	newMap := New[K, V]()

	for k, v := range seq {
		newMap.Set(k, v)
	}

	return newMap
}
