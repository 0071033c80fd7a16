package mission

import (
	"iter"
)

// Index maps normalized names to actual node names and remembers insertion
// order. Overwriting a key replaces its value but keeps its position.
type Index struct {
	keys   []string
	values map[string]string
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{values: make(map[string]string)}
}

// Set maps key to name.
func (i *Index) Set(key, name string) {
	if _, ok := i.values[key]; !ok {
		i.keys = append(i.keys, key)
	}
	i.values[key] = name
}

// Get returns the node name mapped to key.
func (i *Index) Get(key string) (string, bool) {
	name, ok := i.values[key]
	return name, ok
}

// Has reports whether key is present.
func (i *Index) Has(key string) bool {
	_, ok := i.values[key]
	return ok
}

// Len returns the number of keys.
func (i *Index) Len() int {
	return len(i.keys)
}

// All iterates key/name pairs in insertion order.
func (i *Index) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range i.keys {
			if !yield(k, i.values[k]) {
				return
			}
		}
	}
}
