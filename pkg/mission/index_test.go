package mission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexOrder(t *testing.T) {
	idx := NewIndex()
	idx.Set("takeoff", "Takeoff")
	idx.Set("hover", "Hover")
	idx.Set("land", "Land")
	idx.Set("hover", "HoverPX4")

	var keys, names []string
	for k, v := range idx.All() {
		keys = append(keys, k)
		names = append(names, v)
	}

	assert.Equal(t, []string{"takeoff", "hover", "land"}, keys)
	assert.Equal(t, []string{"Takeoff", "HoverPX4", "Land"}, names)
	assert.Equal(t, 3, idx.Len())

	name, ok := idx.Get("hover")
	assert.True(t, ok)
	assert.Equal(t, "HoverPX4", name)
	assert.False(t, idx.Has("loiter"))
}

func TestIndexAllStops(t *testing.T) {
	idx := NewIndex()
	idx.Set("a", "A")
	idx.Set("b", "B")

	n := 0
	for range idx.All() {
		n++
		break
	}
	assert.Equal(t, 1, n)
}
