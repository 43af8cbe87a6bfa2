package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNodeIDsAreUniqueAndShort(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id := newNodeID()
		assert.Len(t, id, 4)
		assert.False(t, seen[id], "node id collision: %s", id)
		seen[id] = true
	}
}

func TestParentsReturnsRootFirstChain(t *testing.T) {
	root := newNode("system", "s")
	mid := newNode("user", "u")
	leaf := newNode("assistant", "a")
	root.AddChild(mid)
	mid.AddChild(leaf)

	chain := leaf.Parents()
	require.Len(t, chain, 3)
	assert.Equal(t, root, chain[0])
	assert.Equal(t, mid, chain[1])
	assert.Equal(t, leaf, chain[2])
}

func TestContentAndRoleAccessors(t *testing.T) {
	n := newNode("user", "hello world")
	assert.Equal(t, "user", n.Role())
	assert.Equal(t, "hello world", n.Content())
	assert.True(t, n.Contains("hello"))
	assert.False(t, n.Contains("goodbye"))
}

func TestAddChildSetsParent(t *testing.T) {
	parent := newNode("user", "p")
	child := newNode("assistant", "c")
	parent.AddChild(child)

	assert.Same(t, parent, child.Parent)
	require.Len(t, parent.Children, 1)
	assert.Same(t, child, parent.Children[0])
}
