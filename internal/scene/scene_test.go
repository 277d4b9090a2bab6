package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splay4d/pkg/types"
)

func TestMemoryGraphNodeLifecycle(t *testing.T) {
	g := NewMemoryGraph()
	frame := &types.SplatFrame{Path: "a.ply", VertexCount: 1}

	require.NoError(t, g.AddSplat("Splat4D__next", frame))
	assert.Equal(t, 1, g.NodeCount())

	// Duplicate names are rejected
	err := g.AddSplat("Splat4D__next", frame)
	assert.Error(t, err)

	node, ok := g.GetNode("Splat4D__next")
	require.True(t, ok)
	assert.Equal(t, "a.ply", node.Frame.Path)

	require.NoError(t, g.RenameNode("Splat4D__next", "Splat4D"))
	_, ok = g.GetNode("Splat4D__next")
	assert.False(t, ok)

	node, ok = g.GetNode("Splat4D")
	require.True(t, ok)
	assert.Equal(t, "Splat4D", node.Name)

	g.RemoveNode("Splat4D")
	assert.Equal(t, 0, g.NodeCount())

	// Removing a missing node is a no-op
	g.RemoveNode("Splat4D")
}

func TestMemoryGraphRenameErrors(t *testing.T) {
	g := NewMemoryGraph()
	frame := &types.SplatFrame{Path: "a.ply"}

	assert.Error(t, g.RenameNode("missing", "anything"))

	require.NoError(t, g.AddSplat("a", frame))
	require.NoError(t, g.AddSplat("b", frame))
	assert.Error(t, g.RenameNode("a", "b"))
}

func TestMemoryGraphInvalidations(t *testing.T) {
	g := NewMemoryGraph()
	assert.Equal(t, 0, g.Invalidations())

	g.InvalidateCache()
	g.InvalidateCache()
	assert.Equal(t, 2, g.Invalidations())
}
