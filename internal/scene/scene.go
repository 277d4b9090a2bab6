// Package scene defines the live-scene sink that receives frame content,
// plus an in-memory implementation used by the engine and tests.
package scene

import (
	"sync"

	"splay4d/internal/errors"
	"splay4d/pkg/types"
)

// Node is one named entry in the scene graph
type Node struct {
	Name  string
	Frame *types.SplatFrame
}

// Graph is the live scene receiving splat frames for display
type Graph interface {
	// AddSplat inserts a new node holding the given frame
	AddSplat(name string, frame *types.SplatFrame) error
	// GetNode looks a node up by name
	GetNode(name string) (*Node, bool)
	// RemoveNode deletes a node; missing nodes are a no-op
	RemoveNode(name string)
	// RenameNode changes a node's name
	RenameNode(oldName, newName string) error
	// InvalidateCache drops any scene-derived cached state
	InvalidateCache()
}

// MemoryGraph is a mutex-guarded in-memory scene graph
type MemoryGraph struct {
	mu            sync.RWMutex
	nodes         map[string]*Node
	invalidations int
}

// NewMemoryGraph creates an empty in-memory scene graph
func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{
		nodes: make(map[string]*Node),
	}
}

// AddSplat inserts a new node holding the given frame
func (g *MemoryGraph) AddSplat(name string, frame *types.SplatFrame) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[name]; exists {
		return errors.Newf("node %q already exists", name)
	}
	g.nodes[name] = &Node{Name: name, Frame: frame}
	return nil
}

// GetNode looks a node up by name
func (g *MemoryGraph) GetNode(name string) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, ok := g.nodes[name]
	return node, ok
}

// RemoveNode deletes a node; missing nodes are a no-op
func (g *MemoryGraph) RemoveNode(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.nodes, name)
}

// RenameNode changes a node's name
func (g *MemoryGraph) RenameNode(oldName, newName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.nodes[oldName]
	if !ok {
		return errors.Newf("node %q not found", oldName)
	}
	if _, exists := g.nodes[newName]; exists {
		return errors.Newf("node %q already exists", newName)
	}

	delete(g.nodes, oldName)
	node.Name = newName
	g.nodes[newName] = node
	return nil
}

// InvalidateCache drops any scene-derived cached state
func (g *MemoryGraph) InvalidateCache() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.invalidations++
}

// NodeCount returns the number of nodes currently in the graph
func (g *MemoryGraph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Invalidations returns how many times the scene cache was invalidated
func (g *MemoryGraph) Invalidations() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.invalidations
}
