// Package spectroscopy provides 0D spectroscopic observers (sight-lines
// and fibre optics) and groups that aggregate them under one scene-graph
// parent so their parameters can be read and written in bulk. Observation
// itself is delegated to a render.Engine; results accumulate in
// pipeline.Pipeline instances attached to each observer.
package spectroscopy

import "github.com/torus-diagnostics/spectroscope/geometry"

// Node is a minimal scene-graph attachment record: a name, a parent and a
// placement transform. Observers and groups embed it; the only semantics
// consumed are "set parent" and "set transform".
type Node struct {
	name      string
	parent    *Node
	transform geometry.Transform
}

// NewNode creates a detached node with an identity transform.
func NewNode(name string) Node {
	return Node{name: name, transform: geometry.Identity()}
}

// Name returns the node name.
func (n *Node) Name() string {
	return n.name
}

// SetName sets the node name.
func (n *Node) SetName(name string) {
	n.name = name
}

// Parent returns the parent node, or nil when detached.
func (n *Node) Parent() *Node {
	return n.parent
}

// SetParent attaches the node under a new parent frame.
func (n *Node) SetParent(parent *Node) {
	n.parent = parent
}

// Transform returns the node's placement transform relative to its parent.
func (n *Node) Transform() geometry.Transform {
	return n.transform
}

// SetTransform sets the node's placement transform relative to its parent.
func (n *Node) SetTransform(t geometry.Transform) {
	n.transform = t
}
