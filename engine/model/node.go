package model

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/anima-g3d/engine/core"
	"github.com/spaghettifunk/anima-g3d/engine/math"
)

// Node is an element of the scene graph. It owns its children and keeps a
// non-owning reference to its parent, so the hierarchy is always a forest.
//
// The embedded Transform is the node's position, orientation and size
// relative to its parent. LocalTransform and GlobalTransform are derived
// from it by CalculateTransforms.
type Node struct {
	// ID is not required to be unique.
	ID string
	math.Transform
	// IsAnimated marks LocalTransform as driven externally. CalculateLocalTransform
	// leaves it untouched.
	IsAnimated bool
	// InheritTransform composes GlobalTransform with the parent's when set.
	InheritTransform bool
	LocalTransform   math.Mat4
	GlobalTransform  math.Mat4
	Parts            []*NodePart

	parent   *Node
	children []*Node
}

func NewNode() *Node {
	return &Node{
		Transform:        math.NewTransform(),
		InheritTransform: true,
		LocalTransform:   math.NewMat4Identity(),
		GlobalTransform:  math.NewMat4Identity(),
	}
}

// NewNodeWithID is a shorthand for a fresh node named id.
func NewNodeWithID(id string) *Node {
	n := NewNode()
	n.ID = id
	return n
}

// CalculateLocalTransform rebuilds LocalTransform from the node's translation,
// rotation and scale unless the node is animated.
func (n *Node) CalculateLocalTransform() math.Mat4 {
	if !n.IsAnimated {
		n.LocalTransform = n.Matrix()
	}
	return n.LocalTransform
}

// CalculateWorldTransform uses the parent's current GlobalTransform, which
// must already be up to date.
func (n *Node) CalculateWorldTransform() math.Mat4 {
	if n.InheritTransform && n.parent != nil {
		n.GlobalTransform = n.LocalTransform.Mul(n.parent.GlobalTransform)
	} else {
		n.GlobalTransform = n.LocalTransform
	}
	return n.GlobalTransform
}

// CalculateTransforms updates the node and, if recursive, its subtree.
// Parents are always updated before their children.
func (n *Node) CalculateTransforms(recursive bool) {
	n.CalculateLocalTransform()
	n.CalculateWorldTransform()
	if recursive {
		for _, child := range n.children {
			child.CalculateTransforms(true)
		}
	}
}

// CalculateBoneTransforms refreshes the skinning matrices of the node parts.
// It reads the bones' GlobalTransform, so every node of the model must have
// gone through CalculateTransforms first.
func (n *Node) CalculateBoneTransforms(recursive bool) {
	for _, part := range n.Parts {
		part.calculateBones()
	}
	if recursive {
		for _, child := range n.children {
			child.CalculateBoneTransforms(true)
		}
	}
}

// ExtendBoundingBox grows box by the enabled parts of the subtree. With
// transform set the vertices of this node's parts are taken in world space.
// Children always contribute in world space.
func (n *Node) ExtendBoundingBox(box *math.Extents3D, transform bool) *math.Extents3D {
	for _, part := range n.Parts {
		if !part.Enabled || part.MeshPart == nil || part.MeshPart.Mesh == nil {
			continue
		}
		mp := part.MeshPart
		if transform {
			mp.Mesh.ExtendBoundingBox(box, mp.Offset, mp.Size, &n.GlobalTransform)
		} else {
			mp.Mesh.ExtendBoundingBox(box, mp.Offset, mp.Size, nil)
		}
	}
	for _, child := range n.children {
		child.ExtendBoundingBox(box, true)
	}
	return box
}

// CalculateBoundingBox resets box and extends it with the subtree.
func (n *Node) CalculateBoundingBox(box *math.Extents3D, transform bool) *math.Extents3D {
	box.Inf()
	return n.ExtendBoundingBox(box, transform)
}

// AttachTo adds n as the last child of parent.
func (n *Node) AttachTo(parent *Node) (int, error) {
	if parent == nil {
		return -1, core.ErrNilNode
	}
	return parent.AddChild(n)
}

// Detach removes n from its parent, if any.
func (n *Node) Detach() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
		n.parent = nil
	}
}

func (n *Node) HasChildren() bool {
	return len(n.children) > 0
}

func (n *Node) ChildCount() int {
	return len(n.children)
}

func (n *Node) Child(index int) (*Node, error) {
	if index < 0 || index >= len(n.children) {
		return nil, fmt.Errorf("child %d of %d: %w", index, len(n.children), core.ErrIndexOutOfRange)
	}
	return n.children[index], nil
}

// FindChild looks up a child by id, see FindNode.
func (n *Node) FindChild(id string, recursive, ignoreCase bool) *Node {
	return FindNode(n.children, id, recursive, ignoreCase)
}

// AddChild appends child, see InsertChild.
func (n *Node) AddChild(child *Node) (int, error) {
	return n.InsertChild(-1, child)
}

// AddChildren appends nodes in order and returns the index of the first one.
func (n *Node) AddChildren(nodes []*Node) (int, error) {
	return n.InsertChildren(-1, nodes)
}

// InsertChild inserts child at index and returns the index it ended at. An
// index outside the child list appends. The child is detached from its
// current parent first. Adding the node itself or one of its ancestors
// fails with core.ErrCyclicHierarchy and leaves the tree unchanged.
func (n *Node) InsertChild(index int, child *Node) (int, error) {
	if child == nil {
		return -1, core.ErrNilNode
	}
	for p := n; p != nil; p = p.parent {
		if p == child {
			return -1, fmt.Errorf("%q into %q: %w", child.ID, n.ID, core.ErrCyclicHierarchy)
		}
	}
	if p := child.parent; p != nil && !p.RemoveChild(child) {
		return -1, fmt.Errorf("%q from %q: %w", child.ID, p.ID, core.ErrDetachFailed)
	}
	if index < 0 || index >= len(n.children) {
		index = len(n.children)
		n.children = append(n.children, child)
	} else {
		n.children = slices.Insert(n.children, index, child)
	}
	child.parent = n
	return index, nil
}

// InsertChildren inserts nodes in order starting at index. An index past
// the end of the child list appends. It returns the index of the first node.
func (n *Node) InsertChildren(index int, nodes []*Node) (int, error) {
	if index < 0 || index > len(n.children) {
		index = len(n.children)
	}
	i := index
	for _, child := range nodes {
		if _, err := n.InsertChild(i, child); err != nil {
			return -1, err
		}
		i++
	}
	return index, nil
}

// RemoveChild reports whether child was a child of n. On success the child
// no longer has a parent.
func (n *Node) RemoveChild(child *Node) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	return true
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) HasParent() bool {
	return n.parent != nil
}

// Copy returns a detached deep copy of the subtree. Node parts are copied
// but keep sharing their mesh parts, materials and bone nodes.
func (n *Node) Copy() *Node {
	c := &Node{
		ID:               n.ID,
		Transform:        n.Transform,
		IsAnimated:       n.IsAnimated,
		InheritTransform: n.InheritTransform,
		LocalTransform:   n.LocalTransform,
		GlobalTransform:  n.GlobalTransform,
		Parts:            make([]*NodePart, 0, len(n.Parts)),
		children:         make([]*Node, 0, len(n.children)),
	}
	for _, part := range n.Parts {
		c.Parts = append(c.Parts, part.Copy())
	}
	for _, child := range n.children {
		cc := child.Copy()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}

// FindNode returns the first node of nodes whose ID matches id. When
// recursive, all of nodes are checked before descending into their children.
func FindNode(nodes []*Node, id string, recursive, ignoreCase bool) *Node {
	for _, node := range nodes {
		if matchID(node.ID, id, ignoreCase) {
			return node
		}
	}
	if !recursive {
		return nil
	}
	for _, node := range nodes {
		if found := FindNode(node.children, id, true, ignoreCase); found != nil {
			return found
		}
	}
	return nil
}

func matchID(a, b string, ignoreCase bool) bool {
	if ignoreCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}
