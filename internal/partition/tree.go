package partition

import (
	"errors"
	"image"

	"github.com/ironsheep/image-partition-mcp/internal/hsla"
)

// ErrEmptyTree is returned by operations that need a built tree when called on
// the zero Tree.
var ErrEmptyTree = errors.New("partition tree is empty")

// Node is one rectangle of the partition.
//
// A node is either a leaf or has exactly two children: LT (left or top) and RB
// (right or bottom), whose rectangles tile the node's rectangle. Children are
// owned by value; there is no sharing between nodes or between trees.
type Node struct {
	UpLeft   image.Point // inclusive
	LowRight image.Point // inclusive
	Avg      hsla.Color

	kids *children
}

type children struct {
	LT Node
	RB Node
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return n.kids == nil }

// Children returns the left/top and right/bottom children, or nil, nil for a leaf.
func (n *Node) Children() (lt, rb *Node) {
	if n.kids == nil {
		return nil, nil
	}
	return &n.kids.LT, &n.kids.RB
}

// Bounds returns the node's rectangle with an exclusive maximum.
func (n *Node) Bounds() image.Rectangle {
	return image.Rect(n.UpLeft.X, n.UpLeft.Y, n.LowRight.X+1, n.LowRight.Y+1)
}

func (n *Node) clone() Node {
	c := Node{UpLeft: n.UpLeft, LowRight: n.LowRight, Avg: n.Avg}
	if n.kids != nil {
		c.kids = &children{LT: n.kids.LT.clone(), RB: n.kids.RB.clone()}
	}
	return c
}

// Tree is a partition of an image into color-homogeneous rectangles.
//
// The zero Tree is empty; Render, Prune and WriteTo return ErrEmptyTree on it.
type Tree struct {
	root   *Node
	width  int
	height int
}

// Width returns the width of the image the tree was built from.
func (t *Tree) Width() int { return t.width }

// Height returns the height of the image the tree was built from.
func (t *Tree) Height() int { return t.height }

// Root returns the root node, or nil for an empty tree.
func (t *Tree) Root() *Node { return t.root }

// Clone returns a deep copy of the tree. Pruning the copy never affects t.
func (t *Tree) Clone() *Tree {
	c := &Tree{width: t.width, height: t.height}
	if t.root != nil {
		root := t.root.clone()
		c.root = &root
	}
	return c
}

// WalkLeaves calls fn for every leaf, left/top subtree first.
func (t *Tree) WalkLeaves(fn func(n *Node)) {
	if t.root != nil {
		walkLeaves(t.root, fn)
	}
}

func walkLeaves(n *Node, fn func(n *Node)) {
	if n.kids == nil {
		fn(n)
		return
	}
	walkLeaves(&n.kids.LT, fn)
	walkLeaves(&n.kids.RB, fn)
}

// Leaves returns the number of leaf rectangles; 0 for an empty tree.
func (t *Tree) Leaves() int {
	count := 0
	t.WalkLeaves(func(*Node) { count++ })
	return count
}

// LeafRects returns the rectangle of every leaf, in WalkLeaves order.
func (t *Tree) LeafRects() []image.Rectangle {
	var rects []image.Rectangle
	t.WalkLeaves(func(n *Node) { rects = append(rects, n.Bounds()) })
	return rects
}

// Depth returns the number of nodes on the longest root-to-leaf path; 0 for an
// empty tree.
func (t *Tree) Depth() int {
	if t.root == nil {
		return 0
	}
	return depth(t.root)
}

func depth(n *Node) int {
	if n.kids == nil {
		return 1
	}
	return 1 + max(depth(&n.kids.LT), depth(&n.kids.RB))
}
