package partition

import (
	"github.com/ironsheep/image-partition-mcp/internal/hsla"
)

// Render paints every leaf's average color over its rectangle into a new image
// of the tree's original size. An unpruned tree renders to its source image.
//
// # Errors
//
//   - Returns ErrEmptyTree if the tree was never built.
func (t *Tree) Render() (*hsla.Image, error) {
	if t.root == nil {
		return nil, ErrEmptyTree
	}
	img := hsla.NewImage(t.width, t.height)
	t.WalkLeaves(func(n *Node) {
		for y := n.UpLeft.Y; y <= n.LowRight.Y; y++ {
			row := img.Pix[y*img.Width : (y+1)*img.Width]
			for x := n.UpLeft.X; x <= n.LowRight.X; x++ {
				row[x] = n.Avg
			}
		}
	})
	return img, nil
}

// Prune collapses color-uniform subtrees using the default hsla.Distance
// metric. See PruneWith.
func (t *Tree) Prune(tolerance float64) error {
	return t.PruneWith(tolerance, hsla.Distance)
}

// PruneWith collapses every subtree whose leaves are all within tolerance of
// the subtree root's own average color, turning the subtree root into a leaf
// that keeps its average.
//
// The walk is top-down starting at the root: a node that qualifies is
// collapsed and its descendants are not examined further; otherwise each child
// is examined in turn. A leaf qualifies when its color equals the base color
// (see hsla.Color.Equal) or metric(base, leaf) < tolerance, so tolerance 0
// still collapses perfectly uniform regions.
//
// Pruning is meant to be applied once to a freshly built tree; use Clone to
// prune the same tree at several tolerances. A nil metric means hsla.Distance.
//
// # Errors
//
//   - Returns ErrEmptyTree if the tree was never built.
func (t *Tree) PruneWith(tolerance float64, metric hsla.Metric) error {
	if t.root == nil {
		return ErrEmptyTree
	}
	if metric == nil {
		metric = hsla.Distance
	}
	prune(t.root, tolerance, metric)
	return nil
}

func prune(n *Node, tolerance float64, metric hsla.Metric) {
	if n.kids == nil {
		return
	}
	if withinTolerance(n, n.Avg, tolerance, metric) {
		n.kids = nil
		return
	}
	prune(&n.kids.LT, tolerance, metric)
	prune(&n.kids.RB, tolerance, metric)
}

// withinTolerance reports whether every leaf under n is close to base.
func withinTolerance(n *Node, base hsla.Color, tolerance float64, metric hsla.Metric) bool {
	if n.kids == nil {
		return n.Avg.Equal(base) || metric(base, n.Avg) < tolerance
	}
	return withinTolerance(&n.kids.LT, base, tolerance, metric) &&
		withinTolerance(&n.kids.RB, base, tolerance, metric)
}
