// Package partition builds and manipulates an entropy-driven 2-D tree over an image.
//
// The tree recursively splits the image rectangle in two, alternating between
// vertical and horizontal cuts with depth. At every node the cut position is the
// one that minimizes the area-weighted hue entropy of the two halves, so each
// split separates the image into parts that are as color-homogeneous as
// possible. Leaves of a freshly built tree are single pixels, which makes
// rendering the tree reproduce the image exactly.
//
// # Operations
//
//   - New / Build: build a tree from an *hsla.Image (optionally in parallel)
//   - Render: paint every leaf's average color over its rectangle
//   - Clone: deep copy, used to prune one tree at several tolerances
//   - Prune / PruneWith: collapse subtrees whose leaves are all close in color to
//     the subtree root's average, producing a coarser approximation
//   - WriteTo / ReadTree: binary archive of the tree, zstd compressed
//
// # Coordinate System
//
// Nodes describe rectangles by inclusive corners UpLeft and LowRight. Bounds
// converts them to the usual image.Rectangle with an exclusive maximum.
//
// # Thread Safety
//
// A Tree is not safe for concurrent mutation. Render, Clone and the query
// methods may run concurrently with each other when nothing is pruning.
package partition
