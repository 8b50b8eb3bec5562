package partition

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/ironsheep/image-partition-mcp/internal/hsla"
	"github.com/ironsheep/image-partition-mcp/internal/stats"
)

// DefaultMinParallelArea is the smallest rectangle (in pixels) whose subtrees
// are handed to another goroutine when building with several workers.
const DefaultMinParallelArea = 4096

// Options controls tree construction.
type Options struct {
	// Workers is the number of goroutines allowed to build subtrees at the same
	// time. Values below 2 build sequentially. The resulting tree is identical
	// either way.
	Workers int

	// MinParallelArea is the pixel count below which a node's children are always
	// built on the current goroutine. Zero means DefaultMinParallelArea.
	MinParallelArea int
}

// New builds a tree from img sequentially. See Build.
func New(img *hsla.Image) (*Tree, error) {
	return Build(img, Options{})
}

// Build computes region statistics for img and builds the full tree, starting
// with a vertical split at the root.
//
// The statistics are discarded once the tree is built; the tree keeps only
// rectangles and their average colors.
//
// # Errors
//
//   - Returns hsla.ErrEmptyImage if img is nil or has zero width or height.
func Build(img *hsla.Image, opts Options) (*Tree, error) {
	s, err := stats.New(img)
	if err != nil {
		return nil, fmt.Errorf("failed to compute region statistics: %w", err)
	}

	b := &builder{stats: s, minParallelArea: opts.MinParallelArea}
	if b.minParallelArea <= 0 {
		b.minParallelArea = DefaultMinParallelArea
	}
	if opts.Workers > 1 {
		// The calling goroutine counts as one worker.
		b.sem = make(chan struct{}, opts.Workers-1)
	}

	root := b.build(image.Pt(0, 0), image.Pt(img.Width-1, img.Height-1), true)
	return &Tree{root: &root, width: img.Width, height: img.Height}, nil
}

type builder struct {
	stats           *stats.Stats
	sem             chan struct{}
	minParallelArea int
}

// build returns the subtree for the rectangle ul-lr. vertical requests a
// vertical cut; one-row rectangles are always cut vertically and one-column
// rectangles horizontally.
func (b *builder) build(ul, lr image.Point, vertical bool) Node {
	if ul.X < 0 || ul.Y < 0 || lr.X >= b.stats.Width() || lr.Y >= b.stats.Height() || ul.X > lr.X || ul.Y > lr.Y {
		panic(fmt.Sprintf("partition: invalid rectangle %v-%v for %dx%d image",
			ul, lr, b.stats.Width(), b.stats.Height()))
	}

	n := Node{UpLeft: ul, LowRight: lr, Avg: b.stats.Avg(ul, lr)}
	if ul == lr {
		return n
	}

	width := lr.X - ul.X + 1
	height := lr.Y - ul.Y + 1

	var ltLR, rbUL image.Point
	if width > 1 && (vertical || height == 1) {
		k := b.bestVerticalSplit(ul, lr)
		ltLR, rbUL = image.Pt(k, lr.Y), image.Pt(k+1, ul.Y)
	} else {
		k := b.bestHorizontalSplit(ul, lr)
		ltLR, rbUL = image.Pt(lr.X, k), image.Pt(ul.X, k+1)
	}

	kids := &children{}
	if b.sem != nil && width*height >= b.minParallelArea {
		select {
		case b.sem <- struct{}{}:
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-b.sem }()
				kids.LT = b.build(ul, ltLR, !vertical)
			}()
			kids.RB = b.build(rbUL, lr, !vertical)
			wg.Wait()
			n.kids = kids
			return n
		default:
		}
	}

	kids.LT = b.build(ul, ltLR, !vertical)
	kids.RB = b.build(rbUL, lr, !vertical)
	n.kids = kids
	return n
}

// bestVerticalSplit returns the column k such that splitting into ul-(k,lr.Y)
// and (k+1,ul.Y)-lr has the lowest weighted entropy. Candidates are scanned
// left to right and ties go to the last one seen.
func (b *builder) bestVerticalSplit(ul, lr image.Point) int {
	best := math.MaxFloat64
	k := ul.X
	for xi := ul.X; xi < lr.X; xi++ {
		score := b.stats.WeightedSumEntropy(ul, image.Pt(xi, lr.Y), image.Pt(xi+1, ul.Y), lr)
		if score <= best {
			best = score
			k = xi
		}
	}
	return k
}

// bestHorizontalSplit is bestVerticalSplit for rows, scanned top to bottom.
func (b *builder) bestHorizontalSplit(ul, lr image.Point) int {
	best := math.MaxFloat64
	k := ul.Y
	for yi := ul.Y; yi < lr.Y; yi++ {
		score := b.stats.WeightedSumEntropy(ul, image.Pt(lr.X, yi), image.Pt(ul.X, yi+1), lr)
		if score <= best {
			best = score
			k = yi
		}
	}
	return k
}
