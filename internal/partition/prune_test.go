package partition

import (
	"math/rand"
	"testing"

	"github.com/ironsheep/image-partition-mcp/internal/hsla"
)

// noisyBlockImage is blockImage with small random jitter on every pixel, so
// that pruning results depend on the tolerance.
func noisyBlockImage(t *testing.T, w, h int, seed int64) *hsla.Image {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	base := blockImage(t, w, h)
	return newTestImage(t, w, h, func(x, y int) hsla.Color {
		c := base.HSLAAt(x, y)
		c.H += rng.Float64() * 8
		c.S = clamp(c.S - rng.Float64()*0.1)
		c.L = clamp(c.L + (rng.Float64()-0.5)*0.1)
		return c
	})
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func TestPrune_UniformCollapsesToRoot(t *testing.T) {
	c := hsla.New(200, 0.6, 0.3)
	img := newTestImage(t, 6, 5, func(x, y int) hsla.Color { return c })
	tree := mustBuild(t, img)

	if err := tree.Prune(0); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if !tree.Root().IsLeaf() {
		t.Fatalf("root should be a leaf, tree has %d leaves", tree.Leaves())
	}
	if !mustRender(t, tree).Equal(img) {
		t.Error("collapsed uniform tree should still render the image")
	}
}

func TestPrune_LargeToleranceCollapsesEverything(t *testing.T) {
	tree := mustBuild(t, randomImage(t, 9, 7, 4))
	if err := tree.Prune(2); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if got := tree.Leaves(); got != 1 {
		t.Errorf("Leaves: got %d, want 1", got)
	}
}

func TestPrune_ComparesAgainstSubtreeAverage(t *testing.T) {
	// Red | red | cyan | cyan. The root cuts in the middle. Each half is uniform
	// and collapses against its own average even though the halves are far
	// apart from each other and from the root's average.
	img := newTestImage(t, 4, 1, func(x, y int) hsla.Color {
		if x < 2 {
			return hsla.New(0, 1, 0.5)
		}
		return hsla.New(180, 1, 0.5)
	})
	tree := mustBuild(t, img)

	if err := tree.Prune(0.1); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if tree.Root().IsLeaf() {
		t.Fatal("root should not collapse: the halves differ")
	}
	if got := tree.Leaves(); got != 2 {
		t.Errorf("Leaves: got %d, want 2", got)
	}
	if !mustRender(t, tree).Equal(img) {
		t.Error("render after pruning uniform halves should match the image")
	}
}

func TestPrune_Monotonic(t *testing.T) {
	original := mustBuild(t, noisyBlockImage(t, 24, 18, 9))
	tolerances := []float64{0, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1}

	prev := original.Leaves()
	for _, tol := range tolerances {
		cp := original.Clone()
		if err := cp.Prune(tol); err != nil {
			t.Fatalf("Prune(%v) failed: %v", tol, err)
		}
		got := cp.Leaves()
		if got > prev {
			t.Errorf("Prune(%v) left %d leaves, more than %d at a smaller tolerance", tol, got, prev)
		}
		prev = got
	}
	if prev != 1 {
		t.Errorf("tolerance 1 should collapse to a single leaf, got %d", prev)
	}
}

func TestPrune_LeavesStillTileImage(t *testing.T) {
	tree := mustBuild(t, noisyBlockImage(t, 16, 12, 2))
	if err := tree.Prune(0.08); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}

	covered := make([]int, 16*12)
	for _, r := range tree.LeafRects() {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				covered[y*16+x]++
			}
		}
	}
	for i, n := range covered {
		if n != 1 {
			t.Fatalf("pixel (%d,%d) covered %d times", i%16, i/16, n)
		}
	}
}

func TestPruneWith_CustomMetric(t *testing.T) {
	tree := mustBuild(t, randomImage(t, 5, 5, 8))
	alwaysClose := func(a, b hsla.Color) float64 { return 0 }
	if err := tree.PruneWith(0.5, alwaysClose); err != nil {
		t.Fatalf("PruneWith failed: %v", err)
	}
	if got := tree.Leaves(); got != 1 {
		t.Errorf("Leaves: got %d, want 1", got)
	}

	tree = mustBuild(t, randomImage(t, 5, 5, 8))
	neverClose := func(a, b hsla.Color) float64 { return 10 }
	if err := tree.PruneWith(0.5, neverClose); err != nil {
		t.Fatalf("PruneWith failed: %v", err)
	}
	if got := tree.Leaves(); got != 25 {
		t.Errorf("Leaves: got %d, want 25", got)
	}
}

func TestPruneWith_NilMetricUsesDistance(t *testing.T) {
	a := mustBuild(t, noisyBlockImage(t, 12, 12, 5))
	b := a.Clone()
	if err := a.PruneWith(0.1, nil); err != nil {
		t.Fatalf("PruneWith failed: %v", err)
	}
	if err := b.Prune(0.1); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if a.Leaves() != b.Leaves() {
		t.Errorf("nil metric: %d leaves, default metric: %d leaves", a.Leaves(), b.Leaves())
	}
}
