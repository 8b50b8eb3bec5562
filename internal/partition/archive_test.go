package partition

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"github.com/ironsheep/image-partition-mcp/internal/hsla"
)

func roundTrip(t *testing.T, tree *Tree) *Tree {
	t.Helper()
	var buf bytes.Buffer
	n, err := tree.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo reported %d bytes, wrote %d", n, buf.Len())
	}
	got, err := ReadTree(&buf)
	if err != nil {
		t.Fatalf("ReadTree failed: %v", err)
	}
	return got
}

func TestArchive_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		tolerance float64 // negative: no pruning
	}{
		{"unpruned", -1},
		{"pruned", 0.05},
		{"collapsed", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := mustBuild(t, noisyBlockImage(t, 14, 9, 3))
			if tt.tolerance >= 0 {
				if err := tree.Prune(tt.tolerance); err != nil {
					t.Fatalf("Prune failed: %v", err)
				}
			}

			got := roundTrip(t, tree)
			if got.Width() != 14 || got.Height() != 9 {
				t.Errorf("size: got %dx%d, want 14x9", got.Width(), got.Height())
			}
			if got.Leaves() != tree.Leaves() || got.Depth() != tree.Depth() {
				t.Errorf("shape: got %d leaves depth %d, want %d leaves depth %d",
					got.Leaves(), got.Depth(), tree.Leaves(), tree.Depth())
			}
			if !mustRender(t, got).Equal(mustRender(t, tree)) {
				t.Error("decoded tree renders differently")
			}
		})
	}
}

func TestArchive_EmptyTree(t *testing.T) {
	var tree Tree
	if _, err := tree.WriteTo(&bytes.Buffer{}); !errors.Is(err, ErrEmptyTree) {
		t.Errorf("WriteTo: got %v, want ErrEmptyTree", err)
	}
}

func TestReadTree_Invalid(t *testing.T) {
	var good bytes.Buffer
	if _, err := mustBuild(t, randomImage(t, 6, 4, 1)).WriteTo(&good); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	data := good.Bytes()

	badMagic := append([]byte("XXXX"), data[4:]...)
	badVersion := append([]byte{}, data...)
	badVersion[4] = 99
	zeroSize := append([]byte{}, data...)
	copy(zeroSize[5:9], []byte{0, 0, 0, 0})

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", data[:5]},
		{"bad magic", badMagic},
		{"bad version", badVersion},
		{"zero width", zeroSize},
		{"truncated body", data[:len(data)-8]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadTree(bytes.NewReader(tt.data)); !errors.Is(err, ErrInvalidArchive) {
				t.Errorf("ReadTree: got %v, want ErrInvalidArchive", err)
			}
		})
	}
}

func TestReadTree_RejectsBadTiling(t *testing.T) {
	c := hsla.New(0, 1, 0.5)
	root := Node{UpLeft: image.Pt(0, 0), LowRight: image.Pt(2, 0), Avg: c}
	root.kids = &children{
		LT: Node{UpLeft: image.Pt(0, 0), LowRight: image.Pt(0, 0), Avg: c},
		RB: Node{UpLeft: image.Pt(2, 0), LowRight: image.Pt(2, 0), Avg: c},
	}
	tree := &Tree{root: &root, width: 3, height: 1}

	var buf bytes.Buffer
	if _, err := tree.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if _, err := ReadTree(&buf); !errors.Is(err, ErrInvalidArchive) {
		t.Errorf("ReadTree: got %v, want ErrInvalidArchive", err)
	}
}
