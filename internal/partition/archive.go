package partition

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"

	"github.com/ironsheep/image-partition-mcp/internal/hsla"
)

// ErrInvalidArchive is returned by ReadTree for data that is not a tree archive
// or describes an inconsistent tree.
var ErrInvalidArchive = errors.New("invalid tree archive")

// Archive layout:
//
//	magic    "2DTR"
//	version  1 byte
//	width    uint32, big endian
//	height   uint32, big endian
//	zstd frame of pre-order node records, each:
//	  tag      1 byte (0 leaf, 1 internal)
//	  x0,y0    uint32 upper-left, inclusive
//	  x1,y1    uint32 lower-right, inclusive
//	  h,s,l,a  float64 bits
const (
	archiveMagic   = "2DTR"
	archiveVersion = 1

	tagLeaf     = 0
	tagInternal = 1

	headerSize = len(archiveMagic) + 1 + 4 + 4
	recordSize = 1 + 4*4 + 4*8
)

// WriteTo writes the tree as a compressed archive. It implements io.WriterTo.
//
// # Errors
//
//   - Returns ErrEmptyTree if the tree was never built.
//   - Returns any error from w or the compressor.
func (t *Tree) WriteTo(w io.Writer) (int64, error) {
	if t.root == nil {
		return 0, ErrEmptyTree
	}
	cw := &countingWriter{w: w}

	var header [headerSize]byte
	copy(header[:], archiveMagic)
	header[len(archiveMagic)] = archiveVersion
	binary.BigEndian.PutUint32(header[len(archiveMagic)+1:], uint32(t.width))
	binary.BigEndian.PutUint32(header[len(archiveMagic)+5:], uint32(t.height))
	if _, err := cw.Write(header[:]); err != nil {
		return cw.n, err
	}

	enc, err := zstd.NewWriter(cw)
	if err != nil {
		return cw.n, fmt.Errorf("failed to create compressor: %w", err)
	}
	bw := bufio.NewWriter(enc)
	if err := writeNode(bw, t.root); err != nil {
		enc.Close()
		return cw.n, err
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return cw.n, err
	}
	if err := enc.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

func writeNode(w *bufio.Writer, n *Node) error {
	var rec [recordSize]byte
	if n.kids != nil {
		rec[0] = tagInternal
	}
	binary.BigEndian.PutUint32(rec[1:], uint32(n.UpLeft.X))
	binary.BigEndian.PutUint32(rec[5:], uint32(n.UpLeft.Y))
	binary.BigEndian.PutUint32(rec[9:], uint32(n.LowRight.X))
	binary.BigEndian.PutUint32(rec[13:], uint32(n.LowRight.Y))
	binary.BigEndian.PutUint64(rec[17:], math.Float64bits(n.Avg.H))
	binary.BigEndian.PutUint64(rec[25:], math.Float64bits(n.Avg.S))
	binary.BigEndian.PutUint64(rec[33:], math.Float64bits(n.Avg.L))
	binary.BigEndian.PutUint64(rec[41:], math.Float64bits(n.Avg.A))
	if _, err := w.Write(rec[:]); err != nil {
		return err
	}
	if n.kids == nil {
		return nil
	}
	if err := writeNode(w, &n.kids.LT); err != nil {
		return err
	}
	return writeNode(w, &n.kids.RB)
}

// ReadTree decodes an archive written by Tree.WriteTo.
//
// # Errors
//
//   - Returns ErrInvalidArchive (wrapped) for a bad header, a truncated stream,
//     or rectangles that fall outside the image or do not tile their parent.
func ReadTree(r io.Reader) (*Tree, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrInvalidArchive, err)
	}
	if string(header[:len(archiveMagic)]) != archiveMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidArchive)
	}
	if v := header[len(archiveMagic)]; v != archiveVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidArchive, v)
	}
	width := int(binary.BigEndian.Uint32(header[len(archiveMagic)+1:]))
	height := int(binary.BigEndian.Uint32(header[len(archiveMagic)+5:]))
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrInvalidArchive, width, height)
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create decompressor: %w", err)
	}
	defer dec.Close()

	rd := &nodeReader{r: bufio.NewReader(dec), width: width, height: height}
	root, err := rd.read()
	if err != nil {
		return nil, err
	}
	if root.UpLeft != image.Pt(0, 0) || root.LowRight != image.Pt(width-1, height-1) {
		return nil, fmt.Errorf("%w: root %v-%v does not cover %dx%d image",
			ErrInvalidArchive, root.UpLeft, root.LowRight, width, height)
	}
	return &Tree{root: &root, width: width, height: height}, nil
}

type nodeReader struct {
	r      *bufio.Reader
	width  int
	height int
}

func (rd *nodeReader) read() (Node, error) {
	var rec [recordSize]byte
	if _, err := io.ReadFull(rd.r, rec[:]); err != nil {
		return Node{}, fmt.Errorf("%w: reading node: %v", ErrInvalidArchive, err)
	}
	n := Node{
		UpLeft:   image.Pt(int(binary.BigEndian.Uint32(rec[1:])), int(binary.BigEndian.Uint32(rec[5:]))),
		LowRight: image.Pt(int(binary.BigEndian.Uint32(rec[9:])), int(binary.BigEndian.Uint32(rec[13:]))),
		Avg: hsla.Color{
			H: math.Float64frombits(binary.BigEndian.Uint64(rec[17:])),
			S: math.Float64frombits(binary.BigEndian.Uint64(rec[25:])),
			L: math.Float64frombits(binary.BigEndian.Uint64(rec[33:])),
			A: math.Float64frombits(binary.BigEndian.Uint64(rec[41:])),
		},
	}
	if n.UpLeft.X > n.LowRight.X || n.UpLeft.Y > n.LowRight.Y ||
		n.LowRight.X >= rd.width || n.LowRight.Y >= rd.height {
		return Node{}, fmt.Errorf("%w: node rectangle %v-%v", ErrInvalidArchive, n.UpLeft, n.LowRight)
	}

	switch rec[0] {
	case tagLeaf:
		return n, nil
	case tagInternal:
	default:
		return Node{}, fmt.Errorf("%w: unknown node tag %d", ErrInvalidArchive, rec[0])
	}
	if n.UpLeft == n.LowRight {
		return Node{}, fmt.Errorf("%w: single-pixel node %v has children", ErrInvalidArchive, n.UpLeft)
	}

	lt, err := rd.read()
	if err != nil {
		return Node{}, err
	}
	rb, err := rd.read()
	if err != nil {
		return Node{}, err
	}
	if !tiles(n, lt, rb) {
		return Node{}, fmt.Errorf("%w: children of %v-%v do not tile it", ErrInvalidArchive, n.UpLeft, n.LowRight)
	}
	n.kids = &children{LT: lt, RB: rb}
	return n, nil
}

// tiles reports whether lt and rb split parent by one vertical or horizontal cut.
func tiles(parent, lt, rb Node) bool {
	if lt.UpLeft != parent.UpLeft || rb.LowRight != parent.LowRight {
		return false
	}
	vertical := lt.LowRight.Y == parent.LowRight.Y && rb.UpLeft.Y == parent.UpLeft.Y &&
		rb.UpLeft.X == lt.LowRight.X+1
	horizontal := lt.LowRight.X == parent.LowRight.X && rb.UpLeft.X == parent.UpLeft.X &&
		rb.UpLeft.Y == lt.LowRight.Y+1
	return vertical || horizontal
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
