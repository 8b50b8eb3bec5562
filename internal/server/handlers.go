package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/image-partition-mcp/internal/hsla"
	"github.com/ironsheep/image-partition-mcp/internal/imaging"
	"github.com/ironsheep/image-partition-mcp/internal/partition"
	"github.com/ironsheep/image-partition-mcp/internal/stats"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "partition_render").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies configured defaults for optional parameters
//  3. Loads images and partition trees from the server caches
//  4. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Region Statistics
	case "region_stats":
		return s.handleRegionStats(args)

	// Partitioning
	case "partition_render":
		return s.handlePartitionRender(args)
	case "partition_outline":
		return s.handlePartitionOutline(args)
	case "partition_sweep":
		return s.handlePartitionSweep(args)

	// Archives
	case "partition_export":
		return s.handlePartitionExport(args)
	case "partition_import":
		return s.handlePartitionImport(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// colorResult is the JSON form of an HSLA color.
type colorResult struct {
	H   float64 `json:"h"`
	S   float64 `json:"s"`
	L   float64 `json:"l"`
	A   float64 `json:"a"`
	Hex string  `json:"hex"`
}

func newColorResult(c hsla.Color) colorResult {
	return colorResult{H: c.H, S: c.S, L: c.L, A: c.A, Hex: c.Colorful().Hex()}
}

// partitionArgs are the arguments shared by every tool that builds a tree.
// Pointer fields distinguish "not given" from zero.
type partitionArgs struct {
	Path      string   `json:"path"`
	Tolerance *float64 `json:"tolerance"`
	Metric    string   `json:"metric"`
	Blur      *float64 `json:"blur"`
}

func (a *partitionArgs) blur(s *Server) float64 {
	if a.Blur == nil {
		return s.cfg.Preprocess.BlurRadius
	}
	return *a.Blur
}

func (a *partitionArgs) metric(s *Server) (hsla.Metric, error) {
	if a.Metric == "" {
		return hsla.MetricByName(s.cfg.Partition.Metric)
	}
	return hsla.MetricByName(a.Metric)
}

// prunedTree returns a private copy of the cached tree for a, pruned when a
// tolerance is given.
func (s *Server) prunedTree(a *partitionArgs) (*partition.Tree, error) {
	metric, err := a.metric(s)
	if err != nil {
		return nil, err
	}
	if a.Tolerance != nil && *a.Tolerance < 0 {
		return nil, fmt.Errorf("tolerance must not be negative, got %g", *a.Tolerance)
	}
	blur := a.blur(s)
	if blur < 0 {
		return nil, fmt.Errorf("blur must not be negative, got %g", blur)
	}

	full, err := s.tree(a.Path, blur)
	if err != nil {
		return nil, err
	}
	t := full.Clone()
	if a.Tolerance != nil {
		if err := t.PruneWith(*a.Tolerance, metric); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path   string `json:"path"`
	Reload bool   `json:"reload"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Reload {
		s.forget(a.Path)
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Region Statistics Handlers ===

type regionStatsArgs struct {
	Path string `json:"path"`
	X1   int    `json:"x1"`
	Y1   int    `json:"y1"`
	X2   int    `json:"x2"`
	Y2   int    `json:"y2"`
}

// RegionStatsResult describes the color content of one rectangle.
// DominantBucket is the index k of the fullest hue bucket, covering hues
// [10k, 10k+10).
type RegionStatsResult struct {
	Region         image.Rectangle `json:"region"`
	Area           int             `json:"area"`
	Average        colorResult     `json:"average"`
	Entropy        float64         `json:"entropy"`
	Histogram      []float64       `json:"histogram"`
	DominantBucket int             `json:"dominant_bucket"`
}

func (s *Server) handleRegionStats(args json.RawMessage) (interface{}, error) {
	var a regionStatsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	img, err := hsla.FromImage(src)
	if err != nil {
		return nil, err
	}

	r := image.Rect(a.X1, a.Y1, a.X2, a.Y2)
	if a.X2 <= a.X1 || a.Y2 <= a.Y1 || !r.In(img.Bounds()) {
		return nil, fmt.Errorf("region (%d,%d)-(%d,%d) is empty or outside the %dx%d image",
			a.X1, a.Y1, a.X2, a.Y2, img.Width, img.Height)
	}

	st, err := stats.New(img)
	if err != nil {
		return nil, err
	}
	ul, lr := r.Min, r.Max.Sub(image.Pt(1, 1))
	hist := st.Histogram(ul, lr)

	return &RegionStatsResult{
		Region:         r,
		Area:           st.RectArea(ul, lr),
		Average:        newColorResult(st.Avg(ul, lr)),
		Entropy:        st.Entropy(ul, lr),
		Histogram:      hist,
		DominantBucket: floats.MaxIdx(hist),
	}, nil
}

// === Partitioning Handlers ===

type partitionRenderArgs struct {
	partitionArgs
	Scale      float64 `json:"scale"`
	OutputPath string  `json:"output_path"`
}

// PartitionRenderResult is returned by partition_render and partition_import.
type PartitionRenderResult struct {
	Leaves     int                   `json:"leaves"`
	Depth      int                   `json:"depth"`
	Tolerance  *float64              `json:"tolerance,omitempty"`
	OutputPath string                `json:"output_path,omitempty"`
	Image      *imaging.EncodedImage `json:"image"`
}

func (s *Server) handlePartitionRender(args json.RawMessage) (interface{}, error) {
	var a partitionRenderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	t, err := s.prunedTree(&a.partitionArgs)
	if err != nil {
		return nil, err
	}
	res, err := renderResult(t, a.Scale, a.OutputPath)
	if err != nil {
		return nil, err
	}
	res.Tolerance = a.Tolerance
	return res, nil
}

// renderResult renders t, optionally saves the full-size raster to outputPath,
// and encodes a (scaled) PNG copy.
func renderResult(t *partition.Tree, scale float64, outputPath string) (*PartitionRenderResult, error) {
	img, err := t.Render()
	if err != nil {
		return nil, err
	}
	if outputPath != "" {
		if err := imaging.Save(img, outputPath); err != nil {
			return nil, err
		}
	}
	if scale == 0 {
		scale = 1.0
	}
	enc, err := imaging.EncodePNG(img, scale)
	if err != nil {
		return nil, err
	}
	return &PartitionRenderResult{
		Leaves:     t.Leaves(),
		Depth:      t.Depth(),
		OutputPath: outputPath,
		Image:      enc,
	}, nil
}

type partitionOutlineArgs struct {
	partitionArgs
	Color string  `json:"color"`
	Scale float64 `json:"scale"`
}

// PartitionOutlineResult is returned by partition_outline.
type PartitionOutlineResult struct {
	Leaves int                   `json:"leaves"`
	Image  *imaging.EncodedImage `json:"image"`
}

func (s *Server) handlePartitionOutline(args json.RawMessage) (interface{}, error) {
	var a partitionOutlineArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = s.cfg.Output.OutlineColor
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	lineColor, err := imaging.ParseHexColor(a.Color)
	if err != nil {
		lineColor = imaging.DefaultOutlineColor
	}

	t, err := s.prunedTree(&a.partitionArgs)
	if err != nil {
		return nil, err
	}
	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	enc, err := imaging.EncodePNG(imaging.Outline(src, t.LeafRects(), lineColor), a.Scale)
	if err != nil {
		return nil, err
	}
	return &PartitionOutlineResult{Leaves: t.Leaves(), Image: enc}, nil
}

type partitionSweepArgs struct {
	Path       string    `json:"path"`
	Tolerances []float64 `json:"tolerances"`
	Metric     string    `json:"metric"`
	Blur       *float64  `json:"blur"`
}

// SweepEntry summarizes the tree pruned at one tolerance.
type SweepEntry struct {
	Tolerance     float64 `json:"tolerance"`
	Leaves        int     `json:"leaves"`
	Depth         int     `json:"depth"`
	MeanLeafArea  float64 `json:"mean_leaf_area"`
	StdDevArea    float64 `json:"stddev_leaf_area"`
	LargestLeaf   float64 `json:"largest_leaf_area"`
	CoveredPixels float64 `json:"covered_pixels"`
}

// PartitionSweepResult is returned by partition_sweep.
type PartitionSweepResult struct {
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	FullLeaves int          `json:"full_leaves"`
	Entries    []SweepEntry `json:"entries"`
}

func (s *Server) handlePartitionSweep(args json.RawMessage) (interface{}, error) {
	var a partitionSweepArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Tolerances) == 0 {
		a.Tolerances = s.cfg.Partition.Tolerances
	}

	pa := partitionArgs{Path: a.Path, Metric: a.Metric, Blur: a.Blur}
	full, err := s.prunedTree(&pa)
	if err != nil {
		return nil, err
	}

	res := &PartitionSweepResult{
		Width:      full.Width(),
		Height:     full.Height(),
		FullLeaves: full.Leaves(),
	}
	for _, tol := range a.Tolerances {
		pa.Tolerance = &tol
		t, err := s.prunedTree(&pa)
		if err != nil {
			return nil, err
		}

		areas := leafAreas(t)
		res.Entries = append(res.Entries, SweepEntry{
			Tolerance:     tol,
			Leaves:        len(areas),
			Depth:         t.Depth(),
			MeanLeafArea:  stat.Mean(areas, nil),
			StdDevArea:    stat.StdDev(areas, nil),
			LargestLeaf:   floats.Max(areas),
			CoveredPixels: floats.Sum(areas),
		})
	}
	return res, nil
}

func leafAreas(t *partition.Tree) []float64 {
	rects := t.LeafRects()
	areas := make([]float64, len(rects))
	for i, r := range rects {
		areas[i] = float64(r.Dx() * r.Dy())
	}
	return areas
}

// === Archive Handlers ===

type partitionExportArgs struct {
	partitionArgs
	OutputPath string `json:"output_path"`
}

// PartitionExportResult is returned by partition_export.
type PartitionExportResult struct {
	OutputPath string `json:"output_path"`
	Bytes      int64  `json:"bytes"`
	Leaves     int    `json:"leaves"`
}

func (s *Server) handlePartitionExport(args json.RawMessage) (interface{}, error) {
	var a partitionExportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputPath == "" {
		return nil, errors.New("output_path is required")
	}

	t, err := s.prunedTree(&a.partitionArgs)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(a.OutputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(a.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	n, err := t.WriteTo(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write archive %s: %w", a.OutputPath, err)
	}

	return &PartitionExportResult{OutputPath: a.OutputPath, Bytes: n, Leaves: t.Leaves()}, nil
}

type partitionImportArgs struct {
	ArchivePath string  `json:"archive_path"`
	OutputPath  string  `json:"output_path"`
	Scale       float64 `json:"scale"`
}

func (s *Server) handlePartitionImport(args json.RawMessage) (interface{}, error) {
	var a partitionImportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	f, err := os.Open(a.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	t, err := partition.ReadTree(f)
	if err != nil {
		return nil, err
	}
	return renderResult(t, a.Scale, a.OutputPath)
}
