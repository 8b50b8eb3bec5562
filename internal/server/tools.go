package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var (
	pathProperty = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
	toleranceProperty = map[string]interface{}{
		"type":        "number",
		"description": "Pruning tolerance in [0,1]. Subtrees whose leaves all lie within this color distance of the subtree average collapse into one rectangle. Omit for the full, unpruned partition.",
	}
	metricProperty = map[string]interface{}{
		"type":        "string",
		"description": "Color distance used for pruning: hsl (default) or ciede2000",
		"enum":        []string{"hsl", "ciede2000"},
	}
	blurProperty = map[string]interface{}{
		"type":        "number",
		"description": "Gaussian pre-smoothing radius applied before partitioning. Default from server config (usually 0).",
	}
	scaleProperty = map[string]interface{}{
		"type":        "number",
		"description": "Optional scale factor for the returned PNG (nearest neighbour). Default 1.0",
		"default":     1.0,
	}
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. Set reload to drop cached copies and partition trees of a file that changed on disk.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Discard cached data for this path before loading",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},

		// Region Statistics
		{
			Name:        "region_stats",
			Description: "Compute the circular-mean HSLA color, the 36-bucket hue histogram and the hue entropy (bits) of a rectangular region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge X coordinate (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},

		// Partitioning
		{
			Name:        "partition_render",
			Description: "Partition an image into rectangles by recursive minimum-entropy splits, optionally prune it at a tolerance, and return the image with every rectangle filled by its average color as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty,
					"tolerance": toleranceProperty,
					"metric":    metricProperty,
					"blur":      blurProperty,
					"scale":     scaleProperty,
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional file to also write the full-size render to; the extension picks the format (png, jpg, gif, qoi)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "partition_outline",
			Description: "Draw the rectangle borders of a (pruned) partition over the original image and return it as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty,
					"tolerance": toleranceProperty,
					"metric":    metricProperty,
					"blur":      blurProperty,
					"scale":     scaleProperty,
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Line color as hex (#RRGGBB or #RRGGBBAA). Default from server config",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "partition_sweep",
			Description: "Prune the partition at several tolerances and report the rectangle count and leaf area statistics for each.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"tolerances": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "number"},
						"description": "Tolerances to evaluate. Default from server config",
					},
					"metric": metricProperty,
					"blur":   blurProperty,
				},
				"required": []string{"path"},
			},
		},

		// Archives
		{
			Name:        "partition_export",
			Description: "Write the (pruned) partition tree to a compact zstd-compressed archive that can be rendered later without the source image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty,
					"tolerance": toleranceProperty,
					"metric":    metricProperty,
					"blur":      blurProperty,
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Archive file to write (conventionally .2dtr)",
					},
				},
				"required": []string{"path", "output_path"},
			},
		},
		{
			Name:        "partition_import",
			Description: "Read a partition archive and render it, returning base64 PNG and optionally writing a raster file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"archive_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the archive file",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional raster file to write the render to",
					},
					"scale": scaleProperty,
				},
				"required": []string{"archive_path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
