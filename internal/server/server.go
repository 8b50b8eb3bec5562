package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/ironsheep/image-partition-mcp/internal/config"
	"github.com/ironsheep/image-partition-mcp/internal/hsla"
	"github.com/ironsheep/image-partition-mcp/internal/imaging"
	"github.com/ironsheep/image-partition-mcp/internal/partition"
)

// Version is reported in the initialize handshake.
const Version = "0.1.0"

// Server handles MCP protocol communication
type Server struct {
	cfg   *config.Config
	cache *imaging.ImageCache

	mu    sync.Mutex
	trees map[treeKey]*partition.Tree
}

// treeKey identifies a built tree: the same file blurred differently yields a
// different tree.
type treeKey struct {
	path string
	blur float64
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance. A nil cfg uses config.DefaultConfig.
func New(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Server{
		cfg:   cfg,
		cache: imaging.NewImageCache(),
		trees: make(map[treeKey]*partition.Tree),
	}
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	scanner := bufio.NewScanner(os.Stdin)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Printf("Failed to parse request: %v", err)
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				log.Printf("Failed to encode response: %v", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	if s.cfg.Debug() {
		log.Printf("request %v: %s", req.ID, req.Method)
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "image-partition-mcp",
				"version": Version,
			},
		},
	}
}

// tree returns the full (unpruned) partition tree of the image at path after
// pre-smoothing with the given blur radius, building and caching it on first
// use. Callers must Clone the result before pruning it.
func (s *Server) tree(path string, blur float64) (*partition.Tree, error) {
	key := treeKey{path: path, blur: blur}

	s.mu.Lock()
	t, ok := s.trees[key]
	s.mu.Unlock()
	if ok {
		return t, nil
	}

	src, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	img, err := hsla.FromImage(imaging.Smooth(src, blur))
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", path, err)
	}

	start := time.Now()
	t, err = partition.Build(img, partition.Options{
		Workers:         s.cfg.Partition.Workers,
		MinParallelArea: s.cfg.Partition.MinParallelArea,
	})
	if err != nil {
		return nil, err
	}
	if s.cfg.Debug() {
		log.Printf("built tree for %s (%dx%d, blur %g): %d leaves in %v",
			path, img.Width, img.Height, blur, t.Leaves(), time.Since(start))
	}

	s.mu.Lock()
	s.trees[key] = t
	s.mu.Unlock()
	return t, nil
}

// forget drops every cached tree and image derived from path.
func (s *Server) forget(path string) {
	s.cache.Evict(path)
	s.mu.Lock()
	for key := range s.trees {
		if key.path == path {
			delete(s.trees, key)
		}
	}
	s.mu.Unlock()
}
