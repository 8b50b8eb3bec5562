// Package server implements the MCP (Model Context Protocol) server for image
// partitioning tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the partitioning
// engine through the MCP protocol, so an MCP client can split an image into
// color-homogeneous rectangles, inspect them and store the result.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Region Statistics:
//   - region_stats: Average color, hue histogram and entropy of a rectangle
//
// Partitioning:
//   - partition_render: Render the (pruned) partition as base64 PNG
//   - partition_outline: Draw rectangle borders over the source image
//   - partition_sweep: Leaf counts and area statistics per tolerance
//
// Archives:
//   - partition_export: Write the tree to a compressed archive
//   - partition_import: Render a previously written archive
//
// # Caching
//
// Loaded images are cached by path. Built partition trees are cached by path
// and blur radius; every tool prunes a private clone, so the cached tree always
// stays complete. image_load with reload set drops both for a path.
//
// # Configuration
//
// Defaults for workers, metric, tolerances, blur radius and outline color come
// from a config.Config passed to New.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	cfg, err := config.LoadConfig(os.Getenv(config.EnvPath))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := server.New(cfg).Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
