// Package server implements the MCP (Model Context Protocol) server for
// symbol recognition tools.
//
// This package provides a JSON-RPC 2.0 server that exposes a template library,
// a similarity engine and a hierarchical cluster tree through the MCP protocol.
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
// Template Library:
//   - symbol_add_template: Add a template from stroke points
//   - symbol_import_image: Add a template from the ink of an image
//   - symbol_list_templates: List templates, optionally by class or platform
//   - symbol_remove_template: Remove a template by id
//
// Recognition:
//   - symbol_recognize: Rank library templates against unknown ink
//   - symbol_compare: Every distance between one template and unknown ink
//
// Cluster Tree:
//   - symbol_build_tree: Cluster the library into a similarity tree
//   - symbol_tree_recognize: Depth-first, best-first or n-best tree search
//
// Inspection:
//   - symbol_render_raster: Render a screen or polar grid as PNG
//
// Every tool that takes unknown ink accepts either "points" or an image
// "path" with an optional "threshold" and "region".
//
// # Tree Lifetime
//
// The tree built by symbol_build_tree is dropped whenever a template is added
// or removed. symbol_tree_recognize fails until the tree is rebuilt.
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
//	srv := server.New(config.Default(), nil, nil)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
