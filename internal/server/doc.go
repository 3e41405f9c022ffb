// Package server implements the MCP (Model Context Protocol) server for the
// sub-picture extractor.
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
//   - image_crop: Extract rectangular region
//
// Sub-picture Extraction:
//   - subpic_extract: Find rectangular sub-pictures and report them
//   - subpic_save: Find sub-pictures and write them to disk or S3
//
// Diagnostics:
//   - subpic_edge_map: The shaped edge map boundaries are traced from
//   - subpic_outline: The source with detected sub-pictures outlined
//   - image_edge_detect: Raw Canny edge map, before shaping
//   - subpic_config: Default settings and active backend
//
// Every subpic tool accepts the pipeline overrides threshold_low,
// threshold_high, blur_radius, close_kernel, min_area, epsilon and
// sort_reading_order. Omitted values select the defaults; an explicit 0 is
// honoured, so min_area 0 keeps every traced boundary.
//
// # Image Caching
//
// Decoded sources are cached by path and reused across tool calls. The
// cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// An image without any region above the area floor fails with "no contours
// could be found, likely no subpics present in source image". A save into
// a missing directory without create_directory fails with "the destination
// directory does not exist".
//
// # Usage
//
//	srv := server.New(logging.FromEnv())
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
