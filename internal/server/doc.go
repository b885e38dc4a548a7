// Package server implements the MCP (Model Context Protocol) server for comic
// text cleanup.
//
// This package provides a JSON-RPC 2.0 server that exposes the cleanup
// pipeline through the MCP protocol, so that an assistant can inspect a page,
// detect its lettering and paint it out one crop at a time or all at once.
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
// Unparseable lines get a -32700 response with a null ID.
//
// # Available Tools
//
// Page Information:
//   - image_load: Load a page and get metadata
//   - ocr_status: Report Tesseract availability
//
// Detection:
//   - text_detect: Word-level OCR of a region, with filter verdicts
//
// Cleanup:
//   - text_mask: Build the text mask of one crop
//   - text_clean: Remove text from one crop
//   - page_clean: Clean many regions of a page and paste them back
//
// Analysis Helpers:
//   - color_analyze: Dominant and most frequent colors of a region
//   - background_analyze: Otsu split and lettering block of a region
//
// Regions use page coordinates {left, top, width, height}. Detections use
// crop coordinates {x0, y0, x1, y1}, exclusive on the max edges.
//
// # Progress
//
// When a page_clean call carries _meta.progressToken, the server emits
// notifications/progress with the number of crops recognized so far while
// OCR runs.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded pages. Pages are cached
// by path and reused across tool calls, avoiding redundant disk I/O. Cached
// pages are never modified; every crop is cleaned on its own copy.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// A crop that cannot be cleaned is not a tool failure. text_mask, text_clean
// and page_clean report it in an "error" object with code, crop_id, message
// and cause, next to the untouched crop.
//
// # Usage
//
// The server is typically started by an MCP client through the textclean
// command:
//
//	srv := server.New(server.DefaultOptions())
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
