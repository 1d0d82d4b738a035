// Package server implements the MCP (Model Context Protocol) server for the
// plate capture tools.
//
// This package provides a JSON-RPC 2.0 server that exposes plate recognition,
// the capture tracker and the gate bookkeeping of a session.Session through
// the MCP protocol.
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
// Recognition:
//   - plate_recognize: Read the plate in a still frame
//   - plate_normalize: Normalize a raw plate string
//
// Capture:
//   - plate_observe: Feed the next stream frame to the tracker
//   - plate_session_reset: Drop the tracker state
//
// Bookkeeping:
//   - plate_status: Is a plate in the lot, and since when
//   - plate_check_in: Store the current frame under its plate
//   - plate_check_out: Remove a plate's entry
//   - plate_fee: Flat fee per vehicle kind
//
// # Frame Caching
//
// Still frames passed to plate_recognize and plate_check_in are cached by
// path and decoded again when the file changes, so a snapshot overwritten by
// a gate camera is read fresh. Frames passed to plate_observe are stream
// frames and are read from disk every time. plate_session_reset clears the
// cache.
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
//	srv := server.New(sess)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
