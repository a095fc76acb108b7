// Package server exposes the cone detection pipeline as MCP (Model Context
// Protocol) tools, so a saved photo can be analyzed without a robot or camera.
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
//   - cone_profiles: List color profiles and their HSV ranges
//   - cone_load: Load an image and get its dimensions
//   - cone_detect_image: Run detection and explain every contour's verdict
//   - cone_mask: Render a profile's eroded mask
//   - cone_crop: Zoom into one detection
//
// Tools that take a color fall back to the configured default color. The
// detection settings (shape rules, selection policy) come from the same
// configuration as the live loop, so a still image is judged exactly as a
// camera frame would be.
//
// # Image Caching
//
// Images are cached by path and reused across tool calls for the lifetime of
// the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// Logs go to the zap logger passed to New, never to stdout.
package server
