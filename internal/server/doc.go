// Package server implements the MCP (Model Context Protocol) server for
// nutrition label tools.
//
// The server speaks JSON-RPC 2.0 over stdio:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to stderr so they never interleave with protocol output.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image:
//   - label_load: Photo metadata and contrast estimate
//   - label_preprocess: The enhanced photo the OCR engine sees
//
// OCR:
//   - label_ocr_fragments: Raw fragments with boxes and confidence
//   - label_extract_text: Reconstructed, corrected label text
//
// Text:
//   - label_reconstruct: Rebuild rows from caller-supplied fragments
//   - label_normalize_text: Correct OCR misreads
//
// Analysis:
//   - label_analyze_text: Verdict, explanation and consumption advice
//   - label_analyze: Photo to verdict in one call
//   - label_health: Engine and analysis status
//
// # Error Handling
//
// Malformed or missing arguments return -32602. Tool failures return
// -32000 with the Go error string in data. label_analyze reports failures
// in its result instead, mirroring a web endpoint's success/error body.
package server
