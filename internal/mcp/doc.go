// Package mcp implements the Model Context Protocol (MCP) server for fpml.
//
// The server exposes the schema index and the XML generators to AI assistants:
//   - lookup_tag: Describe one tag by exact name
//   - generate_template: Render a placeholder document for any tag
//   - generate_minimal: Render the required-only skeleton of a top-level message
//   - list_tags: List indexed names, optionally filtered
//   - get_status: Report the loaded source, index statistics and stored embeddings
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The index is built once at startup and never modified, so tool calls are
// served concurrently without locking.
//
// # Basic Usage
//
//	fpml serve --source all_xsd_data.json --db embeddings.db
//
// # Tool: lookup_tag
//
//	Request:
//	{
//	  "name": "lookup_tag",
//	  "arguments": {"tag": "tradeHeader"}
//	}
//
//	Response:
//	{
//	  "tag_name": "tradeHeader",
//	  "source_xsd": "fpml-doc-5-12.xsd",
//	  "data_type": "TradeHeader",
//	  "location": "Child of Trade",
//	  "description": "...",
//	  "attributes": {},
//	  "children_count": 4,
//	  "children_sample": [...]
//	}
//
// A miss is an ordinary result:
//
//	{"found": false, "tag": "tradeHeadr", "status": "Tag 'tradeHeadr' not found in the Base Model.", "suggestions": ["tradeHeader"]}
//
// # Tool: generate_template / generate_minimal
//
//	Request:
//	{
//	  "name": "generate_minimal",
//	  "arguments": {"root": "requestConfirmation"}
//	}
//
//	Response:
//	{
//	  "root": "requestConfirmation",
//	  "document": "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n...",
//	  "well_formed": true,
//	  "document_element": "dataDocument"
//	}
//
// # Error Handling
//
// Generation failures come back as tool results with isError set and a JSON
// body of {"code", "message", "data"}:
//   - -32001: Root tag not found (data carries suggestions)
//   - -32005: Root is not a top-level message element
//   - -32603: Cycle or depth limit (data carries the path or tag)
//
// Bad arguments and storage failures are returned as MCPError values. mcp-go
// sends those as JSON-RPC internal errors with the MCPError code in the message:
//   - -32602: Invalid params (missing or mistyped arguments)
//   - -32603: Internal error
//
// # Logging
//
// stdout is reserved for the protocol; the zap logger passed to NewServer
// must write to stderr.
package mcp
