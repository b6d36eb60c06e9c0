// Package mcp exposes the Sokoban REST API as Model Context Protocol tools.
//
// The Client forwards every tool call to a running API server over HTTP and
// renders the JSON responses as text an agent can read.
//
// Tools:
//   - create_session, list_sessions, get_session: session management
//   - game_state: board with a coordinate ruler and the available moves
//   - move, bulk_move: single moves or a sequence (list or LURD string)
//   - reset_level, next_level, select_level: level navigation (select_level is 1-based)
//   - hint: shortest solution from the current position
//   - list_packs: available level packs
//   - describe_tile: what sits at a coordinate
//   - game_instructions: rules and board legend
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// The same MCP server can be mounted on an HTTP endpoint with
// HandleMessage, which is how the main binary serves /mcp.
package mcp
