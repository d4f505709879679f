// Package mcp exposes the rolling block game to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool handler calls the REST API of a
// running server and renders the JSON response as text. Tools:
//   - create_session, get_session, list_sessions, list_configs
//   - game_state, describe_cell, move, bulk_move, reset_game, move_history
//   - hint, solution
//   - generate_level, check_level
//   - game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
