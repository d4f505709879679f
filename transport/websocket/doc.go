// Package websocket pushes game state updates to browser and agent clients.
//
// A central Hub tracks clients per session. Each connection gets a read pump
// that keeps the pong deadline fresh and a write pump that drains the
// client's queue and sends periodic pings. Clients that fall behind are
// dropped rather than blocking a broadcast.
//
// Clients connect to /ws?session=<id>; every move, bulk move and reset on
// that session is broadcast as
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	hub.BroadcastToSession(id, state)
package websocket
