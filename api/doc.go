// Package api exposes the rolling-block game service over HTTP.
//
// Routes are registered on a gorilla/mux router:
//
// Sessions:
//   - POST   /api/sessions                 create; body {"config_id"} or {"generate": {...}}
//   - GET    /api/sessions                 list; ?sort=created|accessed&order=asc|desc&limit=N
//   - GET    /api/sessions/unified         multi-session view; ?sessionIds=a,b or ?configName=x
//   - GET    /api/sessions/{id}
//   - DELETE /api/sessions/{id}
//
// Play:
//   - GET  /api/sessions/{id}/state
//   - POST /api/sessions/{id}/move         {"direction": "left|right|up|down", "reset": false}
//   - POST /api/sessions/{id}/bulk-move    {"moves": [...], "reset": false}
//   - POST /api/sessions/{id}/reset
//   - GET  /api/sessions/{id}/history      ?page=&limit=&order=
//   - GET  /api/sessions/{id}/hint         next roll from the current block
//   - GET  /api/sessions/{id}/solution     shortest solution from the start
//
// Levels and presets:
//   - POST /api/levels/generate            generator options; empty body uses defaults
//   - POST /api/levels/check               {"layout": [...], "start": {"x":0,"z":0}}
//   - GET  /api/configs
//   - POST /api/configs
//   - GET  /api/configs/{name}
//
// GET /ws?session=ID upgrades to a WebSocket that receives the session's game
// state after every move and reset. Errors are returned as {"error": "..."}
// with a status chosen by statusFor.
package api
