// Package service is the business layer between the transports (HTTP,
// WebSocket, MCP) and the rolling-block engine.
//
// GameService owns session lifecycle, rolls, hints and level tooling.
// Sessions are created from presets through ConfigManager; generated presets
// are materialised on creation so every session plays a concrete, solvable
// board whose seed is reported back. SessionManager stores the sessions and
// is expected to persist them after each state change.
//
// Hint and Solve run the breadth-first solver, from the block's current
// position and from the level start respectively. GenerateLevel and
// CheckLevel expose the generator and solver without touching any session.
//
//	svc := service.NewGameService(session.NewManager(), configMgr)
//	info, err := svc.CreateSession(ctx, "classic")
//	if err != nil {
//		return err
//	}
//	res, err := svc.Move(ctx, info.ID, "right", false)
//
// Errors from the session and config managers are wrapped with %w, so
// callers map them with errors.Is. ErrGameEnded and ErrInvalidLevel are
// returned by this package.
package service
