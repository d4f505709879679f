// Package session keeps the live game sessions of the server.
//
// A Manager maps short case-insensitive IDs to sessions, each owning its own
// engine and the materialised level it plays. Generated levels are stored
// with their concrete layout and seed, so a session reloaded from disk plays
// exactly the board it was created with.
//
// With a SessionPersistence attached, sessions are written on creation and
// on every access, loaded lazily on Get, and kept on disk when
// CleanupExpiredSessions evicts idle ones from memory.
//
//	manager := session.NewManager()
//	sess, err := manager.Create("", level)
//	if err != nil {
//		return err
//	}
//	sess, err = manager.Get(sess.ID)
package session
