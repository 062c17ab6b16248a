package room

import "github.com/elanrrrk/citadels/engine"

// Broadcaster defines the interface for pushing committed snapshots to a
// room's subscribers. Defined here to break the import cycle between room
// and broadcast.
type Broadcaster interface {
	BroadcastToRoom(roomCode string, msgID uint16, data []byte) error
}

// Store persists whole GameState documents keyed by room code. Implemented
// by services.GameService; defined here so room does not depend on the
// service layer.
type Store interface {
	CommitState(roomCode string, state *engine.GameState) error
	LoadState(roomCode string) (*engine.GameState, error)
	DeleteState(roomCode string) error
	RecordFinishedGame(state *engine.GameState) error
}
