// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/elanrrrk/citadels/room"
	"github.com/elanrrrk/citadels/session"
)

var (
	ErrRoomNotFound = errors.New("room not found")
)

// Broadcaster fans committed snapshots out to subscribers. Delivery is
// best-effort: a dead connection is skipped, not retried, and ordering
// across receivers is not guaranteed.
type Broadcaster interface {
	BroadcastToRoom(roomCode string, msgID uint16, data []byte) error
	BroadcastToPlayer(playerID string, msgID uint16, data []byte) error
}

// RoomBroadcaster resolves rooms through the manager and pushes to every
// subscribed session.
type RoomBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewRoomBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomCode string, msgID uint16, data []byte) error {
	r, exists := b.roomManager.GetRoom(roomCode, b)
	if !exists {
		return ErrRoomNotFound
	}

	for _, s := range r.GetSessions() {
		if err := s.Send(msgID, data); err != nil {
			// Skip dead connections; the server reaps them on read error.
			continue
		}
	}

	return nil
}

// BroadcastToPlayer sends to every session bound to a player id.
func (b *RoomBroadcaster) BroadcastToPlayer(playerID string, msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.GetByPlayerID(playerID) {
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}
