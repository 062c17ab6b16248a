// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/elanrrrk/citadels/engine"
	"github.com/elanrrrk/citadels/models"
)

// Database stores one whole GameState document per room code, replaced
// atomically on every committed transition, plus finished-match records.
type Database interface {
	SaveGameState(roomCode string, state *engine.GameState) error
	LoadGameState(roomCode string) (*engine.GameState, error)
	DeleteGameState(roomCode string) error
	ListLobbies() ([]models.LobbyInfo, error)
	SaveGameRecord(record *models.GameRecord) error
	GetPlayerStats(playerID string) (*models.PlayerStats, error)
	Close() error
}

var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
