// services/game_service.go
package services

import (
	"fmt"

	"github.com/elanrrrk/citadels/engine"
	"github.com/elanrrrk/citadels/models"
	"github.com/elanrrrk/citadels/persistence"
)

// GameService sits between the rooms and the database: committed snapshots
// go down through it, archived results and stats come back up.
type GameService struct {
	db persistence.Database
}

func NewGameService(db persistence.Database) *GameService {
	return &GameService{db: db}
}

// CommitState persists the authoritative snapshot after a successful
// transition. Whole-document upsert keyed by room code.
func (s *GameService) CommitState(roomCode string, state *engine.GameState) error {
	return s.db.SaveGameState(roomCode, state)
}

// LoadState fetches the stored snapshot for a room, if any.
func (s *GameService) LoadState(roomCode string) (*engine.GameState, error) {
	return s.db.LoadGameState(roomCode)
}

// DeleteState drops an abandoned room's document.
func (s *GameService) DeleteState(roomCode string) error {
	return s.db.DeleteGameState(roomCode)
}

// Lobbies returns the browseable room list for the entry surface.
func (s *GameService) Lobbies() ([]models.LobbyInfo, error) {
	return s.db.ListLobbies()
}

// RecordFinishedGame archives a match the engine reported as ENDED.
func (s *GameService) RecordFinishedGame(state *engine.GameState) error {
	winner := state.Winner()
	if winner == nil {
		return fmt.Errorf("record game %s: no winner in state", state.RoomCode)
	}

	record := &models.GameRecord{
		RoomCode:   state.RoomCode,
		LobbyName:  state.LobbyName,
		WinnerID:   winner.ID,
		WinnerName: winner.Name,
	}
	for i := range state.Players {
		p := &state.Players[i]
		outcome := "lose"
		if p.ID == winner.ID {
			outcome = "win"
		}
		record.Players = append(record.Players, models.GameRecordPlayer{
			PlayerID:  p.ID,
			Name:      p.Name,
			Districts: len(p.Districts),
			Gold:      p.Gold,
			Outcome:   outcome,
		})
	}

	return s.db.SaveGameRecord(record)
}

// PlayerStats aggregates a player's archived games.
func (s *GameService) PlayerStats(playerID string) (*models.PlayerStats, error) {
	return s.db.GetPlayerStats(playerID)
}
