// models/models.go
package models

import (
	"time"
)

// LobbyInfo is one row of the room browser feed.
type LobbyInfo struct {
	RoomCode    string    `json:"room_code"`
	LobbyName   string    `json:"lobby_name,omitempty"`
	HostName    string    `json:"host_name"`
	PlayerCount int       `json:"player_count"`
	Phase       string    `json:"phase"`
	CreatedAt   time.Time `json:"created_at"`
}

// GameRecord is the archived outcome of a finished match.
type GameRecord struct {
	RoomCode   string             `json:"room_code"`
	LobbyName  string             `json:"lobby_name,omitempty"`
	WinnerID   string             `json:"winner_id"`
	WinnerName string             `json:"winner_name"`
	Players    []GameRecordPlayer `json:"players"`
	CreatedAt  time.Time          `json:"created_at"`
}

// GameRecordPlayer is one participant's final line in a game record.
type GameRecordPlayer struct {
	PlayerID  string `json:"player_id"`
	Name      string `json:"name"`
	Districts int    `json:"districts"`
	Gold      int    `json:"gold"`
	Outcome   string `json:"outcome"` // win/lose
}

// PlayerStats aggregates a player's archived games.
type PlayerStats struct {
	TotalGames int `json:"total_games"`
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
}
