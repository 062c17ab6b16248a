// models/gorm_models.go
package models

import (
	"gorm.io/gorm"

	"github.com/elanrrrk/citadels/engine"
)

// GormGame is the persisted room document: the whole GameState stored as one
// jsonb value per room code, overwritten on every committed transition.
type GormGame struct {
	gorm.Model
	RoomCode    string            `gorm:"uniqueIndex;not null"`
	LobbyName   string            `gorm:""`
	Phase       string            `gorm:"not null"`
	HostName    string            `gorm:""`
	PlayerCount int               `gorm:"default:0"`
	State       *engine.GameState `gorm:"serializer:json;type:jsonb;not null"`
}

// GormGameRecord archives a finished match.
type GormGameRecord struct {
	gorm.Model
	RoomCode   string             `gorm:"index;not null"`
	LobbyName  string             `gorm:""`
	WinnerID   string             `gorm:"index;not null"`
	WinnerName string             `gorm:"not null"`
	Players    []GameRecordPlayer `gorm:"serializer:json;type:jsonb;not null"`
}
