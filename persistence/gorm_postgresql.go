// persistence/gorm_postgresql.go
package persistence

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/elanrrrk/citadels/engine"
	"github.com/elanrrrk/citadels/models"
)

// GormPostgreSQL is the GORM-backed Database implementation.
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.GormGame{},
		&models.GormGameRecord{},
	)
}

// SaveGameState upserts the whole state document keyed by room code.
func (p *GormPostgreSQL) SaveGameState(roomCode string, state *engine.GameState) error {
	hostName := ""
	if len(state.Players) > 0 {
		hostName = state.Players[0].Name
	}
	game := models.GormGame{
		RoomCode:    roomCode,
		LobbyName:   state.LobbyName,
		Phase:       string(state.Phase),
		HostName:    hostName,
		PlayerCount: len(state.Players),
		State:       state,
	}

	return p.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "room_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"lobby_name", "phase", "host_name", "player_count", "state", "updated_at",
		}),
	}).Create(&game).Error
}

func (p *GormPostgreSQL) LoadGameState(roomCode string) (*engine.GameState, error) {
	var game models.GormGame
	if err := p.db.Where("room_code = ?", roomCode).First(&game).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return game.State, nil
}

func (p *GormPostgreSQL) DeleteGameState(roomCode string) error {
	return p.db.Where("room_code = ?", roomCode).Delete(&models.GormGame{}).Error
}

// ListLobbies returns browseable rooms, newest first. Finished games are
// filtered out.
func (p *GormPostgreSQL) ListLobbies() ([]models.LobbyInfo, error) {
	var games []models.GormGame
	err := p.db.
		Where("phase <> ?", string(engine.PhaseEnded)).
		Order("created_at DESC").
		Find(&games).Error
	if err != nil {
		return nil, err
	}

	lobbies := make([]models.LobbyInfo, 0, len(games))
	for _, g := range games {
		lobbies = append(lobbies, models.LobbyInfo{
			RoomCode:    g.RoomCode,
			LobbyName:   g.LobbyName,
			HostName:    g.HostName,
			PlayerCount: g.PlayerCount,
			Phase:       g.Phase,
			CreatedAt:   g.CreatedAt,
		})
	}
	return lobbies, nil
}

// SaveGameRecord archives a finished match and drops the live document, in
// one transaction.
func (p *GormPostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		rec := models.GormGameRecord{
			RoomCode:   record.RoomCode,
			LobbyName:  record.LobbyName,
			WinnerID:   record.WinnerID,
			WinnerName: record.WinnerName,
			Players:    record.Players,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		return tx.Where("room_code = ?", record.RoomCode).
			Delete(&models.GormGame{}).Error
	})
}

func (p *GormPostgreSQL) GetPlayerStats(playerID string) (*models.PlayerStats, error) {
	stats := &models.PlayerStats{}

	err := p.db.Raw(`
        SELECT
            COUNT(*) AS total_games,
            SUM(CASE WHEN winner_id = ? THEN 1 ELSE 0 END) AS wins,
            SUM(CASE WHEN winner_id <> ? THEN 1 ELSE 0 END) AS losses
        FROM gorm_game_records
        WHERE players @> ?`,
		playerID, playerID,
		fmt.Sprintf(`[{"player_id": %q}]`, playerID),
	).Scan(stats).Error

	return stats, err
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
