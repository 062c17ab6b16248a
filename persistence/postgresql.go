// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/elanrrrk/citadels/engine"
	"github.com/elanrrrk/citadels/models"
)

// PostgreSQL is the raw database/sql implementation of Database, for
// deployments that prefer hand-written SQL over the ORM.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS games (
            id SERIAL PRIMARY KEY,
            room_code VARCHAR(16) UNIQUE NOT NULL,
            lobby_name VARCHAR(255),
            phase VARCHAR(32) NOT NULL,
            host_name VARCHAR(255),
            player_count INT NOT NULL DEFAULT 0,
            state JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            room_code VARCHAR(16) NOT NULL,
            lobby_name VARCHAR(255),
            winner_id VARCHAR(255) NOT NULL,
            winner_name VARCHAR(255) NOT NULL,
            players JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_games_room_code ON games(room_code);
        CREATE INDEX IF NOT EXISTS idx_games_phase ON games(phase);
        CREATE INDEX IF NOT EXISTS idx_game_records_room_code ON game_records(room_code);
        CREATE INDEX IF NOT EXISTS idx_game_records_winner_id ON game_records(winner_id);
    `)

	return err
}

// SaveGameState upserts the whole state document keyed by room code.
func (p *PostgreSQL) SaveGameState(roomCode string, state *engine.GameState) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return err
	}

	hostName := ""
	if len(state.Players) > 0 {
		hostName = state.Players[0].Name
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO games (room_code, lobby_name, phase, host_name, player_count, state)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (room_code)
        DO UPDATE SET lobby_name = $2, phase = $3, host_name = $4,
                      player_count = $5, state = $6, updated_at = CURRENT_TIMESTAMP
    `

	_, err = p.db.ExecContext(ctx, query,
		roomCode, state.LobbyName, string(state.Phase), hostName, len(state.Players), doc)
	return err
}

func (p *PostgreSQL) LoadGameState(roomCode string) (*engine.GameState, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var doc []byte
	query := `SELECT state FROM games WHERE room_code = $1`
	err := p.db.QueryRowContext(ctx, query, roomCode).Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	state := &engine.GameState{}
	if err := json.Unmarshal(doc, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (p *PostgreSQL) DeleteGameState(roomCode string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := p.db.ExecContext(ctx, `DELETE FROM games WHERE room_code = $1`, roomCode)
	return err
}

// ListLobbies returns browseable rooms, newest first. Finished games are
// filtered out.
func (p *PostgreSQL) ListLobbies() ([]models.LobbyInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, `
        SELECT room_code, COALESCE(lobby_name, ''), COALESCE(host_name, ''),
               player_count, phase, created_at
        FROM games
        WHERE phase <> $1
        ORDER BY created_at DESC`,
		string(engine.PhaseEnded))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lobbies []models.LobbyInfo
	for rows.Next() {
		var l models.LobbyInfo
		if err := rows.Scan(&l.RoomCode, &l.LobbyName, &l.HostName,
			&l.PlayerCount, &l.Phase, &l.CreatedAt); err != nil {
			return nil, err
		}
		lobbies = append(lobbies, l)
	}
	return lobbies, rows.Err()
}

// SaveGameRecord archives a finished match and drops the live document, in
// one transaction.
func (p *PostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	playersJSON, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO game_records (room_code, lobby_name, winner_id, winner_name, players)
        VALUES ($1, $2, $3, $4, $5)`,
		record.RoomCode, record.LobbyName, record.WinnerID, record.WinnerName, playersJSON)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM games WHERE room_code = $1`, record.RoomCode)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (p *PostgreSQL) GetPlayerStats(playerID string) (*models.PlayerStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats := &models.PlayerStats{}
	err := p.db.QueryRowContext(ctx, `
        SELECT
            COUNT(*),
            COALESCE(SUM(CASE WHEN winner_id = $1 THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN winner_id <> $1 THEN 1 ELSE 0 END), 0)
        FROM game_records
        WHERE players @> $2`,
		playerID,
		fmt.Sprintf(`[{"player_id": %q}]`, playerID),
	).Scan(&stats.TotalGames, &stats.Wins, &stats.Losses)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
