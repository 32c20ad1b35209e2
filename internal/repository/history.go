package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type HistoryRepository interface {
	Save(ctx context.Context, record *entity.HistoryRecord) error
	LoadByPlayer(ctx context.Context, player string) ([]entity.HistoryRecord, error)
	GetMoves(ctx context.Context, id int64) (string, error)
	Delete(ctx context.Context, id int64) error
}

type historyRepository struct {
	conn *sql.DB
}

func NewHistoryRepository(conn *sql.DB) HistoryRepository {
	return &historyRepository{
		conn: conn,
	}
}

// Save - inserts the record and fills in its ID.
func (that *historyRepository) Save(ctx context.Context, record *entity.HistoryRecord) error {
	query := `INSERT INTO game_history (player1, player2, result, moves, timestamp) VALUES (?, ?, ?, ?, ?)`

	result, err := that.conn.ExecContext(ctx, query,
		record.Player1, record.Player2, record.Result, record.Moves, record.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("can't save game history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("can't get game history id: %w", err)
	}

	record.ID = id

	return nil
}

// LoadByPlayer - returns the games the player took part in, newest first.
func (that *historyRepository) LoadByPlayer(ctx context.Context, player string) ([]entity.HistoryRecord, error) {
	query := `SELECT id, player1, player2, result, moves, timestamp FROM game_history
		WHERE player1 = ? OR player2 = ?
		ORDER BY timestamp DESC, id DESC`

	rows, err := that.conn.QueryContext(ctx, query, player, player)
	if err != nil {
		return nil, fmt.Errorf("can't load game history: %w", err)
	}
	defer rows.Close()

	records := []entity.HistoryRecord{}
	for rows.Next() {
		var (
			record    entity.HistoryRecord
			timestamp int64
		)

		if err = rows.Scan(&record.ID, &record.Player1, &record.Player2, &record.Result, &record.Moves, &timestamp); err != nil {
			return nil, fmt.Errorf("can't scan game history: %w", err)
		}

		record.Timestamp = time.UnixMilli(timestamp).UTC()
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read game history: %w", err)
	}

	return records, nil
}

func (that *historyRepository) GetMoves(ctx context.Context, id int64) (string, error) {
	query := `SELECT moves FROM game_history WHERE id = ?`

	var moves string

	err := that.conn.QueryRowContext(ctx, query, id).Scan(&moves)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperror.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("can't get game moves: %w", err)
	}

	return moves, nil
}

func (that *historyRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM game_history WHERE id = ?`

	result, err := that.conn.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("can't delete game history: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't delete game history: %w", err)
	}

	if affected == 0 {
		return apperror.ErrNotFound
	}

	return nil
}
