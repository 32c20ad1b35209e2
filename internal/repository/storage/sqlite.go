package storage

import (
	"context"
	"database/sql"
	"fmt"

	// import the SQLite driver to register it with the database/sql package.
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS game_history (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	player1   TEXT    NOT NULL,
	player2   TEXT    NOT NULL,
	result    TEXT    NOT NULL,
	moves     TEXT    NOT NULL,
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS game_history_timestamp ON game_history (timestamp DESC, id DESC);`

type SQLiteStorage struct {
	Connection *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.Ping(); err != nil {
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &SQLiteStorage{Connection: conn}, nil
}

// Init - creates the game history table if it does not exist yet.
func (that *SQLiteStorage) Init(ctx context.Context) error {
	_, err := that.Connection.ExecContext(ctx, historySchema)
	if err != nil {
		return fmt.Errorf("can't create table: %w", err)
	}

	return nil
}

func (that *SQLiteStorage) Close() error {
	return that.Connection.Close()
}
