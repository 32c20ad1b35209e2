package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	fieldGameID     = "game_id"
	fieldMode       = "mode"
	fieldDifficulty = "difficulty"
	fieldMoves      = "moves"
)

type SessionRepository interface {
	Save(ctx context.Context, name string, snapshot *entity.SessionSnapshot) error
	Get(ctx context.Context, name string) (*entity.SessionSnapshot, error)
	Delete(ctx context.Context, name string) error
}

type sessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) SessionRepository {
	return &sessionRepository{
		client: client,
	}
}

func sessionKey(name string) string {
	return "session:" + name
}

func (that *sessionRepository) Save(ctx context.Context, name string, snapshot *entity.SessionSnapshot) error {
	err := that.client.HSet(ctx, sessionKey(name),
		fieldGameID, snapshot.GameID,
		fieldMode, string(snapshot.Mode),
		fieldDifficulty, string(snapshot.Difficulty),
		fieldMoves, snapshot.Moves,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (that *sessionRepository) Get(ctx context.Context, name string) (*entity.SessionSnapshot, error) {
	fields, err := that.client.HGetAll(ctx, sessionKey(name)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if len(fields) == 0 {
		return nil, apperror.ErrNotFound
	}

	return &entity.SessionSnapshot{
		GameID:     fields[fieldGameID],
		Mode:       entity.Mode(fields[fieldMode]),
		Difficulty: entity.Difficulty(fields[fieldDifficulty]),
		Moves:      fields[fieldMoves],
	}, nil
}

// Delete - removes the session. Deleting a missing session is not an error.
func (that *sessionRepository) Delete(ctx context.Context, name string) error {
	if err := that.client.Del(ctx, sessionKey(name)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
