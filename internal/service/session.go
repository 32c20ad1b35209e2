package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type sessionRepository interface {
	Save(ctx context.Context, name string, snapshot *entity.SessionSnapshot) error
	Get(ctx context.Context, name string) (*entity.SessionSnapshot, error)
	Delete(ctx context.Context, name string) error
}

// SessionService keeps the in-progress game under a fixed session name so it survives a restart.
type SessionService struct {
	logger *slog.Logger
	repo   sessionRepository
	name   string
}

func NewSessionService(logger *slog.Logger, repo sessionRepository, name string) *SessionService {
	return &SessionService{
		logger: logger.With("component", "session_service", "session", name),
		repo:   repo,
		name:   name,
	}
}

// Save - stores an in-progress session. Idle and finished sessions are removed instead.
func (that *SessionService) Save(ctx context.Context, session entity.Session) error {
	if session.Phase != entity.PhaseInProgress {
		return that.Discard(ctx)
	}

	snapshot := &entity.SessionSnapshot{
		GameID:     session.GameID,
		Mode:       session.Mode,
		Difficulty: session.Difficulty,
		Moves:      session.Moves.String(),
	}

	if err := that.repo.Save(ctx, that.name, snapshot); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Load returns the saved session and its parsed moves. ok is false when nothing was saved.
func (that *SessionService) Load(ctx context.Context) (*entity.SessionSnapshot, entity.Moves, bool, error) {
	snapshot, err := that.repo.Get(ctx, that.name)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to get session: %w", err)
	}

	moves, err := entity.ParseMoves(snapshot.Moves)
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to parse session moves: %w", err)
	}

	return snapshot, moves, true, nil
}

func (that *SessionService) Discard(ctx context.Context) error {
	if err := that.repo.Delete(ctx, that.name); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Debug("session discarded")

	return nil
}
