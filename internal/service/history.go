package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type historyRepository interface {
	Save(ctx context.Context, record *entity.HistoryRecord) error
	LoadByPlayer(ctx context.Context, player string) ([]entity.HistoryRecord, error)
	GetMoves(ctx context.Context, id int64) (string, error)
	Delete(ctx context.Context, id int64) error
}

// HistoryService keeps finished games and replays them.
type HistoryService struct {
	logger  *slog.Logger
	repo    historyRepository
	players entity.Players
	now     func() time.Time
}

func NewHistoryService(logger *slog.Logger, repo historyRepository, players entity.Players) *HistoryService {
	return &HistoryService{
		logger:  logger.With("component", "history_service"),
		repo:    repo,
		players: players,
		now:     time.Now,
	}
}

// Record - stores a finished game under the configured player names.
func (that *HistoryService) Record(ctx context.Context, mode entity.Mode, result string, moves entity.Moves) (*entity.HistoryRecord, error) {
	log := that.logger.With("method", "Record")

	players := that.players.ForMode(mode)

	record := &entity.HistoryRecord{
		Player1:   players.First,
		Player2:   players.Second,
		Result:    result,
		Timestamp: that.now().UTC(),
		Moves:     moves.String(),
	}

	if err := that.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save game history: %w", err)
	}

	log.Info("game recorded", "id", record.ID, "result", result, "moves", len(moves))

	return record, nil
}

func (that *HistoryService) LoadHistory(ctx context.Context, user string) ([]entity.HistoryRecord, error) {
	records, err := that.repo.LoadByPlayer(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to load game history: %w", err)
	}

	return records, nil
}

// GetMoves returns the stored move string of a game as it was saved.
func (that *HistoryService) GetMoves(ctx context.Context, id int64) (string, error) {
	moves, err := that.repo.GetMoves(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to get game moves: %w", err)
	}

	return moves, nil
}

func (that *HistoryService) DeleteHistory(ctx context.Context, id int64) error {
	if err := that.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game history: %w", err)
	}

	that.logger.Info("game history deleted", "id", id)

	return nil
}

// ReplayGame - loads a stored game and returns the board after every move.
func (that *HistoryService) ReplayGame(ctx context.Context, id int64) ([]entity.Board, error) {
	moves, err := that.GetMoves(ctx, id)
	if err != nil {
		return nil, err
	}

	return Replay(moves)
}

// Replay - parses a move string and returns the board after every move. The moves must alternate
// starting with X, land on empty cells and stop when the game is decided.
func Replay(raw string) ([]entity.Board, error) {
	moves, err := entity.ParseMoves(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse moves: %w", err)
	}

	var board entity.Board

	boards := make([]entity.Board, 0, len(moves))
	expected := entity.First

	for i, move := range moves {
		if entity.OutcomeOf(board).IsFinished() {
			return nil, fmt.Errorf("%w: move %d played after the game ended", apperror.ErrInvalidMove, i)
		}

		if move.Mark != expected {
			return nil, fmt.Errorf("%w: move %d is out of turn", apperror.ErrInvalidMove, i)
		}

		if err = board.Place(move.Row, move.Col, move.Mark); err != nil {
			return nil, fmt.Errorf("failed to replay move %d: %w", i, err)
		}

		boards = append(boards, board)
		expected = expected.Opponent()
	}

	return boards, nil
}
