package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const storageTimeout = 5 * time.Second

type gameController interface {
	NewGame(mode entity.Mode, difficulty entity.Difficulty) error
	Restore(gameID string, mode entity.Mode, difficulty entity.Difficulty, moves entity.Moves) error
	SubmitMove(row, col int) error
	Snapshot() entity.Session
	Subscribe(sub tictactoe.Subscriber) func()
}

type historyService interface {
	Record(ctx context.Context, mode entity.Mode, result string, moves entity.Moves) (*entity.HistoryRecord, error)
	LoadHistory(ctx context.Context, user string) ([]entity.HistoryRecord, error)
	GetMoves(ctx context.Context, id int64) (string, error)
	DeleteHistory(ctx context.Context, id int64) error
	ReplayGame(ctx context.Context, id int64) ([]entity.Board, error)
}

type sessionService interface {
	Save(ctx context.Context, session entity.Session) error
	Load(ctx context.Context) (*entity.SessionSnapshot, entity.Moves, bool, error)
	Discard(ctx context.Context) error
}

// GameUseCase is the headless facade over the controller. It also listens to the controller
// to record finished games and keep the session snapshot current.
type GameUseCase struct {
	tictactoe.NopSubscriber

	logger     *slog.Logger
	controller gameController
	history    historyService
	sessions   sessionService

	unsubscribe func()
}

func NewGameUseCase(logger *slog.Logger, controller gameController, history historyService, sessions sessionService) *GameUseCase {
	useCase := &GameUseCase{
		logger:     logger.With("component", "game_usecase"),
		controller: controller,
		history:    history,
		sessions:   sessions,
	}

	useCase.unsubscribe = controller.Subscribe(useCase)

	return useCase
}

// Resume - restores the saved session, if any. A session that no longer replays is discarded.
func (that *GameUseCase) Resume(ctx context.Context) (bool, error) {
	log := that.logger.With("method", "Resume")

	snapshot, moves, ok, err := that.sessions.Load(ctx)
	if err != nil {
		log.Warn("saved session is unreadable, discarding", "error", err)
		return false, that.sessions.Discard(ctx)
	}

	if !ok {
		return false, nil
	}

	if err = that.controller.Restore(snapshot.GameID, snapshot.Mode, snapshot.Difficulty, moves); err != nil {
		log.Warn("saved session does not replay, discarding", "gameID", snapshot.GameID, "error", err)
		return false, that.sessions.Discard(ctx)
	}

	log.Info("session resumed", "gameID", snapshot.GameID, "moves", len(moves))

	return true, nil
}

func (that *GameUseCase) NewGame(mode entity.Mode, difficulty entity.Difficulty) (entity.Session, error) {
	if err := that.controller.NewGame(mode, difficulty); err != nil {
		return entity.Session{}, fmt.Errorf("failed to start game: %w", err)
	}

	return that.controller.Snapshot(), nil
}

func (that *GameUseCase) Move(row, col int) (entity.Session, error) {
	if err := that.controller.SubmitMove(row, col); err != nil {
		return entity.Session{}, fmt.Errorf("failed to make move: %w", err)
	}

	return that.controller.Snapshot(), nil
}

func (that *GameUseCase) State() entity.Session {
	return that.controller.Snapshot()
}

// Subscribe lets outer surfaces follow the game.
func (that *GameUseCase) Subscribe(sub tictactoe.Subscriber) func() {
	return that.controller.Subscribe(sub)
}

func (that *GameUseCase) LoadHistory(ctx context.Context, user string) ([]entity.HistoryRecord, error) {
	return that.history.LoadHistory(ctx, user)
}

func (that *GameUseCase) GetMoves(ctx context.Context, id int64) (string, error) {
	return that.history.GetMoves(ctx, id)
}

func (that *GameUseCase) ReplayGame(ctx context.Context, id int64) ([]entity.Board, error) {
	return that.history.ReplayGame(ctx, id)
}

func (that *GameUseCase) DeleteHistory(ctx context.Context, id int64) error {
	return that.history.DeleteHistory(ctx, id)
}

// Close stops listening to the controller.
func (that *GameUseCase) Close() {
	that.unsubscribe()
}

func (that *GameUseCase) OnGameStarted(tictactoe.GameStarted) {
	that.saveSession()
}

func (that *GameUseCase) OnCurrentPlayerChanged(tictactoe.CurrentPlayerChanged) {
	that.saveSession()
}

func (that *GameUseCase) OnGameEnded(event tictactoe.GameEnded) {
	log := that.logger.With("method", "OnGameEnded", "gameID", event.GameID)

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	_, recordErr := that.history.Record(ctx, event.Mode, event.Label, event.Moves)
	discardErr := that.sessions.Discard(ctx)

	if err := errors.Join(recordErr, discardErr); err != nil {
		log.Error("failed to store finished game", "error", err)
	}
}

func (that *GameUseCase) saveSession() {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	if err := that.sessions.Save(ctx, that.controller.Snapshot()); err != nil {
		that.logger.Error("failed to save session", "error", err)
	}
}
