package tictactoe

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const defaultThinkDelay = 500 * time.Millisecond

type moveSelector interface {
	SelectMove(board entity.Board, mark entity.Mark, difficulty entity.Difficulty) (entity.Cell, error)
	Supports(difficulty entity.Difficulty) bool
}

type Option func(*GameController)

// WithThinkDelay sets how long the computer waits before answering.
func WithThinkDelay(delay time.Duration) Option {
	return func(that *GameController) {
		that.thinkDelay = delay
	}
}

func WithIDGenerator(generate func() string) Option {
	return func(that *GameController) {
		that.newID = generate
	}
}

// GameController owns the board and is its only mutator. Computer moves are computed
// asynchronously and dropped if a newer game was started in the meantime.
type GameController struct {
	logger   *slog.Logger
	selector moveSelector

	thinkDelay time.Duration
	newID      func() string

	mu            sync.Mutex
	board         entity.Board
	gameID        string
	mode          entity.Mode
	difficulty    entity.Difficulty
	currentPlayer entity.Mark
	moves         entity.Moves
	phase         entity.Phase
	outcome       entity.Outcome
	generation    uint64
	cancelPending context.CancelFunc

	// queue holds notifications in mutation order until they are delivered outside of mu.
	queue      []notification
	dispatchMu sync.Mutex

	subsMu      sync.RWMutex
	subscribers map[int]Subscriber
	nextSubID   int

	pending sync.WaitGroup
}

func NewGameController(logger *slog.Logger, selector moveSelector, opts ...Option) *GameController {
	controller := &GameController{
		logger:        logger.With("component", "game_controller"),
		selector:      selector,
		thinkDelay:    defaultThinkDelay,
		newID:         uuid.NewString,
		currentPlayer: entity.First,
		phase:         entity.PhaseIdle,
		subscribers:   make(map[int]Subscriber),
	}

	for _, opt := range opts {
		opt(controller)
	}

	return controller
}

// Subscribe registers a notification sink and returns a function removing it.
func (that *GameController) Subscribe(sub Subscriber) func() {
	that.subsMu.Lock()
	defer that.subsMu.Unlock()

	id := that.nextSubID
	that.nextSubID++
	that.subscribers[id] = sub

	return func() {
		that.subsMu.Lock()
		defer that.subsMu.Unlock()

		delete(that.subscribers, id)
	}
}

// NewGame - starts a fresh game with an empty board and X to move. Any pending computer move
// belongs to the previous game and is discarded.
func (that *GameController) NewGame(mode entity.Mode, difficulty entity.Difficulty) error {
	if err := that.validateSettings(mode, difficulty); err != nil {
		return err
	}

	that.mu.Lock()
	that.resetLocked(mode, difficulty)

	that.logger.Info("new game started", "gameID", that.gameID, "mode", mode, "difficulty", difficulty)

	that.dispatchAndUnlock([]notification{gameStarted(GameStarted{
		GameID:     that.gameID,
		Mode:       mode,
		Difficulty: difficulty,
	})})

	return nil
}

// Restore - rebuilds a game from its move history, e.g. after a restart. The moves must be a
// legal alternating sequence starting with X. On failure the controller is left idle.
func (that *GameController) Restore(gameID string, mode entity.Mode, difficulty entity.Difficulty, moves entity.Moves) error {
	if err := that.validateSettings(mode, difficulty); err != nil {
		return err
	}

	that.mu.Lock()
	that.resetLocked(mode, difficulty)
	if gameID != "" {
		that.gameID = gameID
	}

	for i, move := range moves {
		if that.phase != entity.PhaseInProgress {
			that.abortLocked()
			that.mu.Unlock()
			return fmt.Errorf("%w: move %d played after the game ended", apperror.ErrInvalidMove, i)
		}

		if move.Mark != that.currentPlayer {
			that.abortLocked()
			that.mu.Unlock()
			return fmt.Errorf("%w: move %d is out of turn", apperror.ErrInvalidMove, i)
		}

		if _, err := that.placeLocked(move.Row, move.Col); err != nil {
			that.abortLocked()
			that.mu.Unlock()
			return fmt.Errorf("failed to replay move %d: %w", i, err)
		}
	}

	if that.isComputerTurnLocked() {
		that.scheduleComputerMoveLocked()
	}

	that.logger.Info("game restored", "gameID", that.gameID, "moves", len(moves), "phase", that.phase)

	that.dispatchAndUnlock([]notification{gameStarted(GameStarted{
		GameID:     that.gameID,
		Mode:       mode,
		Difficulty: difficulty,
	})})

	return nil
}

// SubmitMove - plays the current player's mark at (row, col) on behalf of an external caller.
// External callers may not move for the computer.
func (that *GameController) SubmitMove(row, col int) error {
	that.mu.Lock()

	if that.phase != entity.PhaseInProgress {
		that.mu.Unlock()
		return apperror.ErrGameNotInProgress
	}

	if that.isComputerTurnLocked() {
		that.mu.Unlock()
		return apperror.ErrWrongTurnSource
	}

	notifications, err := that.applyMoveLocked(row, col)
	if err != nil {
		that.mu.Unlock()
		return err
	}

	that.dispatchAndUnlock(notifications)

	return nil
}

// GetWinner is derived from the board alone.
func (that *GameController) GetWinner() entity.Outcome {
	that.mu.Lock()
	defer that.mu.Unlock()

	return entity.OutcomeOf(that.board)
}

func (that *GameController) CurrentPlayer() entity.Mark {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.currentPlayer
}

// MoveHistory returns the canonical move tokens in play order.
func (that *GameController) MoveHistory() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.moves.Tokens()
}

func (that *GameController) Phase() entity.Phase {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.phase
}

func (that *GameController) Snapshot() entity.Session {
	that.mu.Lock()
	defer that.mu.Unlock()

	return entity.Session{
		GameID:        that.gameID,
		Mode:          that.mode,
		Difficulty:    that.difficulty,
		Phase:         that.phase,
		CurrentPlayer: that.currentPlayer,
		Board:         that.board,
		Moves:         slices.Clone(that.moves),
		Outcome:       that.outcome,
	}
}

// Close cancels a pending computer move and waits for its goroutine to exit.
func (that *GameController) Close() {
	that.mu.Lock()
	that.generation++
	that.cancelPendingLocked()
	that.mu.Unlock()

	that.pending.Wait()
}

func (that *GameController) validateSettings(mode entity.Mode, difficulty entity.Difficulty) error {
	if _, err := entity.ParseMode(string(mode)); err != nil {
		return err
	}

	if mode == entity.ModePvComputer && !that.selector.Supports(difficulty) {
		return fmt.Errorf("%w: %q", apperror.ErrUnsupportedDifficulty, difficulty)
	}

	return nil
}

func (that *GameController) resetLocked(mode entity.Mode, difficulty entity.Difficulty) {
	that.generation++
	that.cancelPendingLocked()

	that.board.Reset()
	that.gameID = that.newID()
	that.mode = mode
	that.difficulty = difficulty
	that.currentPlayer = entity.First
	that.moves = nil
	that.outcome = entity.Outcome{}
	that.phase = entity.PhaseInProgress
}

// abortLocked leaves the controller idle with an empty board.
func (that *GameController) abortLocked() {
	that.board.Reset()
	that.moves = nil
	that.currentPlayer = entity.First
	that.outcome = entity.Outcome{}
	that.phase = entity.PhaseIdle
}

// applyMoveLocked places the current player's mark and, if the computer is next, schedules its move.
func (that *GameController) applyMoveLocked(row, col int) ([]notification, error) {
	notifications, err := that.placeLocked(row, col)
	if err != nil {
		return nil, err
	}

	if that.isComputerTurnLocked() {
		that.scheduleComputerMoveLocked()
	}

	return notifications, nil
}

// placeLocked applies one move and updates the phase. The state is untouched on error.
func (that *GameController) placeLocked(row, col int) ([]notification, error) {
	mark := that.currentPlayer

	if err := that.board.Place(row, col, mark); err != nil {
		return nil, err
	}

	that.moves = append(that.moves, entity.Move{Row: row, Col: col, Mark: mark})

	notifications := []notification{boardChanged(BoardChanged{
		GameID: that.gameID,
		Row:    row,
		Col:    col,
		Mark:   mark,
	})}

	if outcome := entity.OutcomeOf(that.board); outcome.IsFinished() {
		that.phase = entity.PhaseFinished
		that.outcome = outcome

		that.logger.Info("game finished", "gameID", that.gameID, "outcome", outcome.Status, "winner", outcome.Winner)

		return append(notifications, gameEnded(GameEnded{
			GameID:  that.gameID,
			Mode:    that.mode,
			Outcome: outcome,
			Label:   outcome.Label(that.mode),
			Moves:   slices.Clone(that.moves),
		})), nil
	}

	that.currentPlayer = that.currentPlayer.Opponent()

	return append(notifications, currentPlayerChanged(CurrentPlayerChanged{
		GameID: that.gameID,
		Mark:   that.currentPlayer,
	})), nil
}

func (that *GameController) isComputerTurnLocked() bool {
	return that.phase == entity.PhaseInProgress &&
		that.mode == entity.ModePvComputer &&
		that.currentPlayer == entity.ComputerMark
}

func (that *GameController) scheduleComputerMoveLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	that.cancelPending = cancel

	that.pending.Add(1)
	go that.playComputerMove(ctx, that.generation, that.board, that.difficulty)
}

func (that *GameController) cancelPendingLocked() {
	if that.cancelPending != nil {
		that.cancelPending()
		that.cancelPending = nil
	}
}

// playComputerMove waits out the thinking delay, asks the selector and feeds the answer back
// through the internal move path.
func (that *GameController) playComputerMove(ctx context.Context, generation uint64, board entity.Board, difficulty entity.Difficulty) {
	defer that.pending.Done()

	log := that.logger.With("method", "playComputerMove", "generation", generation)

	timer := time.NewTimer(that.thinkDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		log.Debug("computer move cancelled")
		return
	case <-timer.C:
	}

	cell, err := that.selector.SelectMove(board, entity.ComputerMark, difficulty)
	if err != nil {
		log.Error("failed to select computer move", "error", err)
		return
	}

	that.mu.Lock()

	if generation != that.generation || !that.isComputerTurnLocked() {
		that.mu.Unlock()
		log.Debug("stale computer move discarded", "row", cell.Row, "col", cell.Col)
		return
	}

	that.cancelPending = nil

	notifications, err := that.applyMoveLocked(cell.Row, cell.Col)
	if err != nil {
		that.mu.Unlock()
		log.Error("computer move rejected", "row", cell.Row, "col", cell.Col, "error", err)
		return
	}

	that.dispatchAndUnlock(notifications)
}

// dispatchAndUnlock queues notifications in mutation order, releases mu and delivers the queue.
func (that *GameController) dispatchAndUnlock(notifications []notification) {
	that.queue = append(that.queue, notifications...)
	that.mu.Unlock()

	that.flush()
}

// flush delivers queued notifications outside of mu. Only one goroutine delivers at a time;
// a caller that finds delivery in progress leaves its notifications to the current deliverer,
// which re-checks the queue after releasing dispatchMu.
func (that *GameController) flush() {
	for {
		if !that.dispatchMu.TryLock() {
			return
		}

		for {
			that.mu.Lock()
			batch := that.queue
			that.queue = nil
			that.mu.Unlock()

			if len(batch) == 0 {
				break
			}

			that.deliver(batch)
		}

		that.dispatchMu.Unlock()

		that.mu.Lock()
		empty := len(that.queue) == 0
		that.mu.Unlock()

		if empty {
			return
		}
	}
}

func (that *GameController) deliver(notifications []notification) {
	that.subsMu.RLock()
	ids := make([]int, 0, len(that.subscribers))
	for id := range that.subscribers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	subscribers := make([]Subscriber, 0, len(ids))
	for _, id := range ids {
		subscribers = append(subscribers, that.subscribers[id])
	}
	that.subsMu.RUnlock()

	for _, notify := range notifications {
		for _, sub := range subscribers {
			notify(sub)
		}
	}
}
