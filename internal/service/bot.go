package service

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// Scores are independent of search depth: a win in one ply is worth the same as a win in five.
const (
	winScore  = 10
	lossScore = -10
	drawScore = 0

	scoreBound = 1000
)

type BotOption func(*BotService)

// WithoutPruning disables alpha-beta cut-offs. The chosen move must not change.
func WithoutPruning() BotOption {
	return func(that *BotService) {
		that.pruning = false
	}
}

// WithTiers restricts the difficulties SelectMove accepts, e.g. easy and hard only.
func WithTiers(tiers ...entity.Difficulty) BotOption {
	return func(that *BotService) {
		that.tiers = make(map[entity.Difficulty]struct{}, len(tiers))
		for _, tier := range tiers {
			that.tiers[tier] = struct{}{}
		}
	}
}

// BotService picks moves for the computer player. Every call works on its own copy of the board.
type BotService struct {
	mu  sync.Mutex
	rng *rand.Rand

	pruning bool
	tiers   map[entity.Difficulty]struct{}
}

func NewBotService(source rand.Source, opts ...BotOption) *BotService {
	bot := &BotService{
		rng:     rand.New(source), //nolint: gosec // move choice, not crypto
		pruning: true,
	}

	WithTiers(entity.AllDifficulties...)(bot)

	for _, opt := range opts {
		opt(bot)
	}

	return bot
}

// Supports reports whether the difficulty is enabled in this configuration.
func (that *BotService) Supports(difficulty entity.Difficulty) bool {
	_, ok := that.tiers[difficulty]
	return ok
}

// SelectMove - returns the move for mark on board at the given difficulty.
func (that *BotService) SelectMove(board entity.Board, mark entity.Mark, difficulty entity.Difficulty) (entity.Cell, error) {
	if !that.Supports(difficulty) {
		return entity.Cell{}, fmt.Errorf("%w: %q", apperror.ErrUnsupportedDifficulty, difficulty)
	}

	switch difficulty {
	case entity.DifficultyRandom:
		return that.RandomMove(board)
	case entity.DifficultyHeuristic:
		return that.HeuristicMove(board, mark)
	case entity.DifficultyOptimal:
		return that.OptimalMove(board, mark)
	default:
		return entity.Cell{}, fmt.Errorf("%w: %q", apperror.ErrUnsupportedDifficulty, difficulty)
	}
}

// RandomMove - draws uniformly among the empty cells in row-major order.
func (that *BotService) RandomMove(board entity.Board) (entity.Cell, error) {
	availableCells := board.EmptyCells()
	if len(availableCells) == 0 {
		return entity.Cell{}, apperror.ErrNoAvailableMoves
	}

	that.mu.Lock()
	index := that.rng.Intn(len(availableCells))
	that.mu.Unlock()

	return availableCells[index], nil
}

// HeuristicMove - wins if possible, otherwise blocks, otherwise plays at random.
func (that *BotService) HeuristicMove(board entity.Board, mark entity.Mark) (entity.Cell, error) {
	if cell, ok := immediateMove(board, mark); ok {
		return cell, nil
	}

	return that.RandomMove(board)
}

// OptimalMove - wins or blocks immediately, otherwise runs a full minimax search
// and returns the first cell in row-major order with the best score.
func (that *BotService) OptimalMove(board entity.Board, mark entity.Mark) (entity.Cell, error) {
	if cell, ok := immediateMove(board, mark); ok {
		return cell, nil
	}

	availableCells := board.EmptyCells()
	if len(availableCells) == 0 {
		return entity.Cell{}, apperror.ErrNoAvailableMoves
	}

	bestMove := availableCells[0]
	bestScore := -scoreBound
	alpha, beta := -scoreBound, scoreBound

	for _, cell := range availableCells {
		board[cell.Row][cell.Col] = mark
		score := that.minimax(&board, mark, false, alpha, beta)
		board[cell.Row][cell.Col] = entity.Empty

		if score > bestScore {
			bestScore = score
			bestMove = cell
		}

		if that.pruning {
			alpha = max(alpha, bestScore)
		}
	}

	return bestMove, nil
}

// minimax scores board from mark's point of view. Each branch undoes its own placement
// before returning, so the caller's scratch board is unchanged afterwards.
func (that *BotService) minimax(board *entity.Board, mark entity.Mark, maximizing bool, alpha, beta int) int {
	if winner, ok := board.WinningLine(); ok {
		if winner == mark {
			return winScore
		}
		return lossScore
	}

	if board.IsFull() {
		return drawScore
	}

	if maximizing {
		best := -scoreBound
		for _, cell := range board.EmptyCells() {
			board[cell.Row][cell.Col] = mark
			best = max(best, that.minimax(board, mark, false, alpha, beta))
			board[cell.Row][cell.Col] = entity.Empty

			alpha = max(alpha, best)
			if that.pruning && beta <= alpha {
				break
			}
		}

		return best
	}

	best := scoreBound
	for _, cell := range board.EmptyCells() {
		board[cell.Row][cell.Col] = mark.Opponent()
		best = min(best, that.minimax(board, mark, true, alpha, beta))
		board[cell.Row][cell.Col] = entity.Empty

		beta = min(beta, best)
		if that.pruning && beta <= alpha {
			break
		}
	}

	return best
}

// immediateMove finds a cell that completes a line for mark, then one that blocks the opponent.
func immediateMove(board entity.Board, mark entity.Mark) (entity.Cell, bool) {
	if cell, ok := completingCell(board, mark); ok {
		return cell, true
	}

	return completingCell(board, mark.Opponent())
}

func completingCell(board entity.Board, mark entity.Mark) (entity.Cell, bool) {
	for _, cell := range board.EmptyCells() {
		board[cell.Row][cell.Col] = mark
		winner, ok := board.WinningLine()
		board[cell.Row][cell.Col] = entity.Empty

		if ok && winner == mark {
			return cell, true
		}
	}

	return entity.Cell{}, false
}
