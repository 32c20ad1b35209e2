package service

import (
	"math/rand"
	"testing"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = 42

func newTestBot(opts ...BotOption) *BotService {
	return NewBotService(rand.NewSource(testSeed), opts...)
}

func place(t *testing.T, board *entity.Board, mark entity.Mark, cells ...entity.Cell) {
	t.Helper()

	for _, cell := range cells {
		require.NoError(t, board.Place(cell.Row, cell.Col, mark))
	}
}

func TestBotService_OptimalMove(t *testing.T) {
	t.Run("Completes its own line", func(t *testing.T) {
		// Given: X on (1,0),(1,1) and O on (0,0),(0,1)
		var board entity.Board
		place(t, &board, entity.First, entity.Cell{Row: 1, Col: 0}, entity.Cell{Row: 1, Col: 1})
		place(t, &board, entity.Second, entity.Cell{Row: 0, Col: 0}, entity.Cell{Row: 0, Col: 1})

		// When: O asks for the optimal move
		cell, err := newTestBot().OptimalMove(board, entity.Second)

		// Then: O completes the top row
		require.NoError(t, err)
		assert.Equal(t, entity.Cell{Row: 0, Col: 2}, cell)
	})

	t.Run("Blocks the opponent", func(t *testing.T) {
		// Given: X on (0,0),(1,1) and O on (0,1),(0,2)
		var board entity.Board
		place(t, &board, entity.First, entity.Cell{Row: 0, Col: 0}, entity.Cell{Row: 1, Col: 1})
		place(t, &board, entity.Second, entity.Cell{Row: 0, Col: 1}, entity.Cell{Row: 0, Col: 2})

		// When: O asks for the optimal move
		cell, err := newTestBot().OptimalMove(board, entity.Second)

		// Then: O blocks the main diagonal
		require.NoError(t, err)
		assert.Equal(t, entity.Cell{Row: 2, Col: 2}, cell)
	})

	t.Run("Does not mutate the caller's board", func(t *testing.T) {
		var board entity.Board
		place(t, &board, entity.First, entity.Cell{Row: 1, Col: 1})
		before := board

		_, err := newTestBot().OptimalMove(board, entity.Second)

		require.NoError(t, err)
		assert.Equal(t, before, board)
	})

	t.Run("Ties are broken by scan order", func(t *testing.T) {
		// Given: an empty board, where every opening draws with best play
		var board entity.Board

		// When: X asks for the optimal move
		cell, err := newTestBot().OptimalMove(board, entity.First)

		// Then: the first cell in row-major order is chosen
		require.NoError(t, err)
		assert.Equal(t, entity.Cell{Row: 0, Col: 0}, cell)
	})

	t.Run("Full board has no move", func(t *testing.T) {
		board := entity.Board{
			{entity.First, entity.Second, entity.First},
			{entity.First, entity.Second, entity.Second},
			{entity.Second, entity.First, entity.First},
		}

		_, err := newTestBot().OptimalMove(board, entity.Second)

		require.ErrorIs(t, err, apperror.ErrNoAvailableMoves)
	})
}

func TestBotService_RandomMove(t *testing.T) {
	t.Run("Seeded source picks a known cell", func(t *testing.T) {
		// Given: a board with five empty cells
		var board entity.Board
		place(t, &board, entity.First, entity.Cell{Row: 0, Col: 0}, entity.Cell{Row: 1, Col: 1})
		place(t, &board, entity.Second, entity.Cell{Row: 0, Col: 1}, entity.Cell{Row: 2, Col: 2})
		empty := board.EmptyCells()

		// When: a move is drawn from a seeded source
		cell, err := newTestBot().RandomMove(board)

		// Then: it is the cell the same seed selects
		require.NoError(t, err)
		expected := empty[rand.New(rand.NewSource(testSeed)).Intn(len(empty))]
		assert.Equal(t, expected, cell)
	})

	t.Run("Only empty cells are drawn", func(t *testing.T) {
		bot := NewBotService(rand.NewSource(7))

		var board entity.Board
		place(t, &board, entity.First, entity.Cell{Row: 0, Col: 0}, entity.Cell{Row: 2, Col: 1})

		for range 100 {
			cell, err := bot.RandomMove(board)
			require.NoError(t, err)
			assert.Equal(t, entity.Empty, board.CellAt(cell.Row, cell.Col))
		}
	})

	t.Run("Full board has no move", func(t *testing.T) {
		var board entity.Board
		for row := range entity.BoardSize {
			for col := range entity.BoardSize {
				board[row][col] = entity.First
			}
		}

		_, err := newTestBot().RandomMove(board)

		require.ErrorIs(t, err, apperror.ErrNoAvailableMoves)
	})
}

func TestBotService_HeuristicMove(t *testing.T) {
	t.Run("Prefers winning over blocking", func(t *testing.T) {
		// Given: both X and O threaten a line
		var board entity.Board
		place(t, &board, entity.First, entity.Cell{Row: 0, Col: 0}, entity.Cell{Row: 0, Col: 1}, entity.Cell{Row: 2, Col: 2})
		place(t, &board, entity.Second, entity.Cell{Row: 1, Col: 0}, entity.Cell{Row: 1, Col: 1})

		// When: O asks for a medium move
		cell, err := newTestBot().HeuristicMove(board, entity.Second)

		// Then: O wins on the middle row instead of blocking the top row
		require.NoError(t, err)
		assert.Equal(t, entity.Cell{Row: 1, Col: 2}, cell)
	})

	t.Run("Blocks when it cannot win", func(t *testing.T) {
		var board entity.Board
		place(t, &board, entity.First, entity.Cell{Row: 0, Col: 0}, entity.Cell{Row: 1, Col: 0})
		place(t, &board, entity.Second, entity.Cell{Row: 1, Col: 1})

		cell, err := newTestBot().HeuristicMove(board, entity.Second)

		require.NoError(t, err)
		assert.Equal(t, entity.Cell{Row: 2, Col: 0}, cell)
	})

	t.Run("Falls back to the random tier", func(t *testing.T) {
		// Given: no threats on the board
		var board entity.Board
		place(t, &board, entity.First, entity.Cell{Row: 1, Col: 1})

		// When: two bots with the same seed play the medium and easy tiers
		heuristic, err := newTestBot().HeuristicMove(board, entity.Second)
		require.NoError(t, err)

		random, err := newTestBot().RandomMove(board)
		require.NoError(t, err)

		// Then: they agree
		assert.Equal(t, random, heuristic)
	})
}

func TestBotService_SelectMove(t *testing.T) {
	t.Run("Dispatches by difficulty", func(t *testing.T) {
		var board entity.Board
		place(t, &board, entity.First, entity.Cell{Row: 1, Col: 0}, entity.Cell{Row: 1, Col: 1})
		place(t, &board, entity.Second, entity.Cell{Row: 0, Col: 0}, entity.Cell{Row: 0, Col: 1})

		for _, difficulty := range []entity.Difficulty{entity.DifficultyHeuristic, entity.DifficultyOptimal} {
			cell, err := newTestBot().SelectMove(board, entity.Second, difficulty)

			require.NoError(t, err)
			assert.Equal(t, entity.Cell{Row: 0, Col: 2}, cell, "difficulty %s", difficulty)
		}
	})

	t.Run("Two-tier configuration rejects medium", func(t *testing.T) {
		bot := newTestBot(WithTiers(entity.DifficultyRandom, entity.DifficultyOptimal))

		_, err := bot.SelectMove(entity.Board{}, entity.Second, entity.DifficultyHeuristic)

		require.ErrorIs(t, err, apperror.ErrUnsupportedDifficulty)
		assert.True(t, bot.Supports(entity.DifficultyOptimal))
		assert.False(t, bot.Supports(entity.DifficultyHeuristic))
	})

	t.Run("Unknown difficulty", func(t *testing.T) {
		_, err := newTestBot().SelectMove(entity.Board{}, entity.Second, "nightmare")

		require.ErrorIs(t, err, apperror.ErrUnsupportedDifficulty)
	})
}

// reachable collects every non-terminal board reachable from the empty board with the mark to move.
func reachable() map[entity.Board]entity.Mark {
	positions := map[entity.Board]entity.Mark{}

	var walk func(board entity.Board, toMove entity.Mark)
	walk = func(board entity.Board, toMove entity.Mark) {
		if _, seen := positions[board]; seen {
			return
		}

		if entity.OutcomeOf(board).IsFinished() {
			return
		}

		positions[board] = toMove

		for _, cell := range board.EmptyCells() {
			next := board
			next[cell.Row][cell.Col] = toMove
			walk(next, toMove.Opponent())
		}
	}

	walk(entity.Board{}, entity.First)

	return positions
}

func TestBotService_PruningDoesNotChangeMove(t *testing.T) {
	pruned := newTestBot()
	exhaustive := newTestBot(WithoutPruning())

	for board, toMove := range reachable() {
		withPruning, err := pruned.OptimalMove(board, toMove)
		require.NoError(t, err)

		withoutPruning, err := exhaustive.OptimalMove(board, toMove)
		require.NoError(t, err)

		require.Equal(t, withoutPruning, withPruning, "board %v, %s to move", board, toMove)
	}
}

func TestBotService_OptimalNeverLoses(t *testing.T) {
	bot := newTestBot()

	// play explores every opponent reply; the bot's reply is deterministic.
	var play func(board entity.Board, toMove, botMark entity.Mark)
	play = func(board entity.Board, toMove, botMark entity.Mark) {
		outcome := entity.OutcomeOf(board)
		if outcome.IsFinished() {
			require.False(t, outcome.Status == entity.StatusWin && outcome.Winner != botMark, "bot lost: %v", board)
			return
		}

		if toMove == botMark {
			cell, err := bot.OptimalMove(board, botMark)
			require.NoError(t, err)
			require.NoError(t, board.Place(cell.Row, cell.Col, botMark))
			play(board, toMove.Opponent(), botMark)

			return
		}

		for _, cell := range board.EmptyCells() {
			next := board
			next[cell.Row][cell.Col] = toMove
			play(next, toMove.Opponent(), botMark)
		}
	}

	t.Run("As second player", func(t *testing.T) {
		play(entity.Board{}, entity.First, entity.Second)
	})

	t.Run("As first player", func(t *testing.T) {
		play(entity.Board{}, entity.First, entity.First)
	})
}
