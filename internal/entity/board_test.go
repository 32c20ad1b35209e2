package entity

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardOf(rows ...string) Board {
	var board Board
	for row, line := range rows {
		for col, char := range line {
			switch char {
			case 'X':
				board[row][col] = First
			case 'O':
				board[row][col] = Second
			}
		}
	}

	return board
}

func TestBoard_Place(t *testing.T) {
	t.Run("Places a mark on an empty cell", func(t *testing.T) {
		// Given: an empty board
		var board Board

		// When: X is placed in the center
		err := board.Place(1, 1, First)

		// Then: the cell holds X
		require.NoError(t, err)
		assert.Equal(t, First, board.CellAt(1, 1))
	})

	t.Run("Rejects an occupied cell without mutating", func(t *testing.T) {
		// Given: a board with X in the corner
		board := boardOf("X..", "...", "...")
		before := board

		// When: O tries the same cell
		err := board.Place(0, 0, Second)

		// Then: ErrInvalidMove is returned and nothing changed
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Equal(t, before, board)
	})

	t.Run("Rejects out of range coordinates", func(t *testing.T) {
		cases := []Cell{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {5, 5}}

		for _, cell := range cases {
			var board Board

			err := board.Place(cell.Row, cell.Col, First)

			require.ErrorIs(t, err, apperror.ErrInvalidMove, "cell %v", cell)
			assert.Equal(t, Board{}, board)
		}
	})

	t.Run("Rejects the empty mark", func(t *testing.T) {
		var board Board

		err := board.Place(0, 0, Empty)

		require.ErrorIs(t, err, apperror.ErrInvalidMove)
	})
}

func TestBoard_CellAt(t *testing.T) {
	board := boardOf("XO.", "...", "..X")

	assert.Equal(t, First, board.CellAt(0, 0))
	assert.Equal(t, Second, board.CellAt(0, 1))
	assert.Equal(t, Empty, board.CellAt(1, 1))
	assert.Equal(t, Empty, board.CellAt(-1, 0))
	assert.Equal(t, Empty, board.CellAt(3, 3))
}

func TestBoard_Reset(t *testing.T) {
	board := boardOf("XOX", "OXO", "OXO")

	board.Reset()

	assert.Equal(t, Board{}, board)
	assert.Len(t, board.EmptyCells(), 9)
}

func TestBoard_IsFull(t *testing.T) {
	assert.False(t, Board{}.IsFull())
	assert.False(t, boardOf("XOX", "OXO", "OX.").IsFull())
	assert.True(t, boardOf("XOX", "OXO", "OXO").IsFull())
}

func TestBoard_WinningLine(t *testing.T) {
	t.Run("Detects every line", func(t *testing.T) {
		for i, combo := range WinCombos {
			var board Board
			for _, cell := range combo {
				board[cell.Row][cell.Col] = Second
			}

			winner, ok := board.WinningLine()

			require.True(t, ok, "line %d", i)
			assert.Equal(t, Second, winner)
		}
	})

	t.Run("No winner on an unfinished board", func(t *testing.T) {
		winner, ok := boardOf("XO.", ".X.", "..O").WinningLine()

		assert.False(t, ok)
		assert.Equal(t, Empty, winner)
	})

	t.Run("No winner on a full drawn board", func(t *testing.T) {
		_, ok := boardOf("XOX", "XOO", "OXX").WinningLine()

		assert.False(t, ok)
	})

	t.Run("Scan order decides on degenerate boards", func(t *testing.T) {
		// Given: illegal boards with two parallel lines of different marks
		topX := boardOf("XXX", "...", "OOO")
		topO := boardOf("OOO", "...", "XXX")
		leftO := boardOf("O.X", "O.X", "O.X")

		// When / Then: the first line in scan order wins
		winner, ok := topX.WinningLine()
		require.True(t, ok)
		assert.Equal(t, First, winner)

		winner, ok = topO.WinningLine()
		require.True(t, ok)
		assert.Equal(t, Second, winner)

		winner, ok = leftO.WinningLine()
		require.True(t, ok)
		assert.Equal(t, Second, winner)
	})
}

// Exhaustive check over every legally reachable board.
func TestBoard_WinningLineMatchesLines(t *testing.T) {
	visited := map[Board]bool{}

	var walk func(board Board, toMove Mark)
	walk = func(board Board, toMove Mark) {
		if visited[board] {
			return
		}
		visited[board] = true

		winners := map[Mark]bool{}
		for _, combo := range WinCombos {
			a := board[combo[0].Row][combo[0].Col]
			if a != Empty && a == board[combo[1].Row][combo[1].Col] && a == board[combo[2].Row][combo[2].Col] {
				winners[a] = true
			}
		}

		winner, ok := board.WinningLine()
		require.Equal(t, len(winners) > 0, ok)
		require.LessOrEqual(t, len(winners), 1)

		if ok {
			require.True(t, winners[winner])
			return
		}

		diff := board.Count(First) - board.Count(Second)
		require.True(t, diff == 0 || diff == 1)

		for _, cell := range board.EmptyCells() {
			next := board
			next[cell.Row][cell.Col] = toMove
			walk(next, toMove.Opponent())
		}
	}

	walk(Board{}, First)
}

func TestBoard_EmptyCellsRowMajor(t *testing.T) {
	board := boardOf("X.O", ".X.", "O..")

	assert.Equal(t, []Cell{{0, 1}, {1, 0}, {1, 2}, {2, 1}, {2, 2}}, board.EmptyCells())
}
