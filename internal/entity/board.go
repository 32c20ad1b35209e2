package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

const BoardSize = 3

// Cell addresses a square on the board.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Cell) InBounds() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

// WinCombos lists every line in scan order: rows top to bottom, columns left to right,
// main diagonal, anti-diagonal.
var WinCombos = [8][3]Cell{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Board is the 3x3 grid. It is a value type, so assigning it takes a snapshot.
type Board [BoardSize][BoardSize]Mark

func (that *Board) Reset() {
	*that = Board{}
}

// Place - puts mark on an empty in-range cell. The board is left untouched on failure.
func (that *Board) Place(row, col int, mark Mark) error {
	cell := Cell{Row: row, Col: col}
	if !cell.InBounds() {
		return fmt.Errorf("%w: cell (%d,%d) is out of range", apperror.ErrInvalidMove, row, col)
	}

	if !mark.IsPlayer() {
		return fmt.Errorf("%w: cannot place an empty mark", apperror.ErrInvalidMove)
	}

	if that[row][col] != Empty {
		return fmt.Errorf("%w: cell (%d,%d) is already occupied", apperror.ErrInvalidMove, row, col)
	}

	that[row][col] = mark

	return nil
}

// CellAt returns Empty for out-of-range coordinates instead of failing.
func (that Board) CellAt(row, col int) Mark {
	if !(Cell{Row: row, Col: col}).InBounds() {
		return Empty
	}

	return that[row][col]
}

func (that Board) IsFull() bool {
	for _, row := range that {
		for _, mark := range row {
			if mark == Empty {
				return false
			}
		}
	}

	return true
}

// WinningLine - returns the mark of the first uniformly marked line in WinCombos order.
func (that Board) WinningLine() (Mark, bool) {
	for _, combo := range WinCombos {
		a := that[combo[0].Row][combo[0].Col]
		b := that[combo[1].Row][combo[1].Col]
		c := that[combo[2].Row][combo[2].Col]

		if a != Empty && a == b && b == c {
			return a, true
		}
	}

	return Empty, false
}

// EmptyCells returns the free cells in row-major order.
func (that Board) EmptyCells() []Cell {
	cells := make([]Cell, 0, BoardSize*BoardSize)
	for row := range BoardSize {
		for col := range BoardSize {
			if that[row][col] == Empty {
				cells = append(cells, Cell{Row: row, Col: col})
			}
		}
	}

	return cells
}

func (that Board) Count(mark Mark) int {
	count := 0
	for _, row := range that {
		for _, cell := range row {
			if cell == mark {
				count++
			}
		}
	}

	return count
}

// Rows renders the board as "X"/"O"/"" strings for transports.
func (that Board) Rows() [BoardSize][BoardSize]string {
	var rows [BoardSize][BoardSize]string
	for row := range BoardSize {
		for col := range BoardSize {
			rows[row][col] = that[row][col].String()
		}
	}

	return rows
}
