package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

// Mark is the content of a single cell. First always opens the game.
type Mark int8

const (
	Empty Mark = iota
	First
	Second
)

const (
	PlayerX = "X"
	PlayerO = "O"
)

// ComputerMark is the mark played by the engine in PvComputer games.
const ComputerMark = Second

func (that Mark) String() string {
	switch that {
	case First:
		return PlayerX
	case Second:
		return PlayerO
	default:
		return ""
	}
}

// Opponent returns the other player's mark. Empty has no opponent.
func (that Mark) Opponent() Mark {
	switch that {
	case First:
		return Second
	case Second:
		return First
	default:
		return Empty
	}
}

func (that Mark) IsPlayer() bool {
	return that == First || that == Second
}

// ParseMark - converts "X"/"O" into a mark.
func ParseMark(char string) (Mark, error) {
	switch char {
	case PlayerX:
		return First, nil
	case PlayerO:
		return Second, nil
	default:
		return Empty, fmt.Errorf("%w: unknown mark %q", apperror.ErrParse, char)
	}
}
