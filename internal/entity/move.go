package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

const (
	tokenSeparator = ":"
	movesSeparator = ","
)

// Move is a single placement as recorded in the move history.
type Move struct {
	Row  int  `json:"row"`
	Col  int  `json:"col"`
	Mark Mark `json:"-"`
}

// String renders the canonical "<row>:<col>:<X|O>" token.
func (that Move) String() string {
	return strconv.Itoa(that.Row) + tokenSeparator + strconv.Itoa(that.Col) + tokenSeparator + that.Mark.String()
}

// ParseMove - parses a single canonical token.
func ParseMove(token string) (Move, error) {
	parts := strings.Split(token, tokenSeparator)
	if len(parts) != 3 {
		return Move{}, fmt.Errorf("%w: %q must have three parts", apperror.ErrParse, token)
	}

	row, err := parseCoordinate(parts[0])
	if err != nil {
		return Move{}, fmt.Errorf("%w: bad row in %q", err, token)
	}

	col, err := parseCoordinate(parts[1])
	if err != nil {
		return Move{}, fmt.Errorf("%w: bad column in %q", err, token)
	}

	mark, err := ParseMark(parts[2])
	if err != nil {
		return Move{}, fmt.Errorf("%w in %q", err, token)
	}

	return Move{Row: row, Col: col, Mark: mark}, nil
}

// coordinates are a single digit so that parse(format(x)) is bit-exact.
func parseCoordinate(raw string) (int, error) {
	if len(raw) != 1 || raw[0] < '0' || raw[0] >= '0'+BoardSize {
		return 0, apperror.ErrParse
	}

	return int(raw[0] - '0'), nil
}

// Moves is an ordered move history.
type Moves []Move

func (that Moves) Tokens() []string {
	tokens := make([]string, 0, len(that))
	for _, move := range that {
		tokens = append(tokens, move.String())
	}

	return tokens
}

// String joins the tokens with ",", the format stored in game history.
func (that Moves) String() string {
	return strings.Join(that.Tokens(), movesSeparator)
}

// ParseMoves - parses a stored history string. An empty string is an empty history.
func ParseMoves(raw string) (Moves, error) {
	if raw == "" {
		return Moves{}, nil
	}

	tokens := strings.Split(raw, movesSeparator)
	moves := make(Moves, 0, len(tokens))

	for i, token := range tokens {
		move, err := ParseMove(token)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i, err)
		}

		moves = append(moves, move)
	}

	return moves, nil
}
