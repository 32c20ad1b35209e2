package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

type Mode string

const (
	ModePvP        Mode = "pvp"
	ModePvComputer Mode = "pvc"
)

func ParseMode(raw string) (Mode, error) {
	switch mode := Mode(raw); mode {
	case ModePvP, ModePvComputer:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownMode, raw)
	}
}

// Difficulty selects the search tier of the computer player.
type Difficulty string

const (
	DifficultyRandom    Difficulty = "easy"
	DifficultyHeuristic Difficulty = "medium"
	DifficultyOptimal   Difficulty = "hard"
)

// AllDifficulties is the three-tier configuration.
var AllDifficulties = []Difficulty{DifficultyRandom, DifficultyHeuristic, DifficultyOptimal}

func ParseDifficulty(raw string) (Difficulty, error) {
	switch difficulty := Difficulty(raw); difficulty {
	case DifficultyRandom, DifficultyHeuristic, DifficultyOptimal:
		return difficulty, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnsupportedDifficulty, raw)
	}
}

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInProgress
	PhaseFinished
)

func (that Phase) String() string {
	switch that {
	case PhaseInProgress:
		return "in_progress"
	case PhaseFinished:
		return "finished"
	default:
		return "idle"
	}
}

type Status int

const (
	StatusInProgress Status = iota
	StatusWin
	StatusDraw
)

func (that Status) String() string {
	switch that {
	case StatusWin:
		return "win"
	case StatusDraw:
		return "draw"
	default:
		return "in_progress"
	}
}

// Outcome is Winner(mark), Draw or InProgress. Winner is set only for StatusWin.
type Outcome struct {
	Status Status
	Winner Mark
}

// OutcomeOf derives the outcome from the board alone.
func OutcomeOf(board Board) Outcome {
	if winner, ok := board.WinningLine(); ok {
		return Outcome{Status: StatusWin, Winner: winner}
	}

	if board.IsFull() {
		return Outcome{Status: StatusDraw}
	}

	return Outcome{Status: StatusInProgress}
}

func (that Outcome) IsFinished() bool {
	return that.Status != StatusInProgress
}

// Label - the result text shown to players and stored in the game history.
func (that Outcome) Label(mode Mode) string {
	switch {
	case that.Status == StatusDraw:
		return "Draw"
	case that.Status != StatusWin:
		return ""
	case that.Winner == First:
		return "Player X wins!"
	case mode == ModePvComputer && that.Winner == ComputerMark:
		return "AI wins!"
	default:
		return "Player O wins!"
	}
}

// Session is a point-in-time copy of the controller state.
type Session struct {
	GameID        string
	Mode          Mode
	Difficulty    Difficulty
	Phase         Phase
	CurrentPlayer Mark
	Board         Board
	Moves         Moves
	Outcome       Outcome
}

// HistoryRecord is a finished game as kept by the history store.
type HistoryRecord struct {
	ID        int64     `json:"id"`
	Player1   string    `json:"player1"`
	Player2   string    `json:"player2"`
	Result    string    `json:"result"`
	Timestamp time.Time `json:"timestamp"`
	Moves     string    `json:"moves"`
}

// SessionSnapshot is the part of a session that survives a restart. The board is rebuilt by replaying Moves.
type SessionSnapshot struct {
	GameID     string
	Mode       Mode
	Difficulty Difficulty
	Moves      string
}
