package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

// Message types pushed by the server.
const (
	TypeStarted = "started"
	TypeBoard   = "board"
	TypePlayer  = "player"
	TypeEnded   = "ended"
	TypeState   = "state"
	TypeError   = "error"
)

// Message types sent by clients.
const (
	ActionNewGame = "game:new"
	ActionMove    = "game:move"
	ActionState   = "game:state"
)

// Message represents a WebSocket message with a type and a payload.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type newGamePayload struct {
	Mode       entity.Mode       `json:"mode"`
	Difficulty entity.Difficulty `json:"difficulty"`
}

type movePayload struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type startedPayload struct {
	GameID     string `json:"game_id"`
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty,omitempty"`
}

type boardPayload struct {
	GameID string `json:"game_id"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Mark   string `json:"mark"`
}

type playerPayload struct {
	GameID string `json:"game_id"`
	Mark   string `json:"mark"`
}

type endedPayload struct {
	GameID string   `json:"game_id"`
	Status string   `json:"status"`
	Winner string   `json:"winner,omitempty"`
	Result string   `json:"result"`
	Moves  []string `json:"moves"`
}

type statePayload struct {
	GameID        string       `json:"game_id"`
	Mode          string       `json:"mode"`
	Phase         string       `json:"phase"`
	CurrentPlayer string       `json:"current_player"`
	Board         [3][3]string `json:"board"`
	Moves         []string     `json:"moves"`
	Status        string       `json:"status"`
	Result        string       `json:"result,omitempty"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func newStatePayload(session entity.Session) statePayload {
	return statePayload{
		GameID:        session.GameID,
		Mode:          string(session.Mode),
		Phase:         session.Phase.String(),
		CurrentPlayer: session.CurrentPlayer.String(),
		Board:         session.Board.Rows(),
		Moves:         session.Moves.Tokens(),
		Status:        session.Outcome.Status.String(),
		Result:        session.Outcome.Label(session.Mode),
	}
}

func newEndedPayload(event tictactoe.GameEnded) endedPayload {
	payload := endedPayload{
		GameID: event.GameID,
		Status: event.Outcome.Status.String(),
		Result: event.Label,
		Moves:  event.Moves.Tokens(),
	}

	if event.Outcome.Status == entity.StatusWin {
		payload.Winner = event.Outcome.Winner.String()
	}

	return payload
}

func encode(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{Type: msgType, Payload: raw})
}
