package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type gameUseCase interface {
	NewGame(mode entity.Mode, difficulty entity.Difficulty) (entity.Session, error)
	Move(row, col int) (entity.Session, error)
	State() entity.Session

	LoadHistory(ctx context.Context, user string) ([]entity.HistoryRecord, error)
	GetMoves(ctx context.Context, id int64) (string, error)
	ReplayGame(ctx context.Context, id int64) ([]entity.Board, error)
	DeleteHistory(ctx context.Context, id int64) error
}

type handlers struct {
	logger *slog.Logger
	game   gameUseCase
}

type newGameRequest struct {
	Mode       entity.Mode       `json:"mode"`
	Difficulty entity.Difficulty `json:"difficulty"`
}

type moveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

// SessionResponse is the game state as seen by clients.
type SessionResponse struct {
	GameID        string       `json:"game_id"`
	Mode          entity.Mode  `json:"mode"`
	Difficulty    string       `json:"difficulty,omitempty"`
	Phase         string       `json:"phase"`
	CurrentPlayer string       `json:"current_player"`
	Board         [3][3]string `json:"board"`
	Moves         []string     `json:"moves"`
	Status        string       `json:"status"`
	Winner        string       `json:"winner,omitempty"`
	Result        string       `json:"result,omitempty"`
}

func NewSessionResponse(session entity.Session) SessionResponse {
	response := SessionResponse{
		GameID:        session.GameID,
		Mode:          session.Mode,
		Phase:         session.Phase.String(),
		CurrentPlayer: session.CurrentPlayer.String(),
		Board:         session.Board.Rows(),
		Moves:         session.Moves.Tokens(),
		Status:        session.Outcome.Status.String(),
		Result:        session.Outcome.Label(session.Mode),
	}

	if session.Mode == entity.ModePvComputer {
		response.Difficulty = string(session.Difficulty)
	}

	if session.Outcome.Status == entity.StatusWin {
		response.Winner = session.Outcome.Winner.String()
	}

	return response
}

type replayResponse struct {
	ID     int64          `json:"id"`
	Boards [][3][3]string `json:"boards"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *handlers) state(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, NewSessionResponse(that.game.State()))
}

func (that *handlers) newGame(w http.ResponseWriter, r *http.Request) {
	var request newGameRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		that.writeError(w, fmt.Errorf("%w: %w", apperror.ErrParse, err))
		return
	}

	session, err := that.game.NewGame(request.Mode, request.Difficulty)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, NewSessionResponse(session))
}

func (that *handlers) move(w http.ResponseWriter, r *http.Request) {
	var request moveRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		that.writeError(w, fmt.Errorf("%w: %w", apperror.ErrParse, err))
		return
	}

	if request.Row == nil || request.Col == nil {
		that.writeError(w, fmt.Errorf("%w: row and col are required", apperror.ErrParse))
		return
	}

	session, err := that.game.Move(*request.Row, *request.Col)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, NewSessionResponse(session))
}

func (that *handlers) history(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user == "" {
		that.writeError(w, fmt.Errorf("%w: user is required", apperror.ErrParse))
		return
	}

	records, err := that.game.LoadHistory(r.Context(), user)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, records)
}

func (that *handlers) moves(w http.ResponseWriter, r *http.Request) {
	id, err := historyID(r)
	if err != nil {
		that.writeError(w, err)
		return
	}

	moves, err := that.game.GetMoves(r.Context(), id)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, map[string]any{"id": id, "moves": moves})
}

func (that *handlers) replay(w http.ResponseWriter, r *http.Request) {
	id, err := historyID(r)
	if err != nil {
		that.writeError(w, err)
		return
	}

	boards, err := that.game.ReplayGame(r.Context(), id)
	if err != nil {
		that.writeError(w, err)
		return
	}

	response := replayResponse{ID: id, Boards: make([][3][3]string, 0, len(boards))}
	for _, board := range boards {
		response.Boards = append(response.Boards, board.Rows())
	}

	that.writeJSON(w, http.StatusOK, response)
}

func (that *handlers) deleteHistory(w http.ResponseWriter, r *http.Request) {
	id, err := historyID(r)
	if err != nil {
		that.writeError(w, err)
		return
	}

	if err = that.game.DeleteHistory(r.Context(), id); err != nil {
		that.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func historyID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid history id", apperror.ErrParse)
	}

	return id, nil
}

// statusCode maps error kinds to HTTP statuses.
func statusCode(err error) int {
	switch {
	case errors.Is(err, apperror.ErrInvalidMove),
		errors.Is(err, apperror.ErrParse),
		errors.Is(err, apperror.ErrUnknownMode),
		errors.Is(err, apperror.ErrUnsupportedDifficulty):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrGameNotInProgress),
		errors.Is(err, apperror.ErrWrongTurnSource):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (that *handlers) writeError(w http.ResponseWriter, err error) {
	status := statusCode(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
		message = "Internal Server Error"
	}

	that.writeJSON(w, status, errorResponse{Error: message})
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
