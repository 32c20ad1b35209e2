package apperror

import "errors"

var (
	ErrInvalidMove           = errors.New("invalid move")
	ErrGameNotInProgress     = errors.New("game is not in progress")
	ErrWrongTurnSource       = errors.New("it's the computer's turn")
	ErrParse                 = errors.New("parse error")
	ErrNoAvailableMoves      = errors.New("no available moves")
	ErrUnsupportedDifficulty = errors.New("unsupported difficulty")
	ErrUnknownMode           = errors.New("unknown game mode")
	ErrNotFound              = errors.New("not found")
)
