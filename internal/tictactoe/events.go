package tictactoe

import "github.com/rocketscienceinc/tictactoe-engine/internal/entity"

type GameStarted struct {
	GameID     string
	Mode       entity.Mode
	Difficulty entity.Difficulty
}

type BoardChanged struct {
	GameID string
	Row    int
	Col    int
	Mark   entity.Mark
}

type CurrentPlayerChanged struct {
	GameID string
	Mark   entity.Mark
}

// GameEnded carries the outcome and the full move history of the finished game.
type GameEnded struct {
	GameID  string
	Mode    entity.Mode
	Outcome entity.Outcome
	Label   string
	Moves   entity.Moves
}

// Subscriber receives controller notifications in the order they happened.
// Callbacks may read controller state but must not submit moves or start games synchronously.
type Subscriber interface {
	OnGameStarted(event GameStarted)
	OnBoardChanged(event BoardChanged)
	OnCurrentPlayerChanged(event CurrentPlayerChanged)
	OnGameEnded(event GameEnded)
}

// NopSubscriber can be embedded by subscribers that only care about some notifications.
type NopSubscriber struct{}

func (NopSubscriber) OnGameStarted(GameStarted)                   {}
func (NopSubscriber) OnBoardChanged(BoardChanged)                 {}
func (NopSubscriber) OnCurrentPlayerChanged(CurrentPlayerChanged) {}
func (NopSubscriber) OnGameEnded(GameEnded)                       {}

type notification func(Subscriber)

func gameStarted(event GameStarted) notification {
	return func(sub Subscriber) { sub.OnGameStarted(event) }
}

func boardChanged(event BoardChanged) notification {
	return func(sub Subscriber) { sub.OnBoardChanged(event) }
}

func currentPlayerChanged(event CurrentPlayerChanged) notification {
	return func(sub Subscriber) { sub.OnCurrentPlayerChanged(event) }
}

func gameEnded(event GameEnded) notification {
	return func(sub Subscriber) { sub.OnGameEnded(event) }
}
