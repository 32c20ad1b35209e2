package entity

const computerPlayerName = "AI"

// Players names the two seats as written to the game history.
type Players struct {
	First  string `json:"player1"`
	Second string `json:"player2"`
}

// ForMode fills in the computer seat name when it was left blank.
func (that Players) ForMode(mode Mode) Players {
	if mode == ModePvComputer && that.Second == "" {
		that.Second = computerPlayerName
	}

	return that
}
