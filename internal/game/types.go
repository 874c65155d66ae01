package game

import "time"

// Color identifies the side a player controls.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Player is registry data reported by the server. Nothing in this module derives
// behaviour from it.
type Player struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Color         Color   `json:"color"`
	ClientType    string  `json:"client_type,omitempty"`
	TimeRemaining float64 `json:"time_remaining,omitempty"`
	Won           bool    `json:"won,omitempty"`
	Lost          bool    `json:"lost,omitempty"`
	ReasonWon     string  `json:"reason_won,omitempty"`
	ReasonLost    string  `json:"reason_lost,omitempty"`
}

// Delta is one state change reported by the protocol layer after a turn.
type Delta struct {
	// Notation replaces the current position when non-empty.
	Notation string `json:"fen,omitempty"`
	// Moves are appended to the history in order.
	Moves []string `json:"moves,omitempty"`
	// Players replaces the registry when non-nil.
	Players []Player `json:"players,omitempty"`
}

// Snapshot is an immutable copy of a game's state at one instant.
type Snapshot struct {
	Session   string    `json:"session"`
	Notation  string    `json:"fen"`
	History   []string  `json:"history"`
	Players   []Player  `json:"players"`
	UpdatedAt time.Time `json:"updated_at"`
	// StartedAt is set by the first update and carried forward afterwards.
	StartedAt time.Time `json:"started_at,omitzero"`
}
