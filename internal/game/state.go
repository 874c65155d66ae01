// Package game mirrors the server-side state of one chess game: the current position
// notation, the move history in UCI form, the player registry and the session id.
package game

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/fen"
)

// State is owned by the protocol layer, which calls Apply between turns. Readers
// take a Snapshot so a decode never observes a half-applied update.
type State struct {
	mu sync.RWMutex

	session   string
	notation  string
	history   []string
	players   []Player
	updatedAt time.Time
	startedAt time.Time
}

// New creates an empty state for session. A blank session gets a random id.
func New(session string) *State {
	session = strings.TrimSpace(session)
	if session == "" {
		session = NewSessionID()
	}
	now := time.Now()
	return &State{session: session, updatedAt: now, startedAt: now}
}

func NewSessionID() string { return uuid.NewString() }

func (s *State) Session() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *State) Notation() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notation
}

// History returns a copy of the move records, oldest first.
func (s *State) History() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.history...)
}

func (s *State) Players() []Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Player(nil), s.players...)
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Session:   s.session,
		Notation:  s.notation,
		History:   append([]string(nil), s.history...),
		Players:   append([]Player(nil), s.players...),
		UpdatedAt: s.updatedAt,
		StartedAt: s.startedAt,
	}
}

// Apply records a server update. The notation is not validated here.
func (s *State) Apply(d Delta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := applyDelta(Snapshot{
		Session:   s.session,
		Notation:  s.notation,
		History:   s.history,
		Players:   s.players,
		StartedAt: s.startedAt,
	}, d, time.Now())
	s.notation = next.Notation
	s.history = next.History
	s.players = next.Players
	s.updatedAt = next.UpdatedAt
}

// Apply returns a new snapshot with d applied; s is left untouched.
func (s Snapshot) Apply(d Delta, at time.Time) Snapshot {
	return applyDelta(s, d, at)
}

func applyDelta(s Snapshot, d Delta, at time.Time) Snapshot {
	out := Snapshot{Session: s.Session, Notation: s.Notation, UpdatedAt: at, StartedAt: s.StartedAt}
	if out.StartedAt.IsZero() {
		out.StartedAt = at
	}
	if n := strings.TrimSpace(d.Notation); n != "" {
		out.Notation = n
	}
	out.History = make([]string, 0, len(s.History)+len(d.Moves))
	out.History = append(out.History, s.History...)
	for _, mv := range d.Moves {
		if mv = strings.TrimSpace(mv); mv != "" {
			out.History = append(out.History, mv)
		}
	}
	if d.Players != nil {
		out.Players = append([]Player(nil), d.Players...)
	} else {
		out.Players = append([]Player(nil), s.Players...)
	}
	return out
}

// Grid decodes the captured notation.
func (s Snapshot) Grid() (fen.Grid, error) {
	return fen.Decode(s.Notation)
}

func (s Snapshot) Position() (fen.Position, error) {
	return fen.ParsePosition(s.Notation)
}

// RenderText decodes the captured notation and writes its diagram to w.
func (s Snapshot) RenderText(w io.Writer) error {
	return board.RenderNotation(w, s.Notation)
}

// LastMove returns the most recent move record, or "" before the first move.
func (s Snapshot) LastMove() string {
	if len(s.History) == 0 {
		return ""
	}
	return s.History[len(s.History)-1]
}

// Player returns the registry entry for color.
func (s Snapshot) Player(color Color) (Player, bool) {
	for _, p := range s.Players {
		if p.Color == color {
			return p, true
		}
	}
	return Player{}, false
}
