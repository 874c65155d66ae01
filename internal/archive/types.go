package archive

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicateGame = errors.New("game already archived")
	ErrNilGame       = errors.New("nil game")
)

// Game is one archived session.
type Game struct {
	ID           int64
	Session      string
	WhiteID      string
	WhiteName    string
	BlackID      string
	BlackName    string
	Result       string // white, black, draw or empty
	ResultMethod string
	FinalFEN     string
	MovesUCI     []string
	MovesSAN     []string
	PGN          string
	Diagram      string
	StartedAt    time.Time
	EndedAt      time.Time
}

// Repository stores finished games. Lookups of unknown sessions return nil, nil.
type Repository interface {
	// InsertGame fails with ErrDuplicateGame when the session is already archived.
	InsertGame(ctx context.Context, g *Game) (int64, error)
	// SaveGame inserts or replaces the record for g.Session.
	// Both writes reject a nil game with ErrNilGame.
	SaveGame(ctx context.Context, g *Game) (int64, error)
	GetGame(ctx context.Context, session string) (*Game, error)
	RecentGames(ctx context.Context, limit int) ([]*Game, error)
}
