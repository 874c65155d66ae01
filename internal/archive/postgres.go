package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS board_games (
    id            BIGSERIAL PRIMARY KEY,
    session       TEXT NOT NULL UNIQUE,
    white_id      TEXT NOT NULL DEFAULT '',
    white_name    TEXT NOT NULL DEFAULT '',
    black_id      TEXT NOT NULL DEFAULT '',
    black_name    TEXT NOT NULL DEFAULT '',
    result        TEXT NOT NULL DEFAULT '',
    result_method TEXT NOT NULL DEFAULT '',
    final_fen     TEXT NOT NULL,
    moves_uci     TEXT[] NOT NULL DEFAULT '{}',
    moves_san     TEXT[] NOT NULL DEFAULT '{}',
    pgn           TEXT NOT NULL DEFAULT '',
    diagram       TEXT NOT NULL DEFAULT '',
    started_at    TIMESTAMPTZ,
    ended_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_board_games_ended_at ON board_games (ended_at DESC);
`

const columns = `id, session, white_id, white_name, black_id, black_name, result, result_method,
    final_fen, moves_uci, moves_san, pgn, diagram, started_at, ended_at`

type pgRepository struct {
	db *sql.DB
}

// OpenPostgres connects, pings and makes sure the board_games table exists.
func OpenPostgres(ctx context.Context, databaseURL string) (Repository, func() error, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return NewPostgresRepository(db), db.Close, nil
}

// NewPostgresRepository uses an already opened handle.
func NewPostgresRepository(db *sql.DB) Repository {
	return &pgRepository{db: db}
}

func (r *pgRepository) InsertGame(ctx context.Context, g *Game) (int64, error) {
	if g == nil {
		return 0, ErrNilGame
	}
	q := `INSERT INTO board_games (
        session, white_id, white_name, black_id, black_name, result, result_method,
        final_fen, moves_uci, moves_san, pgn, diagram, started_at, ended_at
      ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
      RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q, args(g)...).Scan(&id)
	if isUniqueViolation(err) {
		return 0, ErrDuplicateGame
	}
	return id, err
}

func (r *pgRepository) SaveGame(ctx context.Context, g *Game) (int64, error) {
	if g == nil {
		return 0, ErrNilGame
	}
	q := `INSERT INTO board_games (
        session, white_id, white_name, black_id, black_name, result, result_method,
        final_fen, moves_uci, moves_san, pgn, diagram, started_at, ended_at
      ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
      ON CONFLICT (session) DO UPDATE SET
        white_id=EXCLUDED.white_id,
        white_name=EXCLUDED.white_name,
        black_id=EXCLUDED.black_id,
        black_name=EXCLUDED.black_name,
        result=EXCLUDED.result,
        result_method=EXCLUDED.result_method,
        final_fen=EXCLUDED.final_fen,
        moves_uci=EXCLUDED.moves_uci,
        moves_san=EXCLUDED.moves_san,
        pgn=EXCLUDED.pgn,
        diagram=EXCLUDED.diagram,
        started_at=EXCLUDED.started_at,
        ended_at=EXCLUDED.ended_at
      RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q, args(g)...).Scan(&id)
	return id, err
}

func (r *pgRepository) GetGame(ctx context.Context, session string) (*Game, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM board_games WHERE session = $1`, strings.TrimSpace(session))
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return g, err
}

func (r *pgRepository) RecentGames(ctx context.Context, limit int) ([]*Game, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM board_games ORDER BY ended_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(s scanner) (*Game, error) {
	var (
		g       Game
		started sql.NullTime
	)
	err := s.Scan(
		&g.ID, &g.Session,
		&g.WhiteID, &g.WhiteName, &g.BlackID, &g.BlackName,
		&g.Result, &g.ResultMethod,
		&g.FinalFEN, pq.Array(&g.MovesUCI), pq.Array(&g.MovesSAN),
		&g.PGN, &g.Diagram, &started, &g.EndedAt,
	)
	if err != nil {
		return nil, err
	}
	if started.Valid {
		g.StartedAt = started.Time
	}
	return &g, nil
}

func args(g *Game) []any {
	var started any
	if !g.StartedAt.IsZero() {
		started = g.StartedAt
	}
	ended := g.EndedAt
	if ended.IsZero() {
		ended = time.Now()
	}
	return []any{
		strings.TrimSpace(g.Session),
		g.WhiteID, g.WhiteName, g.BlackID, g.BlackName,
		strings.TrimSpace(g.Result), strings.TrimSpace(g.ResultMethod),
		g.FinalFEN, pq.Array(nonNil(g.MovesUCI)), pq.Array(nonNil(g.MovesSAN)),
		g.PGN, g.Diagram, started, ended,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
