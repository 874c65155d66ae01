// Package archive keeps finished sessions with their PGN and final diagram.
package archive

import (
	"context"
	"time"

	"github.com/park285/cheese-board/internal/game"
	"github.com/park285/cheese-board/internal/obslog"
	"go.uber.org/zap"
)

// Record builds the archive entry for s and upserts it.
func Record(ctx context.Context, repo Repository, s game.Snapshot, startedAt time.Time) (*Game, error) {
	g, err := FromSnapshot(s, startedAt)
	if err != nil {
		return nil, err
	}
	id, err := repo.SaveGame(ctx, g)
	if err != nil {
		obslog.L().Warn("archive_save_failed", zap.String("session", s.Session), zap.Error(err))
		return nil, err
	}
	g.ID = id
	obslog.L().Info("archive_save",
		zap.String("session", g.Session),
		zap.Int64("id", id),
		zap.String("result", mapResultToPGN(g.Result)),
		zap.Int("moves", len(g.MovesUCI)),
	)
	return g, nil
}
