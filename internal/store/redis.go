package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/park285/cheese-board/internal/game"
	"github.com/park285/cheese-board/internal/obslog"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrConflict = errors.New("game snapshot changed concurrently")

const defaultTTL = 24 * time.Hour

// Store keeps one JSON snapshot per session in Redis.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// New wraps an existing client. ttl <= 0 uses 24h.
func New(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Open connects to redisURL and pings it.
func Open(ctx context.Context, redisURL string, ttl time.Duration) (*Store, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for snapshot store")
	}
	opts, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(rdb, ttl), nil
}

func (s *Store) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

// Save overwrites the snapshot for snap.Session.
func (s *Store) Save(ctx context.Context, snap game.Snapshot) error {
	if strings.TrimSpace(snap.Session) == "" {
		return fmt.Errorf("snapshot without session")
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, gameKey(snap.Session), raw, s.ttl).Err(); err != nil {
		return err
	}
	return s.index(ctx, snap.Session)
}

// Load returns nil, nil when the session is unknown or expired.
func (s *Store) Load(ctx context.Context, session string) (*game.Snapshot, error) {
	raw, err := s.rdb.Get(ctx, gameKey(session)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap game.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", session, err)
	}
	return &snap, nil
}

// Apply applies d to the stored snapshot under WATCH. A missing session starts from
// an empty snapshot. A concurrent writer makes the call fail with ErrConflict.
func (s *Store) Apply(ctx context.Context, session string, d game.Delta) (*game.Snapshot, error) {
	session = strings.TrimSpace(session)
	if session == "" {
		return nil, fmt.Errorf("empty session")
	}
	key := gameKey(session)
	var out game.Snapshot

	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur := game.Snapshot{Session: session}
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == redis.Nil:
		case err != nil:
			return err
		default:
			if jerr := json.Unmarshal(raw, &cur); jerr != nil {
				return jerr
			}
		}

		out = cur.Apply(d, time.Now())
		newRaw, err := json.Marshal(&out)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newRaw, s.ttl)
			return nil
		})
		return err
	}, key)
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, ErrConflict
		}
		return nil, err
	}
	if err := s.index(ctx, session); err != nil {
		return nil, err
	}

	obslog.L().Info("store_apply",
		zap.String("session", session),
		zap.Int("history", len(out.History)),
		zap.String("last_move", out.LastMove()),
	)
	return &out, nil
}

// Delete removes a session and its index entry.
func (s *Store) Delete(ctx context.Context, session string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, gameKey(session))
	pipe.SRem(ctx, indexKey(), strings.TrimSpace(session))
	_, err := pipe.Exec(ctx)
	return err
}

// Sessions lists indexed sessions that still have a snapshot, most recently updated first.
// Index entries are dropped only for missing snapshots; any other load error is returned.
func (s *Store) Sessions(ctx context.Context) ([]game.Snapshot, error) {
	ids, err := s.rdb.SMembers(ctx, indexKey()).Result()
	if err != nil {
		return nil, err
	}
	var list []game.Snapshot
	for _, id := range ids {
		snap, lerr := s.Load(ctx, id)
		if lerr != nil {
			return nil, lerr
		}
		if snap == nil {
			// expired snapshots leave stale index entries behind
			_ = s.rdb.SRem(ctx, indexKey(), id).Err()
			continue
		}
		list = append(list, *snap)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list, nil
}

func (s *Store) index(ctx context.Context, session string) error {
	if err := s.rdb.SAdd(ctx, indexKey(), strings.TrimSpace(session)).Err(); err != nil {
		return err
	}
	_ = s.rdb.Expire(ctx, indexKey(), s.ttl).Err()
	return nil
}

func gameKey(session string) string { return "board:game:" + strings.TrimSpace(session) }
func indexKey() string              { return "board:index:sessions" }

// ParseRedisURL accepts redis:// and rediss:// URLs with an optional /db path.
func ParseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redis db %q", p)
		}
		db = n
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Username: u.User.Username(), Password: pass, DB: db}, nil
}
