package archive

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// memrepo backs development runs and tests when DATABASE_URL is unset.
type memrepo struct {
	mu sync.RWMutex

	nextID    int64
	bySession map[string]*Game
}

func NewMemoryRepository() Repository {
	return &memrepo{bySession: make(map[string]*Game)}
}

func (m *memrepo) InsertGame(ctx context.Context, g *Game) (int64, error) {
	if g == nil {
		return 0, ErrNilGame
	}
	key := strings.TrimSpace(g.Session)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.bySession[key]; exists {
		return 0, ErrDuplicateGame
	}
	return m.put(key, g, 0), nil
}

func (m *memrepo) SaveGame(ctx context.Context, g *Game) (int64, error) {
	if g == nil {
		return 0, ErrNilGame
	}
	key := strings.TrimSpace(g.Session)

	m.mu.Lock()
	defer m.mu.Unlock()
	var id int64
	if prev, ok := m.bySession[key]; ok {
		id = prev.ID
	}
	return m.put(key, g, id), nil
}

// put stores a copy; id 0 allocates a new one. Caller holds the write lock.
func (m *memrepo) put(key string, g *Game, id int64) int64 {
	if id == 0 {
		m.nextID++
		id = m.nextID
	}
	c := clone(g)
	c.ID = id
	c.Session = key
	m.bySession[key] = c
	return id
}

func (m *memrepo) GetGame(ctx context.Context, session string) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.bySession[strings.TrimSpace(session)]; ok && g != nil {
		return clone(g), nil
	}
	return nil, nil
}

func (m *memrepo) RecentGames(ctx context.Context, limit int) ([]*Game, error) {
	m.mu.RLock()
	items := make([]*Game, 0, len(m.bySession))
	for _, g := range m.bySession {
		items = append(items, clone(g))
	}
	m.mu.RUnlock()

	// EndedAt desc, then ID desc
	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].ID > items[j].ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func clone(g *Game) *Game {
	c := *g
	c.MovesUCI = append([]string(nil), g.MovesUCI...)
	c.MovesSAN = append([]string(nil), g.MovesSAN...)
	return &c
}
