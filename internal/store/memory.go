package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/voyagen/popcornplayer/internal/models"
)

// Memory is an in-process Store used when no database is configured and in tests.
type Memory struct {
	mu        sync.RWMutex
	playlists map[string]*models.Playlist
	order     []string
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{playlists: make(map[string]*models.Playlist)}
}

func clonePlaylist(p *models.Playlist) *models.Playlist {
	cp := *p
	cp.Channels = append([]models.Channel(nil), p.Channels...)
	return &cp
}

func (m *Memory) SavePlaylist(_ context.Context, p *models.Playlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := clonePlaylist(p)
	for i := range cp.Channels {
		cp.Channels[i].PlaylistID = cp.ID
	}
	if old, ok := m.playlists[p.ID]; ok {
		cp.CreatedAt = old.CreatedAt
	} else {
		m.order = append(m.order, p.ID)
	}
	m.playlists[p.ID] = cp
	return nil
}

func (m *Memory) GetPlaylist(_ context.Context, id string) (*models.Playlist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.playlists[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePlaylist(p), nil
}

func (m *Memory) ListPlaylists(_ context.Context) ([]models.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Summary, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.playlists[id].Summarize())
	}
	return out, nil
}

func (m *Memory) DeletePlaylist(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.playlists[id]; !ok {
		return ErrNotFound
	}
	delete(m.playlists, id)
	for i, pid := range m.order {
		if pid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// find returns a pointer into the stored channel slice; callers hold m.mu.
func (m *Memory) find(id string) *models.Channel {
	for _, pid := range m.order {
		chs := m.playlists[pid].Channels
		for i := range chs {
			if chs[i].ID == id {
				return &chs[i]
			}
		}
	}
	return nil
}

func (m *Memory) GetChannel(_ context.Context, id string) (*models.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch := m.find(id)
	if ch == nil {
		return nil, ErrNotFound
	}
	cp := *ch
	return &cp, nil
}

func (m *Memory) ListChannels(_ context.Context, filter ChannelFilter) ([]models.Channel, int, error) {
	filter = filter.Normalize()
	search := strings.ToLower(filter.Search)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []models.Channel
	for _, pid := range m.order {
		if filter.PlaylistID != "" && pid != filter.PlaylistID {
			continue
		}
		for _, ch := range m.playlists[pid].Channels {
			if filter.Category != "" && ch.Category != filter.Category {
				continue
			}
			if filter.MediaType != nil && ch.MediaType != *filter.MediaType {
				continue
			}
			if filter.Favorite != nil && ch.Favorite != *filter.Favorite {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(ch.Name), search) {
				continue
			}
			matched = append(matched, ch)
		}
	}
	total := len(matched)
	if filter.Offset >= total {
		return nil, total, nil
	}
	end := min(filter.Offset+filter.Limit, total)
	return append([]models.Channel(nil), matched[filter.Offset:end]...), total, nil
}

func (m *Memory) ListCategories(_ context.Context, playlistID string) ([]models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int)
	for _, pid := range m.order {
		if playlistID != "" && pid != playlistID {
			continue
		}
		for _, ch := range m.playlists[pid].Channels {
			counts[ch.Category]++
		}
	}
	out := make([]models.Category, 0, len(counts))
	for name, n := range counts {
		out = append(out, models.Category{Name: name, Channels: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) SetChannelFavorite(_ context.Context, id string, favorite bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := m.find(id)
	if ch == nil {
		return ErrNotFound
	}
	ch.Favorite = favorite
	return nil
}
