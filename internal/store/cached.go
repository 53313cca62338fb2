package store

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/voyagen/popcornplayer/internal/cache"
	"github.com/voyagen/popcornplayer/internal/models"
	"go.uber.org/zap"
)

// Cache TTLs for different entity types.
const (
	ttlPlaylists  = 2 * time.Minute
	ttlPlaylist   = 5 * time.Minute
	ttlChannels   = 1 * time.Minute
	ttlChannel    = 5 * time.Minute
	ttlCategories = 5 * time.Minute
)

// CachedStore wraps a Store with a Redis read-through cache. Writes go to the
// inner store first and then drop the keys they may have made stale.
type CachedStore struct {
	inner Store
	cache *cache.Redis
	log   *zap.Logger
}

// NewCachedStore creates a CachedStore over inner.
func NewCachedStore(inner Store, c *cache.Redis, log *zap.Logger) *CachedStore {
	return &CachedStore{inner: inner, cache: c, log: log.Named("cache")}
}

var (
	keyPlaylists = cache.Key("playlists")
	patChannels  = cache.Key("channels", "*")
	patChannel   = cache.Key("channel", "*")
	patCategory  = cache.Key("categories", "*")
)

func keyPlaylist(id string) string   { return cache.Key("playlist", id) }
func keyChannel(id string) string    { return cache.Key("channel", id) }
func keyCategories(id string) string { return cache.Key("categories", id) }

// readThrough serves key from Redis or loads and stores it.
func readThrough[T any](ctx context.Context, c *CachedStore, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if v, err := cache.Get[T](ctx, c.cache, key); err == nil {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	if err := cache.Set(ctx, c.cache, key, v, ttl); err != nil {
		c.log.Warn("set", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

func (c *CachedStore) ListPlaylists(ctx context.Context) ([]models.Summary, error) {
	return readThrough(ctx, c, keyPlaylists, ttlPlaylists, func() ([]models.Summary, error) {
		return c.inner.ListPlaylists(ctx)
	})
}

func (c *CachedStore) GetPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	return readThrough(ctx, c, keyPlaylist(id), ttlPlaylist, func() (*models.Playlist, error) {
		return c.inner.GetPlaylist(ctx, id)
	})
}

func (c *CachedStore) GetChannel(ctx context.Context, id string) (*models.Channel, error) {
	return readThrough(ctx, c, keyChannel(id), ttlChannel, func() (*models.Channel, error) {
		return c.inner.GetChannel(ctx, id)
	})
}

// channelPage caches the ListChannels tuple.
type channelPage struct {
	Channels []models.Channel `json:"channels"`
	Total    int              `json:"total"`
}

func (c *CachedStore) ListChannels(ctx context.Context, filter ChannelFilter) ([]models.Channel, int, error) {
	page, err := readThrough(ctx, c, cache.Key("channels", filterHash(filter)), ttlChannels, func() (channelPage, error) {
		chs, total, err := c.inner.ListChannels(ctx, filter)
		return channelPage{Channels: chs, Total: total}, err
	})
	return page.Channels, page.Total, err
}

func (c *CachedStore) ListCategories(ctx context.Context, playlistID string) ([]models.Category, error) {
	key := keyCategories(playlistID)
	if playlistID == "" {
		key = keyCategories("all")
	}
	return readThrough(ctx, c, key, ttlCategories, func() ([]models.Category, error) {
		return c.inner.ListCategories(ctx, playlistID)
	})
}

func (c *CachedStore) SavePlaylist(ctx context.Context, p *models.Playlist) error {
	if err := c.inner.SavePlaylist(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, keyPlaylists, keyPlaylist(p.ID))
	c.invalidatePattern(ctx, patChannels, patChannel, patCategory)
	return nil
}

func (c *CachedStore) DeletePlaylist(ctx context.Context, id string) error {
	if err := c.inner.DeletePlaylist(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, keyPlaylists, keyPlaylist(id))
	c.invalidatePattern(ctx, patChannels, patChannel, patCategory)
	return nil
}

func (c *CachedStore) SetChannelFavorite(ctx context.Context, id string, favorite bool) error {
	if err := c.inner.SetChannelFavorite(ctx, id, favorite); err != nil {
		return err
	}
	c.invalidate(ctx, keyChannel(id))
	c.invalidatePattern(ctx, patChannels, cache.Key("playlist", "*"))
	return nil
}

func (c *CachedStore) invalidate(ctx context.Context, keys ...string) {
	if err := cache.Del(ctx, c.cache, keys...); err != nil {
		c.log.Warn("del", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (c *CachedStore) invalidatePattern(ctx context.Context, patterns ...string) {
	for _, p := range patterns {
		if err := cache.DelPattern(ctx, c.cache, p); err != nil {
			c.log.Warn("del pattern", zap.String("pattern", p), zap.Error(err))
		}
	}
}

// filterHash produces a short deterministic hash of a ChannelFilter for use in a key.
func filterHash(f ChannelFilter) string {
	f = f.Normalize()
	mt, fav := "-", "-"
	if f.MediaType != nil {
		mt = fmt.Sprint(*f.MediaType)
	}
	if f.Favorite != nil {
		fav = fmt.Sprint(*f.Favorite)
	}
	raw := fmt.Sprintf("%s|%s|%s|%s|%s|%d|%d", f.PlaylistID, f.Category, mt, fav, f.Search, f.Limit, f.Offset)
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h[:8])
}
