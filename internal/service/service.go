// Package service turns playlists and panel catalogs into stored channels.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/voyagen/popcornplayer/internal/cache"
	"github.com/voyagen/popcornplayer/internal/store"
	"github.com/voyagen/popcornplayer/internal/transport"
	"github.com/voyagen/popcornplayer/internal/xtream"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrEmptyPlaylist means the source was fetched but held no usable entries.
	ErrEmptyPlaylist = errors.New("no valid channels found in the playlist")
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRefreshInProgress means another process holds the refresh lock.
	ErrRefreshInProgress = errors.New("refresh already in progress")
	// ErrQueueDisabled means async refresh was requested without Redis.
	ErrQueueDisabled = errors.New("refresh queue is not configured")
)

// Locker serializes refreshes of one playlist across processes.
type Locker interface {
	LockRefresh(ctx context.Context, playlistID string) (unlock func(), err error)
}

// Service coordinates fetching, parsing and storing.
type Service struct {
	store   store.Store
	get     transport.Getter
	locker  Locker
	queue   *cache.Redis
	refresh singleflight.Group
	log     *zap.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLocker sets a cross-process refresh lock.
func WithLocker(l Locker) Option { return func(s *Service) { s.locker = l } }

// WithQueue enables EnqueueRefresh on the given Redis.
func WithQueue(r *cache.Redis) Option { return func(s *Service) { s.queue = r } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// New returns a Service storing into st and fetching through g.
func New(st store.Store, g transport.Getter, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{store: st, get: g, log: log.Named("service"), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Store exposes the underlying store for read paths.
func (s *Service) Store() store.Store { return s.store }

// PanelClient builds a panel client that shares the service transport.
func (s *Service) PanelClient(creds xtream.Credentials) (*xtream.Client, error) {
	c, err := xtream.New(creds, s.get)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return c, nil
}

// SetFavorite sets the favorite flag of a channel.
func (s *Service) SetFavorite(ctx context.Context, channelID string, favorite bool) error {
	return s.store.SetChannelFavorite(ctx, channelID, favorite)
}

// RemovePlaylist deletes a playlist together with its channels.
func (s *Service) RemovePlaylist(ctx context.Context, id string) error {
	if err := s.store.DeletePlaylist(ctx, id); err != nil {
		return err
	}
	s.log.Info("playlist removed", zap.String("playlist_id", id))
	return nil
}

// redisLocker implements Locker with cache.TryLock.
type redisLocker struct {
	r   *cache.Redis
	ttl time.Duration
}

// NewRedisLocker returns a Locker whose locks expire after ttl.
func NewRedisLocker(r *cache.Redis, ttl time.Duration) Locker {
	return &redisLocker{r: r, ttl: ttl}
}

func (l *redisLocker) LockRefresh(ctx context.Context, playlistID string) (func(), error) {
	unlock, err := cache.TryLock(ctx, l.r, cache.RefreshLockKey(playlistID), l.ttl)
	if errors.Is(err, cache.ErrLocked) {
		return nil, ErrRefreshInProgress
	}
	return unlock, err
}
