package service

import (
	"context"
	"fmt"
	"time"

	"github.com/voyagen/popcornplayer/internal/cache"
	"github.com/voyagen/popcornplayer/internal/fetcher"
	"github.com/voyagen/popcornplayer/internal/metrics"
	"github.com/voyagen/popcornplayer/internal/models"
	"github.com/voyagen/popcornplayer/internal/xtream"
	"go.uber.org/zap"
)

// refreshTimeout bounds a shared refresh run, which no longer follows the
// cancellation of the request that started it.
const refreshTimeout = 10 * time.Minute

// RefreshPlaylist re-fetches a playlist and replaces its channels: M3U
// playlists from their URL, panel playlists from the panel catalog of their
// stream type. If anything fails the stored channels are left as they were.
// Favorites survive when a channel keeps its URL. Concurrent refreshes of the
// same playlist share one run, which outlives a caller that gives up.
func (s *Service) RefreshPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	ch := s.refresh.DoChan(id, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return s.refreshOnce(runCtx, id)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Playlist), nil
	}
}

func (s *Service) refreshOnce(ctx context.Context, id string) (*models.Playlist, error) {
	if s.locker != nil {
		unlock, err := s.locker.LockRefresh(ctx, id)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	old, err := s.store.GetPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}
	source := sourceLabel(old.SourceType)

	var channels []models.Channel
	if old.SourceType == models.SourceTypeXtream {
		channels, err = s.panelRefreshChannels(ctx, old)
	} else {
		channels, err = s.fetchChannels(ctx, old.URL)
	}
	if err != nil {
		metrics.RecordImport(source, resultLabel(err))
		return nil, err
	}

	favorites := make(map[string]bool)
	for _, ch := range old.Channels {
		if ch.Favorite {
			favorites[ch.URL] = true
		}
	}
	for i := range channels {
		channels[i].Favorite = favorites[channels[i].URL]
	}

	updated := *old
	updated.Channels = channels
	updated.LastUpdated = s.now()
	if err := s.store.SavePlaylist(ctx, &updated); err != nil {
		metrics.RecordImport(source, "store_error")
		return nil, fmt.Errorf("SavePlaylist: %w", err)
	}
	metrics.RecordImport(source, "ok")
	metrics.RecordChannels(source, len(channels))
	s.log.Info("playlist refreshed",
		zap.String("playlist_id", id),
		zap.Int("channels", len(channels)),
		zap.Int("previous", len(old.Channels)))
	return &updated, nil
}

// panelRefreshChannels re-reads the catalog a panel playlist was imported
// from, using the credentials kept in its URL.
func (s *Service) panelRefreshChannels(ctx context.Context, pl *models.Playlist) ([]models.Channel, error) {
	creds, err := xtream.CredentialsFromPlaylistURL(pl.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	client, err := s.PanelClient(creds)
	if err != nil {
		return nil, err
	}
	channels, err := s.panelChannels(ctx, client, xtream.StreamTypeForMedia(pl.MediaType), fetcher.NewBatchID())
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if len(channels) == 0 {
		return nil, ErrEmptyPlaylist
	}
	return channels, nil
}

// RefreshSummary counts the outcome of RefreshAll.
type RefreshSummary struct {
	Refreshed int `json:"refreshed"`
	Failed    int `json:"failed"`
}

// RefreshAll refreshes every playlist in turn. Failures are logged and do not
// stop the run; only ctx cancellation does.
func (s *Service) RefreshAll(ctx context.Context) (RefreshSummary, error) {
	var sum RefreshSummary
	playlists, err := s.store.ListPlaylists(ctx)
	if err != nil {
		return sum, fmt.Errorf("ListPlaylists: %w", err)
	}
	for _, p := range playlists {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("refresh cancelled: %w", err)
		}
		if _, err := s.RefreshPlaylist(ctx, p.ID); err != nil {
			sum.Failed++
			s.log.Warn("refresh failed", zap.String("playlist_id", p.ID), zap.Error(err))
			continue
		}
		sum.Refreshed++
	}
	s.log.Info("refresh run finished", zap.Int("refreshed", sum.Refreshed), zap.Int("failed", sum.Failed))
	return sum, nil
}

// EnqueueRefresh queues an asynchronous refresh of one playlist (or all when
// id is empty) for the refresh worker.
func (s *Service) EnqueueRefresh(ctx context.Context, id string) error {
	if s.queue == nil {
		return ErrQueueDisabled
	}
	if id != "" {
		if _, err := s.store.GetPlaylist(ctx, id); err != nil {
			return err
		}
	}
	return cache.Enqueue(ctx, s.queue, cache.RefreshQueue, cache.RefreshJob{PlaylistID: id, Requested: s.now()})
}

func sourceLabel(sourceType int16) string {
	if sourceType == models.SourceTypeXtream {
		return "xtream"
	}
	return "m3u"
}
