package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/voyagen/popcornplayer/internal/fetcher"
	"github.com/voyagen/popcornplayer/internal/metrics"
	"github.com/voyagen/popcornplayer/internal/models"
	"github.com/voyagen/popcornplayer/internal/transport"
	"go.uber.org/zap"
)

// ImportPlaylist fetches and parses the M3U at rawURL and stores it as a new
// playlist. name is optional and defaults to the URL host.
func (s *Service) ImportPlaylist(ctx context.Context, rawURL, name string) (*models.Playlist, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	if strings.TrimSpace(name) == "" {
		name = defaultName(rawURL)
	}

	channels, err := s.fetchChannels(ctx, rawURL)
	if err != nil {
		metrics.RecordImport("m3u", resultLabel(err))
		return nil, err
	}

	now := s.now()
	pl := &models.Playlist{
		ID:          "pl_" + uuid.NewString(),
		Name:        strings.TrimSpace(name),
		URL:         rawURL,
		SourceType:  models.SourceTypeM3ULink,
		MediaType:   models.MediaTypeLivestream,
		Channels:    channels,
		LastUpdated: now,
		CreatedAt:   now,
	}
	if err := s.store.SavePlaylist(ctx, pl); err != nil {
		metrics.RecordImport("m3u", "store_error")
		return nil, fmt.Errorf("SavePlaylist: %w", err)
	}
	metrics.RecordImport("m3u", "ok")
	metrics.RecordChannels("m3u", len(channels))
	s.log.Info("playlist imported",
		zap.String("playlist_id", pl.ID),
		zap.String("url", transport.Redact(rawURL)),
		zap.Int("channels", len(channels)))
	return pl, nil
}

// fetchChannels runs fetch, parse and channel conversion for one URL.
func (s *Service) fetchChannels(ctx context.Context, rawURL string) ([]models.Channel, error) {
	entries, stats, err := fetcher.FetchM3U(ctx, s.get, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	metrics.RecordParseDropped(stats.Dropped)
	if stats.Dropped > 0 {
		s.log.Debug("skipped malformed entries",
			zap.String("url", transport.Redact(rawURL)),
			zap.Int("dropped", stats.Dropped),
			zap.Int("descriptors", stats.Descriptors))
	}
	if len(entries) == 0 {
		return nil, ErrEmptyPlaylist
	}
	return fetcher.ToChannels(entries), nil
}

func defaultName(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return "Playlist"
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrEmptyPlaylist):
		return "empty"
	case transport.IsFetchError(err):
		return "fetch_error"
	default:
		return "error"
	}
}
