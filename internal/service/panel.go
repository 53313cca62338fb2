package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/voyagen/popcornplayer/internal/fetcher"
	"github.com/voyagen/popcornplayer/internal/metrics"
	"github.com/voyagen/popcornplayer/internal/models"
	"github.com/voyagen/popcornplayer/internal/xtream"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TypeResult is the outcome of importing one panel catalog.
type TypeResult struct {
	Type     xtream.StreamType `json:"type"`
	Playlist *models.Summary   `json:"playlist,omitempty"`
	Streams  int               `json:"streams"`
	Err      error             `json:"-"`
	Error    string            `json:"error,omitempty"`
}

// PanelImport is the outcome of ImportPanel.
type PanelImport struct {
	UserInfo *xtream.UserInfo `json:"user_info"`
	Results  []TypeResult     `json:"results"`
}

// Imported returns the playlists created by the import.
func (p *PanelImport) Imported() []models.Summary {
	var out []models.Summary
	for _, r := range p.Results {
		if r.Playlist != nil {
			out = append(out, *r.Playlist)
		}
	}
	return out
}

// ImportPanel authenticates against a panel and imports its live, vod and
// series catalogs concurrently, one playlist per non-empty catalog. A failing
// catalog is reported in its TypeResult and does not affect the others; only
// authentication and connectivity failures return an error.
func (s *Service) ImportPanel(ctx context.Context, creds xtream.Credentials) (*PanelImport, error) {
	client, err := s.PanelClient(creds)
	if err != nil {
		return nil, err
	}
	info, err := client.GetUserInfo(ctx)
	if err != nil {
		metrics.RecordImport("xtream", resultLabel(err))
		return nil, fmt.Errorf("GetUserInfo: %w", err)
	}

	batch := fetcher.NewBatchID()
	results := make([]TypeResult, len(xtream.StreamTypes))
	var g errgroup.Group
	for i, kind := range xtream.StreamTypes {
		g.Go(func() error {
			results[i] = s.importPanelType(ctx, client, kind, batch)
			return nil
		})
	}
	_ = g.Wait()

	return &PanelImport{UserInfo: info, Results: results}, nil
}

func (s *Service) importPanelType(ctx context.Context, client *xtream.Client, kind xtream.StreamType, batch string) TypeResult {
	res := TypeResult{Type: kind}
	log := s.log.With(zap.String("server", client.Server()), zap.String("type", string(kind)))
	fail := func(err error) TypeResult {
		metrics.RecordImport("xtream", resultLabel(err))
		log.Warn("panel import failed", zap.Error(err))
		res.Err, res.Error = err, err.Error()
		return res
	}

	channels, err := s.panelChannels(ctx, client, kind, batch)
	if err != nil {
		return fail(err)
	}
	res.Streams = len(channels)
	if len(channels) == 0 {
		log.Info("panel catalog empty")
		return res
	}

	now := s.now()
	pl := &models.Playlist{
		ID:          fmt.Sprintf("xtream_%s_%s", kind, uuid.NewString()),
		Name:        fmt.Sprintf("%s - %s", client.Username(), kind.Label()),
		URL:         client.PlaylistURL(kind),
		SourceType:  models.SourceTypeXtream,
		MediaType:   kind.MediaType(),
		Channels:    channels,
		LastUpdated: now,
		CreatedAt:   now,
	}
	if err := s.store.SavePlaylist(ctx, pl); err != nil {
		return fail(fmt.Errorf("SavePlaylist: %w", err))
	}
	metrics.RecordImport("xtream", "ok")
	metrics.RecordChannels("xtream", len(channels))
	log.Info("panel catalog imported", zap.String("playlist_id", pl.ID), zap.Int("channels", len(channels)))
	sum := pl.Summarize()
	res.Playlist = &sum
	return res
}

// panelChannels fetches one catalog of a panel and converts it to channels,
// naming categories from the panel's category list when it is available.
func (s *Service) panelChannels(ctx context.Context, client *xtream.Client, kind xtream.StreamType, batch string) ([]models.Channel, error) {
	streams, err := client.Streams(ctx, kind, "")
	if err != nil {
		return nil, err
	}
	if len(streams) == 0 {
		return nil, nil
	}
	categories, err := client.Categories(ctx, kind)
	if err != nil {
		// names are cosmetic; fall back to the type label
		s.log.Warn("panel categories unavailable",
			zap.String("server", client.Server()),
			zap.String("type", string(kind)),
			zap.Error(err))
	}
	return client.ToChannels(streams, kind, xtream.CategoryNames(categories), batch), nil
}
