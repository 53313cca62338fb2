package store

import (
	"context"
	"errors"

	"github.com/voyagen/popcornplayer/internal/models"
)

// ErrNotFound is returned when a playlist or channel does not exist.
var ErrNotFound = errors.New("not found")

// Store defines persistence for playlists and their channels.
type Store interface {
	// SavePlaylist inserts or updates the playlist and replaces its channels
	// with p.Channels in one step. On error nothing is changed.
	SavePlaylist(ctx context.Context, p *models.Playlist) error
	// GetPlaylist returns a playlist with its channels in import order.
	GetPlaylist(ctx context.Context, id string) (*models.Playlist, error)
	// ListPlaylists returns all playlists without channels, oldest first.
	ListPlaylists(ctx context.Context) ([]models.Summary, error)
	// DeletePlaylist removes a playlist and all of its channels.
	DeletePlaylist(ctx context.Context, id string) error

	// GetChannel returns a single channel by id.
	GetChannel(ctx context.Context, id string) (*models.Channel, error)
	// ListChannels returns channels matching the filter and the total count (before limit/offset).
	ListChannels(ctx context.Context, filter ChannelFilter) ([]models.Channel, int, error)
	// ListCategories returns distinct categories, optionally for one playlist.
	ListCategories(ctx context.Context, playlistID string) ([]models.Category, error)
	// SetChannelFavorite sets the favorite flag on a channel.
	SetChannelFavorite(ctx context.Context, id string, favorite bool) error
}

// ChannelFilter holds optional filters for listing channels.
type ChannelFilter struct {
	PlaylistID string
	Category   string
	MediaType  *int16
	Favorite   *bool
	Search     string // case-insensitive substring match on channel name
	Limit      int    // default 50, max 200
	Offset     int
}

// Normalize applies the default and maximum limit.
func (f ChannelFilter) Normalize() ChannelFilter {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
