package models

import "time"

// Playlist is a named collection of channels from one source (an M3U URL or one
// stream type of a panel). Channels always holds the result of the last
// successful fetch.
type Playlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	SourceType  int16     `json:"source_type"`
	MediaType   int16     `json:"media_type"`
	Channels    []Channel `json:"channels,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary is a playlist without its channel list, as returned by list endpoints.
type Summary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	SourceType   int16     `json:"source_type"`
	MediaType    int16     `json:"media_type"`
	ChannelCount int       `json:"channel_count"`
	LastUpdated  time.Time `json:"last_updated"`
	CreatedAt    time.Time `json:"created_at"`
}

// Summarize drops the channel list and records its length.
func (p *Playlist) Summarize() Summary {
	return Summary{
		ID:           p.ID,
		Name:         p.Name,
		URL:          p.URL,
		SourceType:   p.SourceType,
		MediaType:    p.MediaType,
		ChannelCount: len(p.Channels),
		LastUpdated:  p.LastUpdated,
		CreatedAt:    p.CreatedAt,
	}
}

// Category is a distinct channel category with its channel count.
type Category struct {
	Name     string `json:"name"`
	Channels int    `json:"channels"`
}
