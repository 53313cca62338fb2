package models

// Channel is a single playable entry belonging to a playlist.
// Fields other than Favorite are fixed at import time.
type Channel struct {
	ID         string  `json:"id"`
	PlaylistID string  `json:"playlist_id,omitempty"`
	Name       string  `json:"name"`
	URL        string  `json:"url"`
	Logo       *string `json:"logo,omitempty"`
	Category   string  `json:"category"`
	MediaType  int16   `json:"media_type"`
	Favorite   bool    `json:"favorite"`
}
