package fetcher

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/voyagen/popcornplayer/internal/models"
)

// ToChannels maps parsed entries to channels. Every call gets its own batch id,
// so ids are unique within the batch and across batches. It never drops entries.
func ToChannels(entries []Entry) []models.Channel {
	batch := NewBatchID()
	channels := make([]models.Channel, len(entries))
	for i, e := range entries {
		category := models.DefaultCategory
		if e.Group != nil && *e.Group != "" {
			category = *e.Group
		}
		channels[i] = models.Channel{
			ID:        fmt.Sprintf("imported_%s_%d", batch, i),
			Name:      e.Name,
			URL:       e.URL,
			Logo:      e.Logo,
			Category:  category,
			MediaType: mediaTypeFromURL(e.URL),
		}
	}
	return channels
}

// NewBatchID returns a time-ordered identifier for one import batch.
func NewBatchID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func mediaTypeFromURL(url string) int16 {
	lower := strings.ToLower(url)
	if strings.HasSuffix(lower, ".mp4") || strings.HasSuffix(lower, ".mkv") {
		return models.MediaTypeMovie
	}
	return models.MediaTypeLivestream
}
