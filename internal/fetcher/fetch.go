package fetcher

import (
	"context"
	"fmt"

	"github.com/voyagen/popcornplayer/internal/transport"
)

// FetchContent retrieves the raw playlist text at url with a single GET.
// Failures are *transport.FetchError and are never retried here.
func FetchContent(ctx context.Context, g transport.Getter, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("playlist URL is required")
	}
	body, err := g.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchM3U fetches url and parses it.
func FetchM3U(ctx context.Context, g transport.Getter, url string) ([]Entry, ParseStats, error) {
	content, err := FetchContent(ctx, g, url)
	if err != nil {
		return nil, ParseStats{}, err
	}
	entries, stats := ParseWithStats(content)
	return entries, stats, nil
}
