package xtream

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/voyagen/popcornplayer/internal/models"
	"github.com/voyagen/popcornplayer/internal/transport"
)

// StreamURL returns the direct-play address of a stream:
//
//	live:   <server>/live/<user>/<pass>/<id>.ts
//	vod:    <server>/movie/<user>/<pass>/<id>.mp4
//	series: <server>/series/<user>/<pass>/<id>.mp4
//
// Unknown types use the live form.
func (c *Client) StreamURL(streamID int64, kind StreamType) string {
	root, ext := "live", "ts"
	switch kind {
	case VOD:
		root, ext = "movie", "mp4"
	case Series:
		root, ext = "series", "mp4"
	}
	return fmt.Sprintf("%s/%s/%s/%s/%d.%s", c.creds.Server, root,
		url.PathEscape(c.creds.Username), url.PathEscape(c.creds.Password), streamID, ext)
}

// PlaylistURL returns the panel's bulk M3U export address for kind. It is not
// fetched here; the result can be fed to the playlist fetcher.
func (c *Client) PlaylistURL(kind StreamType) string {
	output := "m3u8"
	if kind == Live {
		output = "ts"
	}
	return fmt.Sprintf("%s/get.php?username=%s&password=%s&type=m3u_plus&output=%s",
		c.creds.Server, url.QueryEscape(c.creds.Username), url.QueryEscape(c.creds.Password), output)
}

// CredentialsFromPlaylistURL recovers the credentials embedded in a URL built
// by PlaylistURL.
func CredentialsFromPlaylistURL(rawURL string) (Credentials, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Credentials{}, fmt.Errorf("parse playlist url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" || !strings.HasSuffix(u.Path, "/get.php") {
		return Credentials{}, fmt.Errorf("not a panel playlist url: %s", transport.Redact(rawURL))
	}
	q := u.Query()
	return Credentials{
		Server:   u.Scheme + "://" + u.Host + strings.TrimSuffix(u.Path, "/get.php"),
		Username: q.Get("username"),
		Password: q.Get("password"),
	}, nil
}

var logoEscaper = strings.NewReplacer(`"`, "%22", `'`, "%27", "\r", "", "\n", "")
var groupEscaper = strings.NewReplacer(`"`, "", `'`, "", "\r", "", "\n", "")

// GenerateM3U renders streams as an M3U document whose entries parse back to
// the same name, logo and group (the category id).
func (c *Client) GenerateM3U(streams []Stream, kind StreamType) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for _, s := range streams {
		b.WriteString("#EXTINF:-1")
		if icon := s.Icon(); icon != "" {
			b.WriteString(` tvg-logo="`)
			b.WriteString(logoEscaper.Replace(icon))
			b.WriteByte('"')
		}
		b.WriteString(` group-title="`)
		b.WriteString(groupEscaper.Replace(string(s.CategoryID)))
		b.WriteString(`",`)
		b.WriteString(s.DisplayName())
		b.WriteByte('\n')
		b.WriteString(c.StreamURL(s.ID(), kind))
		b.WriteByte('\n')
	}
	return b.String()
}

// ToChannels converts panel streams of one type into channels. categoryNames
// maps category ids to display names; unmapped streams get kind.Label().
// Ids are unique per batch and never derived from panel data.
func (c *Client) ToChannels(streams []Stream, kind StreamType, categoryNames map[string]string, batch string) []models.Channel {
	channels := make([]models.Channel, len(streams))
	for i, s := range streams {
		category := categoryNames[string(s.CategoryID)]
		if category == "" {
			category = kind.Label()
		}
		var logo *string
		if icon := s.Icon(); icon != "" {
			logo = &icon
		}
		channels[i] = models.Channel{
			ID:        fmt.Sprintf("xtream_%s_%s_%d", kind, batch, i),
			Name:      s.DisplayName(),
			URL:       c.StreamURL(s.ID(), kind),
			Logo:      logo,
			Category:  category,
			MediaType: kind.MediaType(),
		}
	}
	return channels
}

// CategoryNames indexes categories by id.
func CategoryNames(categories []Category) map[string]string {
	names := make(map[string]string, len(categories))
	for _, cat := range categories {
		if cat.CategoryName != "" {
			names[string(cat.CategoryID)] = cat.CategoryName
		}
	}
	return names
}
