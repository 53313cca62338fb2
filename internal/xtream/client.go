// Package xtream is a client for Xtream-Codes-style panels: query-parameter
// authenticated JSON catalogs under /player_api.php plus the panel's
// well-known direct-play and bulk-export addresses.
package xtream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/voyagen/popcornplayer/internal/metrics"
	"github.com/voyagen/popcornplayer/internal/transport"
)

// Credentials identify an account on a panel.
type Credentials struct {
	Server   string `json:"server"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Normalize trims the fields, prefixes http:// when the server has no scheme
// and strips trailing slashes.
func (c Credentials) Normalize() (Credentials, error) {
	c.Server = strings.TrimSpace(c.Server)
	c.Username = strings.TrimSpace(c.Username)
	if c.Server == "" {
		return c, errors.New("server is required")
	}
	if c.Username == "" {
		return c, errors.New("username is required")
	}
	if !strings.Contains(c.Server, "://") {
		c.Server = "http://" + c.Server
	}
	c.Server = strings.TrimRight(c.Server, "/")
	if _, err := url.Parse(c.Server); err != nil {
		return c, fmt.Errorf("invalid server: %w", err)
	}
	return c, nil
}

// Client holds one set of normalized credentials. It has no other state, so
// concurrent calls are safe.
type Client struct {
	creds Credentials
	get   transport.Getter
}

// New normalizes creds and returns a client that issues requests through g.
func New(creds Credentials, g transport.Getter) (*Client, error) {
	n, err := creds.Normalize()
	if err != nil {
		return nil, err
	}
	return &Client{creds: n, get: g}, nil
}

// Server returns the normalized base URL.
func (c *Client) Server() string { return c.creds.Server }

// Username returns the account name.
func (c *Client) Username() string { return c.creds.Username }

// apiURL builds <server>/player_api.php?username=..&password=..&action=..&<params>.
// Extra params are appended in key order with values formatted by fmt.
func (c *Client) apiURL(action string, params map[string]any) string {
	var b strings.Builder
	b.WriteString(c.creds.Server)
	b.WriteString("/player_api.php?username=")
	b.WriteString(url.QueryEscape(c.creds.Username))
	b.WriteString("&password=")
	b.WriteString(url.QueryEscape(c.creds.Password))
	b.WriteString("&action=")
	b.WriteString(url.QueryEscape(action))

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte('&')
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(fmt.Sprint(params[k])))
	}
	return b.String()
}

func (c *Client) getJSON(ctx context.Context, action string, params map[string]any, dst any) error {
	metrics.RecordPanelRequest(action)
	body, err := c.get.Get(ctx, c.apiURL(action, params))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &DecodeError{Action: action, Err: err}
	}
	return nil
}

// GetUserInfo calls get_account_info. An auth value other than 1 is an *AuthError.
func (c *Client) GetUserInfo(ctx context.Context) (*UserInfo, error) {
	var info UserInfo
	if err := c.getJSON(ctx, "get_account_info", nil, &info); err != nil {
		return nil, err
	}
	if info.UserInfo.Auth != 1 {
		return nil, &AuthError{Message: info.UserInfo.Message}
	}
	return &info, nil
}

// TestConnection reports whether the panel is reachable and accepts the
// credentials. It never returns an error.
func (c *Client) TestConnection(ctx context.Context) bool {
	info, err := c.GetUserInfo(ctx)
	return err == nil && info.UserInfo.Auth == 1
}

// GetLiveCategories calls get_live_categories.
func (c *Client) GetLiveCategories(ctx context.Context) ([]Category, error) {
	return c.categories(ctx, "get_live_categories")
}

// GetVodCategories calls get_vod_categories.
func (c *Client) GetVodCategories(ctx context.Context) ([]Category, error) {
	return c.categories(ctx, "get_vod_categories")
}

// GetSeriesCategories calls get_series_categories.
func (c *Client) GetSeriesCategories(ctx context.Context) ([]Category, error) {
	return c.categories(ctx, "get_series_categories")
}

// Categories dispatches to the category call for kind.
func (c *Client) Categories(ctx context.Context, kind StreamType) ([]Category, error) {
	switch kind {
	case VOD:
		return c.GetVodCategories(ctx)
	case Series:
		return c.GetSeriesCategories(ctx)
	default:
		return c.GetLiveCategories(ctx)
	}
}

func (c *Client) categories(ctx context.Context, action string) ([]Category, error) {
	var out []Category
	if err := c.getJSON(ctx, action, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetLiveStreams calls get_live_streams. An empty categoryID requests the whole catalog.
func (c *Client) GetLiveStreams(ctx context.Context, categoryID string) ([]Stream, error) {
	return c.streams(ctx, "get_live_streams", categoryID)
}

// GetVodStreams calls get_vod_streams. An empty categoryID requests the whole catalog.
func (c *Client) GetVodStreams(ctx context.Context, categoryID string) ([]Stream, error) {
	return c.streams(ctx, "get_vod_streams", categoryID)
}

// GetSeries calls get_series. An empty categoryID requests the whole catalog.
func (c *Client) GetSeries(ctx context.Context, categoryID string) ([]Stream, error) {
	return c.streams(ctx, "get_series", categoryID)
}

// Streams dispatches to the stream listing for kind.
func (c *Client) Streams(ctx context.Context, kind StreamType, categoryID string) ([]Stream, error) {
	switch kind {
	case VOD:
		return c.GetVodStreams(ctx, categoryID)
	case Series:
		return c.GetSeries(ctx, categoryID)
	default:
		return c.GetLiveStreams(ctx, categoryID)
	}
}

func (c *Client) streams(ctx context.Context, action, categoryID string) ([]Stream, error) {
	var params map[string]any
	if categoryID != "" {
		params = map[string]any{"category_id": categoryID}
	}
	var out []Stream
	if err := c.getJSON(ctx, action, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}
