// Package transport is the HTTP GET primitive shared by the playlist fetcher
// and the panel client. Each call owns its request and response; nothing is
// retried and no deadline is imposed beyond what the caller's context and
// http.Client carry.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/voyagen/popcornplayer/internal/metrics"
	"go.uber.org/zap"
)

// Getter fetches the body of a successful (2xx) GET response.
type Getter interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements Getter on top of a Doer.
type Client struct {
	doer      Doer
	userAgent string
	log       *zap.Logger
}

// New returns a Client. userAgent is optional; log may be nil.
func New(doer Doer, userAgent string, log *zap.Logger) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{doer: doer, userAgent: userAgent, log: log.Named("transport")}
}

// Get performs a single GET. Transport failures and non-2xx statuses are
// returned as *FetchError.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	safe := Redact(rawURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: safe, Err: fmt.Errorf("NewRequest: %w", scrub(err))}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		metrics.RecordFetchError("transport")
		c.log.Debug("request failed", zap.String("url", safe), zap.Error(scrub(err)))
		return nil, &FetchError{URL: safe, Err: scrub(err)}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.Debug("close response body", zap.String("url", safe), zap.Error(closeErr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordFetchError("status")
		c.log.Debug("unexpected status", zap.String("url", safe), zap.Int("status", resp.StatusCode))
		return nil, &FetchError{URL: safe, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordFetchError("read")
		return nil, &FetchError{URL: safe, Err: fmt.Errorf("ReadAll: %w", err)}
	}
	c.log.Debug("fetched", zap.String("url", safe), zap.Int("bytes", len(body)))
	return body, nil
}

// scrub redacts the URL embedded in *url.Error so credentials carried in
// query strings or panel paths never reach error messages.
func scrub(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = Redact(ue.URL)
	}
	return err
}
