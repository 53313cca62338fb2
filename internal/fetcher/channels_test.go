package fetcher

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/voyagen/popcornplayer/internal/models"
	"github.com/voyagen/popcornplayer/internal/transport"
)

func TestToChannels(t *testing.T) {
	entries := Parse(`#EXTM3U
#EXTINF:-1 tvg-logo="http://x/a.png" group-title="News",Channel A
http://stream/a.m3u8
#EXTINF:-1,Channel B
http://stream/b.m3u8
#EXTINF:-1 group-title="Films",Film
http://stream/film.MP4
`)
	chs := ToChannels(entries)
	if len(chs) != len(entries) {
		t.Fatalf("len = %d, want %d", len(chs), len(entries))
	}
	if chs[0].Category != "News" || chs[1].Category != models.DefaultCategory {
		t.Errorf("categories = %q, %q", chs[0].Category, chs[1].Category)
	}
	if chs[0].Logo == nil || *chs[0].Logo != "http://x/a.png" {
		t.Errorf("logo = %v", chs[0].Logo)
	}
	if chs[2].MediaType != models.MediaTypeMovie || chs[0].MediaType != models.MediaTypeLivestream {
		t.Errorf("media types = %d, %d", chs[0].MediaType, chs[2].MediaType)
	}
	seen := make(map[string]bool)
	for _, ch := range chs {
		if ch.ID == "" || seen[ch.ID] {
			t.Errorf("id %q empty or duplicate", ch.ID)
		}
		if !strings.HasPrefix(ch.ID, "imported_") {
			t.Errorf("id %q lacks prefix", ch.ID)
		}
		if ch.Favorite {
			t.Errorf("channel %q is favorite", ch.ID)
		}
		seen[ch.ID] = true
	}
}

func TestToChannelsBatchesDiffer(t *testing.T) {
	entries := []Entry{{Name: "A", URL: "http://h/a"}}
	a, b := ToChannels(entries), ToChannels(entries)
	if a[0].ID == b[0].ID {
		t.Fatalf("two batches produced the same id %q", a[0].ID)
	}
}

func TestToChannelsEmpty(t *testing.T) {
	if got := ToChannels(nil); len(got) != 0 {
		t.Fatalf("got %d channels", len(got))
	}
}

type stubGetter struct {
	body string
	err  error
	url  string
}

func (s *stubGetter) Get(_ context.Context, rawURL string) ([]byte, error) {
	s.url = rawURL
	return []byte(s.body), s.err
}

func TestFetchM3U(t *testing.T) {
	g := &stubGetter{body: "#EXTINF:-1,A\nhttp://h/a\n#EXTINF:-1,B"}
	entries, stats, err := FetchM3U(context.Background(), g, "http://h/list.m3u")
	if err != nil {
		t.Fatal(err)
	}
	if g.url != "http://h/list.m3u" {
		t.Errorf("fetched %q", g.url)
	}
	if len(entries) != 1 || stats.Descriptors != 2 || stats.Dropped != 1 {
		t.Errorf("entries=%d stats=%+v", len(entries), stats)
	}
}

func TestFetchContentErrors(t *testing.T) {
	if _, err := FetchContent(context.Background(), &stubGetter{}, ""); err == nil {
		t.Error("expected error for empty url")
	}
	fe := &transport.FetchError{URL: "http://h", StatusCode: 404}
	_, err := FetchContent(context.Background(), &stubGetter{err: fe}, "http://h")
	var got *transport.FetchError
	if !errors.As(err, &got) || got.StatusCode != 404 {
		t.Errorf("err = %v, want FetchError 404", err)
	}
}
