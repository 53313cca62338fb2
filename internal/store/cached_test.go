package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/voyagen/popcornplayer/internal/cache"
	"go.uber.org/zap"
)

func newCachedStore(t *testing.T) (*CachedStore, *Memory, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := cache.New("redis://" + mr.Addr())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close() })
	inner := NewMemory()
	return NewCachedStore(inner, r, zap.NewNop()), inner, mr
}

func TestCachedGetPlaylist(t *testing.T) {
	c, inner, mr := newCachedStore(t)
	ctx := context.Background()
	if err := c.SavePlaylist(ctx, samplePlaylist("p1")); err != nil {
		t.Fatal(err)
	}

	got, err := c.GetPlaylist(ctx, "p1")
	if err != nil || len(got.Channels) != 3 {
		t.Fatalf("GetPlaylist = %+v, %v", got, err)
	}
	if !mr.Exists(keyPlaylist("p1")) {
		t.Fatal("playlist not cached")
	}

	// a write that bypasses the cache is not seen until the key is dropped
	if err := inner.SetChannelFavorite(ctx, "p1_1", true); err != nil {
		t.Fatal(err)
	}
	got, _ = c.GetPlaylist(ctx, "p1")
	if got.Channels[1].Favorite {
		t.Fatal("expected the cached copy")
	}

	if err := c.SetChannelFavorite(ctx, "p1_0", true); err != nil {
		t.Fatal(err)
	}
	got, err = c.GetPlaylist(ctx, "p1")
	if err != nil || !got.Channels[0].Favorite || !got.Channels[1].Favorite {
		t.Errorf("after SetChannelFavorite = %+v, %v", got.Channels, err)
	}
	ch, err := c.GetChannel(ctx, "p1_0")
	if err != nil || !ch.Favorite {
		t.Errorf("GetChannel = %+v, %v", ch, err)
	}
}

func TestCachedListInvalidation(t *testing.T) {
	c, _, _ := newCachedStore(t)
	ctx := context.Background()
	if err := c.SavePlaylist(ctx, samplePlaylist("p1")); err != nil {
		t.Fatal(err)
	}
	if list, _ := c.ListPlaylists(ctx); len(list) != 1 {
		t.Fatalf("list = %+v", list)
	}
	if chs, total, _ := c.ListChannels(ctx, ChannelFilter{}); total != 3 || len(chs) != 3 {
		t.Fatalf("channels = %d/%d", len(chs), total)
	}

	if err := c.SavePlaylist(ctx, samplePlaylist("p2")); err != nil {
		t.Fatal(err)
	}
	if list, _ := c.ListPlaylists(ctx); len(list) != 2 {
		t.Errorf("after save: list = %+v", list)
	}
	if _, total, _ := c.ListChannels(ctx, ChannelFilter{}); total != 6 {
		t.Errorf("after save: total = %d", total)
	}

	if err := c.DeletePlaylist(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	if list, _ := c.ListPlaylists(ctx); len(list) != 1 || list[0].ID != "p2" {
		t.Errorf("after delete: list = %+v", list)
	}
	if cats, _ := c.ListCategories(ctx, ""); len(cats) != 2 {
		t.Errorf("categories = %+v", cats)
	}
}

func TestCachedFallsBackWithoutRedis(t *testing.T) {
	c, _, mr := newCachedStore(t)
	ctx := context.Background()
	mr.Close()

	if err := c.SavePlaylist(ctx, samplePlaylist("p1")); err != nil {
		t.Fatal(err)
	}
	got, err := c.GetPlaylist(ctx, "p1")
	if err != nil || got.ID != "p1" {
		t.Errorf("GetPlaylist = %+v, %v", got, err)
	}
}
