package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/voyagen/popcornplayer/internal/models"
	"github.com/voyagen/popcornplayer/internal/service"
	"github.com/voyagen/popcornplayer/internal/store"
)

// parseChannelFilter reads the /api/channels query parameters.
func parseChannelFilter(q url.Values) (store.ChannelFilter, error) {
	filter := store.ChannelFilter{
		PlaylistID: q.Get("playlist_id"),
		Category:   q.Get("category"),
		Search:     q.Get("search"),
	}
	invalid := func(name, v string) error {
		return fmt.Errorf("%w: invalid %s: %s", service.ErrInvalidInput, name, v)
	}

	if v := q.Get("media_type"); v != "" {
		n, err := strconv.ParseInt(v, 10, 16)
		if err != nil {
			return filter, invalid("media_type", v)
		}
		mt := int16(n)
		filter.MediaType = &mt
	}
	if v := q.Get("favorite"); v != "" {
		switch v {
		case "true", "1":
			fav := true
			filter.Favorite = &fav
		case "false", "0":
			fav := false
			filter.Favorite = &fav
		default:
			return filter, fmt.Errorf("%w: invalid favorite: %s (use true or false)", service.ErrInvalidInput, v)
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, invalid("limit", v)
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, invalid("offset", v)
		}
		filter.Offset = n
	}
	return filter.Normalize(), nil
}

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	filter, err := parseChannelFilter(r.URL.Query())
	if err != nil {
		s.writeErr(w, err)
		return
	}

	channels, total, err := s.store.ListChannels(r.Context(), filter)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if channels == nil {
		channels = []models.Channel{}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"channels": channels,
		"total":    total,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

func (s *Server) handleGetChannel(w http.ResponseWriter, r *http.Request) {
	ch, err := s.store.GetChannel(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ch)
}

type favoriteRequest struct {
	Favorite bool `json:"favorite"`
}

func (s *Server) handleSetFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req favoriteRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}
	if err := s.svc.SetFavorite(r.Context(), id, req.Favorite); err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"channel_id": id,
		"favorite":   req.Favorite,
	})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategories(r.Context(), r.URL.Query().Get("playlist_id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	s.writeJSON(w, http.StatusOK, categories)
}
