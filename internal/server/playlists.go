package server

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/voyagen/popcornplayer/internal/models"
	"github.com/voyagen/popcornplayer/internal/service"
	"github.com/voyagen/popcornplayer/internal/transport"
)

// redactSummary hides panel credentials embedded in a playlist URL.
func redactSummary(sum models.Summary) models.Summary {
	sum.URL = transport.Redact(sum.URL)
	return sum
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.store.ListPlaylists(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	out := make([]models.Summary, len(playlists))
	for i, sum := range playlists {
		out[i] = redactSummary(sum)
	}
	s.writeJSON(w, http.StatusOK, out)
}

type importPlaylistRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (s *Server) handleImportPlaylist(w http.ResponseWriter, r *http.Request) {
	var req importPlaylistRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}
	if req.URL == "" {
		s.writeErr(w, fmt.Errorf("%w: url is required", service.ErrInvalidInput))
		return
	}
	if u, err := url.ParseRequestURI(req.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		s.writeErr(w, fmt.Errorf("%w: url must be a valid http or https URL", service.ErrInvalidInput))
		return
	}

	pl, err := s.svc.ImportPlaylist(r.Context(), req.URL, req.Name)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, redactSummary(pl.Summarize()))
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	pl, err := s.store.GetPlaylist(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if pl.Channels == nil {
		pl.Channels = []models.Channel{}
	}
	pl.URL = transport.Redact(pl.URL)
	s.writeJSON(w, http.StatusOK, pl)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RemovePlaylist(r.Context(), r.PathValue("id")); err != nil {
		s.writeErr(w, err)
		return
	}
	writeNoContent(w)
}

// handleRefreshPlaylist refreshes synchronously, or queues the refresh for
// the worker with ?async=true.
func (s *Server) handleRefreshPlaylist(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if r.URL.Query().Get("async") == "true" {
		if err := s.svc.EnqueueRefresh(r.Context(), id); err != nil {
			s.writeErr(w, err)
			return
		}
		s.writeJSON(w, http.StatusAccepted, map[string]any{
			"playlist_id": id,
			"queued":      true,
		})
		return
	}

	pl, err := s.svc.RefreshPlaylist(r.Context(), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"playlist_id":   pl.ID,
		"channel_count": len(pl.Channels),
		"refreshed":     true,
	})
}
