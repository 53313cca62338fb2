package server

import (
	"fmt"
	"net/http"

	"github.com/voyagen/popcornplayer/internal/service"
	"github.com/voyagen/popcornplayer/internal/xtream"
)

// panelRequest is the body of every /api/panels call. Credentials travel in
// the body so they never show up in access logs.
type panelRequest struct {
	Server     string `json:"server"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Type       string `json:"type"`
	CategoryID string `json:"category_id"`
	StreamID   int64  `json:"stream_id"`
}

func (req panelRequest) credentials() xtream.Credentials {
	return xtream.Credentials{Server: req.Server, Username: req.Username, Password: req.Password}
}

// decodePanel reads the body and builds a client plus the requested stream type.
func (s *Server) decodePanel(r *http.Request) (*xtream.Client, panelRequest, xtream.StreamType, error) {
	var req panelRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, req, "", err
	}
	kind, err := xtream.ParseStreamType(req.Type)
	if err != nil {
		return nil, req, "", fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}
	client, err := s.svc.PanelClient(req.credentials())
	if err != nil {
		return nil, req, "", err
	}
	return client, req, kind, nil
}

func (s *Server) handleImportPanel(w http.ResponseWriter, r *http.Request) {
	var req panelRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}
	res, err := s.svc.ImportPanel(r.Context(), req.credentials())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	status := http.StatusCreated
	if len(res.Imported()) == 0 {
		status = http.StatusOK
	}
	for i, tr := range res.Results {
		if tr.Playlist != nil {
			sum := redactSummary(*tr.Playlist)
			res.Results[i].Playlist = &sum
		}
	}
	s.writeJSON(w, status, res)
}

func (s *Server) handleTestPanel(w http.ResponseWriter, r *http.Request) {
	client, _, _, err := s.decodePanel(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": client.TestConnection(r.Context())})
}

func (s *Server) handlePanelAccount(w http.ResponseWriter, r *http.Request) {
	client, _, _, err := s.decodePanel(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	info, err := client.GetUserInfo(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handlePanelCategories(w http.ResponseWriter, r *http.Request) {
	client, _, kind, err := s.decodePanel(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	categories, err := client.Categories(r.Context(), kind)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if categories == nil {
		categories = []xtream.Category{}
	}
	s.writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handlePanelStreams(w http.ResponseWriter, r *http.Request) {
	client, req, kind, err := s.decodePanel(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	streams, err := client.Streams(r.Context(), kind, req.CategoryID)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if streams == nil {
		streams = []xtream.Stream{}
	}
	s.writeJSON(w, http.StatusOK, streams)
}

// handlePanelM3U renders a panel listing as an M3U document.
func (s *Server) handlePanelM3U(w http.ResponseWriter, r *http.Request) {
	client, req, kind, err := s.decodePanel(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	streams, err := client.Streams(r.Context(), kind, req.CategoryID)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "audio/x-mpegurl")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, client.GenerateM3U(streams, kind))
}

func (s *Server) handlePanelURLs(w http.ResponseWriter, r *http.Request) {
	client, req, kind, err := s.decodePanel(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	out := map[string]string{"playlist_url": client.PlaylistURL(kind)}
	if req.StreamID > 0 {
		out["stream_url"] = client.StreamURL(req.StreamID, kind)
	}
	s.writeJSON(w, http.StatusOK, out)
}
