package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"webrag/internal/usecase"
)

type inputRequest struct {
	Input string `json:"input"`
}

type inputResponse struct {
	Kind    usecase.Kind  `json:"kind"`
	Text    string        `json:"text"`
	Context string        `json:"context,omitempty"`
	State   usecase.State `json:"state"`
}

type sourceStatus struct {
	URL       string    `json:"url"`
	Chunks    int       `json:"chunks"`
	IndexedAt time.Time `json:"indexed_at"`
}

type statusResponse struct {
	State      usecase.State `json:"state"`
	Source     *sourceStatus `json:"source,omitempty"`
	Chunks     int           `json:"chunks"`
	Vocabulary int           `json:"vocabulary"`
	Generation uint64        `json:"generation"`
}

// handleInput runs one input through the chain. Recoverable chain failures
// are reported in the body with status 200.
func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		s.respondError(w, http.StatusBadRequest, "input is required")
		return
	}

	s.logger.Debug("input request", zap.Bool("source", usecase.IsSourceURL(req.Input)))
	res := s.chain.ProcessInput(r.Context(), req.Input)
	if !res.OK() {
		s.logger.Debug("input failed", zap.Stringer("kind", res.Kind), zap.Error(res.Err))
	}

	s.respondJSON(w, http.StatusOK, inputResponse{
		Kind:    res.Kind,
		Text:    res.Text,
		Context: res.Context,
		State:   s.chain.State(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.chain.Status()
	resp := statusResponse{
		State:      status.State,
		Chunks:     status.Stats.Chunks,
		Vocabulary: status.Stats.Vocabulary,
		Generation: status.Stats.Generation,
	}
	if src := status.Source; src != nil {
		resp.Source = &sourceStatus{
			URL:       src.Location,
			Chunks:    src.Chunks,
			IndexedAt: src.IndexedAt,
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
