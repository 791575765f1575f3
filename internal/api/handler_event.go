package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/quiverhq/quiver/pkg/model"
)

type ingestResponse struct {
	Status  string `json:"status"`
	EventID string `json:"event_id"`
}

// handleIngestEvent accepts one event and submits it without waiting for
// trigger processing to finish.
func (s *Server) handleIngestEvent(w http.ResponseWriter, r *http.Request) {
	event, ok := s.decodeEvent(w, r)
	if !ok {
		return
	}
	s.engine.Submit(event)
	writeJSON(w, http.StatusAccepted, ingestResponse{Status: "accepted", EventID: event.ID})
}

// handleIngestEventSync accepts one event and blocks until every matched
// trigger has finished, so callers can read stats immediately after.
func (s *Server) handleIngestEventSync(w http.ResponseWriter, r *http.Request) {
	event, ok := s.decodeEvent(w, r)
	if !ok {
		return
	}
	s.engine.ProcessEvent(r.Context(), event)
	writeJSON(w, http.StatusOK, ingestResponse{Status: "processed", EventID: event.ID})
}

func (s *Server) decodeEvent(w http.ResponseWriter, r *http.Request) (*model.Event, bool) {
	var event model.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	if event.Type == "" {
		http.Error(w, "event_type is required", http.StatusBadRequest)
		return nil, false
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return &event, true
}
