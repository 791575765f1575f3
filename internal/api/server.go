// Package api exposes the HTTP ingress and the trigger admin surface.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/quiverhq/quiver/internal/registry"
	"github.com/quiverhq/quiver/pkg/model"
)

// Engine is the slice of the orchestrator the API needs.
type Engine interface {
	Submit(event *model.Event)
	ProcessEvent(ctx context.Context, event *model.Event)
}

type Server struct {
	log      *zap.Logger
	engine   Engine
	registry *registry.Registry
	mux      *http.ServeMux
}

func NewServer(log *zap.Logger, engine Engine, reg *registry.Registry) *Server {
	s := &Server{
		log:      log,
		engine:   engine,
		registry: reg,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	start := time.Now()
	s.mux.ServeHTTP(w, r)
	s.log.Debug("http request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Duration("duration", time.Since(start)))
}

func (s *Server) routes() {
	// Event ingestion
	s.mux.HandleFunc("POST /v1/events", s.handleIngestEvent)
	s.mux.HandleFunc("POST /v1/events/sync", s.handleIngestEventSync)

	// Trigger management
	s.mux.HandleFunc("GET /v1/triggers", s.handleListTriggers)
	s.mux.HandleFunc("PUT /v1/triggers/{name}", s.handlePutTrigger)
	s.mux.HandleFunc("DELETE /v1/triggers/{name}", s.handleDeleteTrigger)

	// Health Check
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
