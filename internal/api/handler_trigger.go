package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quiverhq/quiver/pkg/model"
)

type triggerListResponse struct {
	Triggers []string                      `json:"triggers"`
	Stats    map[string]model.TriggerStats `json:"stats"`
}

type triggerMutationResponse struct {
	Status  string `json:"status"`
	Trigger string `json:"trigger"`
}

func (s *Server) handleListTriggers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, triggerListResponse{
		Triggers: s.registry.List(),
		Stats:    s.registry.Stats(),
	})
}

// handlePutTrigger adds or replaces a trigger. The path name wins over any
// name carried in the body.
func (s *Server) handlePutTrigger(w http.ResponseWriter, r *http.Request) {
	var def model.TriggerDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	def.Name = r.PathValue("name")

	if err := s.registry.AddOrReplace(&def); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, triggerMutationResponse{Status: "created", Trigger: def.Name})
}

func (s *Server) handleDeleteTrigger(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !s.registry.Remove(name) {
		http.Error(w, "Trigger not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, triggerMutationResponse{Status: "deleted", Trigger: name})
}
