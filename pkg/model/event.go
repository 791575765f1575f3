package model

import "time"

// Event represents an inbound event. It is constructed once by the ingress
// layer and consumed read-only by the engine; nothing downstream mutates it.
type Event struct {
	ID        string                 `json:"event_id"`
	Type      string                 `json:"event_type"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}
