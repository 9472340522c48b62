package api

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Services  healthServices `json:"services"`
}

type healthServices struct {
	Database string `json:"database"`
	FloorJob string `json:"floorJob"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "connected"
	if err := s.pool.Ping(r.Context()); err != nil {
		dbStatus = "disconnected"
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services: healthServices{
			Database: dbStatus,
			FloorJob: s.floorJobStatus(),
		},
	})
}

// floorJobStatus reports the floor-price scheduler's state. No attached job
// means none was configured.
func (s *Server) floorJobStatus() string {
	if s.floorJob == nil {
		return "disabled"
	}
	if s.floorJob.Running() {
		return "running"
	}
	return "stopped"
}
