// Package server provides the HTTP server and routing for Stresswatch.
package server

import (
	"encoding/json"
	"net/http"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dataLoaded := false
	if count, err := s.customerRepo.Count(); err == nil && count > 0 {
		dataLoaded = true
	}

	response := map[string]interface{}{
		"status":        "healthy",
		"version":       "1.0.0",
		"service":       "stresswatch",
		"data_loaded":   dataLoaded,
		"model_trained": s.service.Ready(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleBackupTrigger handles POST /api/system/backup. Runs a backup
// synchronously and reports the outcome.
func (s *Server) handleBackupTrigger(w http.ResponseWriter, r *http.Request) {
	if s.backup == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"error": "backups are not configured",
		})
		return
	}

	if err := s.backup.CreateAndUploadBackup(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("Manual backup failed")
		s.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "backup failed",
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "completed",
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
