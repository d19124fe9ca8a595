package api

import (
	"net/http"

	"github.com/seenimoa/newsdesk/internal/config"
)

// handleGetConfigKeys reports which upstream credentials are configured.
// Values are masked.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}
