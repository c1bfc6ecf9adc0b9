package server

import (
	"net/http"
)

// handleHealth reports the server state plus a live probe of the upstream
// agent. The probe never fails the endpoint; a down agent is reported, not
// treated as a server fault.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.agent.CheckConnection(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"agent":  status,
	})
}
