package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clearlane/invoice-extractor/internal/common"
)

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	configs, err := s.customers.List()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"customers": configs,
		"count":     len(configs),
	})
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	customerNumber := chi.URLParam(r, "customerNumber")

	cfg, err := s.customers.Get(customerNumber)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if cfg == nil {
		s.writeError(w, common.NewAppError("NOT_FOUND",
			"no configuration for customer "+customerNumber, common.ErrNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, cfg)
}
