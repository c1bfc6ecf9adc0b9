package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/clearlane/invoice-extractor/internal/agent"
	"github.com/clearlane/invoice-extractor/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("response encode failed", zap.Error(err))
	}
}

// writeError maps pipeline errors onto HTTP statuses. Upstream agent failures
// surface as gateway errors so callers can tell them from bad input.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := ""

	var appErr *common.AppError
	var apiErr *agent.APIError
	var timeoutErr *agent.PollTimeoutError
	var workflowErr *agent.WorkflowError

	switch {
	case errors.As(err, &timeoutErr):
		status = http.StatusGatewayTimeout
		code = "POLL_TIMEOUT"
	case errors.As(err, &workflowErr):
		status = http.StatusBadGateway
		code = "WORKFLOW_FAILED"
	case errors.As(err, &apiErr):
		status = http.StatusBadGateway
		code = "AGENT_ERROR"
	case errors.As(err, &appErr):
		code = appErr.Code
		switch {
		case errors.Is(err, common.ErrInvalidDocument), errors.Is(err, common.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, common.ErrNotFound):
			status = http.StatusNotFound
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	} else {
		s.logger.Warn("request rejected", zap.Error(err))
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}
