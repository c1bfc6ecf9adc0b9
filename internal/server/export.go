package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/clearlane/invoice-extractor/internal/common"
	"github.com/clearlane/invoice-extractor/internal/extract"
)

type exportRequest struct {
	LineItems []extract.LineItem `json:"line_items"`
	Filename  string             `json:"filename"`
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeExportRequest(w, r)
	if !ok {
		return
	}

	data, err := s.exporter.ExportCSV(req.LineItems)
	if err != nil {
		s.writeError(w, err)
		return
	}
	serveAttachment(w, data, "text/csv", exportFilename(req.Filename, "csv"))
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeExportRequest(w, r)
	if !ok {
		return
	}

	data, err := s.exporter.ExportXLSX(req.LineItems)
	if err != nil {
		s.writeError(w, err)
		return
	}
	serveAttachment(w, data,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		exportFilename(req.Filename, "xlsx"))
}

func (s *Server) decodeExportRequest(w http.ResponseWriter, r *http.Request) (exportRequest, bool) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, common.NewAppError("INVALID_INPUT",
			"invalid JSON body", common.ErrInvalidInput))
		return req, false
	}
	if len(req.LineItems) == 0 {
		s.writeError(w, common.NewAppError("INVALID_INPUT",
			"line_items is required", common.ErrInvalidInput))
		return req, false
	}
	return req, true
}

func serveAttachment(w http.ResponseWriter, data []byte, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func exportFilename(requested, ext string) string {
	if requested != "" {
		return requested + "." + ext
	}
	return fmt.Sprintf("line-items-%s.%s", time.Now().Format("2006-01-02"), ext)
}
