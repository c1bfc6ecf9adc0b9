package server

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/clearlane/invoice-extractor/internal/common"
	"github.com/clearlane/invoice-extractor/internal/document"
	"github.com/clearlane/invoice-extractor/internal/extract"
)

// handleExtract accepts a multipart upload with the PDF in the "document"
// field and extraction options in the remaining form fields.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.Server.MaxUploadBytes); err != nil {
		s.writeError(w, common.NewAppError("INVALID_INPUT",
			"expected multipart form with a document field", common.ErrInvalidInput))
		return
	}

	file, _, err := r.FormFile("document")
	if err != nil {
		s.writeError(w, common.NewAppError("INVALID_INPUT",
			"missing document field", common.ErrInvalidInput))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, common.WrapError(err, "read uploaded document"))
		return
	}

	req := extract.Request{
		Document:           data,
		DocumentType:       r.FormValue("document_type"),
		CustomerNumber:     r.FormValue("customer_number"),
		CustomInstructions: r.FormValue("custom_instructions"),
		ClearCache:         r.FormValue("clear_cache") == "true",
	}
	if fields := strings.TrimSpace(r.FormValue("extract_fields")); fields != "" {
		for _, f := range strings.Split(fields, ",") {
			if f = strings.TrimSpace(f); f != "" {
				req.ExtractFields = append(req.ExtractFields, f)
			}
		}
	}

	s.runExtract(w, r, req)
}

type extractBase64Request struct {
	Document           string   `json:"document"`
	DocumentType       string   `json:"document_type"`
	CustomerNumber     string   `json:"customer_number"`
	CustomInstructions string   `json:"custom_instructions"`
	ExtractFields      []string `json:"extract_fields"`
	ClearCache         bool     `json:"clear_cache"`
}

// handleExtractBase64 accepts a JSON body carrying the PDF as base64, with or
// without a data URL prefix.
func (s *Server) handleExtractBase64(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)

	var body extractBase64Request
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, common.NewAppError("INVALID_INPUT",
			"invalid JSON body", common.ErrInvalidInput))
		return
	}
	if body.Document == "" {
		s.writeError(w, common.NewAppError("INVALID_INPUT",
			"document is required", common.ErrInvalidInput))
		return
	}

	data, err := base64.StdEncoding.DecodeString(document.StripDataURL(body.Document))
	if err != nil {
		s.writeError(w, common.NewAppError("INVALID_INPUT",
			"document is not valid base64", common.ErrInvalidInput))
		return
	}

	s.runExtract(w, r, extract.Request{
		Document:           data,
		DocumentType:       body.DocumentType,
		CustomerNumber:     body.CustomerNumber,
		CustomInstructions: body.CustomInstructions,
		ExtractFields:      body.ExtractFields,
		ClearCache:         body.ClearCache,
	})
}

func (s *Server) runExtract(w http.ResponseWriter, r *http.Request, req extract.Request) {
	result, err := s.extractor.Extract(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}
