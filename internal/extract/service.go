package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clearlane/invoice-extractor/internal/agent"
	"github.com/clearlane/invoice-extractor/internal/common"
	"github.com/clearlane/invoice-extractor/internal/document"
	"github.com/clearlane/invoice-extractor/internal/instructions"
)

// Service runs the extraction pipeline: assemble instructions, submit, poll,
// extract output, normalize. One sequential invocation per request; requests
// in flight concurrently share nothing mutable.
type Service struct {
	agent  *agent.Client
	store  *instructions.Store
	logger *slog.Logger
}

func NewService(agentClient *agent.Client, store *instructions.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{agent: agentClient, store: store, logger: logger}
}

// Extract runs one document through the full pipeline.
func (s *Service) Extract(ctx context.Context, req Request) (*Result, error) {
	reqID := uuid.New().String()
	start := time.Now()

	if !document.IsPDF(req.Document) {
		return nil, common.NewAppError("INVALID_DOCUMENT",
			"document does not carry a PDF signature", common.ErrInvalidDocument)
	}

	if req.DocumentType == "" {
		req.DocumentType = "commercial_invoice"
	}

	// Best effort; a failed count must never fail the request.
	pageCount := document.CountPages(req.Document, s.logger)
	s.logger.Info("extract.start",
		"req_id", reqID,
		"document_type", req.DocumentType,
		"customer", req.CustomerNumber,
		"pages", pageCount,
		"bytes", len(req.Document),
	)

	instr := instructions.Build(instructions.BuildParams{
		CustomerNumber:     req.CustomerNumber,
		CustomInstructions: req.CustomInstructions,
		ExtractFields:      req.ExtractFields,
		PageCount:          pageCount,
		ClearCache:         req.ClearCache,
	}, s.store, s.logger)

	sub, err := s.agent.Submit(ctx, base64.StdEncoding.EncodeToString(req.Document), instr)
	if err != nil {
		return nil, fmt.Errorf("submit extraction job: %w", err)
	}

	body := sub.Immediate
	if body == nil {
		body, err = s.agent.Poll(ctx, sub.RunID, sub.WorkflowID)
		if err != nil {
			return nil, fmt.Errorf("poll run %s: %w", sub.RunID, err)
		}
	}

	raw := ExtractOutput(body, s.logger)
	items, summary := Normalize(raw.Items, documentContext(body, raw), s.logger)

	metadata := raw.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	for k, v := range summary {
		metadata[k] = v
	}

	result := &Result{
		LineItems: items,
		Metadata:  metadata,
		OtherData: raw.OtherData,
		RunID:     firstString(body, "run_id", "runId"),
		Status:    firstString(body, "status"),
		Note:      raw.Note,
	}
	if result.RunID == "" {
		result.RunID = sub.RunID
	}

	s.logger.Info("extract.ok",
		"req_id", reqID,
		"run_id", result.RunID,
		"items", len(items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// documentContext pulls document-level hints (currency symbol, global COO
// statement) out of the terminal body and merged page metadata.
func documentContext(body map[string]any, raw RawOutput) DocumentContext {
	ctx := DocumentContext{}
	if s, ok := body["currency"].(string); ok {
		ctx.Currency = s
	}
	if ctx.Currency == "" {
		if s, ok := raw.Metadata["currency"].(string); ok {
			ctx.Currency = s
		}
	}
	if s, ok := raw.Metadata["country_of_origin"].(string); ok {
		ctx.CountryOfOrigin = s
	}
	return ctx
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
