package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/clearlane/invoice-extractor/internal/agent"
	"github.com/clearlane/invoice-extractor/internal/config"
	"github.com/clearlane/invoice-extractor/internal/export"
	"github.com/clearlane/invoice-extractor/internal/extract"
	"github.com/clearlane/invoice-extractor/internal/instructions"
)

// Server wires the extraction pipeline behind an HTTP API.
type Server struct {
	cfg       *config.Config
	extractor *extract.Service
	exporter  *export.Service
	customers *instructions.Store
	agent     *agent.Client
	logger    *zap.Logger
}

func New(cfg *config.Config, extractor *extract.Service, exporter *export.Service, customers *instructions.Store, agentClient *agent.Client, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:       cfg,
		extractor: extractor,
		exporter:  exporter,
		customers: customers,
		agent:     agentClient,
		logger:    logger,
	}
}

// Router builds the chi mux with middleware and all API routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/extract", s.handleExtract)
		r.Post("/extract/base64", s.handleExtractBase64)

		r.Get("/customers", s.handleListCustomers)
		r.Get("/customers/{customerNumber}", s.handleGetCustomer)

		r.Post("/export/csv", s.handleExportCSV)
		r.Post("/export/xlsx", s.handleExportXLSX)

		r.Get("/health", s.handleHealth)
	})

	return r
}
