// Package api exposes storefront analysis over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/storefront-insights/internal/insight"
	"github.com/sells-group/storefront-insights/internal/model"
	"github.com/sells-group/storefront-insights/internal/store"
)

// maxBodyBytes caps request bodies; every request body is a small JSON object.
const maxBodyBytes = 1 << 20

const healthTimeout = 2 * time.Second

// Comparer runs competitor analysis for a brand.
type Comparer interface {
	Compare(ctx context.Context, websiteURL string, opts insight.AnalyzeOptions) (*model.CompetitorReport, error)
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	analyzer insight.Analyzer
	comparer Comparer
	store    store.Store
}

// NewServer creates a Server.
func NewServer(analyzer insight.Analyzer, comparer Comparer, st store.Store) *Server {
	return &Server{analyzer: analyzer, comparer: comparer, store: st}
}

// Router builds the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/insights", func(r chi.Router) {
		r.Post("/", s.handleInsights)
		r.Post("/competitors", s.handleCompetitors)
		r.Get("/history", s.handleHistory)
		r.Get("/{id}", s.handleGetInsight)
		r.Get("/{id}/competitors", s.handleListCompetitors)
	})
	r.Post("/extract-insights", s.handleExtract)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
