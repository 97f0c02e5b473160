package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/storefront-insights/internal/insight"
	"github.com/sells-group/storefront-insights/internal/store"
)

type insightsRequest struct {
	WebsiteURL         string `json:"website_url"`
	IncludeCompetitors bool   `json:"include_competitors"`
	Refresh            bool   `json:"refresh"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		zap.L().Warn("api: health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInsights analyzes a storefront, optionally with its competitors.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeInsightsRequest(w, r)
	if !ok {
		return
	}
	opts := insight.AnalyzeOptions{Refresh: req.Refresh}

	if req.IncludeCompetitors {
		report, err := s.comparer.Compare(r.Context(), req.WebsiteURL, opts)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
		return
	}

	in, err := s.analyzer.Analyze(r.Context(), req.WebsiteURL, opts)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (s *Server) handleCompetitors(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeInsightsRequest(w, r)
	if !ok {
		return
	}
	report, err := s.comparer.Compare(r.Context(), req.WebsiteURL, insight.AnalyzeOptions{Refresh: req.Refresh})
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleExtract is the minimal variant of /insights. It never includes
// competitors.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeInsightsRequest(w, r)
	if !ok {
		return
	}
	in, err := s.analyzer.Analyze(r.Context(), req.WebsiteURL, insight.AnalyzeOptions{Refresh: req.Refresh})
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "limit must be an integer")
			return
		}
		limit = n
	}

	list, err := s.store.ListRecentInsights(r.Context(), store.ClampLimit(limit))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	for i := range list {
		list[i].Normalize()
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetInsight(w http.ResponseWriter, r *http.Request) {
	in, err := s.store.GetInsight(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if store.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Insight not found")
			return
		}
		writeFailure(w, r, err)
		return
	}
	in.Normalize()
	writeJSON(w, http.StatusOK, in)
}

func (s *Server) handleListCompetitors(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetInsight(r.Context(), id); err != nil {
		if store.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Insight not found")
			return
		}
		writeFailure(w, r, err)
		return
	}

	rows, err := s.store.ListCompetitorAnalyses(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	for i := range rows {
		if rows[i].Competitor != nil {
			rows[i].Competitor.Normalize()
		}
	}
	writeJSON(w, http.StatusOK, rows)
}
