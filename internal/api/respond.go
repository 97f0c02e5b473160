package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sells-group/storefront-insights/internal/insight"
	"github.com/sells-group/storefront-insights/internal/store"
)

// errorBody is the shape of every non-2xx response.
type errorBody struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg, StatusCode: code})
}

// statusFor maps a domain error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case insight.IsValidation(err):
		return http.StatusUnprocessableEntity
	case insight.IsTargetNotFound(err), store.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		zap.L().Error("api: request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	writeError(w, code, err.Error())
}

// decodeInsightsRequest reads the JSON body. Malformed bodies and a
// missing website_url answer 422.
func decodeInsightsRequest(w http.ResponseWriter, r *http.Request) (insightsRequest, bool) {
	var req insightsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		msg := "invalid request body"
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		}
		writeError(w, http.StatusUnprocessableEntity, msg)
		return req, false
	}
	if strings.TrimSpace(req.WebsiteURL) == "" {
		writeError(w, http.StatusUnprocessableEntity, "website_url is required")
		return req, false
	}
	return req, true
}
