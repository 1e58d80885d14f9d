// Package httpapi serves the read-only forecast query API consumed by the
// conversational front end.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"finley/internal/domain"
	"finley/internal/store"
)

// Server serves forecast lookups over HTTP.
type Server struct {
	forecasts store.ForecastReader
	log       *slog.Logger
}

// NewServer creates a Server backed by the given reader.
func NewServer(forecasts store.ForecastReader) *Server {
	return &Server{
		forecasts: forecasts,
		log:       slog.Default().With("component", "httpapi"),
	}
}

// forecastEntry is the wire shape of one prediction.
type forecastEntry struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/forecast/{ticker}", s.handleForecast)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

// handleForecast returns all stored predictions for a ticker, optionally
// restricted to one horizon label, ordered by ascending date. An absent
// ticker yields an empty array, never an error: "no forecast available" is
// a normal user-facing outcome.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(strings.TrimSpace(r.PathValue("ticker")))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "missing ticker")
		return
	}

	horizon := r.URL.Query().Get("horizon")
	if horizon != "" {
		if _, ok := domain.HorizonByLabel(horizon); !ok {
			writeError(w, http.StatusBadRequest, "unknown horizon "+horizon)
			return
		}
	}

	records, err := s.forecasts.Forecasts(r.Context(), ticker, horizon)
	if err != nil {
		s.log.Error("forecast lookup failed", "ticker", ticker, "err", err)
		writeError(w, http.StatusInternalServerError, "forecast lookup failed")
		return
	}

	entries := make([]forecastEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, forecastEntry{
			Date:  rec.Date.Format("2006-01-02"),
			Price: rec.Price,
		})
	}
	writeJSON(w, entries)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
