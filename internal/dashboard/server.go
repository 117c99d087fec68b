package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/arskydev/dexwatch/internal/domain"
)

const (
	defaultWindow = 24 * time.Hour
	defaultLimit  = 50
	maxLimit      = 500
)

// Server exposes the audit trail as a small JSON API for the dashboard UI.
type Server struct {
	stats  domain.StatsReader
	server *http.Server
	logger *zap.Logger
}

func NewServer(addr string, stats domain.StatsReader, logger *zap.Logger) *Server {
	s := &Server{stats: stats, logger: logger}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/tokens", s.handleTokens).Methods(http.MethodGet)
	api.HandleFunc("/alerts", s.handleAlerts).Methods(http.MethodGet)
	api.HandleFunc("/top-risks", s.handleTopRisks).Methods(http.MethodGet)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Run serves until the context is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	window := parseWindow(r)
	scanStats, err := s.stats.ScanStats(r.Context(), window)
	if err != nil {
		s.fail(w, "scan stats query failed", err)
		return
	}
	summary, err := s.stats.AlertSummary(r.Context(), window)
	if err != nil {
		s.fail(w, "alert summary query failed", err)
		return
	}

	s.writeJSON(w, statsResponse{
		WindowHours:   window.Hours(),
		TotalScanned:  scanStats.TotalScanned,
		Admitted:      scanStats.Admitted,
		RugRisks:      scanStats.RugRisks,
		FakeVolume:    scanStats.FakeVolume,
		Deferred:      scanStats.Deferred,
		ChainsScanned: scanStats.ChainsScanned,
		TotalAlerts:   summary.TotalAlerts,
		ChainsActive:  summary.ChainsActive,
		AvgRiskScore:  summary.AvgRiskScore,
		FirstAlert:    summary.FirstAlert,
		LastAlert:     summary.LastAlert,
	})
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	records, err := s.stats.RecentScans(r.Context(), parseWindow(r), parseLimit(r))
	if err != nil {
		s.fail(w, "recent scans query failed", err)
		return
	}
	s.writeJSON(w, mapScans(records))
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	records, err := s.stats.RecentAlerts(r.Context(), parseWindow(r), parseLimit(r))
	if err != nil {
		s.fail(w, "recent alerts query failed", err)
		return
	}
	s.writeJSON(w, mapAlerts(records))
}

func (s *Server) handleTopRisks(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.stats.TopRiskTokens(r.Context(), parseLimit(r))
	if err != nil {
		s.fail(w, "top risk query failed", err)
		return
	}
	s.writeJSON(w, mapTopRisks(tokens))
}

func (s *Server) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("response encode failed", zap.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, message string, err error) {
	s.logger.Error(message, zap.Error(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func parseWindow(r *http.Request) time.Duration {
	raw := r.URL.Query().Get("hours")
	if raw == "" {
		return defaultWindow
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 || hours > 24*30 {
		return defaultWindow
	}
	return time.Duration(hours) * time.Hour
}

func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
