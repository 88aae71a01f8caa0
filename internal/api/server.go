// Package api serves the JSON interface consumed by the SmartLine SPA.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/tgurley/smartline/internal/store"
)

// Server is the HTTP front end over the store
type Server struct {
	store      *store.Store
	router     *mux.Router
	httpServer *http.Server
}

// NewServer builds the server and mounts all routes
func NewServer(st *store.Store, addr string) *Server {
	s := &Server{
		store:  st,
		router: mux.NewRouter(),
	}
	s.routes()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.Use(logRequests)

	v1.HandleFunc("/games", s.handleListGames).Methods(http.MethodGet)
	v1.HandleFunc("/games/{id}", s.handleGetGame).Methods(http.MethodGet)
	v1.HandleFunc("/games/{id}/lines", s.handleGameLines).Methods(http.MethodGet)

	v1.HandleFunc("/bets", s.handleListBets).Methods(http.MethodGet)
	v1.HandleFunc("/bets", s.handlePlaceBet).Methods(http.MethodPost)
	v1.HandleFunc("/parlays", s.handleListParlays).Methods(http.MethodGet)
	v1.HandleFunc("/parlays", s.handlePlaceParlay).Methods(http.MethodPost)

	v1.HandleFunc("/bankroll", s.handleBankroll).Methods(http.MethodGet)
	v1.HandleFunc("/bankroll/transactions", s.handleListTransactions).Methods(http.MethodGet)
	v1.HandleFunc("/bankroll/transactions", s.handleAddTransaction).Methods(http.MethodPost)
	v1.HandleFunc("/bankroll/history", s.handleBalanceHistory).Methods(http.MethodGet)

	v1.HandleFunc("/goals", s.handleListGoals).Methods(http.MethodGet)
	v1.HandleFunc("/goals", s.handleCreateGoal).Methods(http.MethodPost)
	v1.HandleFunc("/goals/{id}", s.handleGetGoal).Methods(http.MethodGet)
	v1.HandleFunc("/goals/{id}", s.handleUpdateGoal).Methods(http.MethodPut)
	v1.HandleFunc("/goals/{id}", s.handleDeleteGoal).Methods(http.MethodDelete)

	v1.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	v1.HandleFunc("/settings", s.handlePutSettings).Methods(http.MethodPut)

	v1.HandleFunc("/analytics/weather", s.handleWeatherAnalytics).Methods(http.MethodGet)
	v1.HandleFunc("/analytics/roi", s.handleROI).Methods(http.MethodGet)
	v1.HandleFunc("/analytics/weekly", s.handleWeekly).Methods(http.MethodGet)
	v1.HandleFunc("/analytics/trend", s.handleTrend).Methods(http.MethodGet)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving; blocks until the listener fails or Shutdown runs
func (s *Server) Start() error {
	slog.Info("api server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}
