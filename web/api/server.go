// Package api serves the goal pipeline over HTTP: goal submission,
// run history, live events over SSE and WebSocket.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/history"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/observer"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/orchestrator"
)

// Runner processes submitted goals
type Runner interface {
	ProcessGoal(ctx context.Context, goal, goalContext string, opts orchestrator.Options) (*domain.ExecutionRun, error)
}

// RunStore provides read access to persisted runs and decisions
type RunStore interface {
	ListRuns(limit int) ([]*history.RunSummary, error)
	GetRun(id string) (*domain.ExecutionRun, error)
	ListDecisions(limit int) ([]domain.DecisionRecord, error)
}

// Server is the HTTP API server
type Server struct {
	runner   Runner
	store    RunStore
	monitor  *observer.Monitor
	log      *zap.Logger
	addr     string
	mux      *http.ServeMux
	sseHub   *SSEHub
	upgrader websocket.Upgrader
}

// NewServer creates a new API server
func NewServer(runner Runner, store RunStore, monitor *observer.Monitor, addr string, log *zap.Logger) *Server {
	s := &Server{
		runner:  runner,
		store:   store,
		monitor: monitor,
		log:     log.Named("api"),
		addr:    addr,
		mux:     http.NewServeMux(),
		sseHub:  NewSSEHub(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/status", s.statusHandler())
	s.mux.HandleFunc("/api/goals", s.submitGoalHandler())
	s.mux.HandleFunc("/api/runs", s.listRunsHandler())
	s.mux.HandleFunc("/api/runs/", s.getRunHandler())
	s.mux.HandleFunc("/api/decisions", s.listDecisionsHandler())
	s.mux.HandleFunc("/api/events", s.sseHandler())
	s.mux.HandleFunc("/api/ws", s.wsHandler())
}

// Handler returns the route multiplexer, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server
func (s *Server) Start() error {
	go s.sseHub.Run()
	s.log.Info("api listening", zap.String("addr", s.addr))
	return http.ListenAndServe(s.addr, s.mux)
}

// Broadcast sends an event to all SSE and WebSocket clients
func (s *Server) Broadcast(event SSEEvent) {
	s.sseHub.Broadcast(event)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
