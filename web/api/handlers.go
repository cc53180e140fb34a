package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/history"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/observer"
	"github.com/ekjot2727-png/ai-agent-sub001/internal/orchestrator"
)

// SubmitRequest is the POST /api/goals payload
type SubmitRequest struct {
	Goal                   string   `json:"goal"`
	Context                string   `json:"context,omitempty"`
	Constraints            []string `json:"constraints,omitempty"`
	PlanOnly               bool     `json:"plan_only,omitempty"`
	Optimize               bool     `json:"optimize,omitempty"`
	ProceedOnClarification bool     `json:"proceed_on_clarification,omitempty"`
}

// TaskResponse is the API response for a task
type TaskResponse struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Status            string   `json:"status"`
	Priority          string   `json:"priority,omitempty"`
	Dependencies      []string `json:"dependencies,omitempty"`
	EstimatedDuration string   `json:"estimated_duration,omitempty"`
	ActualDuration    string   `json:"actual_duration,omitempty"`
	Error             string   `json:"error,omitempty"`
}

// RunResponse is the API response for a run
type RunResponse struct {
	ID              string         `json:"id"`
	Goal            string         `json:"goal"`
	Context         string         `json:"context,omitempty"`
	Intent          string         `json:"intent,omitempty"`
	SafetyLevel     string         `json:"safety_level,omitempty"`
	SafetyScore     int            `json:"safety_score,omitempty"`
	Decision        string         `json:"decision,omitempty"`
	Confidence      float64        `json:"confidence,omitempty"`
	ConfidenceLevel string         `json:"confidence_level,omitempty"`
	Approach        string         `json:"approach,omitempty"`
	Status          string         `json:"status"`
	Score           float64        `json:"score"`
	Completed       int            `json:"completed"`
	Failed          int            `json:"failed"`
	Skipped         int            `json:"skipped"`
	Tasks           []TaskResponse `json:"tasks,omitempty"`
	StartedAt       string         `json:"started_at"`
	FinishedAt      *string        `json:"finished_at,omitempty"`
	Error           string         `json:"error,omitempty"`
}

func taskToResponse(t *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Status:       string(t.Status),
		Priority:     string(t.Priority),
		Dependencies: t.Dependencies,
	}
	if t.EstimatedDuration > 0 {
		resp.EstimatedDuration = t.EstimatedDuration.String()
	}
	if t.ActualDuration > 0 {
		resp.ActualDuration = t.ActualDuration.Round(time.Millisecond).String()
	}
	if t.Result != nil {
		resp.Error = t.Result.Error
	}
	return resp
}

func runToResponse(run *domain.ExecutionRun) RunResponse {
	resp := RunResponse{
		ID:        run.ID,
		Goal:      run.Goal.Description,
		Context:   run.Goal.Context,
		Status:    string(run.Status),
		Score:     run.Score,
		StartedAt: run.StartedAt.Format(time.RFC3339),
	}
	if run.Intent != nil {
		resp.Intent = string(run.Intent.Intent)
	}
	if run.Safety != nil {
		resp.SafetyLevel = string(run.Safety.Level)
		resp.SafetyScore = run.Safety.Score
		resp.Decision = string(run.Safety.Decision)
	}
	if run.Confidence != nil {
		resp.Confidence = run.Confidence.Overall
		resp.ConfidenceLevel = string(run.Confidence.Level)
		resp.Approach = run.Confidence.Approach
	}
	if run.Summary != nil {
		resp.Completed = run.Summary.Completed
		resp.Failed = run.Summary.Failed
		resp.Skipped = run.Summary.Skipped
	}
	if run.Plan != nil {
		resp.Tasks = make([]TaskResponse, len(run.Plan.Tasks))
		for i, t := range run.Plan.Tasks {
			resp.Tasks[i] = taskToResponse(t)
		}
	}
	if run.FinishedAt != nil {
		t := run.FinishedAt.Format(time.RFC3339)
		resp.FinishedAt = &t
	}
	return resp
}

// errorStatus maps pipeline error kinds onto HTTP status codes
func errorStatus(err error) int {
	switch orchestrator.KindOf(err) {
	case orchestrator.KindValidation:
		return http.StatusBadRequest
	case orchestrator.KindSafetyBlocked:
		return http.StatusForbidden
	case orchestrator.KindClarificationRequired:
		return http.StatusConflict
	case orchestrator.KindPlanning:
		return http.StatusUnprocessableEntity
	case orchestrator.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) submitGoalHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		run, err := s.runner.ProcessGoal(r.Context(), req.Goal, req.Context, orchestrator.Options{
			SkipExecution:          req.PlanOnly,
			EnableOptimization:     req.Optimize,
			ProceedOnClarification: req.ProceedOnClarification,
			Constraints:            req.Constraints,
		})
		if err != nil {
			if run == nil {
				writeError(w, errorStatus(err), err.Error())
				return
			}
			resp := runToResponse(run)
			resp.Error = err.Error()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(errorStatus(err))
			json.NewEncoder(w).Encode(resp)
			return
		}

		writeJSON(w, runToResponse(run))
	}
}

func (s *Server) listRunsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		runs, err := s.store.ListRuns(limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if runs == nil {
			runs = []*history.RunSummary{}
		}

		writeJSON(w, runs)
	}
}

func (s *Server) getRunHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
		if id == "" {
			writeError(w, http.StatusBadRequest, "run ID required")
			return
		}

		run, err := s.store.GetRun(id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeError(w, http.StatusNotFound, "run not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, runToResponse(run))
	}
}

func (s *Server) listDecisionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		decisions, err := s.store.ListDecisions(limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if decisions == nil {
			decisions = []domain.DecisionRecord{}
		}

		writeJSON(w, decisions)
	}
}

func (s *Server) statusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		if s.monitor == nil {
			writeJSON(w, observer.Metrics{})
			return
		}
		writeJSON(w, s.monitor.GetMetrics())
	}
}
