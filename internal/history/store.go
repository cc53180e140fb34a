// Package history persists finished runs and safety decisions in
// SQLite and feeds prior outcomes back into the confidence phase.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed run persistence
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path, creating the
// parent directory if needed
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun inserts or updates a finished run. The full run is kept as a
// JSON document alongside the queryable summary columns.
func (s *Store) SaveRun(run *domain.ExecutionRun) error {
	detail, err := json.Marshal(run)
	if err != nil {
		return err
	}

	var intent string
	if run.Intent != nil {
		intent = string(run.Intent.Intent)
	}
	var confidence float64
	if run.Confidence != nil {
		confidence = run.Confidence.Overall
	}
	var safetyLevel string
	if run.Safety != nil {
		safetyLevel = string(run.Safety.Level)
	}
	var completed, failed, skipped int
	if run.Summary != nil {
		completed = run.Summary.Completed
		failed = run.Summary.Failed
		skipped = run.Summary.Skipped
	}

	_, err = s.db.Exec(`
		INSERT INTO runs (id, goal, context, intent, status, score, confidence, safety_level, tasks_completed, tasks_failed, tasks_skipped, detail, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			score = excluded.score,
			tasks_completed = excluded.tasks_completed,
			tasks_failed = excluded.tasks_failed,
			tasks_skipped = excluded.tasks_skipped,
			detail = excluded.detail,
			finished_at = excluded.finished_at
	`,
		run.ID,
		run.Goal.Description,
		run.Goal.Context,
		intent,
		string(run.Status),
		run.Score,
		confidence,
		safetyLevel,
		completed,
		failed,
		skipped,
		string(detail),
		run.StartedAt,
		run.FinishedAt,
	)
	return err
}

// GetRun retrieves a full run by ID
func (s *Store) GetRun(id string) (*domain.ExecutionRun, error) {
	var detail string
	err := s.db.QueryRow(`SELECT detail FROM runs WHERE id = ?`, id).Scan(&detail)
	if err != nil {
		return nil, err
	}

	var run domain.ExecutionRun
	if err := json.Unmarshal([]byte(detail), &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// RunSummary is one row of the run listing
type RunSummary struct {
	ID         string     `json:"id"`
	Goal       string     `json:"goal"`
	Intent     string     `json:"intent"`
	Status     string     `json:"status"`
	Score      float64    `json:"score"`
	Confidence float64    `json:"confidence"`
	Completed  int        `json:"completed"`
	Failed     int        `json:"failed"`
	Skipped    int        `json:"skipped"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// ListRuns returns the most recent runs, newest first
func (s *Store) ListRuns(limit int) ([]*RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, goal, intent, status, score, confidence, tasks_completed, tasks_failed, tasks_skipped, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*RunSummary
	for rows.Next() {
		var sum RunSummary
		var intent sql.NullString
		var finished sql.NullTime
		err := rows.Scan(&sum.ID, &sum.Goal, &intent, &sum.Status, &sum.Score, &sum.Confidence,
			&sum.Completed, &sum.Failed, &sum.Skipped, &sum.StartedAt, &finished)
		if err != nil {
			return nil, err
		}
		if intent.Valid {
			sum.Intent = intent.String
		}
		if finished.Valid {
			t := finished.Time
			sum.FinishedAt = &t
		}
		summaries = append(summaries, &sum)
	}

	return summaries, rows.Err()
}

// RecentRuns returns prior outcomes for the confidence estimator in
// chronological order, the most recent runs at the tail. A run counts
// as a success when it completed with no failed tasks.
func (s *Store) RecentRuns(limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT goal, status, score, tasks_failed
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.RunRecord
	for rows.Next() {
		var goal, status string
		var score float64
		var failed int
		if err := rows.Scan(&goal, &status, &score, &failed); err != nil {
			return nil, err
		}
		records = append(records, domain.RunRecord{
			Goal:    goal,
			Success: status == string(domain.RunCompleted) && failed == 0,
			Score:   score,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// The query selects the latest window newest first; the trend
	// arithmetic reads oldest to newest
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	return records, nil
}

// LogDecision appends one entry to the safety decision log
func (s *Store) LogDecision(rec domain.DecisionRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO decisions (verdict_id, decision, level, score, reason, at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		rec.VerdictID,
		string(rec.Decision),
		string(rec.Level),
		rec.Score,
		rec.Reason,
		rec.At,
	)
	return err
}

// ListDecisions returns the most recent safety decisions, newest first
func (s *Store) ListDecisions(limit int) ([]domain.DecisionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT verdict_id, decision, level, score, reason, at
		FROM decisions ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.DecisionRecord
	for rows.Next() {
		var rec domain.DecisionRecord
		var decision, level string
		var reason sql.NullString
		if err := rows.Scan(&rec.VerdictID, &decision, &level, &rec.Score, &reason, &rec.At); err != nil {
			return nil, err
		}
		rec.Decision = domain.SafetyDecision(decision)
		rec.Level = domain.SafetyLevel(level)
		if reason.Valid {
			rec.Reason = reason.String
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
