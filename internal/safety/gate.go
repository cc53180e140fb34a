// Package safety screens goals against a fixed catalogue of risk
// patterns before any plan is generated.
package safety

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
)

// Severity point deductions from the starting score of 100
var severityPoints = map[domain.Severity]int{
	domain.SeverityCritical: 40,
	domain.SeverityHigh:     25,
	domain.SeverityMedium:   15,
	domain.SeverityLow:      5,
}

// Options configures gate behavior
type Options struct {
	// StrictMode rejects anything that is not fully safe
	StrictMode bool
	// AllowedCategories lists violation categories whose rules are
	// skipped entirely (e.g. "destructive" for sanctioned cleanup jobs)
	AllowedCategories []string
}

// DecisionSink receives every decision record as it is logged.
// Writes are fire-and-forget; sink errors do not affect validation.
type DecisionSink interface {
	LogDecision(rec domain.DecisionRecord) error
}

// Gate validates goals against the rule catalogue and keeps an
// append-only log of every decision it makes
type Gate struct {
	opts Options
	log  *zap.Logger
	sink DecisionSink

	mu        sync.Mutex
	decisions []domain.DecisionRecord
	verdicts  map[string]*domain.SafetyVerdict
}

// NewGate creates a Gate. sink may be nil.
func NewGate(opts Options, log *zap.Logger, sink DecisionSink) *Gate {
	return &Gate{
		opts:     opts,
		log:      log.Named("safety"),
		sink:     sink,
		verdicts: make(map[string]*domain.SafetyVerdict),
	}
}

// Validate screens the goal and returns the aggregate verdict
func (g *Gate) Validate(goal *domain.Goal) *domain.SafetyVerdict {
	text := goal.Text()

	var violations []domain.SafetyViolation
	for _, rule := range catalogue {
		if g.categoryAllowed(rule.Category) {
			continue
		}
		if rule.Pattern.MatchString(text) {
			violations = append(violations, domain.SafetyViolation{
				Category:       rule.Category,
				Severity:       rule.Severity,
				Description:    rule.Description,
				Recommendation: rule.Recommendation,
			})
		}
	}

	// Long action goals with no accompanying context are a risk of
	// their own: plenty of intent, nothing to check it against
	if len(goal.Description) > 50 && goal.Context == "" && actionVerbRe.MatchString(goal.Description) {
		if !g.categoryAllowed(domain.CategoryAmbiguity) {
			violations = append(violations, domain.SafetyViolation{
				Category:       domain.CategoryAmbiguity,
				Severity:       domain.SeverityMedium,
				Description:    "Substantial goal provided without any supporting context",
				Recommendation: "Add context describing the environment and constraints",
			})
		}
	}

	verdict := &domain.SafetyVerdict{
		ID:          uuid.NewString(),
		Score:       scoreViolations(violations),
		Violations:  violations,
		EvaluatedAt: time.Now(),
	}
	verdict.Level = deriveLevel(verdict)
	verdict.Approved = g.approve(verdict)
	verdict.Clarifications = buildClarifications(violations)
	verdict.Decision = deriveDecision(verdict)

	g.record(domain.DecisionRecord{
		VerdictID: verdict.ID,
		Decision:  verdict.Decision,
		Level:     verdict.Level,
		Score:     verdict.Score,
		At:        time.Now(),
	})

	g.mu.Lock()
	g.verdicts[verdict.ID] = verdict
	g.mu.Unlock()

	if verdict.Level == domain.SafetyBlocked {
		g.log.Error("goal blocked by safety gate",
			zap.String("verdict_id", verdict.ID),
			zap.Int("score", verdict.Score),
			zap.Int("violations", len(verdict.Violations)))
	} else {
		g.log.Debug("goal validated",
			zap.String("level", string(verdict.Level)),
			zap.Int("score", verdict.Score),
			zap.Bool("approved", verdict.Approved))
	}

	return verdict
}

// Override forces approval of a prior verdict. It fails for verdicts
// containing a critical violation; those are never overridable.
func (g *Gate) Override(verdictID, reason string) (*domain.SafetyVerdict, error) {
	g.mu.Lock()
	verdict, ok := g.verdicts[verdictID]
	g.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown verdict %q", verdictID)
	}
	if verdict.HasCritical() {
		g.log.Error("override rejected for critical verdict",
			zap.String("verdict_id", verdictID),
			zap.String("reason", reason))
		return nil, fmt.Errorf("verdict %s contains a critical violation and cannot be overridden", verdictID)
	}

	verdict.Approved = true
	verdict.Decision = domain.DecisionModified

	g.record(domain.DecisionRecord{
		VerdictID: verdictID,
		Decision:  domain.DecisionModified,
		Level:     verdict.Level,
		Score:     verdict.Score,
		Reason:    reason,
		At:        time.Now(),
	})
	g.log.Warn("verdict approval overridden",
		zap.String("verdict_id", verdictID),
		zap.String("reason", reason))

	return verdict, nil
}

// DecisionLog returns a copy of all decisions made so far
func (g *Gate) DecisionLog() []domain.DecisionRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]domain.DecisionRecord, len(g.decisions))
	copy(out, g.decisions)
	return out
}

func (g *Gate) record(rec domain.DecisionRecord) {
	g.mu.Lock()
	g.decisions = append(g.decisions, rec)
	g.mu.Unlock()

	if g.sink != nil {
		if err := g.sink.LogDecision(rec); err != nil {
			g.log.Error("decision sink write failed", zap.Error(err))
		}
	}
}

func (g *Gate) categoryAllowed(cat domain.ViolationCategory) bool {
	for _, allowed := range g.opts.AllowedCategories {
		if allowed == string(cat) {
			return true
		}
	}
	return false
}

func (g *Gate) approve(v *domain.SafetyVerdict) bool {
	if v.Level == domain.SafetyBlocked || v.HasCritical() {
		return false
	}
	if g.opts.StrictMode && v.Level != domain.SafetySafe {
		return false
	}
	return true
}

func scoreViolations(violations []domain.SafetyViolation) int {
	score := 100
	for _, v := range violations {
		score -= severityPoints[v.Severity]
	}
	if score < 0 {
		score = 0
	}
	return score
}

func deriveLevel(v *domain.SafetyVerdict) domain.SafetyLevel {
	highCount := 0
	for _, viol := range v.Violations {
		if viol.Severity == domain.SeverityHigh {
			highCount++
		}
	}

	switch {
	case v.HasCritical() || v.Score < 20:
		return domain.SafetyBlocked
	case highCount >= 2 || v.Score < 50:
		return domain.SafetyWarning
	case len(v.Violations) > 0 || v.Score < 80:
		return domain.SafetyCaution
	default:
		return domain.SafetySafe
	}
}

func deriveDecision(v *domain.SafetyVerdict) domain.SafetyDecision {
	if !v.Approved {
		return domain.DecisionBlocked
	}
	for _, c := range v.Clarifications {
		if c.Required {
			return domain.DecisionClarificationRequired
		}
	}
	return domain.DecisionApproved
}
