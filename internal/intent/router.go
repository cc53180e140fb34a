// Package intent classifies raw input into execution goals,
// information queries, or ambiguous requests using fixed pattern and
// keyword scoring.
package intent

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
)

// Scoring thresholds for the decision chain
const (
	ambiguityThreshold   = 0.7
	informationThreshold = 0.5
	executionThreshold   = 0.4
	fallbackConfidence   = 0.6
)

var (
	ambiguityPatterns = []scoredPattern{
		{regexp.MustCompile(`(?i)^(make it|do something|improve this|fix it|help me out)\b`), 0.6},
		{regexp.MustCompile(`(?i)^(improve|fix|change) (it|this|that|things|stuff)\b`), 0.5},
	}
	informationPatterns = []scoredPattern{
		{regexp.MustCompile(`(?i)^(what|how|why|when|where|who|which|explain|describe|tell me)\b`), 0.5},
	}
	executionPatterns = []scoredPattern{
		{regexp.MustCompile(`(?i)^(create|build|implement|deploy|set ?up|configure|write|develop|add|migrate|automate|generate|refactor|install|integrate|optimi[sz]e|analyze|test|run)\b`), 0.5},
	}

	ambiguityKeywords   = []string{"better", "nicer", "somehow", "something", "stuff", "things"}
	informationKeywords = []string{"explain", "difference", "meaning", "definition", "understand", "overview"}
	executionKeywords   = []string{"create", "build", "implement", "deploy", "pipeline", "configure", "automate", "integrate", "migrate", "install", "application", "system", "service"}
)

// Per-category keyword weight and cap
const (
	keywordWeight = 0.15
	ambiguityCap  = 0.3
	infoCap       = 0.3
	executionCap  = 0.4
)

type scoredPattern struct {
	re     *regexp.Regexp
	weight float64
}

// Router classifies raw input and keeps an in-memory history of every
// classification it makes. Construct one per run context; instances
// are safe for concurrent use.
type Router struct {
	log     *zap.Logger
	mu      sync.Mutex
	history []domain.IntentClassification
}

// NewRouter creates a Router
func NewRouter(log *zap.Logger) *Router {
	return &Router{log: log.Named("intent")}
}

// Classify scores the input for ambiguity, information and execution
// intent and returns the winning classification
func (r *Router) Classify(input string) domain.IntentClassification {
	trimmed := strings.TrimSpace(input)
	lower := strings.ToLower(trimmed)

	ambiguity, ambKeys := score(lower, ambiguityPatterns, ambiguityKeywords, ambiguityCap)
	information, infoKeys := score(lower, informationPatterns, informationKeywords, infoCap)
	execution, execKeys := score(lower, executionPatterns, executionKeywords, executionCap)

	// Heuristics: very short inputs are ambiguous; questions ask for
	// information
	if len(strings.Fields(trimmed)) < 3 {
		ambiguity += 0.4
	}
	if strings.HasSuffix(trimmed, "?") {
		information += 0.3
	}

	c := domain.IntentClassification{Input: input, At: time.Now()}
	switch {
	case ambiguity > ambiguityThreshold:
		c.Intent = domain.IntentAmbiguous
		c.Confidence = clamp(ambiguity)
		c.Keywords = ambKeys
	case information > execution && information > informationThreshold:
		c.Intent = domain.IntentInformationQuery
		c.Confidence = clamp(information)
		c.Keywords = infoKeys
	case execution > executionThreshold:
		c.Intent = domain.IntentExecutionGoal
		c.Confidence = clamp(execution)
		c.Keywords = execKeys
	default:
		c.Intent = domain.IntentAmbiguous
		c.Confidence = fallbackConfidence
		c.Keywords = ambKeys
	}

	r.mu.Lock()
	r.history = append(r.history, c)
	r.mu.Unlock()

	r.log.Debug("classified input",
		zap.String("intent", string(c.Intent)),
		zap.Float64("confidence", c.Confidence),
		zap.Float64("ambiguity", ambiguity),
		zap.Float64("information", information),
		zap.Float64("execution", execution))

	return c
}

// History returns a copy of all classifications made so far
func (r *Router) History() []domain.IntentClassification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.IntentClassification, len(r.history))
	copy(out, r.history)
	return out
}

// score sums the first matching pattern weight with capped keyword
// overlap and returns the matched keywords
func score(lower string, patterns []scoredPattern, keywords []string, limit float64) (float64, []string) {
	var total float64
	for _, p := range patterns {
		if p.re.MatchString(lower) {
			total += p.weight
			break
		}
	}

	var matched []string
	var kwScore float64
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
			kwScore += keywordWeight
		}
	}
	if kwScore > limit {
		kwScore = limit
	}
	return total + kwScore, matched
}

func clamp(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}
