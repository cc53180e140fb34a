// Package confidence estimates whether executing a goal is likely to
// succeed by blending goal clarity, historical performance, and plan
// complexity.
package confidence

import (
	"math"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
)

// Component blend inside the clarity score
const (
	specificityWeight   = 0.30
	actionabilityWeight = 0.35
	measurabilityWeight = 0.20
	contextWeight       = 0.15
)

// Component blend inside the historical score
const (
	similarWeight = 0.40
	overallWeight = 0.35
	trendWeight   = 0.25
)

// Defaults when no history exists
const (
	defaultSimilarRate = 0.7
	defaultOverallRate = 0.7
	defaultTrend       = 0.5
	defaultHistorical  = 0.6
)

var (
	technologyRe = regexp.MustCompile(`(?i)\b(node\.?js|python|go(lang)?|java|react|docker|kubernetes|k8s|aws|gcp|azure|postgres(ql)?|mysql|redis|kafka|terraform|github actions|ci/cd|graphql|grpc|rest)\b`)
	numericRe    = regexp.MustCompile(`\d`)
	actionVerbRe = regexp.MustCompile(`(?i)\b(create|build|implement|deploy|migrate|configure|automate|integrate|install|refactor|generate|optimi[sz]e|analyze|write|test)\b`)
	vagueRe      = regexp.MustCompile(`(?i)\b(somehow|something|better|nicer|stuff|things|etc)\b`)
	measurableRe = regexp.MustCompile(`(?i)\b(test(s|ing)?|deploy(ment|ed)?|automated?|metric|coverage|latency|throughput|uptime|rate|percent|reduce|increase|under|within)\b`)
)

// Options holds the blend weights and decision thresholds
type Options struct {
	ClarityWeight    float64
	HistoricalWeight float64
	ComplexityWeight float64
	// MinConfidence is the floor below which execution is not
	// recommended
	MinConfidence float64
	// CautionThreshold escalates the caution level when overall
	// confidence falls below it
	CautionThreshold float64
}

// DefaultOptions returns the standard weights and thresholds
func DefaultOptions() Options {
	return Options{
		ClarityWeight:    0.35,
		HistoricalWeight: 0.35,
		ComplexityWeight: 0.30,
		MinConfidence:    0.4,
		CautionThreshold: 0.6,
	}
}

// Approach texts by confidence level
var approachByLevel = map[domain.ConfidenceLevel]string{
	domain.ConfidenceVeryHigh: "Proceed with full autonomy",
	domain.ConfidenceHigh:     "Proceed with standard checkpoints",
	domain.ConfidenceMedium:   "Proceed with close monitoring and confirmation at each phase",
	domain.ConfidenceLow:      "Gather more context or narrow the goal before executing",
	domain.ConfidenceVeryLow:  "Request clarification before any execution",
}

// Estimator computes confidence assessments. Construct one per run
// context.
type Estimator struct {
	opts Options
	log  *zap.Logger
}

// NewEstimator creates an Estimator
func NewEstimator(opts Options, log *zap.Logger) *Estimator {
	return &Estimator{opts: opts, log: log.Named("confidence")}
}

// Assess blends clarity, history and complexity for the goal. Both
// draftPlan and history may be nil/empty.
func (e *Estimator) Assess(goal *domain.Goal, draftPlan *domain.Plan, history []domain.RunRecord) *domain.ConfidenceAssessment {
	clarity := assessClarity(goal)
	historical := assessHistory(goal, history)
	complexity := assessComplexity(draftPlan)

	overall := round2(e.opts.ClarityWeight*clarity.Overall +
		e.opts.HistoricalWeight*historical.Overall +
		e.opts.ComplexityWeight*complexity.Overall)

	level := levelFor(overall)
	negatives := negativeFactors(clarity, historical, complexity)
	proceed := overall >= e.opts.MinConfidence

	caution := "none"
	switch {
	case !proceed:
		caution = "high"
	case overall < e.opts.CautionThreshold || len(negatives) > 2:
		caution = "elevated"
	}

	a := &domain.ConfidenceAssessment{
		Clarity:         clarity,
		Historical:      historical,
		Complexity:      complexity,
		Overall:         overall,
		Level:           level,
		Proceed:         proceed,
		CautionLevel:    caution,
		Approach:        approachByLevel[level],
		NegativeFactors: negatives,
	}

	e.log.Debug("assessed confidence",
		zap.Float64("overall", overall),
		zap.String("level", string(level)),
		zap.Bool("proceed", proceed),
		zap.Strings("negative_factors", negatives))

	return a
}

func assessClarity(goal *domain.Goal) domain.ClarityScore {
	desc := goal.Description
	lower := strings.ToLower(desc)

	// Specificity: named technologies, numeric detail, enough words
	// to pin the goal down
	var specificity float64
	techMatches := technologyRe.FindAllString(desc, -1)
	if len(techMatches) >= 1 {
		specificity += 0.4
	}
	if len(techMatches) >= 2 {
		specificity += 0.2
	}
	if numericRe.MatchString(desc) {
		specificity += 0.2
	}
	if len(strings.Fields(desc)) >= 8 {
		specificity += 0.2
	}

	// Actionability: recognized action verbs, penalized for vague
	// phrasing
	var actionability float64
	if loc := actionVerbRe.FindStringIndex(lower); loc != nil {
		actionability += 0.6
		if loc[0] == 0 {
			actionability += 0.2
		}
	}
	if vagueRe.MatchString(desc) {
		actionability -= 0.3
	}
	actionability = clamp01(actionability)

	// Measurability: presence of measurable-outcome terms
	measurable := measurableRe.FindAllString(desc, -1)
	measurability := clamp01(float64(len(measurable)) * 0.3)

	// Context richness: supplied context length plus tech mentions
	var richness float64
	if goal.Context != "" {
		richness += 0.4
		if len(goal.Context) > 40 {
			richness += 0.2
		}
		if technologyRe.MatchString(goal.Context) {
			richness += 0.3
		}
	}
	richness = clamp01(richness)

	overall := specificityWeight*clamp01(specificity) +
		actionabilityWeight*actionability +
		measurabilityWeight*measurability +
		contextWeight*richness

	return domain.ClarityScore{
		Specificity:     clamp01(specificity),
		Actionability:   actionability,
		Measurability:   measurability,
		ContextRichness: richness,
		Overall:         round2(overall),
	}
}

func assessHistory(goal *domain.Goal, history []domain.RunRecord) domain.HistoricalScore {
	if len(history) == 0 {
		return domain.HistoricalScore{
			SimilarSuccessRate: defaultSimilarRate,
			OverallSuccessRate: defaultOverallRate,
			RecentTrend:        defaultTrend,
			Overall:            defaultHistorical,
		}
	}

	keywords := extractKeywords(goal.Description)

	var similarTotal, similarSuccess, successTotal int
	for _, rec := range history {
		if rec.Success {
			successTotal++
		}
		if sharesKeyword(keywords, extractKeywords(rec.Goal)) {
			similarTotal++
			if rec.Success {
				similarSuccess++
			}
		}
	}

	similarRate := defaultSimilarRate
	if similarTotal > 0 {
		similarRate = float64(similarSuccess) / float64(similarTotal)
	}
	overallRate := float64(successTotal) / float64(len(history))
	trend := recentTrend(history)

	overall := similarWeight*similarRate + overallWeight*overallRate + trendWeight*trend

	return domain.HistoricalScore{
		SimilarSuccessRate: similarRate,
		OverallSuccessRate: overallRate,
		RecentTrend:        trend,
		SampleSize:         len(history),
		Overall:            round2(overall),
	}
}

// recentTrend compares the mean score of the last 5 runs against the
// 5 before them, mapped onto [0,1] around a neutral 0.5
func recentTrend(history []domain.RunRecord) float64 {
	if len(history) < 2 {
		return defaultTrend
	}

	recentStart := len(history) - 5
	if recentStart < 0 {
		recentStart = 0
	}
	recent := meanScore(history[recentStart:])

	priorStart := recentStart - 5
	if priorStart < 0 {
		priorStart = 0
	}
	prior := history[priorStart:recentStart]
	if len(prior) == 0 {
		return defaultTrend
	}

	return clamp01(0.5 + recent - meanScore(prior))
}

func meanScore(recs []domain.RunRecord) float64 {
	if len(recs) == 0 {
		return 0
	}
	var sum float64
	for _, r := range recs {
		sum += r.Score
	}
	return sum / float64(len(recs))
}

func assessComplexity(plan *domain.Plan) domain.ComplexityScore {
	if plan == nil || len(plan.Tasks) == 0 {
		// No draft plan to judge; stay neutral
		return domain.ComplexityScore{Overall: 0.7}
	}

	count := len(plan.Tasks)
	mins := plan.EstimatedTotal.Minutes()

	countNorm := math.Min(float64(count)/10.0, 1.0)
	cappedMins := math.Min(mins, 180)
	durationNorm := cappedMins / 180.0
	depth := math.Min(float64(count)/10.0, 1.0)

	var risk float64
	if count > 5 {
		risk += 0.25
	}
	if count > 8 {
		risk += 0.25
	}
	if mins > 60 {
		risk += 0.25
	}
	if mins > 120 {
		risk += 0.25
	}

	factor := 0.3*countNorm + 0.3*durationNorm + 0.2*depth + 0.2*risk
	overall := math.Max(0.3, 1-0.5*factor)

	return domain.ComplexityScore{
		TaskCount:       count,
		EstimatedMins:   mins,
		DependencyDepth: depth,
		Risk:            risk,
		Overall:         round2(overall),
	}
}

func negativeFactors(c domain.ClarityScore, h domain.HistoricalScore, x domain.ComplexityScore) []string {
	var out []string
	if c.Overall < 0.5 {
		out = append(out, "low goal clarity")
	}
	if c.ContextRichness < 0.3 {
		out = append(out, "little or no supporting context")
	}
	if h.SampleSize > 0 && h.Overall < 0.5 {
		out = append(out, "weak historical performance")
	}
	if h.SampleSize > 0 && h.RecentTrend < 0.4 {
		out = append(out, "declining recent trend")
	}
	if x.Overall < 0.5 {
		out = append(out, "high plan complexity")
	}
	return out
}

func levelFor(overall float64) domain.ConfidenceLevel {
	switch {
	case overall >= 0.85:
		return domain.ConfidenceVeryHigh
	case overall >= 0.70:
		return domain.ConfidenceHigh
	case overall >= 0.50:
		return domain.ConfidenceMedium
	case overall >= 0.35:
		return domain.ConfidenceLow
	default:
		return domain.ConfidenceVeryLow
	}
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "for": true,
	"with": true, "into": true, "from": true, "this": true, "that": true,
	"our": true, "all": true, "new": true,
}

func extractKeywords(text string) map[string]bool {
	out := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,:;!?()[]\"'")
		if len(word) > 3 && !stopwords[word] {
			out[word] = true
		}
	}
	return out
}

func sharesKeyword(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
