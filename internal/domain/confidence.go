package domain

// ClarityScore breaks down how well-specified a goal is
type ClarityScore struct {
	Specificity     float64
	Actionability   float64
	Measurability   float64
	ContextRichness float64
	Overall         float64
}

// HistoricalScore summarizes prior-run performance relevant to a goal
type HistoricalScore struct {
	SimilarSuccessRate float64
	OverallSuccessRate float64
	RecentTrend        float64
	SampleSize         int
	Overall            float64
}

// ComplexityScore decreases as the draft plan gets bigger and riskier
type ComplexityScore struct {
	TaskCount       int
	EstimatedMins   float64
	DependencyDepth float64
	Risk            float64
	Overall         float64
}

// ConfidenceAssessment blends clarity, history and complexity into a
// single execution recommendation. Read-only after creation.
type ConfidenceAssessment struct {
	Clarity         ClarityScore
	Historical      HistoricalScore
	Complexity      ComplexityScore
	Overall         float64
	Level           ConfidenceLevel
	Proceed         bool
	CautionLevel    string
	Approach        string
	NegativeFactors []string
}

// RunRecord is the slice of a finished run the confidence estimator
// reads back: what was asked, whether it worked, how well
type RunRecord struct {
	Goal    string
	Success bool
	Score   float64
}
