package safety

import "github.com/ekjot2727-png/ai-agent-sub001/internal/domain"

// clarificationTemplate maps a violation category to the structured
// question the caller should answer before proceeding
type clarificationTemplate struct {
	question  string
	rationale string
	fixes     []string
}

var clarificationTemplates = map[domain.ViolationCategory]clarificationTemplate{
	domain.CategoryAmbiguity: {
		question:  "What concrete, measurable outcome should this goal produce?",
		rationale: "The goal as stated cannot be verified as done or not done",
		fixes: []string{
			"Name the system or component the goal applies to",
			"Add a metric or acceptance criterion",
		},
	},
	domain.CategorySecurity: {
		question:  "Which security boundary does this goal need to cross, and why?",
		rationale: "The goal touches credentials or security controls",
		fixes: []string{
			"Reference secrets via a secret manager",
			"Request a scoped exception instead of disabling a control",
		},
	},
	domain.CategoryDestructive: {
		question:  "What exactly may be deleted or overwritten, and is there a backup?",
		rationale: "The goal performs operations that cannot be undone",
		fixes: []string{
			"List the exact targets of the destructive operation",
			"Confirm a restore path exists before proceeding",
		},
	},
	domain.CategoryResource: {
		question:  "What resource limits apply to this goal?",
		rationale: "Unbounded operations can exhaust shared capacity",
		fixes: []string{
			"Set an explicit limit on machines, storage, or spend",
			"Run against a canary subset first",
		},
	},
	domain.CategoryExternal: {
		question:  "Which external parties are affected, and do they expect this?",
		rationale: "The goal has effects outside systems you control",
		fixes: []string{
			"Confirm the recipient or dependency list",
			"Dry-run against a test audience",
		},
	},
	domain.CategoryScope: {
		question:  "Can this goal be split into smaller independent goals?",
		rationale: "Broad goals couple unrelated failures together",
		fixes: []string{
			"Run one objective per goal",
			"Order the pieces by dependency",
		},
	},
}

// advisoryCategories never require an answer before execution
var advisoryCategories = map[domain.ViolationCategory]bool{
	domain.CategoryScope:    true,
	domain.CategoryResource: true,
	domain.CategoryExternal: true,
}

// buildClarifications emits one request per violation category
// present. Ambiguity requests and requests for categories carrying a
// critical violation are required; scope, resource and external
// requests are advisory.
func buildClarifications(violations []domain.SafetyViolation) []domain.ClarificationRequest {
	worst := make(map[domain.ViolationCategory]domain.Severity)
	var order []domain.ViolationCategory
	for _, v := range violations {
		if _, seen := worst[v.Category]; !seen {
			order = append(order, v.Category)
			worst[v.Category] = v.Severity
		} else if severityPoints[v.Severity] > severityPoints[worst[v.Category]] {
			worst[v.Category] = v.Severity
		}
	}

	var out []domain.ClarificationRequest
	for _, cat := range order {
		tpl, ok := clarificationTemplates[cat]
		if !ok {
			continue
		}
		required := cat == domain.CategoryAmbiguity ||
			(!advisoryCategories[cat] && worst[cat] == domain.SeverityCritical)
		out = append(out, domain.ClarificationRequest{
			Category:     cat,
			Question:     tpl.question,
			Rationale:    tpl.rationale,
			SuggestedFix: tpl.fixes,
			Required:     required,
		})
	}
	return out
}
