package safety

import (
	"regexp"

	"github.com/ekjot2727-png/ai-agent-sub001/internal/domain"
)

// Rule is a single risk pattern in the catalogue
type Rule struct {
	Pattern        *regexp.Regexp
	Category       domain.ViolationCategory
	Severity       domain.Severity
	Description    string
	Recommendation string
}

// catalogue is the fixed ordered list of risk patterns. Order matters
// only for reporting; every rule is evaluated.
var catalogue = []Rule{
	// Destructive operations
	{
		Pattern:        regexp.MustCompile(`(?i)\b(delete|drop|remove|wipe|destroy|truncate|purge)\b.*\b(all|every|entire)\b.*\b(production|prod|database|data|records)\b`),
		Category:       domain.CategoryDestructive,
		Severity:       domain.SeverityCritical,
		Description:    "Goal requests irreversible destruction of production data",
		Recommendation: "Scope the deletion to specific records and require a backup first",
	},
	{
		Pattern:        regexp.MustCompile(`(?i)\brm\s+-rf\b|\bformat\b.*\b(disk|drive|volume)\b`),
		Category:       domain.CategoryDestructive,
		Severity:       domain.SeverityCritical,
		Description:    "Goal contains a destructive filesystem command",
		Recommendation: "Name the exact paths to remove and exclude system directories",
	},
	{
		Pattern:        regexp.MustCompile(`(?i)\b(delete|drop|truncate|wipe)\b.*\b(database|table|schema|bucket)\b`),
		Category:       domain.CategoryDestructive,
		Severity:       domain.SeverityHigh,
		Description:    "Goal deletes a database object",
		Recommendation: "Confirm the target environment and take a snapshot before deleting",
	},
	{
		Pattern:        regexp.MustCompile(`(?i)\b(force[- ]push|overwrite|reset --hard)\b`),
		Category:       domain.CategoryDestructive,
		Severity:       domain.SeverityMedium,
		Description:    "Goal overwrites existing state",
		Recommendation: "Verify nothing depends on the state being replaced",
	},

	// Security
	{
		Pattern:        regexp.MustCompile(`(?i)\b(disable|bypass|skip|turn off|remove)\b.*\b(auth|authentication|authorization|security|validation|firewall|encryption)\b`),
		Category:       domain.CategorySecurity,
		Severity:       domain.SeverityCritical,
		Description:    "Goal weakens a security control",
		Recommendation: "State why the control blocks the goal and find a scoped exception instead",
	},
	{
		Pattern:        regexp.MustCompile(`(?i)\b(password|secret|credential|api[- ]?key|private key|token)s?\b`),
		Category:       domain.CategorySecurity,
		Severity:       domain.SeverityHigh,
		Description:    "Goal references credentials or secrets",
		Recommendation: "Use a secret manager reference instead of handling raw credentials",
	},
	{
		Pattern:        regexp.MustCompile(`(?i)\bsudo\b|\broot (access|account|user)\b|\badmin(istrator)? (rights|privileges)\b`),
		Category:       domain.CategorySecurity,
		Severity:       domain.SeverityMedium,
		Description:    "Goal requires elevated privileges",
		Recommendation: "Confirm the minimum privilege level actually needed",
	},

	// Resource usage
	{
		Pattern:        regexp.MustCompile(`(?i)\b(all|every)\b.*\b(servers?|nodes?|machines?|instances?|clusters?)\b`),
		Category:       domain.CategoryResource,
		Severity:       domain.SeverityMedium,
		Description:    "Goal touches every machine in the fleet",
		Recommendation: "Start with a canary subset before rolling out fleet-wide",
	},
	{
		Pattern:        regexp.MustCompile(`(?i)\b(unlimited|infinite|as many as possible|max(imum)? capacity)\b`),
		Category:       domain.CategoryResource,
		Severity:       domain.SeverityLow,
		Description:    "Goal has no stated resource bound",
		Recommendation: "Add an explicit limit on compute, storage, or spend",
	},

	// External effects
	{
		Pattern:        regexp.MustCompile(`(?i)\b(email|sms|message|notify)\b.*\b(all |every )?(users|customers|subscribers|everyone)\b`),
		Category:       domain.CategoryExternal,
		Severity:       domain.SeverityMedium,
		Description:    "Goal sends outbound communication to external recipients",
		Recommendation: "Dry-run against a test audience and confirm the recipient list",
	},
	{
		Pattern:        regexp.MustCompile(`(?i)\b(third[- ]party|external) (api|service|system)s?\b`),
		Category:       domain.CategoryExternal,
		Severity:       domain.SeverityLow,
		Description:    "Goal depends on a third-party service",
		Recommendation: "Note rate limits and failure behavior of the external dependency",
	},

	// Scope
	{
		Pattern:        regexp.MustCompile(`(?i)\b(everything|all systems|entire (system|codebase|infrastructure|stack))\b`),
		Category:       domain.CategoryScope,
		Severity:       domain.SeverityMedium,
		Description:    "Goal scope covers the entire system",
		Recommendation: "Split the goal into independently deliverable pieces",
	},
	{
		Pattern:        regexp.MustCompile(`(?i)\b(and also|as well as|plus)\b`),
		Category:       domain.CategoryScope,
		Severity:       domain.SeverityLow,
		Description:    "Goal bundles multiple objectives",
		Recommendation: "Run one objective per goal so failures stay isolated",
	},

	// Ambiguity
	{
		Pattern:        regexp.MustCompile(`(?i)\b(make (it|this|things) better|improve (it|this|things)|fix (it|this)|somehow|something like)\b`),
		Category:       domain.CategoryAmbiguity,
		Severity:       domain.SeverityMedium,
		Description:    "Goal is too vague to verify completion",
		Recommendation: "State a concrete, measurable outcome",
	},
	{
		Pattern:        regexp.MustCompile(`(?i)\b(better|nicer|cleaner|good|modern)\b\s*$`),
		Category:       domain.CategoryAmbiguity,
		Severity:       domain.SeverityLow,
		Description:    "Goal ends in a subjective quality with no measure",
		Recommendation: "Replace the adjective with a metric or acceptance criterion",
	},
}

// actionVerbs feeds the long-goal-without-context heuristic
var actionVerbRe = regexp.MustCompile(`(?i)\b(create|build|implement|deploy|migrate|delete|update|configure|install|refactor|automate|integrate|generate|remove)\b`)
