package model

// Severity represents the risk level of a potential XSS finding.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates informational findings with no direct risk.
	// Examples: forms without suspicious attributes, parameterized links.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor issues with limited exploitability.
	// Examples: scripts with a low risk score, uncommon event attributes.
	SeverityLow

	// SeverityMedium indicates issues that warrant manual review.
	// Examples: suspicious input attributes, inline scripts with risky
	// patterns, links carrying script-like query parameters.
	SeverityMedium

	// SeverityHigh indicates likely-exploitable issues.
	// Examples: user input flowing into dangerous sinks, high-risk scripts,
	// event handlers executing eval or document.write.
	SeverityHigh

	// SeverityCritical indicates confirmed or near-certain XSS.
	// Reserved for findings where a payload demonstrably executes.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// FindingInfo contains metadata about a finding type including severity,
// impact description, and remediation recommendation.
type FindingInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// findingInfoMapping maps finding types to their metadata.
// This centralized mapping keeps risk assessment consistent across analyzers
// and gives every report the same remediation text for the same issue.
var findingInfoMapping = map[string]FindingInfo{
	"input_xss": {
		Severity:       SeverityMedium,
		Impact:         "An input field carries attributes that can execute script, allowing attacker-controlled values to run in the victim's browser.",
		Recommendation: "Validate and sanitize all user input. Remove inline event handlers and javascript: values from input elements.",
	},
	"input_dangerous_usage": {
		Severity:       SeverityHigh,
		Impact:         "A user input field is read by a script that passes its value to a dangerous sink (eval, innerHTML, document.write) without visible sanitization.",
		Recommendation: "Sanitize input before use and replace dangerous sinks with safe DOM APIs such as textContent.",
	},
	"event_handler_xss": {
		Severity:       SeverityMedium,
		Impact:         "Inline event handler attributes execute JavaScript in the page context and are a common XSS injection point.",
		Recommendation: "Avoid inline JavaScript in event attributes. Attach handlers from external scripts and apply a restrictive Content-Security-Policy.",
	},
	"event_handler_critical": {
		Severity:       SeverityHigh,
		Impact:         "An inline event handler invokes dangerous functions (eval, document.write, innerHTML, location), so any injected attribute value executes directly.",
		Recommendation: "Remove the inline handler, move the logic to a reviewed external script, and sanitize every value that reaches it.",
	},
	"script_xss": {
		Severity:       SeverityHigh,
		Impact:         "A script on the page combines dangerous functions, unsanitized input handling, or obfuscation in a way that typically enables XSS.",
		Recommendation: "Review the script, sanitize user input before use, and avoid eval(), document.write(), and direct innerHTML assignment.",
	},
	"script_medium_risk": {
		Severity:       SeverityMedium,
		Impact:         "A script contains potentially unsafe constructs that could enable XSS depending on the data that reaches them.",
		Recommendation: "Review the script and add sanitization for any user-controlled values it processes.",
	},
	"inline_script_xss": {
		Severity:       SeverityMedium,
		Impact:         "An inline script contains patterns commonly associated with XSS (dynamic code execution, DOM writes from variables).",
		Recommendation: "Move the script to an external file, review its data flow, and sanitize user-controlled values.",
	},
	"url_xss": {
		Severity:       SeverityMedium,
		Impact:         "A link on the page embeds a script-capable URL or parameter, which executes when followed or reflected.",
		Recommendation: "Validate and sanitize URLs before rendering links. Reject javascript: and data: schemes in href values.",
	},
	"pattern_xss": {
		Severity:       SeverityMedium,
		Impact:         "The raw HTML contains a construct (javascript: URI, CSS expression, formaction, meta refresh) that can carry executable script.",
		Recommendation: "Review the flagged markup and encode or remove the script-capable construct.",
	},
	"form_action_xss": {
		Severity:       SeverityMedium,
		Impact:         "A form action uses a javascript: URL, so submitting the form executes script.",
		Recommendation: "Use plain HTTP(S) form actions and validate the action server-side.",
	},
}

// GetFindingInfo returns the metadata for a given finding type.
// Returns false if the type is unknown; callers should then fall back to
// their own severity judgement.
func GetFindingInfo(findingType string) (FindingInfo, bool) {
	info, ok := findingInfoMapping[findingType]
	return info, ok
}

// FindingTypes returns all known finding type identifiers.
// Useful for documentation and report legends.
func FindingTypes() []string {
	types := make([]string, 0, len(findingInfoMapping))
	for t := range findingInfoMapping {
		types = append(types, t)
	}
	return types
}
