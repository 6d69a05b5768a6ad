// Package analyzer detects potential XSS vectors in rendered pages.
//
// # Architecture
//
// The package follows a coordinator pattern: the Analyzer runs a list of
// registered CheckAnalyzer implementations over each page and aggregates
// their findings. Each analyzer focuses on one vector category:
//
//   - InputAnalyzer: input, textarea, and select elements with
//     script-capable attributes, plus inputs consumed by dangerous sinks
//   - EventAnalyzer: inline event handler attributes on any element
//   - ScriptAnalyzer: risk scoring of script bodies
//   - LinkAnalyzer: javascript: URLs and script-like query parameters
//   - PatternAnalyzer: raw-markup constructs that can carry script
//   - FormAnalyzer: javascript: form actions
//
// When a page screenshot is available, input fields detected in the
// image corroborate the DOM-level input findings.
//
// The analyzers are heuristic. They flag constructs that commonly enable
// XSS rather than proving exploitability, so findings are review leads,
// not confirmed vulnerabilities.
package analyzer
