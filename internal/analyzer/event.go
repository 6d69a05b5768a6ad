package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vexscan/vexscan/internal/model"
)

// eventAttributes lists the inline handler attributes inspected on
// every element.
var eventAttributes = []string{
	"onclick", "ondblclick", "onmousedown", "onmouseup", "onmouseover",
	"onmousemove", "onmouseout", "onkeypress", "onkeydown", "onkeyup",
	"onload", "onunload", "onabort", "onerror", "onresize", "onscroll",
	"onselect", "onchange", "onsubmit", "onreset", "onfocus", "onblur",
	"oninput", "oninvalid", "onsearch",
}

// highRiskEvents fire on common user interaction or page load, so code
// in them runs reliably.
var highRiskEvents = map[string]bool{
	"onclick":    true,
	"onkeypress": true,
	"onkeyup":    true,
	"onkeydown":  true,
	"onchange":   true,
	"onsubmit":   true,
	"onload":     true,
	"onerror":    true,
}

// dangerousHandlerMarkers are code fragments that escalate an inline
// handler from suspicious to critical.
var dangerousHandlerMarkers = []string{
	"eval(", "function(", "document.write", "innerhtml", "location",
}

func isEventAttribute(key string) bool {
	for _, attr := range eventAttributes {
		if key == attr {
			return true
		}
	}
	return false
}

// EventAnalyzer flags inline event handler attributes anywhere in the
// document. One finding is reported per element, using the first
// handler found on it.
type EventAnalyzer struct{}

// NewEventAnalyzer returns an EventAnalyzer.
func NewEventAnalyzer() *EventAnalyzer {
	return &EventAnalyzer{}
}

// Name returns the analyzer identifier.
func (ea *EventAnalyzer) Name() string { return "event-handler" }

// Category returns the vector category.
func (ea *EventAnalyzer) Category() string { return CategoryEvent }

// Analyze implements CheckAnalyzer.
func (ea *EventAnalyzer) Analyze(_ context.Context, data *AnalysisData) ([]model.Finding, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(data.Page.HTML))
	if err != nil {
		return nil, fmt.Errorf("event analyzer: parse html: %w", err)
	}

	var findings []model.Finding
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		for _, attr := range node.Attr {
			if !isEventAttribute(attr.Key) {
				continue
			}

			findingType := "event_handler_xss"
			if highRiskEvents[attr.Key] && containsDangerousCode(attr.Val) {
				findingType = "event_handler_critical"
			}

			findings = append(findings, model.NewFinding(findingType,
				fmt.Sprintf("Inline %s handler on <%s>", attr.Key, node.Data),
				fmt.Sprintf("The <%s> element carries an inline %s handler. Inline handlers execute in page context and bypass script-src restrictions when 'unsafe-inline' is allowed.", node.Data, attr.Key),
				truncateValue(attr.Key+"="+attr.Val, 100),
				data.Page.URL))
			return
		}
	})
	return findings, nil
}

// containsDangerousCode reports whether handler code reaches a sink
// that executes or writes markup.
func containsDangerousCode(code string) bool {
	lower := strings.ToLower(code)
	for _, marker := range dangerousHandlerMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
