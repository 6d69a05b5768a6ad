package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vexscan/vexscan/internal/model"
)

// dangerousSinkRe matches script code that writes attacker-controllable
// data into the DOM or executes it.
var dangerousSinkRe = regexp.MustCompile(`(?i)(eval\s*\(|document\.write\s*\(|innerHTML\s*=|outerHTML\s*=|insertAdjacentHTML\s*\()`)

// InputAnalyzer inspects input, textarea, and select elements for
// script-capable attributes, and correlates input names against inline
// scripts that feed them into dangerous sinks.
type InputAnalyzer struct{}

// NewInputAnalyzer returns an InputAnalyzer.
func NewInputAnalyzer() *InputAnalyzer {
	return &InputAnalyzer{}
}

// Name returns the analyzer identifier.
func (ia *InputAnalyzer) Name() string { return "input" }

// Category returns the vector category.
func (ia *InputAnalyzer) Category() string { return CategoryInput }

// Analyze implements CheckAnalyzer.
func (ia *InputAnalyzer) Analyze(_ context.Context, data *AnalysisData) ([]model.Finding, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(data.Page.HTML))
	if err != nil {
		return nil, fmt.Errorf("input analyzer: parse html: %w", err)
	}

	var findings []model.Finding
	var inputNames []string

	doc.Find("input, textarea, select").Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		tag := node.Data

		label := elementLabel(sel, tag)
		if name, ok := sel.Attr("name"); ok && name != "" {
			inputNames = append(inputNames, name)
		}
		if id, ok := sel.Attr("id"); ok && id != "" {
			inputNames = append(inputNames, id)
		}

		for _, attr := range node.Attr {
			if isEventAttribute(attr.Key) {
				f := model.NewFinding("input_xss",
					fmt.Sprintf("Event handler on %s", label),
					fmt.Sprintf("The %s element carries an inline %s handler. Handlers on form fields run in page context and can execute injected script.", label, attr.Key),
					truncateValue(attr.Key+"="+attr.Val, 100),
					data.Page.URL)
				f = ia.corroborate(f, data)
				findings = append(findings, f)
				continue
			}
			if strings.Contains(strings.ToLower(attr.Val), "javascript:") {
				f := model.NewFinding("input_xss",
					fmt.Sprintf("Script URL in %s attribute", label),
					fmt.Sprintf("The %s attribute of %s contains a javascript: URL.", attr.Key, label),
					truncateValue(attr.Key+"="+attr.Val, 100),
					data.Page.URL)
				f = ia.corroborate(f, data)
				findings = append(findings, f)
			}
		}

		if tag == "select" {
			sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
				if val, ok := opt.Attr("value"); ok && strings.Contains(strings.ToLower(val), "javascript:") {
					findings = append(findings, model.NewFinding("input_xss",
						fmt.Sprintf("Script URL in %s option", label),
						"An option value of the select element contains a javascript: URL.",
						truncateValue("value="+val, 100),
						data.Page.URL))
				}
			})
		}
	})

	findings = append(findings, ia.dangerousUsage(data, inputNames)...)
	return findings, nil
}

// dangerousUsage reports inputs whose name or id is referenced by an
// inline script that also uses a dangerous DOM sink. The check is
// textual, so indirect data flow through intermediate variables is not
// tracked.
func (ia *InputAnalyzer) dangerousUsage(data *AnalysisData, names []string) []model.Finding {
	var findings []model.Finding
	for _, script := range data.Page.InlineScripts() {
		if !dangerousSinkRe.MatchString(script.Content) {
			continue
		}
		for _, name := range names {
			if !strings.Contains(script.Content, name) {
				continue
			}
			findings = append(findings, model.NewFinding("input_dangerous_usage",
				fmt.Sprintf("Input %q flows into a dangerous sink", name),
				fmt.Sprintf("An inline script references the input %q and writes to the DOM through %s. If the input value reaches the sink unescaped, injected markup executes.", name, dangerousSinkRe.FindString(script.Content)),
				truncateValue(name, 100),
				data.Page.URL))
		}
	}
	return findings
}

// corroborate notes visually confirmed input fields on a finding.
func (ia *InputAnalyzer) corroborate(f model.Finding, data *AnalysisData) model.Finding {
	if len(data.VisualFields) > 0 {
		f.Description += fmt.Sprintf(" The screenshot shows %d rendered input field(s), confirming the element is user reachable.", len(data.VisualFields))
	}
	return f
}

// elementLabel builds a short human-readable element identifier.
func elementLabel(sel *goquery.Selection, tag string) string {
	if name, ok := sel.Attr("name"); ok && name != "" {
		return fmt.Sprintf("%s[name=%s]", tag, name)
	}
	if id, ok := sel.Attr("id"); ok && id != "" {
		return fmt.Sprintf("%s[id=%s]", tag, id)
	}
	return tag
}
