package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vexscan/vexscan/internal/model"
)

// FormAnalyzer flags forms whose action executes script instead of
// submitting to a URL.
type FormAnalyzer struct{}

// NewFormAnalyzer returns a FormAnalyzer.
func NewFormAnalyzer() *FormAnalyzer {
	return &FormAnalyzer{}
}

// Name returns the analyzer identifier.
func (fa *FormAnalyzer) Name() string { return "form" }

// Category returns the vector category.
func (fa *FormAnalyzer) Category() string { return CategoryForm }

// Analyze implements CheckAnalyzer.
func (fa *FormAnalyzer) Analyze(_ context.Context, data *AnalysisData) ([]model.Finding, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(data.Page.HTML))
	if err != nil {
		return nil, fmt.Errorf("form analyzer: parse html: %w", err)
	}

	var findings []model.Finding
	doc.Find("form").Each(func(_ int, sel *goquery.Selection) {
		action, ok := sel.Attr("action")
		if !ok {
			return
		}
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(action)), "javascript:") {
			label := "form"
			if id, ok := sel.Attr("id"); ok && id != "" {
				label = fmt.Sprintf("form[id=%s]", id)
			}
			findings = append(findings, model.NewFinding("form_action_xss",
				fmt.Sprintf("Script URL as %s action", label),
				"The form action is a javascript: URL, so submitting the form executes the embedded code with whatever values the user entered.",
				truncateValue("action="+action, 100),
				data.Page.URL))
		}
	})
	return findings, nil
}
