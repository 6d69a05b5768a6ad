package analyzer

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vexscan/vexscan/internal/model"
)

// suspiciousParamFragments are payload markers looked for in decoded
// query parameter values.
var suspiciousParamFragments = []string{
	"<script", "javascript:", "onerror=", "onload=",
}

// LinkAnalyzer inspects anchor elements for javascript: targets,
// inline handlers, and query parameters carrying script fragments.
type LinkAnalyzer struct{}

// NewLinkAnalyzer returns a LinkAnalyzer.
func NewLinkAnalyzer() *LinkAnalyzer {
	return &LinkAnalyzer{}
}

// Name returns the analyzer identifier.
func (la *LinkAnalyzer) Name() string { return "link" }

// Category returns the vector category.
func (la *LinkAnalyzer) Category() string { return CategoryURL }

// Analyze implements CheckAnalyzer.
func (la *LinkAnalyzer) Analyze(_ context.Context, data *AnalysisData) ([]model.Finding, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(data.Page.HTML))
	if err != nil {
		return nil, fmt.Errorf("link analyzer: parse html: %w", err)
	}

	var findings []model.Finding
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		trimmed := strings.TrimSpace(href)

		if strings.HasPrefix(strings.ToLower(trimmed), "javascript:") {
			findings = append(findings, model.NewFinding("url_xss",
				"Link with javascript: target",
				"An anchor navigates to a javascript: URL. The code after the scheme runs in page context when the link is followed.",
				truncateValue(trimmed, 100),
				data.Page.URL))
			return
		}

		node := sel.Get(0)
		for _, attr := range node.Attr {
			if isEventAttribute(attr.Key) {
				findings = append(findings, model.NewFinding("url_xss",
					fmt.Sprintf("Link with inline %s handler", attr.Key),
					fmt.Sprintf("An anchor carries an inline %s handler alongside its href, a pattern commonly used to smuggle script past link sanitizers.", attr.Key),
					truncateValue(attr.Key+"="+attr.Val, 100),
					data.Page.URL))
				break
			}
		}

		findings = append(findings, la.checkParams(trimmed)...)
	})
	return findings, nil
}

// checkParams flags query parameters whose decoded value contains a
// script fragment, which usually means the site reflects them.
func (la *LinkAnalyzer) checkParams(href string) []model.Finding {
	u, err := url.Parse(href)
	if err != nil || u.RawQuery == "" {
		return nil
	}

	var findings []model.Finding
	for key, values := range u.Query() {
		for _, value := range values {
			lower := strings.ToLower(value)
			for _, fragment := range suspiciousParamFragments {
				if strings.Contains(lower, fragment) {
					findings = append(findings, model.NewFinding("url_xss",
						fmt.Sprintf("Script fragment in %q parameter", key),
						fmt.Sprintf("The query parameter %q carries %q. Parameters holding markup are a strong signal of reflected XSS.", key, fragment),
						truncateValue(key+"="+value, 100),
						""))
					break
				}
			}
		}
	}
	return findings
}
