package report

import (
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vexscan/vexscan/internal/model"
)

// HTMLWriter outputs self-contained HTML reports with severity-colored
// vulnerability cards, per-page grouping, detail modals, and screenshot
// viewing. The result is a single file that opens in any browser with
// no external assets.
//
// Design decision: We use html/template rather than string concatenation
// because its contextual auto-escaping makes it impossible for a finding
// value (which is attacker-controlled markup by definition) to execute
// inside the report itself.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report as an HTML document.
func (w *HTMLWriter) Write(report *model.ScanReport) (int, error) {
	return w.WriteSummary(summaryOf(report))
}

// WriteSummary outputs the summary as an HTML document. When the
// summary has no findings a short success page is rendered instead of
// the full report layout.
func (w *HTMLWriter) WriteSummary(summary *model.Summary) (int, error) {
	tmpl := reportTemplate
	if !summary.HasFindings() {
		tmpl = emptyReportTemplate
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, buildHTMLData(summary)); err != nil {
		return 0, fmt.Errorf("report: render html: %w", err)
	}
	return w.output.Write([]byte(sb.String()))
}

// typeIcons maps finding types to their display icons.
var typeIcons = map[string]string{
	"input_xss":              "📝",
	"input_dangerous_usage":  "📝",
	"event_handler_xss":      "🔄",
	"event_handler_critical": "🔄",
	"script_xss":             "📜",
	"script_medium_risk":     "📜",
	"inline_script_xss":      "📃",
	"url_xss":                "🔗",
	"pattern_xss":            "🔍",
	"form_action_xss":        "📋",
}

// htmlData is the root template context.
type htmlData struct {
	Target        string
	Timestamp     string
	PagesCrawled  int
	TotalFindings int
	URLCount      int
	TimedOut      bool
	ErrorMessage  string
	SeverityRows  []severityRow
	TypeRows      []typeRow
	Groups        []urlGroup
}

// severityRow is one line of the severity summary table.
type severityRow struct {
	Label string
	Class string
	Count int
}

// typeRow is one line of the vector type summary table.
type typeRow struct {
	Icon  string
	Label string
	Count int
}

// urlGroup holds the findings for one analyzed page.
type urlGroup struct {
	URL   string
	Cards []vulnCard
}

// vulnCard is one finding rendered as a card with a detail modal.
type vulnCard struct {
	ID             string
	Icon           string
	Title          string
	Description    string
	Impact         string
	Recommendation string
	SeverityText   string
	SeverityClass  string
	TypeLabel      string
	Value          string
	Location       string
	ScreenshotSrc  string
}

// severityClass maps a severity to the CSS class suffix used by the
// card border and badge styles.
func severityClass(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "critical"
	case model.SeverityHigh:
		return "high"
	case model.SeverityMedium:
		return "medium"
	case model.SeverityLow:
		return "low"
	default:
		return "info"
	}
}

// buildHTMLData flattens a summary into the template context.
func buildHTMLData(summary *model.Summary) *htmlData {
	data := &htmlData{
		Target:        summary.Target,
		Timestamp:     summary.DateScanned.Format("2006-01-02 15:04:05 MST"),
		PagesCrawled:  summary.PagesCrawled,
		TotalFindings: summary.TotalFindings(),
		TimedOut:      summary.TimedOut,
		ErrorMessage:  summary.Error,
		SeverityRows: []severityRow{
			{Label: "Critical", Class: "critical", Count: summary.CriticalCount},
			{Label: "High", Class: "high", Count: summary.HighCount},
			{Label: "Medium", Class: "medium", Count: summary.MediumCount},
			{Label: "Low", Class: "low", Count: summary.LowCount},
			{Label: "Info", Class: "info", Count: summary.InfoCount},
		},
	}

	for _, tc := range countByType(summary.Findings) {
		icon, ok := typeIcons[tc.Type]
		if !ok {
			icon = "🔴"
		}
		data.TypeRows = append(data.TypeRows, typeRow{
			Icon:  icon,
			Label: typeLabel(tc.Type),
			Count: tc.Count,
		})
	}

	// Group findings by page URL, keeping first-seen page order.
	groupIndex := make(map[string]int)
	for i, f := range summary.Findings {
		icon, ok := typeIcons[f.Type]
		if !ok {
			icon = "🔴"
		}

		card := vulnCard{
			ID:             "vuln-" + strconv.Itoa(i+1),
			Icon:           icon,
			Title:          f.Title,
			Description:    f.Description,
			Impact:         f.Impact,
			Recommendation: f.Recommendation,
			SeverityText:   f.SeverityText,
			SeverityClass:  severityClass(f.Severity),
			TypeLabel:      typeLabel(f.Type),
			Value:          f.Value,
			Location:       f.Location,
		}
		if f.Screenshot != "" {
			card.ScreenshotSrc = "screenshots/" + filepath.Base(f.Screenshot)
		}

		key := f.Location
		if key == "" {
			key = summary.Target
		}
		idx, ok := groupIndex[key]
		if !ok {
			idx = len(data.Groups)
			groupIndex[key] = idx
			data.Groups = append(data.Groups, urlGroup{URL: key})
		}
		data.Groups[idx].Cards = append(data.Groups[idx].Cards, card)
	}

	data.URLCount = len(data.Groups)
	return data
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>XSS Scan Report</title>
<style>
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0; background-color: #f5f5f5; }
.container { max-width: 1200px; margin: 0 auto; padding: 20px; }
header { background-color: #2c3e50; color: white; padding: 20px; border-radius: 5px 5px 0 0; }
h1, h2, h3 { margin-top: 0; }
.summary-box { background-color: white; border-radius: 5px; box-shadow: 0 2px 5px rgba(0,0,0,0.1); padding: 20px; margin-bottom: 20px; }
.chart-container { display: flex; justify-content: space-around; flex-wrap: wrap; }
.chart { width: 45%; min-width: 300px; margin-bottom: 20px; }
.vulnerability-list { background-color: white; border-radius: 5px; box-shadow: 0 2px 5px rgba(0,0,0,0.1); margin-bottom: 20px; }
.vulnerability-card { border-left: 4px solid #ddd; margin: 10px; padding: 15px; background-color: #fff; border-radius: 3px; box-shadow: 0 1px 3px rgba(0,0,0,0.1); }
.critical { border-left-color: #c9302c; }
.high { border-left-color: #d9534f; }
.medium { border-left-color: #f0ad4e; }
.low { border-left-color: #5bc0de; }
.info { border-left-color: #5cb85c; }
.severity-badge { display: inline-block; padding: 3px 8px; color: white; border-radius: 3px; font-size: 12px; font-weight: bold; margin-right: 10px; }
.severity-critical { background-color: #c9302c; }
.severity-high { background-color: #d9534f; }
.severity-medium { background-color: #f0ad4e; }
.severity-low { background-color: #5bc0de; }
.severity-info { background-color: #5cb85c; }
.details-button { background-color: #3498db; color: white; border: none; padding: 5px 10px; border-radius: 3px; cursor: pointer; font-size: 12px; }
.details-button:hover { background-color: #2980b9; }
.modal { display: none; position: fixed; z-index: 1; left: 0; top: 0; width: 100%; height: 100%; overflow: auto; background-color: rgba(0,0,0,0.4); }
.modal-content { background-color: #fefefe; margin: 10% auto; padding: 20px; border: 1px solid #888; width: 80%; max-width: 800px; border-radius: 5px; }
.close { color: #aaa; float: right; font-size: 28px; font-weight: bold; }
.close:hover, .close:focus { color: black; text-decoration: none; cursor: pointer; }
table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
th, td { padding: 10px; border-bottom: 1px solid #ddd; text-align: left; }
th { background-color: #f2f2f2; }
.screenshot-thumbnail { max-width: 200px; max-height: 150px; cursor: pointer; }
.screenshot-modal { display: none; position: fixed; z-index: 2; left: 0; top: 0; width: 100%; height: 100%; overflow: auto; background-color: rgba(0,0,0,0.9); }
.screenshot-modal-content { margin: auto; display: block; max-width: 80%; max-height: 80%; }
.url-box { background-color: #f9f9f9; padding: 10px; margin-bottom: 20px; border-radius: 3px; border-left: 4px solid #3498db; }
.badge { display: inline-block; background-color: #e7e7e7; padding: 3px 8px; border-radius: 10px; font-size: 12px; margin-right: 5px; }
.recommendation-box { background-color: #dff0d8; padding: 10px 15px; border-radius: 3px; border-left: 3px solid #5cb85c; margin-top: 10px; }
.status-banner { background-color: #fcf8e3; border-left: 4px solid #f0ad4e; padding: 10px 15px; margin-bottom: 20px; border-radius: 3px; }
code { background-color: #f4f4f4; padding: 2px 4px; border-radius: 3px; font-size: 13px; word-break: break-all; }
footer { text-align: center; margin-top: 20px; padding: 10px; font-size: 12px; color: #777; }
</style>
</head>
<body>
<div class="container">
  <header>
    <h1>📊 XSS Scan Report</h1>
    <p>Target: {{.Target}} &middot; {{.Timestamp}}</p>
  </header>

  {{if .TimedOut}}<div class="status-banner">⚠️ The scan timed out; this report covers partial results.</div>{{end}}
  {{if .ErrorMessage}}<div class="status-banner">❌ The scan ended with an error: {{.ErrorMessage}}</div>{{end}}

  <div class="summary-box">
    <h2>Scan Summary</h2>
    <p>
      <strong>Total findings:</strong> {{.TotalFindings}}<br>
      <strong>Pages crawled:</strong> {{.PagesCrawled}}<br>
      <strong>Pages with findings:</strong> {{.URLCount}}
    </p>
    <div class="chart-container">
      <div class="chart">
        <h3>Findings by Severity</h3>
        <table>
          <tr><th>Severity</th><th>Count</th></tr>
          {{range .SeverityRows}}<tr><td><span class="severity-badge severity-{{.Class}}">{{.Label}}</span></td><td>{{.Count}}</td></tr>
          {{end}}
        </table>
      </div>
      <div class="chart">
        <h3>Findings by Type</h3>
        <table>
          <tr><th>Type</th><th>Count</th></tr>
          {{range .TypeRows}}<tr><td>{{.Icon}} {{.Label}}</td><td>{{.Count}}</td></tr>
          {{end}}
        </table>
      </div>
    </div>
  </div>

  <h2>Finding Details</h2>
  {{range .Groups}}
  <div class="url-box">
    <h3>🌐 {{.URL}}</h3>
    <p>Findings on this page: {{len .Cards}}</p>
  </div>
  <div class="vulnerability-list">
    {{range .Cards}}
    <div class="vulnerability-card {{.SeverityClass}}">
      <h4><span class="severity-badge severity-{{.SeverityClass}}">{{.SeverityText}}</span>{{.Icon}} {{.Title}}</h4>
      <p>{{.Description}}</p>
      {{if .Recommendation}}<div class="recommendation-box"><strong>Recommendation:</strong> {{.Recommendation}}</div>{{end}}
      <div style="margin-top: 10px;"><span class="badge">{{.TypeLabel}}</span></div>
      <button class="details-button" data-vuln-id="{{.ID}}">View Details</button>
    </div>
    <div id="{{.ID}}-modal" class="modal">
      <div class="modal-content">
        <span class="close" data-close-id="{{.ID}}">&times;</span>
        <h3>Finding Details</h3>
        <table>
          <tr><th>URL</th><td>{{.Location}}</td></tr>
          <tr><th>Type</th><td>{{.TypeLabel}}</td></tr>
          <tr><th>Severity</th><td><span class="severity-badge severity-{{.SeverityClass}}">{{.SeverityText}}</span></td></tr>
          <tr><th>Description</th><td>{{.Description}}</td></tr>
          {{if .Impact}}<tr><th>Impact</th><td>{{.Impact}}</td></tr>{{end}}
          {{if .Recommendation}}<tr><th>Recommendation</th><td>{{.Recommendation}}</td></tr>{{end}}
          {{if .Value}}<tr><th>Evidence</th><td><code>{{.Value}}</code></td></tr>{{end}}
          {{if .ScreenshotSrc}}<tr><th>Screenshot</th><td><img src="{{.ScreenshotSrc}}" class="screenshot-thumbnail" data-screenshot="{{.ScreenshotSrc}}"></td></tr>{{end}}
        </table>
      </div>
    </div>
    {{end}}
  </div>
  {{end}}

  <div id="screenshot-modal" class="screenshot-modal">
    <span class="close" id="screenshot-close">&times;</span>
    <img id="screenshot-modal-img" class="screenshot-modal-content">
  </div>

  <footer>
    <p>Report generated by vexscan</p>
  </footer>
</div>
<script>
function showModal(id) {
  var modal = document.getElementById(id + '-modal');
  if (modal) { modal.style.display = 'block'; }
}
function closeModal(id) {
  var modal = document.getElementById(id + '-modal');
  if (modal) { modal.style.display = 'none'; }
}
window.onclick = function(event) {
  if (event.target.classList.contains('modal')) { event.target.style.display = 'none'; }
};
document.addEventListener('DOMContentLoaded', function() {
  document.querySelectorAll('.details-button').forEach(function(button) {
    button.addEventListener('click', function() { showModal(this.getAttribute('data-vuln-id')); });
  });
  document.querySelectorAll('.close').forEach(function(button) {
    button.addEventListener('click', function() {
      var id = this.getAttribute('data-close-id');
      if (id) { closeModal(id); return; }
      var modal = this.closest('.modal, .screenshot-modal');
      if (modal) { modal.style.display = 'none'; }
    });
  });
  document.querySelectorAll('.screenshot-thumbnail').forEach(function(img) {
    img.addEventListener('click', function() {
      var modal = document.getElementById('screenshot-modal');
      var modalImg = document.getElementById('screenshot-modal-img');
      if (modal && modalImg) {
        modal.style.display = 'block';
        modalImg.src = this.getAttribute('data-screenshot');
      }
    });
  });
});
</script>
</body>
</html>
`))

var emptyReportTemplate = template.Must(template.New("empty").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>XSS Scan Report</title>
<style>
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0; background-color: #f5f5f5; }
.container { max-width: 800px; margin: 0 auto; padding: 20px; }
header { background-color: #2c3e50; color: white; padding: 20px; border-radius: 5px 5px 0 0; }
.content-box { background-color: white; border-radius: 0 0 5px 5px; box-shadow: 0 2px 5px rgba(0,0,0,0.1); padding: 20px; text-align: center; }
.success-icon { font-size: 64px; color: #5cb85c; margin: 20px 0; }
footer { text-align: center; margin-top: 20px; padding: 10px; font-size: 12px; color: #777; }
</style>
</head>
<body>
<div class="container">
  <header>
    <h1>📊 XSS Scan Report</h1>
    <p>Target: {{.Target}} &middot; {{.Timestamp}}</p>
  </header>
  <div class="content-box">
    <div class="success-icon">✓</div>
    <h2>No XSS vectors found</h2>
    <p>The scan finished and none of the {{.PagesCrawled}} analyzed page(s) showed a detectable XSS vector.</p>
    <p>This is a good result, but keep applying secure output encoding and re-scan after significant changes.</p>
  </div>
  <footer>
    <p>Report generated by vexscan</p>
  </footer>
</div>
</body>
</html>
`))
