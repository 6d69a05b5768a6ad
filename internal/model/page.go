package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// MaxHTMLSize is the maximum size of rendered HTML to retain per page.
// Larger documents are truncated to keep reports and memory bounded.
const MaxHTMLSize = 5 * 1024 * 1024 // 5 MB

// Page represents a crawled web page after headless-browser rendering.
//
// Design decision: We store the rendered DOM rather than the raw transfer
// body because XSS analysis cares about what the browser actually built:
// script-generated markup, resolved event handlers, and injected nodes are
// only visible post-render.
type Page struct {
	// URL is the full URL of the page.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	// Zero when the renderer cannot observe it (browser navigation).
	StatusCode int `json:"status_code,omitempty"`

	// Title is the page title extracted from the <title> tag.
	Title string `json:"title,omitempty"`

	// HTML is the rendered document markup.
	// Limited to MaxHTMLSize bytes.
	HTML string `json:"-"` // Excluded from JSON to keep reports small

	// Scripts contains the scripts found on the page, inline and external.
	Scripts []Script `json:"scripts,omitempty"`

	// Links contains all resolved link URLs discovered on the page.
	Links []string `json:"links,omitempty"`

	// ScreenshotPath is the path to the captured screenshot, if any.
	ScreenshotPath string `json:"screenshot_path,omitempty"`

	// Hash is the SHA-256 hash of the rendered HTML.
	// Used for deduplication and change detection across scans.
	Hash string `json:"hash,omitempty"`

	// Depth is the link distance from the start URL.
	Depth int `json:"depth"`
}

// Script represents a script associated with a page.
type Script struct {
	// Inline is true for scripts embedded in the document,
	// false for scripts referenced via src.
	Inline bool `json:"inline"`

	// Src is the resolved script URL for external scripts.
	Src string `json:"src,omitempty"`

	// Content is the script body for inline scripts.
	Content string `json:"-"` // Excluded from JSON to keep reports small
}

// ComputeHash computes and stores the SHA-256 hash of the rendered HTML.
func (p *Page) ComputeHash() {
	sum := sha256.Sum256([]byte(p.HTML))
	p.Hash = hex.EncodeToString(sum[:])
}

// TruncateHTML enforces MaxHTMLSize on the rendered markup.
// Call after ComputeHash so the hash reflects the full content.
func (p *Page) TruncateHTML() {
	if len(p.HTML) > MaxHTMLSize {
		p.HTML = p.HTML[:MaxHTMLSize]
	}
}

// InlineScripts returns only the inline scripts of the page.
func (p *Page) InlineScripts() []Script {
	inline := make([]Script, 0, len(p.Scripts))
	for _, s := range p.Scripts {
		if s.Inline {
			inline = append(inline, s)
		}
	}
	return inline
}
