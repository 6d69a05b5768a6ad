package browser

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"time"
)

// Renderer errors.
var (
	// ErrChromeNotFound is returned when no Chrome/Chromium binary can be
	// located, either at the user-provided path or in PATH.
	ErrChromeNotFound = errors.New("no Chrome/Chromium binary found")

	// ErrFirefoxNotAvailable is returned when the Playwright-driven Firefox
	// engine cannot be started.
	ErrFirefoxNotAvailable = errors.New("firefox engine not available")

	// ErrNoRenderer is returned when no render engine could be initialized.
	ErrNoRenderer = errors.New("no render engine available")
)

// Options configures a render engine. The same options apply to every
// page rendered by the engine.
type Options struct {
	// UserAgent overrides the engine's default User-Agent when non-empty.
	UserAgent string

	// Headers are extra HTTP headers sent with every request.
	// A Cookie header may be included here for authenticated crawling.
	Headers map[string]string

	// Timeout is the per-page render timeout.
	Timeout time.Duration

	// Screenshot enables PNG screenshot capture for each rendered page.
	// The plain HTTP engine ignores this.
	Screenshot bool

	// MaxBody limits how many bytes of a response body the plain HTTP
	// engine reads. Zero means the default 5MB. Browser engines ignore
	// this; they stream the document through the browser process.
	MaxBody int64
}

// Result is the outcome of rendering a single page.
type Result struct {
	// HTML is the document markup. For browser engines this is the
	// rendered DOM serialized after JavaScript execution; for the plain
	// HTTP engine it is the served body.
	HTML string

	// Title is the page title, when the engine can observe it.
	Title string

	// StatusCode is the HTTP status of the main document.
	// Zero when the engine could not observe it.
	StatusCode int

	// Screenshot is the captured PNG image, when requested and supported.
	Screenshot []byte
}

// Renderer renders pages for the crawler.
//
// Design decision: We accept an interface here so the crawler and its
// tests do not depend on a browser binary being installed. Engines are
// created once per scan and must be closed to release browser processes.
type Renderer interface {
	// Name identifies the engine (chrome, firefox, http).
	Name() string

	// Render loads the page and returns the rendered result.
	// The context bounds the whole render, including navigation and
	// screenshot capture.
	Render(ctx context.Context, pageURL string) (*Result, error)

	// Close releases the engine's resources.
	Close() error
}

// chromeCandidates are binary names probed when no explicit path is given.
var chromeCandidates = []string{
	"google-chrome",
	"chromium",
	"chromium-browser",
	"google-chrome-stable",
}

// DetectChromePath locates a Chrome/Chromium binary in PATH.
// Returns an empty string when none is found.
func DetectChromePath() string {
	for _, name := range chromeCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// New creates the best available render engine.
//
// When useFirefox is true, Firefox is tried first. Otherwise Chrome is
// tried first and Firefox second. The plain HTTP engine is the final
// fallback so a scan always produces results, with a warning that
// JavaScript-generated content will be missed.
func New(chromePath string, useFirefox bool, opts Options, logger *slog.Logger) (Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if useFirefox {
		firefox, err := NewFirefox(opts)
		if err == nil {
			return firefox, nil
		}
		logger.Warn("firefox engine unavailable, falling back to chrome", "error", err)
	}

	chrome, err := NewChrome(chromePath, opts)
	if err == nil {
		return chrome, nil
	}
	logger.Warn("chrome engine unavailable", "error", err)

	if !useFirefox {
		firefox, err := NewFirefox(opts)
		if err == nil {
			return firefox, nil
		}
		logger.Warn("firefox engine unavailable", "error", err)
	}

	logger.Warn("no browser available, using plain HTTP fetcher; JavaScript-generated content will not be analyzed")
	return NewHTTP(opts), nil
}
