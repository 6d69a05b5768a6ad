package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Firefox renders pages with a headless Firefox driven through Playwright.
// One browser process is shared across the scan; every Render call opens
// a fresh page in the shared context.
type Firefox struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	opts    Options
}

// NewFirefox creates a Firefox render engine.
// Returns ErrFirefoxNotAvailable (wrapping the cause) when Playwright or
// the Firefox browser cannot be started.
func NewFirefox(opts Options) (*Firefox, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFirefoxNotAvailable, err)
	}

	firefox, err := pw.Firefox.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("%w: %v", ErrFirefoxNotAvailable, err)
	}

	ctxOpts := playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(true),
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
	}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}

	browserCtx, err := firefox.NewContext(ctxOpts)
	if err != nil {
		_ = firefox.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("%w: %v", ErrFirefoxNotAvailable, err)
	}

	if len(opts.Headers) > 0 {
		if err := browserCtx.SetExtraHTTPHeaders(opts.Headers); err != nil {
			_ = browserCtx.Close()
			_ = firefox.Close()
			_ = pw.Stop()
			return nil, fmt.Errorf("%w: %v", ErrFirefoxNotAvailable, err)
		}
	}

	return &Firefox{
		pw:      pw,
		browser: firefox,
		context: browserCtx,
		opts:    opts,
	}, nil
}

// Name returns the engine identifier.
func (f *Firefox) Name() string { return "firefox" }

// Render loads the page in a new Playwright page and returns the
// rendered DOM.
func (f *Firefox) Render(ctx context.Context, pageURL string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := f.context.NewPage()
	if err != nil {
		return nil, err
	}
	defer func() { _ = page.Close() }()

	timeout := f.opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	resp, err := page.Goto(pageURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return nil, err
	}

	// Give late-running scripts a moment to mutate the DOM.
	page.WaitForTimeout(500)

	result := &Result{}
	if resp != nil {
		result.StatusCode = resp.Status()
	}
	if result.HTML, err = page.Content(); err != nil {
		return nil, err
	}
	if title, err := page.Title(); err == nil {
		result.Title = title
	} else {
		// The title is cosmetic; the HTML parser extracts it anyway.
		slog.Debug("failed to read page title", "url", pageURL, "error", err)
	}

	if f.opts.Screenshot {
		shot, err := page.Screenshot(playwright.PageScreenshotOptions{
			FullPage: playwright.Bool(false),
		})
		if err == nil {
			result.Screenshot = shot
		}
	}

	return result, nil
}

// Close shuts down the browser process and the Playwright driver.
func (f *Firefox) Close() error {
	if f.context != nil {
		_ = f.context.Close()
	}
	if f.browser != nil {
		_ = f.browser.Close()
	}
	if f.pw != nil {
		return f.pw.Stop()
	}
	return nil
}
