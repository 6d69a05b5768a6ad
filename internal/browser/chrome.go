package browser

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Chrome renders pages with a headless Chrome/Chromium via the DevTools
// protocol. One allocator (browser process) is shared across the scan;
// every Render call opens a fresh tab so page state never leaks between
// pages.
type Chrome struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	opts        Options
}

// NewChrome creates a Chrome render engine.
// If execPath is empty, common binary names are probed in PATH.
// Returns ErrChromeNotFound when no binary can be located.
func NewChrome(execPath string, opts Options) (*Chrome, error) {
	if execPath == "" {
		execPath = DetectChromePath()
	}
	if execPath == "" {
		return nil, ErrChromeNotFound
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 720),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	return &Chrome{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		opts:        opts,
	}, nil
}

// Name returns the engine identifier.
func (c *Chrome) Name() string { return "chrome" }

// Render loads the page in a new tab and returns the rendered DOM.
func (c *Chrome) Render(ctx context.Context, pageURL string) (*Result, error) {
	tabCtx, tabCancel := chromedp.NewContext(c.allocCtx)
	defer tabCancel()

	timeout := c.opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, runCancel := context.WithTimeout(tabCtx, timeout)
	defer runCancel()

	// Cancel the tab when the caller's context is done so signal
	// handling reaches an in-flight navigation.
	stop := context.AfterFunc(ctx, runCancel)
	defer stop()

	// Observe the main document response to capture the HTTP status.
	var statusCode int
	chromedp.ListenTarget(runCtx, func(ev any) {
		if resp, ok := ev.(*network.EventResponseReceived); ok {
			if statusCode == 0 && resp.Type == network.ResourceTypeDocument {
				statusCode = int(resp.Response.Status)
			}
		}
	})

	actions := []chromedp.Action{network.Enable()}
	if len(c.opts.Headers) > 0 {
		headers := make(network.Headers, len(c.opts.Headers))
		for k, v := range c.opts.Headers {
			headers[k] = v
		}
		actions = append(actions, network.SetExtraHTTPHeaders(headers))
	}

	var html, title string
	actions = append(actions,
		chromedp.Navigate(pageURL),
		// Give late-running scripts a moment to mutate the DOM.
		chromedp.Sleep(500*time.Millisecond),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)

	var screenshot []byte
	if c.opts.Screenshot {
		actions = append(actions, chromedp.CaptureScreenshot(&screenshot))
	}

	if err := chromedp.Run(runCtx, actions...); err != nil {
		return nil, err
	}

	return &Result{
		HTML:       html,
		Title:      title,
		StatusCode: statusCode,
		Screenshot: screenshot,
	}, nil
}

// Close shuts down the browser process.
func (c *Chrome) Close() error {
	c.allocCancel()
	return nil
}
