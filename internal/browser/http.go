package browser

import (
	"context"
	"io"
	"net/http"
	"time"
)

// defaultMaxBody bounds how much of a response body is read when no
// explicit limit is configured.
const defaultMaxBody = 5 * 1024 * 1024 // 5MB

// HTTP fetches pages with a plain HTTP client and no JavaScript
// execution. It is the last-resort engine when no browser binary is
// available, and the engine of choice in tests.
type HTTP struct {
	client  *http.Client
	opts    Options
	maxBody int64
}

// NewHTTP creates a plain HTTP render engine.
// opts.MaxBody limits how many bytes of each response body are read;
// zero means the default 5MB.
func NewHTTP(opts Options) *HTTP {
	maxBody := opts.MaxBody
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTP{
		client: &http.Client{
			Timeout: timeout,
		},
		opts:    opts,
		maxBody: maxBody,
	}
}

// Name returns the engine identifier.
func (h *HTTP) Name() string { return "http" }

// Render fetches the page body. Screenshots are not supported and the
// title is left for the HTML parser to extract.
func (h *HTTP) Render(ctx context.Context, pageURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	if h.opts.UserAgent != "" {
		req.Header.Set("User-Agent", h.opts.UserAgent)
	}
	for k, v := range h.opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBody))
	if err != nil {
		return nil, err
	}

	return &Result{
		HTML:       string(body),
		StatusCode: resp.StatusCode,
	}, nil
}

// Close is a no-op; the engine holds no external resources.
func (h *HTTP) Close() error { return nil }
