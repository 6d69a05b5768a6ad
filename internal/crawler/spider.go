package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vexscan/vexscan/internal/browser"
	"github.com/vexscan/vexscan/internal/model"
)

// Spider crawls web pages through a headless render engine.
// It manages a queue of URLs to visit and respects depth and rate limits.
//
// Design decision: We call it "Spider" rather than "Crawler" because:
//  1. "Spider" is the traditional term for web crawlers
//  2. Distinguishes the component from the package name
//  3. Clearer in code: crawler.NewSpider() vs crawler.NewCrawler()
type Spider struct {
	// renderer loads and renders each page.
	renderer browser.Renderer

	// maxDepth limits how deep to crawl from the starting URL.
	// 0 means only the starting page, 1 means one level of links, etc.
	maxDepth int

	// maxPages limits the total number of pages to crawl.
	// This prevents runaway crawling on large sites.
	maxPages int

	// linksPerPage caps how many new links each page may queue.
	// Keeps the frontier bounded on link-heavy index pages.
	linksPerPage int

	// delay is the time to wait between page loads.
	// This is a politeness setting to avoid overwhelming servers.
	delay time.Duration

	// screenshotDir is where captured screenshots are written.
	// Empty disables screenshot persistence even if the renderer
	// captures them.
	screenshotDir string

	// ignorePatterns are URL path patterns to skip during crawling.
	// Patterns use glob syntax (e.g., "/admin/*", "*.pdf").
	ignorePatterns []string

	// followPatterns are URL path patterns to follow during crawling.
	// If set, only URLs matching these patterns are crawled.
	// Empty means all URLs are allowed (subject to ignorePatterns).
	followPatterns []string

	// logger reports per-page progress and failures.
	logger *slog.Logger

	// visited tracks URLs already visited to avoid duplicates.
	visited map[string]bool

	// mutex protects concurrent access to visited.
	mutex sync.Mutex

	// pageCount tracks pages crawled.
	pageCount int
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the starting page, 1 = starting page plus linked pages, etc.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxPages sets the maximum number of pages to crawl.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithDelay sets the delay between page loads.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithLinksPerPage caps how many new links each page may queue.
func WithLinksPerPage(n int) SpiderOption {
	return func(s *Spider) {
		s.linksPerPage = n
	}
}

// WithScreenshotDir sets the directory where screenshots are written.
func WithScreenshotDir(dir string) SpiderOption {
	return func(s *Spider) {
		s.screenshotDir = dir
	}
}

// WithIgnorePatterns sets URL path patterns to skip during crawling.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf", "/logout*").
// URLs matching any of these patterns will not be crawled.
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path patterns to follow during crawling.
// Patterns use glob syntax (e.g., "/api/*", "/public/*").
// If set, only URLs matching at least one pattern are crawled.
// Empty slice means all URLs are allowed (default behavior).
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.followPatterns = patterns
	}
}

// WithLogger sets the logger for crawl progress and failures.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a new Spider with the given render engine.
//
// Design decision: We require an external renderer because:
//  1. Engine selection and fallback are handled by the browser package
//  2. Tests can supply the plain HTTP engine against httptest servers
//  3. One browser process is shared across the whole crawl
func NewSpider(renderer browser.Renderer, opts ...SpiderOption) *Spider {
	s := &Spider{
		renderer:     renderer,
		maxDepth:     2,
		maxPages:     50,
		linksPerPage: 10,
		delay:        500 * time.Millisecond,
		logger:       slog.Default(),
		visited:      make(map[string]bool),
		pageCount:    0,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Crawl starts crawling from the given URL and returns all discovered pages.
//
// Design decision: We return a slice of pages rather than using a callback
// because:
//  1. Simpler API for callers
//  2. Pages are small relative to total memory
//  3. Caller can process all at once or iterate as needed
func (s *Spider) Crawl(ctx context.Context, startURL string) ([]*model.Page, error) {
	// Normalize and validate start URL
	start, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL: %w", err)
	}

	// Ensure it's an HTTP(S) URL
	if start.Scheme != "http" && start.Scheme != "https" {
		start.Scheme = "http"
	}

	// Initialize crawl state
	pages := make([]*model.Page, 0)
	queue := make([]queueItem, 0)
	queue = append(queue, queueItem{url: start.String(), depth: 0})

	// Process queue
	for len(queue) > 0 && s.pageCount < s.maxPages {
		// Check context
		select {
		case <-ctx.Done():
			return pages, ctx.Err()
		default:
		}

		// Pop from queue
		item := queue[0]
		queue = queue[1:]

		// Skip if already visited
		if s.isVisited(item.url) {
			continue
		}
		s.markVisited(item.url)

		// Render and parse page
		page, links, err := s.renderPage(ctx, item.url, item.depth)
		if err != nil {
			// Some pages will fail; keep crawling
			s.logger.Debug("page render failed", "url", item.url, "error", err)
			continue
		}

		s.logger.Debug("page rendered", "url", item.url, "depth", item.depth, "links", len(links))
		pages = append(pages, page)
		s.pageCount++

		// Add new links to queue if within depth limit
		if item.depth < s.maxDepth {
			queued := 0
			for _, link := range links {
				if s.linksPerPage > 0 && queued >= s.linksPerPage {
					break
				}
				if !s.isVisited(link) && s.isSameSite(start.Host, link) && s.shouldCrawl(link) {
					queue = append(queue, queueItem{url: link, depth: item.depth + 1})
					queued++
				}
			}
		}

		// Politeness delay
		if s.delay > 0 && len(queue) > 0 {
			select {
			case <-ctx.Done():
				return pages, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	return pages, nil
}

// queueItem represents an item in the crawl queue.
type queueItem struct {
	url   string
	depth int
}

// renderPage renders a single page and extracts its content and links.
func (s *Spider) renderPage(ctx context.Context, pageURL string, depth int) (*model.Page, []string, error) {
	result, err := s.renderer.Render(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}

	page := &model.Page{
		URL:        pageURL,
		StatusCode: result.StatusCode,
		Title:      result.Title,
		HTML:       result.HTML,
		Depth:      depth,
	}

	// Compute hash and enforce size limits
	page.ComputeHash()
	page.TruncateHTML()

	// Extract links and scripts
	var links []string
	parser, err := NewParser(pageURL)
	if err == nil {
		parsed, err := parser.Parse(strings.NewReader(page.HTML))
		if err == nil {
			if page.Title == "" {
				page.Title = parsed.Title
			}
			page.Scripts = parsed.Scripts
			page.Links = parsed.Links
			links = parsed.InternalLinks
		}
	}

	if len(result.Screenshot) > 0 && s.screenshotDir != "" {
		if path, err := s.saveScreenshot(page, result.Screenshot); err == nil {
			page.ScreenshotPath = path
		} else {
			s.logger.Warn("screenshot save failed", "url", pageURL, "error", err)
		}
	}

	return page, links, nil
}

// saveScreenshot writes the PNG under the screenshot directory, named by
// the page's content hash so repeated scans overwrite rather than pile up.
func (s *Spider) saveScreenshot(page *model.Page, png []byte) (string, error) {
	if err := os.MkdirAll(s.screenshotDir, 0o750); err != nil {
		return "", err
	}

	name := page.Hash
	if len(name) > 12 {
		name = name[:12]
	}
	path := filepath.Join(s.screenshotDir, name+".png")
	if err := os.WriteFile(path, png, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// isVisited checks if a URL has been visited.
func (s *Spider) isVisited(pageURL string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.visited[s.normalizeURL(pageURL)]
}

// markVisited marks a URL as visited.
func (s *Spider) markVisited(pageURL string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.visited[s.normalizeURL(pageURL)] = true
}

// normalizeURL normalizes a URL for deduplication.
//
// Design decision: We normalize URLs because:
//  1. Same page can have different URL representations
//  2. Fragment (#anchor) doesn't change content
//  3. Trailing slashes may or may not be significant
func (s *Spider) normalizeURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}

	// Remove fragment
	u.Fragment = ""

	// Normalize scheme to lowercase
	u.Scheme = strings.ToLower(u.Scheme)

	// Normalize host to lowercase
	u.Host = strings.ToLower(u.Host)

	// Normalize root path (empty path and "/" are equivalent)
	// This handles the common case where http://example.com and
	// http://example.com/ should be treated as the same URL
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// isSameSite checks if a URL belongs to the site being scanned.
//
// Design decision: We only crawl the same host by default because:
//  1. Crawling other sites could be seen as unauthorized
//  2. Keeps the crawl focused on the target
func (s *Spider) isSameSite(baseHost, targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	return strings.EqualFold(u.Host, baseHost)
}

// Reset clears the spider's state, allowing it to be reused.
func (s *Spider) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.visited = make(map[string]bool)
	s.pageCount = 0
}

// Stats returns current crawl statistics.
func (s *Spider) Stats() SpiderStats {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return SpiderStats{
		PagesVisited: s.pageCount,
		URLsQueued:   len(s.visited),
	}
}

// SpiderStats contains crawl statistics.
type SpiderStats struct {
	// PagesVisited is the number of pages successfully crawled.
	PagesVisited int

	// URLsQueued is the number of unique URLs encountered.
	URLsQueued int
}

// shouldCrawl checks if a URL should be crawled based on ignore/follow patterns.
//
// Logic:
//  1. If URL matches any ignorePattern, skip it (return false)
//  2. If followPatterns is set and URL matches none, skip it (return false)
//  3. Otherwise, crawl it (return true)
func (s *Spider) shouldCrawl(targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	// Get the path for pattern matching
	path := u.Path
	if path == "" {
		path = "/"
	}

	// Check ignore patterns first - if matched, skip
	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	// If follow patterns are set, URL must match at least one
	if len(s.followPatterns) > 0 {
		for _, pattern := range s.followPatterns {
			if matchPattern(pattern, path) {
				return true
			}
		}
		// No follow pattern matched
		return false
	}

	// No follow patterns set, allow all (that weren't ignored)
	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ** is treated as * (single segment match for simplicity)
//   - ? to match any single character
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/api/v?" matches "/api/v1", "/api/v2"
func matchPattern(pattern, path string) bool {
	// Handle common patterns more efficiently
	// For patterns like "/admin/*", we want to match "/admin/anything"
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	// Handle extension patterns like "*.pdf"
	if strings.HasPrefix(pattern, "*.") {
		ext := strings.TrimPrefix(pattern, "*")
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	// Use filepath.Match for standard glob matching
	// Note: filepath.Match doesn't support ** for recursive matching,
	// but it handles * and ? well for single-segment patterns
	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Also try matching just the filename for patterns like "*.pdf"
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		filename := filepath.Base(path)
		matched, err := filepath.Match(pattern, filename)
		if err == nil && matched {
			return true
		}
	}

	return false
}
