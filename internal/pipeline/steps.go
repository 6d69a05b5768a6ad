package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vexscan/vexscan/internal/analyzer"
	"github.com/vexscan/vexscan/internal/browser"
	"github.com/vexscan/vexscan/internal/config"
	"github.com/vexscan/vexscan/internal/crawler"
	"github.com/vexscan/vexscan/internal/model"
)

// defaultAnalyzeConcurrency bounds how many pages are analyzed at once.
// Analysis is CPU-bound regex and DOM work, so a small fan-out keeps
// memory flat without leaving cores idle.
const defaultAnalyzeConcurrency = 4

// CrawlStep discovers and renders pages on the target site.
//
// Design decision: Crawling is separate from analysis because:
// 1. It has different configuration (depth, limits, delay)
// 2. It produces different data (rendered pages vs findings)
// 3. Partial crawl results are still worth analyzing
type CrawlStep struct {
	// renderer fetches and renders pages.
	renderer browser.Renderer

	// maxDepth limits crawl recursion.
	maxDepth int

	// maxPages limits total pages to crawl.
	maxPages int

	// linksPerPage caps how many links are followed from one page.
	linksPerPage int

	// delay between page loads for politeness.
	delay time.Duration

	// screenshotDir is where page screenshots are written.
	// Empty disables screenshot capture.
	screenshotDir string

	// ignorePatterns are URL path patterns to skip during crawling.
	ignorePatterns []string

	// followPatterns are URL path patterns to follow during crawling.
	followPatterns []string

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlMaxDepth sets the maximum crawl depth.
func WithCrawlMaxDepth(depth int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxDepth = depth
	}
}

// WithCrawlMaxPages sets the maximum pages to crawl.
func WithCrawlMaxPages(maxPages int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxPages = maxPages
	}
}

// WithCrawlLinksPerPage caps how many links are followed per page.
func WithCrawlLinksPerPage(n int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.linksPerPage = n
	}
}

// WithCrawlDelay sets the delay between page loads.
func WithCrawlDelay(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		s.delay = d
	}
}

// WithCrawlScreenshotDir enables screenshot capture into dir.
func WithCrawlScreenshotDir(dir string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.screenshotDir = dir
	}
}

// WithCrawlIgnorePatterns sets URL path patterns to skip during crawling.
func WithCrawlIgnorePatterns(patterns []string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.ignorePatterns = patterns
	}
}

// WithCrawlFollowPatterns sets URL path patterns to follow during crawling.
func WithCrawlFollowPatterns(patterns []string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.followPatterns = patterns
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawling step using the given renderer.
//
// Default politeness settings are conservative so the scanner does not
// hammer the target:
//   - delay: 500ms between page loads (config.DefaultCrawlDelay)
//   - maxPages: config.DefaultMaxPages
//   - linksPerPage: config.DefaultLinksPerPage
func NewCrawlStep(renderer browser.Renderer, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		renderer:     renderer,
		maxDepth:     config.DefaultCrawlDepth,
		maxPages:     config.DefaultMaxPages,
		linksPerPage: config.DefaultLinksPerPage,
		delay:        config.DefaultCrawlDelay,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
func (s *CrawlStep) Do(ctx context.Context, report *model.ScanReport) error {
	spiderOpts := []crawler.SpiderOption{
		crawler.WithMaxDepth(s.maxDepth),
		crawler.WithMaxPages(s.maxPages),
		crawler.WithLinksPerPage(s.linksPerPage),
		crawler.WithDelay(s.delay),
		crawler.WithLogger(s.logger),
	}
	if s.screenshotDir != "" {
		spiderOpts = append(spiderOpts, crawler.WithScreenshotDir(s.screenshotDir))
	}
	if len(s.ignorePatterns) > 0 {
		spiderOpts = append(spiderOpts, crawler.WithIgnorePatterns(s.ignorePatterns))
	}
	if len(s.followPatterns) > 0 {
		spiderOpts = append(spiderOpts, crawler.WithFollowPatterns(s.followPatterns))
	}

	spider := crawler.NewSpider(s.renderer, spiderOpts...)

	pages, err := spider.Crawl(ctx, report.Target)
	if err != nil {
		// Non-fatal: we may have partial results
		s.logger.Warn("crawl completed with error", "error", err)
	}

	for _, page := range pages {
		report.AddPage(page)
	}

	stats := spider.Stats()
	s.logger.Info("crawl completed",
		"pages_visited", stats.PagesVisited,
		"urls_queued", stats.URLsQueued,
	)

	return nil
}

// AnalyzeStep runs the XSS analyzers over every crawled page.
//
// Design decision: Analysis is a separate step because:
// 1. It operates on accumulated data from the crawl
// 2. It has its own configuration (concurrency, analyzer set)
// 3. Results are the primary output of a scan
type AnalyzeStep struct {
	// analyzer is the vector analyzer coordinator.
	analyzer *analyzer.Analyzer

	// concurrency bounds parallel page analysis.
	concurrency int

	// logger for structured logging.
	logger *slog.Logger
}

// AnalyzeStepOption configures an AnalyzeStep.
type AnalyzeStepOption func(*AnalyzeStep)

// WithAnalyzeConcurrency sets how many pages are analyzed in parallel.
func WithAnalyzeConcurrency(n int) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithAnalyzeLogger sets a custom logger for the analysis step.
func WithAnalyzeLogger(logger *slog.Logger) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.logger = logger
	}
}

// NewAnalyzeStep creates a new analysis step.
func NewAnalyzeStep(opts ...AnalyzeStepOption) *AnalyzeStep {
	s := &AnalyzeStep{
		concurrency: defaultAnalyzeConcurrency,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.analyzer = analyzer.New(analyzer.WithLogger(s.logger))
	return s
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do executes the analysis step. Pages are analyzed concurrently with a
// bounded errgroup; findings are merged into the report afterwards so
// the report is never written from multiple goroutines.
func (s *AnalyzeStep) Do(ctx context.Context, report *model.ScanReport) error {
	if len(report.Pages) == 0 {
		s.logger.Debug("skipping analysis, no pages crawled")
		return nil
	}

	var (
		mu       sync.Mutex
		findings []model.Finding
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, page := range report.Pages {
		g.Go(func() error {
			results, err := s.analyzer.AnalyzePage(gctx, page)
			if err != nil {
				return err
			}
			mu.Lock()
			findings = append(findings, results...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Non-fatal: keep whatever the finished pages produced
		s.logger.Warn("analysis completed with error", "error", err)
	}

	for _, f := range findings {
		report.AddFinding(f)
	}

	s.logger.Info("analysis completed",
		"pages", len(report.Pages),
		"findings_count", len(findings),
	)

	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// CrawlDepth is the maximum depth for crawling.
	CrawlDepth int

	// CrawlMaxPages is the maximum number of pages to crawl.
	CrawlMaxPages int

	// LinksPerPage caps how many links are followed from one page.
	LinksPerPage int

	// CrawlDelay is the delay between page loads.
	CrawlDelay time.Duration

	// ScreenshotDir enables screenshot capture into the given directory.
	ScreenshotDir string

	// IgnorePatterns are URL path patterns to skip during crawling.
	IgnorePatterns []string

	// FollowPatterns are URL path patterns to follow during crawling.
	FollowPatterns []string

	// AnalyzeConcurrency bounds parallel page analysis.
	AnalyzeConcurrency int
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineCrawlDepth sets the crawl depth for the pipeline.
func WithPipelineCrawlDepth(depth int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlDepth = depth
	}
}

// WithPipelineCrawlMaxPages sets the maximum pages to crawl.
func WithPipelineCrawlMaxPages(maxPages int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlMaxPages = maxPages
	}
}

// WithPipelineLinksPerPage caps how many links are followed per page.
func WithPipelineLinksPerPage(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.LinksPerPage = n
	}
}

// WithPipelineCrawlDelay sets the delay between page loads.
func WithPipelineCrawlDelay(delay time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlDelay = delay
	}
}

// WithPipelineScreenshotDir enables screenshot capture into dir.
func WithPipelineScreenshotDir(dir string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ScreenshotDir = dir
	}
}

// WithPipelineIgnorePatterns sets URL patterns to skip during crawling.
func WithPipelineIgnorePatterns(patterns []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.IgnorePatterns = patterns
	}
}

// WithPipelineFollowPatterns sets URL patterns to follow during crawling.
func WithPipelineFollowPatterns(patterns []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.FollowPatterns = patterns
	}
}

// WithPipelineAnalyzeConcurrency bounds parallel page analysis.
func WithPipelineAnalyzeConcurrency(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.AnalyzeConcurrency = n
	}
}

// DefaultPipeline creates a pipeline with the standard crawl and
// analyze steps configured.
//
// Design decision: We provide a default pipeline because:
// 1. Most users want the full scan
// 2. Reduces boilerplate in CLI
// 3. Ensures consistent ordering
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineCrawlDepth, etc).
func DefaultPipeline(renderer browser.Renderer, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		CrawlDepth:         config.DefaultCrawlDepth,
		CrawlMaxPages:      config.DefaultMaxPages,
		LinksPerPage:       config.DefaultLinksPerPage,
		CrawlDelay:         config.DefaultCrawlDelay,
		AnalyzeConcurrency: defaultAnalyzeConcurrency,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	crawlOpts := []CrawlStepOption{
		WithCrawlMaxDepth(cfg.CrawlDepth),
		WithCrawlMaxPages(cfg.CrawlMaxPages),
		WithCrawlLinksPerPage(cfg.LinksPerPage),
		WithCrawlDelay(cfg.CrawlDelay),
		WithCrawlLogger(p.logger),
	}
	if cfg.ScreenshotDir != "" {
		crawlOpts = append(crawlOpts, WithCrawlScreenshotDir(cfg.ScreenshotDir))
	}
	if len(cfg.IgnorePatterns) > 0 {
		crawlOpts = append(crawlOpts, WithCrawlIgnorePatterns(cfg.IgnorePatterns))
	}
	if len(cfg.FollowPatterns) > 0 {
		crawlOpts = append(crawlOpts, WithCrawlFollowPatterns(cfg.FollowPatterns))
	}

	p.AddSteps(
		NewCrawlStep(renderer, crawlOpts...),
		NewAnalyzeStep(
			WithAnalyzeConcurrency(cfg.AnalyzeConcurrency),
			WithAnalyzeLogger(p.logger),
		),
	)

	return p
}
