package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vexscan/vexscan/internal/browser"
	"github.com/vexscan/vexscan/internal/config"
	"github.com/vexscan/vexscan/internal/database"
	"github.com/vexscan/vexscan/internal/log"
	"github.com/vexscan/vexscan/internal/model"
	"github.com/vexscan/vexscan/internal/pipeline"
	"github.com/vexscan/vexscan/internal/report"
)

// runScanCmd executes the scan on the root command.
func runScanCmd(cmd *cobra.Command, _ []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential redaction
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.TargetURL, err = cmd.Flags().GetString("url")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.ChromePath, err = cmd.Flags().GetString("chrome-path")
	if err != nil {
		return nil, err
	}

	cfg.UseFirefox, err = cmd.Flags().GetBool("use-firefox")
	if err != nil {
		return nil, err
	}

	cfg.Screenshots, err = cmd.Flags().GetBool("screenshots")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// The secure handler redacts cookie and authorization values so site
// credentials from the config file never reach the terminal or log files.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"target", cfg.TargetURL,
		"depth", cfg.CrawlDepth,
		"maxPages", cfg.MaxPages,
		"screenshots", cfg.Screenshots,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if history is enabled
	var db *database.ScanDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Per-site overrides from the config file, matched by hostname
	siteConfig := siteConfigFor(cfg)

	// Create the render engine: Chrome, Firefox, or plain HTTP
	renderer, err := browser.New(cfg.ChromePath, cfg.UseFirefox, browser.Options{
		UserAgent:  cfg.UserAgent,
		Headers:    requestHeaders(siteConfig),
		Timeout:    cfg.Timeout,
		Screenshot: cfg.Screenshots,
		MaxBody:    cfg.MaxBodySize,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create render engine: %w", err)
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			logger.Error("failed to close render engine", "error", err)
		}
	}()

	if renderer.Name() == "http" {
		fmt.Fprintln(os.Stderr, "Warning: no headless browser available; falling back to plain HTTP. JavaScript-generated content will be missed.")
		if cfg.Screenshots {
			fmt.Fprintln(os.Stderr, "Warning: screenshots are not available with the plain HTTP engine.")
		}
	}

	p := createPipeline(renderer, logger, cfg, siteConfig)

	scanReport := model.NewScanReport(cfg.TargetURL)
	scanReport.ScreenshotsEnabled = cfg.Screenshots
	scanReport.RendererName = renderer.Name()

	fmt.Printf("Scanning %s (engine: %s)...\n", cfg.TargetURL, renderer.Name())
	startTime := time.Now()

	// Show a spinner while scanning, unless verbose logging would
	// interleave with it.
	var sp *spinner.Spinner
	if !cfg.Verbose {
		sp = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		sp.Suffix = " crawling and analyzing pages..."
		sp.Start()
	}

	// Execute the pipeline
	execErr := p.Execute(ctx, scanReport)

	if sp != nil {
		sp.Stop()
	}

	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Scan cancelled.")
		}
		logger.Error("scan failed", "target", cfg.TargetURL, "error", execErr)
		return fmt.Errorf("scan failed: %w", execErr)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Scan completed in %s\n\n", elapsed.Round(time.Millisecond))

	// Write the report
	if err := outputReport(cfg, scanReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	printSummary(scanReport)

	// Save to database if enabled
	if err := saveScanReport(ctx, db, scanReport, logger); err != nil {
		logger.Error("failed to save scan report", "target", cfg.TargetURL, "error", err)
	}

	return nil
}

// siteConfigFor returns the site-specific configuration for the target,
// keyed by the target URL's hostname.
func siteConfigFor(cfg *config.Config) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}

	host := cfg.TargetURL
	if parsed, err := url.Parse(cfg.TargetURL); err == nil && parsed.Hostname() != "" {
		host = parsed.Hostname()
	}

	return cfg.SiteConfigs.GetSiteConfig(host)
}

// requestHeaders builds the extra HTTP headers for the render engine
// from the site configuration. The cookie is carried as a Cookie header.
func requestHeaders(siteConfig config.SiteConfig) map[string]string {
	if siteConfig.Cookie == "" && len(siteConfig.Headers) == 0 {
		return nil
	}

	headers := make(map[string]string, len(siteConfig.Headers)+1)
	for k, v := range siteConfig.Headers {
		headers[k] = v
	}
	if siteConfig.Cookie != "" {
		headers["Cookie"] = siteConfig.Cookie
	}
	return headers
}

// createPipeline creates the scan pipeline with the given configuration.
func createPipeline(renderer browser.Renderer, logger *slog.Logger, cfg *config.Config, siteConfig config.SiteConfig) *pipeline.Pipeline {
	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	}

	// Determine crawl depth (site-specific overrides global)
	crawlDepth := cfg.CrawlDepth
	if siteConfig.Depth > 0 {
		crawlDepth = siteConfig.Depth
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineCrawlDepth(crawlDepth),
		pipeline.WithPipelineCrawlMaxPages(cfg.MaxPages),
		pipeline.WithPipelineCrawlDelay(cfg.CrawlDelay),
	}

	// Screenshots are stored next to the report so the HTML output can
	// reference them with relative paths.
	if cfg.Screenshots {
		configOpts = append(configOpts,
			pipeline.WithPipelineScreenshotDir(screenshotDir(cfg.ReportFile)))
	}

	// URL pattern filtering from the config file
	if len(siteConfig.IgnorePatterns) > 0 {
		configOpts = append(configOpts, pipeline.WithPipelineIgnorePatterns(siteConfig.IgnorePatterns))
	}
	if len(siteConfig.FollowPatterns) > 0 {
		configOpts = append(configOpts, pipeline.WithPipelineFollowPatterns(siteConfig.FollowPatterns))
	}

	return pipeline.DefaultPipeline(renderer, pipelineOpts, configOpts...)
}

// screenshotDir returns the screenshots directory for a report path.
func screenshotDir(reportFile string) string {
	return filepath.Join(filepath.Dir(reportFile), "screenshots")
}

// outputReport writes the scan report in the requested format.
// HTML is the default; --json and --markdown select alternate formats.
func outputReport(cfg *config.Config, scanReport *model.ScanReport) error {
	// Create parent directories if they don't exist
	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Create/overwrite the output file with secure permissions (0600)
	// Reports may contain sensitive information that should only be readable by the owner
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(f, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(f)
	default:
		writer = report.NewHTMLWriter(f)
	}

	if _, err := writer.Write(scanReport); err != nil {
		return err
	}

	fmt.Printf("Report written to %s\n", cfg.ReportFile)
	return nil
}

// printSummary prints a colorized finding summary to the terminal.
func printSummary(scanReport *model.ScanReport) {
	scanReport.Finalize()
	summary := scanReport.Summary

	fmt.Printf("Pages crawled: %d\n", summary.PagesCrawled)

	if !summary.HasFindings() {
		color.Green("No potential XSS vectors detected.")
		return
	}

	color.Red("Found %d potential XSS vector(s):", summary.TotalFindings())
	if summary.CriticalCount > 0 {
		color.New(color.FgRed, color.Bold).Printf("  Critical: %d\n", summary.CriticalCount)
	}
	if summary.HighCount > 0 {
		color.Red("  High:     %d", summary.HighCount)
	}
	if summary.MediumCount > 0 {
		color.Yellow("  Medium:   %d", summary.MediumCount)
	}
	if summary.LowCount > 0 {
		color.Cyan("  Low:      %d", summary.LowCount)
	}
	if summary.InfoCount > 0 {
		fmt.Printf("  Info:     %d\n", summary.InfoCount)
	}

	color.Yellow("\nFindings are heuristic; verify them manually before reporting.")
}

// saveScanReport saves the scan report to the database if enabled.
// If db is nil, this function is a no-op.
func saveScanReport(ctx context.Context, db *database.ScanDB, scanReport *model.ScanReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	// Record the crawled pages so history queries can answer per-URL
	// questions without unpacking the report JSON. Page failures are
	// non-fatal; the report itself is the primary artifact.
	for _, page := range scanReport.Pages {
		if _, err := db.InsertPage(ctx, scanReport.Target, page); err != nil {
			logger.Warn("failed to save page record", "url", page.URL, "error", err)
		}
	}

	if err := db.SaveScanReport(ctx, scanReport); err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	logger.Info("scan report saved to database", "target", scanReport.Target)
	return nil
}
