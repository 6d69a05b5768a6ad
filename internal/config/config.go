package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are tuned for scanning small-to-medium sites with a
// headless browser, where rendering cost dominates network cost.
const (
	// DefaultTimeout is the per-page render timeout. Headless rendering
	// includes JavaScript execution and resource loading, so this is much
	// more generous than a plain HTTP timeout would be.
	DefaultTimeout = 30 * time.Second

	// DefaultCrawlDepth is the link distance from the start URL.
	// Depth 2 covers the start page, the pages it links to, and the pages
	// those link to, which finds most reflected-XSS surface without
	// crawling a whole site.
	DefaultCrawlDepth = 2

	// DefaultMaxPages is the maximum number of pages to render per scan.
	// This prevents runaway crawling on large or infinitely-generating sites.
	// Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 50

	// DefaultOutputFile is the report path when --output is not given.
	DefaultOutputFile = "xss_report.html"

	// AppName is the application name used for XDG directory paths.
	AppName = "vexscan"

	// DefaultCrawlDelay is the delay between page loads during crawling.
	// This is a politeness setting to avoid overwhelming the target.
	DefaultCrawlDelay = 500 * time.Millisecond

	// DefaultUserAgent identifies vexscan in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify scanner traffic in their logs.
	DefaultUserAgent = "vexscan/1.0 (+https://github.com/vexscan/vexscan)"

	// DefaultMaxBodySize limits the maximum response body size to read
	// in the plain-HTTP renderer. 5MB is sufficient for most HTML pages
	// while preventing memory exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultLinksPerPage caps how many new links are queued from a single
	// page. Keeps breadth bounded on link-heavy pages such as index listings.
	DefaultLinksPerPage = 10
)

// Config holds all configuration options for vexscan.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// TargetURL is the start URL to scan. Required.
	TargetURL string

	// Timeout is the render timeout for each page load.
	// This applies to individual pages, not the overall scan duration.
	Timeout time.Duration

	// CrawlDepth is the maximum link distance from the start URL.
	// Depth 0 means only render the initial page.
	CrawlDepth int

	// MaxPages is the maximum number of pages to render per scan.
	// Must be positive; Validate rejects zero and negative values.
	MaxPages int

	// Screenshots enables screenshot capture for each rendered page.
	// Screenshots are stored next to the report and embedded in HTML output.
	Screenshots bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ChromePath is an explicit path to the Chrome/Chromium binary.
	// When empty, common install locations are probed.
	ChromePath string

	// UseFirefox selects the Firefox render engine instead of Chrome.
	UseFirefox bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .vexscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the config file.
	// This is populated by LoadConfigFile and used during crawling.
	SiteConfigs *File

	// JSONReport enables JSON report output in addition to the HTML report.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output in addition to the
	// HTML report. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the HTML report.
	// Parent directories are created automatically if they don't exist.
	ReportFile string

	// DBDir is the directory path for storing the SQLite scan history.
	// Defaults to the XDG data directory (~/.local/share/vexscan on Linux).
	DBDir string

	// SaveToDB indicates whether to persist scan results for the
	// history command. Disabled by --no-history.
	SaveToDB bool

	// CrawlDelay is the delay between page loads during crawling.
	// Lower values may cause rate limiting or service disruption.
	CrawlDelay time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	// A descriptive User-Agent helps site operators identify scanner traffic.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read
	// in the plain-HTTP renderer. Set to 0 to use the default (5MB).
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, depth).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		CrawlDepth:  DefaultCrawlDepth,
		MaxPages:    DefaultMaxPages,
		ReportFile:  DefaultOutputFile,
		CrawlDelay:  DefaultCrawlDelay,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		SaveToDB:    true,
	}
}

// XDGDataDir returns the XDG data directory for vexscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/vexscan
// On macOS: ~/Library/Application Support/vexscan
// On Windows: %LOCALAPPDATA%\vexscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for vexscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for vexscan.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scanning begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have a target to scan
	if c.TargetURL == "" {
		return ErrNoTarget
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// Depth must be non-negative; 0 means render only the start page
	if c.CrawlDepth < 0 {
		return ErrInvalidDepth
	}

	// The page budget must be positive; a zero budget would produce an
	// empty scan that looks like a clean result
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// CrawlDelay must be non-negative
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	// MaxBodySize must be non-negative if set
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
