// Package main provides the entry point for the vexscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vexscan/vexscan/internal/config"
)

// NewRootCmd creates the root command for vexscan.
//
// The scan itself runs on the root command rather than a subcommand, so
// the minimal invocation is just `vexscan --url <target>`.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vexscan",
		Short: "XSS vulnerability scanner for websites",
		Long: `vexscan scans a website for cross-site scripting (XSS) vulnerabilities.

It crawls the target, renders each page in a headless browser (Chrome by
default, Firefox with --use-firefox, plain HTTP as a last resort), and
analyzes the rendered HTML and JavaScript for:
- Unsanitized input fields and dangerous input usage
- Inline event handlers with risky code
- High-risk script constructs (eval, document.write, innerHTML)
- javascript: URLs in links, form actions, and markup
- Obfuscation patterns that often hide injected payloads

Results are heuristic and may include false positives; review findings
manually before acting on them.

Examples:
  # Scan a site and write xss_report.html
  vexscan --url https://example.com

  # Deeper crawl with screenshots, custom report path
  vexscan --url https://example.com --depth 3 --screenshots -o out/report.html

  # JSON report instead of HTML
  vexscan --url https://example.com --json -o report.json

  # Use Firefox instead of Chrome
  vexscan --url https://example.com --use-firefox

Configuration file (.vexscan) example:
  defaults:
    depth: 2
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      ignorePatterns:
        - "/logout*"`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runScanCmd,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Target and crawl behavior flags
	cmd.Flags().StringP("url", "u", "",
		"Target URL to scan (required)")
	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth,
		"Maximum crawl recursion depth")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to render per scan")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Render timeout for each page load")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Delay between page loads during crawling")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")

	// Render engine flags
	cmd.Flags().String("chrome-path", "",
		"Path to the Chrome/Chromium binary (default: auto-detected)")
	cmd.Flags().Bool("use-firefox", false,
		"Use the Firefox render engine instead of Chrome")
	cmd.Flags().BoolP("screenshots", "s", false,
		"Capture a PNG screenshot of each rendered page")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .vexscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		"Report file path (directories are created if needed)")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Do not save the scan result to the history database")

	// Add subcommands
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
