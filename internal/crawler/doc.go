// Package crawler provides web crawling on top of a headless render engine.
//
// # Architecture
//
// The crawler package is designed around the Spider type, which coordinates
// the crawling process. It uses a work queue to manage URLs to visit and
// respects depth limits and politeness settings. Each page is loaded
// through a browser.Renderer so the extracted markup reflects the DOM
// after JavaScript execution.
//
// Design decision: We implement our own crawler rather than using a
// third-party library because:
//  1. Pages must flow through the headless render engine, not a plain client
//  2. We need tight control over request timing to avoid overwhelming sites
//  3. Custom parsing is needed for script and link extraction
//  4. Reduces external dependencies and potential security issues
//
// # Components
//
//   - Spider: The main crawler that coordinates the crawling process
//   - Parser: HTML parser that extracts links, scripts, and titles
//
// # Politeness
//
//   - Delays between page loads (configurable)
//   - Respects max depth and max page settings
//   - Caps how many links each page may queue
//   - Stays on the start URL's host
//
// # Usage
//
//	spider := crawler.NewSpider(renderer, crawler.WithMaxDepth(2))
//	pages, err := spider.Crawl(ctx, "http://example.com")
package crawler
