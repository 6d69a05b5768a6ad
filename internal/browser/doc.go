// Package browser provides headless page rendering for the crawler.
//
// Three render engines are available:
//   - Chrome/Chromium via the DevTools protocol (default)
//   - Firefox via Playwright
//   - A plain HTTP fetcher that performs no JavaScript execution
//
// All engines implement the Renderer interface, so the crawler and the
// tests are independent of which engine is active. The plain HTTP engine
// is the last-resort fallback when no browser binary is available; it
// still allows pattern-based analysis of the served markup, but misses
// script-generated DOM content.
package browser
