// Package main provides the entry point for the vexscan CLI.
//
// vexscan is an XSS detection tool for websites. It crawls a target,
// renders each page in a headless browser, and inspects the rendered
// HTML and JavaScript for cross-site scripting vectors.
//
// Usage:
//
//	vexscan --url https://example.com
//	vexscan --url https://example.com --screenshots --output report.html
//
// See --help for all available options.
package main

// main is the entry point for vexscan.
func main() {
	Execute()
}
