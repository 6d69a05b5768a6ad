// Package model defines the core data structures for vexscan.
//
// The central types are:
//   - Page: a single crawled and rendered web page
//   - ScanReport: the complete result of scanning one target
//   - Summary: the condensed, presentation-ready view of a report
//   - Finding: a single potential XSS issue with severity and remediation
//
// These types are shared between the crawler, analyzer, report, and
// database packages and are designed to serialize cleanly to JSON.
package model
