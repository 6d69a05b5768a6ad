// Package config provides configuration structures and utilities for vexscan.
// It defines the main configuration options for crawling, headless rendering,
// and report generation preferences.
package config
