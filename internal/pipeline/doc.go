// Package pipeline provides a framework for executing scan steps in sequence.
//
// The pipeline pattern is used to process a target site through its stages:
// crawling with a headless renderer, then XSS analysis of the collected
// pages. Each stage is implemented as a Step that receives the current
// report and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running scans
// 4. It enables potential parallelization of independent steps in the future
//
// The analysis step processes pages concurrently with a bounded errgroup.
package pipeline
