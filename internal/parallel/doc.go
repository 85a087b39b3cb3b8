// Package parallel checks many graph documents concurrently and picks the
// tasks of one graph that can be worked on side by side.
//
// It provides:
//   - Pool: bounded concurrency worker pool with optional fail-fast
//   - Checker: parses and canonical-form checks a set of files on a Pool
//   - TaskSelector: ready-task selection ordered by a Strategy
package parallel
