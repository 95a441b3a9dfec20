// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output
//
// Logs go to stderr by default so that command output written to stdout
// stays machine-readable.
//
// Example Usage:
//
//	logger := logging.NewFromSettings("info", false)
//	logger.Info("Snippet blocked", zap.String("category", "network"))
package logging
