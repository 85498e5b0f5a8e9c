// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Logs go to stderr by default so that stdout stays free for host output.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Bridge ready", zap.String("mode", "player"))
//	logger.Error("Init failed", zap.Error(err))
package logging
