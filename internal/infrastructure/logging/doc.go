// Package logging provides structured logging using uber/zap.
//
// Two output modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// The level is held in a zap.AtomicLevel so it can be raised or lowered
// while the server runs. Request handlers get a logger that already carries
// the request id through WithContext / FromContext.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("port", "8080"))
//	logger.Error("Failed to paste", zap.Error(err))
package logging
