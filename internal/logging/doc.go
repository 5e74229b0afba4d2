// Package logging provides structured logging utilities for the
// ticktick-mcp application.
//
// This package centralizes logging patterns to ensure consistent,
// structured logging throughout the codebase using the standard
// library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "ticktick.scan")
//	logger.Info("scan finished",
//	    logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Debug("using token", "token", logging.SanitizeToken(token))
//
// Tokens are never logged directly.
package logging
