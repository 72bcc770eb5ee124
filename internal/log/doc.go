// Package log provides the application's slog loggers.
//
// Content blocks carry arbitrary markup, and the reflow engine logs the
// operations and snapshots it handles. PayloadHandler wraps any
// slog.Handler and keeps those payloads out of the log output:
//   - attributes whose key names a payload (markup, innerHTML, attributes)
//     are replaced by a short summary of their size
//   - string values that look like markup are summarized the same way
//   - any other string longer than MaxValueLength is truncated
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("block moved", "markup", block.Markup()) // markup=<elided 812 bytes>
//	slog.SetDefault(logger)
package log
