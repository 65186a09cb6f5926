// Package log provides a structured event trace for the keyed store and the
// widget models.
//
// This package defines the Logger interface and Event types for capturing
// what happens between widgets, the store and the device source: observers
// coming and going, source subscriptions opening and closing, value updates,
// writes and their outcome, source errors and widget model lifecycle
// transitions. It is separate from operational logging (slog) - the trace is
// a complete machine-readable record for debugging leaks and ordering issues.
//
// # Basic Usage
//
// Applications configure tracing by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For field debugging: write to binary file
//	cfg.EventLogger, _ = log.NewFileLogger("/sdcard/uxsdk/trace.uxlog")
//
//	// Both: use MultiLogger
//	cfg.EventLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured by two components:
//   - Store: subscription changes, values, writes, source errors
//   - Model: widget model lifecycle transitions
//
// # File Format
//
// Trace files use CBOR encoding with the .uxlog extension and can be read
// back with Reader, optionally narrowed with a Filter.
package log
