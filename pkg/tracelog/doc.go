// Package tracelog provides structured exchange tracing for the AT harness.
//
// This package defines the Logger interface and Event types for capturing
// every command written to a device and every reply line received, together
// with the classified outcome. It is separate from operational logging -
// the trace is a complete machine-readable record of a device session that
// can be replayed against the engine without hardware.
//
// # Basic Usage
//
// Callers configure tracing by providing a Logger implementation:
//
//	// Write a binary trace alongside a production run
//	cfg.Trace, _ = tracelog.NewFileLogger("run-20260830.atrace")
//
//	// Fan out to several sinks
//	cfg.Trace = tracelog.NewMultiLogger(fileLogger, consoleLogger)
//
// # File Format
//
// Trace files use integer-keyed CBOR encoding with the .atrace extension.
// Reader streams events back; Replay reconstructs the per-command reply
// lines for scripted re-execution.
package tracelog
