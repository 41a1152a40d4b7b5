// Package parse turns raw command replies into structured fields.
//
// A Registry maps command text to a named Parser. Lookup prefers an exact
// key, then falls back to the longest registered prefix, then to a generic
// extractor that exposes the reply body as a single "value" field. Parsers
// are pure functions of their input, which keeps recorded traces replayable.
package parse
