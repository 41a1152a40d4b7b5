// Package query implements the command/response engine for line-oriented
// AT-style device protocols.
//
// An Engine owns one stream.LineStream and processes one command at a time:
// it writes the command, collects terminator-complete reply lines until a
// stop condition or an idle timeout, and classifies the outcome from the
// terminal tokens (OK, ERROR, +CME ERROR). Replies are not tagged with a
// command identifier on the wire, so the engine refuses concurrent queries
// with ErrBusy instead of interleaving output.
package query
