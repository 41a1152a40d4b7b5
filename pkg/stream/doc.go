// Package stream defines the line-oriented transport abstraction consumed
// by the query engine.
//
// The engine never opens, configures, or closes the underlying channel; it
// only needs something that can send a command line and hand back complete
// reply lines under a deadline. Two implementations live here:
//
//   - Conn adapts any net.Conn-like byte stream (a ser2net bridge, a TCP
//     AT passthrough) using an incremental Splitter so that a trailing
//     partial line is never surfaced as a reply.
//   - Pipe is an in-memory scripted stream for tests and trace replay.
//
// Hardware-specific transports (debug-probe RTT channels, serial ports)
// are expected to satisfy LineStream outside this module.
package stream
