package cli

import (
	"fmt"
	"net"

	"github.com/msense/atharness/pkg/stream"
	"github.com/msense/atharness/pkg/tracelog"
)

// openStream builds the line stream for a session: a TCP connection to a
// live device port, or a scripted pipe replaying a recorded trace.
func openStream(connect, replay string) (stream.LineStream, func(), error) {
	switch {
	case connect != "" && replay != "":
		return nil, nil, fmt.Errorf("--connect and --replay are mutually exclusive")

	case connect != "":
		conn, err := net.Dial("tcp", connect)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to %s: %w", connect, err)
		}
		return stream.NewConn(conn), func() { conn.Close() }, nil

	case replay != "":
		pipe, err := replayPipe(replay)
		if err != nil {
			return nil, nil, err
		}
		return pipe, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("either --connect or --replay is required")
	}
}

// replayPipe scripts a pipe from the exchanges recorded in a trace file.
func replayPipe(path string) (*stream.Pipe, error) {
	reader, err := tracelog.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace %s: %w", path, err)
	}
	defer reader.Close()

	events, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read trace %s: %w", path, err)
	}

	pipe := stream.NewPipe()
	for cmd, lines := range tracelog.Replay(events) {
		pipe.ScriptReply(cmd, lines...)
	}
	return pipe, nil
}

// openTrace creates the trace logger for a session, or a noop when no
// path was given.
func openTrace(path string) (tracelog.Logger, func(), error) {
	if path == "" {
		return tracelog.NoopLogger{}, func() {}, nil
	}
	fl, err := tracelog.NewFileLogger(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open trace log %s: %w", path, err)
	}
	return fl, func() { fl.Close() }, nil
}
