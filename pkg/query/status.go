package query

import "strings"

// Status classifies the outcome of one command exchange.
type Status uint8

const (
	// StatusOK indicates the device acknowledged the command.
	StatusOK Status = 0

	// StatusError indicates a terminal ERROR or +CME ERROR reply.
	StatusError Status = 1

	// StatusTimeout indicates no terminal token arrived before the deadline.
	StatusTimeout Status = 2
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	case StatusTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// IsOK returns true if the status indicates success.
func (s Status) IsOK() bool {
	return s == StatusOK
}

// cmeErrorPrefix marks extended modem error replies.
const cmeErrorPrefix = "+CME ERROR:"

// IsTerminal reports whether a line ends a reply. OK must be the whole
// trimmed line; error tokens match by prefix. A token embedded mid-line
// (e.g. an echo of earlier output) never terminates.
func IsTerminal(line string) bool {
	t := strings.TrimSpace(line)
	return t == "OK" || strings.HasPrefix(t, "ERROR") || strings.HasPrefix(t, cmeErrorPrefix)
}

// Classify scans lines in arrival order for terminal tokens. The first
// token seen wins: a spurious OK left over from a prior command must not
// mask a genuine error, and vice versa. No token means the exchange timed
// out.
func Classify(lines []string) Status {
	for _, line := range lines {
		t := strings.TrimSpace(line)
		switch {
		case t == "OK":
			return StatusOK
		case strings.HasPrefix(t, "ERROR"), strings.HasPrefix(t, cmeErrorPrefix):
			return StatusError
		}
	}
	return StatusTimeout
}
