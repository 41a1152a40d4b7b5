package tracelog

import (
	"time"
)

// Event represents one traced moment in a device session.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the engine session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates whether data flowed to or from the device.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Type-specific payload (one of these will be set).
	Command *CommandEvent `cbor:"5,keyasint,omitempty"` // command written
	Line    *LineEvent    `cbor:"6,keyasint,omitempty"` // reply line received
	Outcome *OutcomeEvent `cbor:"7,keyasint,omitempty"` // exchange classified
	Error   *ErrorEvent   `cbor:"8,keyasint,omitempty"` // transport fault
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionIn indicates data received from the device.
	DirectionIn Direction = 0
	// DirectionOut indicates data sent to the device.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryCommand indicates a command written to the device.
	CategoryCommand Category = 0
	// CategoryLine indicates a reply line received from the device.
	CategoryLine Category = 1
	// CategoryOutcome indicates the classified result of an exchange.
	CategoryOutcome Category = 2
	// CategoryError indicates a transport-level fault.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryCommand:
		return "COMMAND"
	case CategoryLine:
		return "LINE"
	case CategoryOutcome:
		return "OUTCOME"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// CommandEvent carries the command text written to the device.
type CommandEvent struct {
	Text string `cbor:"1,keyasint"`
}

// LineEvent carries one reply line received from the device.
type LineEvent struct {
	Text string `cbor:"1,keyasint"`

	// Command is the command this line replies to.
	Command string `cbor:"2,keyasint,omitempty"`
}

// OutcomeEvent records the classified result of one command exchange.
type OutcomeEvent struct {
	Command string `cbor:"1,keyasint"`

	// Status is the terminal classification (OK, ERROR, TIMEOUT).
	Status string `cbor:"2,keyasint"`

	// ElapsedMillis is the wait time for the whole exchange.
	ElapsedMillis int64 `cbor:"3,keyasint"`

	// LineCount is the number of reply lines collected.
	LineCount int `cbor:"4,keyasint"`
}

// ErrorEvent records a transport fault observed during an exchange.
type ErrorEvent struct {
	Command string `cbor:"1,keyasint,omitempty"`
	Message string `cbor:"2,keyasint"`
}
