package smartglass

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sentinel errors for client and transport state.
var (
	ErrTimeout      = errors.New("timed out waiting for reply")
	ErrNotConnected = errors.New("client is not connected")
	ErrClosed       = errors.New("client is closed")
)

// ConnectionError represents an exhausted handshake: no connect response
// arrived within any attempt's window.
type ConnectionError struct {
	Address  string
	Attempts int
	Reason   string
}

func (e *ConnectionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("connection failed [%s]: %s", e.Address, e.Reason)
	}
	return fmt.Sprintf("connection failed [%s]: no response after %d attempts", e.Address, e.Attempts)
}

// DiscoveryError represents a failure to locate or identify a console.
type DiscoveryError struct {
	Address string
	Reason  string
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery failed [%s]: %s", e.Address, e.Reason)
}

// ChannelOpenError represents a non-zero result code in a start-channel
// response. It is fatal for that open call only.
type ChannelOpenError struct {
	Service uuid.UUID
	Code    uint32
}

func (e *ChannelOpenError) Error() string {
	return fmt.Sprintf("channel open failed [%s]: result code %d", e.Service, e.Code)
}

// ErrorKind classifies client-level errors that cannot be returned to a
// direct caller.
type ErrorKind int

const (
	ErrDecodeFailure ErrorKind = iota // inbound datagram couldn't be decoded
	ErrJoinSend                       // local-join announcement couldn't be sent
	ErrSubscriberPanic                // a subscriber callback panicked
)

var errorKindNames = [...]string{
	ErrDecodeFailure:   "ErrDecodeFailure",
	ErrJoinSend:        "ErrJoinSend",
	ErrSubscriberPanic: "ErrSubscriberPanic",
}

func (k ErrorKind) String() string {
	if int(k) >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// ClientError represents an error the client could not deliver to a direct
// caller. These errors are routed to the ErrorHandler provided at Dial.
type ClientError struct {
	Kind      ErrorKind
	Cause     error
	Raw       []byte // raw datagram (for decode failures)
	Timestamp time.Time
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return e.Kind.String()
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorHandler is called for every client-level error that cannot be
// returned to a direct caller. It MUST be provided when dialing.
type ErrorHandler func(ClientError)

// LogErrors returns an ErrorHandler that logs all client errors to the
// given logger.
func LogErrors(logger zerolog.Logger) ErrorHandler {
	return func(e ClientError) {
		logger.Warn().Err(e.Cause).Stringer("kind", e.Kind).Msg("smartglass client error")
	}
}
