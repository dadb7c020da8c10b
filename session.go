package smartglass

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// localJoinClientType identifies this SDK in the local-join announcement.
const localJoinClientType = 8

// sessionDispatcher owns the established session's identity. It stamps the
// participant id onto every outbound message, fans inbound messages out to
// subscribers, and keeps the latest console status snapshot.
type sessionDispatcher struct {
	st            *sessionTransport
	participantID uint32
	deviceID      uuid.UUID
	log           zerolog.Logger

	mu         sync.Mutex
	closed     bool
	status     *ConsoleStatus
	msgSubs    []func(Message)
	statusSubs []func(*ConsoleStatus)
}

// newSessionDispatcher wires the dispatcher into the transport's fan-out
// and immediately announces the session with a local-join message. The
// join is fire-and-forget: a send failure goes to onError and is never
// retried, matching the device's observed behavior.
func newSessionDispatcher(st *sessionTransport, participantID uint32, deviceID uuid.UUID, displayName string, onError ErrorHandler, log zerolog.Logger) *sessionDispatcher {
	d := &sessionDispatcher{
		st:            st,
		participantID: participantID,
		deviceID:      deviceID,
		log:           log,
	}
	st.subscribe(d.dispatch)

	join := &LocalJoin{
		ClientType:  localJoinClientType,
		DisplayName: displayName,
	}
	if err := d.send(join); err != nil && onError != nil {
		onError(ClientError{Kind: ErrJoinSend, Cause: err, Timestamp: time.Now()})
	}
	return d
}

// send stamps the message with session context and forwards it.
func (d *sessionDispatcher) send(msg Message) error {
	if sm, ok := msg.(sessionMessage); ok {
		sm.header().SessionID = d.participantID
	}
	return d.st.send(msg)
}

// sendAndWait delegates to the transport; session context does not change
// correlation semantics.
func (d *sessionDispatcher) sendAndWait(ctx context.Context, timeout time.Duration, send func() error, match func(Message) bool) (Message, error) {
	return d.st.sendAndWait(ctx, timeout, send, match)
}

// onMessage registers fn for every inbound session-scoped message,
// regardless of correlation.
func (d *sessionDispatcher) onMessage(fn func(Message)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.msgSubs = append(d.msgSubs, fn)
}

// onConsoleStatus registers fn for status snapshots. It is invoked
// synchronously on the dispatch path.
func (d *sessionDispatcher) onConsoleStatus(fn func(*ConsoleStatus)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statusSubs = append(d.statusSubs, fn)
}

// consoleStatus returns the most recent status snapshot, or nil before the
// console has pushed one.
func (d *sessionDispatcher) consoleStatus() *ConsoleStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// dispatch handles one inbound message: console-status updates the
// snapshot and raises the status event; unrecognized kinds are ignored.
// All messages are forwarded to message subscribers in arrival order.
func (d *sessionDispatcher) dispatch(msg Message) {
	status, _ := msg.(*ConsoleStatus)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if status != nil {
		d.status = status
	}
	msgSubs := make([]func(Message), len(d.msgSubs))
	copy(msgSubs, d.msgSubs)
	var statusSubs []func(*ConsoleStatus)
	if status != nil {
		statusSubs = make([]func(*ConsoleStatus), len(d.statusSubs))
		copy(statusSubs, d.statusSubs)
	}
	d.mu.Unlock()

	for _, fn := range msgSubs {
		fn(msg)
	}
	for _, fn := range statusSubs {
		fn(status)
	}
}

// close drops all subscribers. No wire message is sent: the protocol's
// close semantics are unconfirmed, so the session is simply abandoned.
func (d *sessionDispatcher) close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.msgSubs = nil
	d.statusSubs = nil
	return nil
}
