package smartglass

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// transport is the internal interface for the wire connection to the
// console. The current implementation uses encrypted UDP datagrams
// (datagram.go); framing and field encoding live entirely behind it.
type transport interface {
	// connect opens the connection and starts delivering inbound messages.
	connect(ctx context.Context) error

	// send encodes and transmits a single message.
	send(msg Message) error

	// setMessageHandler registers the callback for inbound messages.
	// Must be called before connect.
	setMessageHandler(fn func(Message))

	// close shuts the connection down. Safe to call more than once.
	close() error
}

// pendingWait is one in-flight correlation record: a predicate, a deadline,
// and a completion slot. It is fulfilled by the first inbound message
// matching the predicate, or completed with ErrTimeout.
type pendingWait struct {
	id       uuid.UUID
	match    func(Message) bool
	deadline time.Time
	done     chan Message // buffered; at most one delivery
}

// sessionTransport layers request/reply correlation and subscriber fan-out
// over a raw transport. Correlation and broadcast are independent delivery
// paths: a message that fulfills a pending wait is still published to every
// subscriber.
type sessionTransport struct {
	raw transport
	log zerolog.Logger

	mu     sync.Mutex
	waits  []*pendingWait // registration order; first match wins
	subs   []func(Message)
	closed chan struct{}
}

func newSessionTransport(raw transport, log zerolog.Logger) *sessionTransport {
	t := &sessionTransport{
		raw:    raw,
		log:    log,
		closed: make(chan struct{}),
	}
	raw.setMessageHandler(t.dispatch)
	return t
}

// send transmits a message with no reply expected.
func (t *sessionTransport) send(msg Message) error {
	select {
	case <-t.closed:
		return ErrClosed
	default:
	}
	return t.raw.send(msg)
}

// subscribe registers fn for every inbound message. Subscribers are invoked
// synchronously on the dispatch path, in registration order.
func (t *sessionTransport) subscribe(fn func(Message)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = append(t.subs, fn)
}

// sendAndWait registers a wait for the first inbound message satisfying
// match, runs send, and blocks until the reply arrives, the timeout
// elapses, the context is canceled, or the transport closes. The wait is
// registered before send runs, so a reply cannot race past it.
func (t *sessionTransport) sendAndWait(ctx context.Context, timeout time.Duration, send func() error, match func(Message) bool) (Message, error) {
	w := &pendingWait{
		id:       uuid.New(),
		match:    match,
		deadline: time.Now().Add(timeout),
		done:     make(chan Message, 1),
	}

	t.mu.Lock()
	select {
	case <-t.closed:
		t.mu.Unlock()
		return nil, ErrClosed
	default:
	}
	t.waits = append(t.waits, w)
	t.mu.Unlock()

	if err := send(); err != nil {
		t.remove(w.id)
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-w.done:
		return msg, nil
	case <-timer.C:
		t.remove(w.id)
		// The match may have landed between the timer firing and removal.
		select {
		case msg := <-w.done:
			return msg, nil
		default:
		}
		return nil, ErrTimeout
	case <-ctx.Done():
		t.remove(w.id)
		return nil, ctx.Err()
	case <-t.closed:
		return nil, ErrClosed
	}
}

// dispatch delivers one inbound message: at most one pending wait is
// fulfilled (first registered match wins), then every subscriber sees the
// message, in arrival order. Expired waits are swept during the scan.
func (t *sessionTransport) dispatch(msg Message) {
	now := time.Now()

	t.mu.Lock()
	live := t.waits[:0]
	matched := false
	for _, w := range t.waits {
		if now.After(w.deadline) {
			continue
		}
		if !matched && w.match(msg) {
			matched = true
			w.done <- msg
			continue
		}
		live = append(live, w)
	}
	t.waits = live
	subs := make([]func(Message), len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()

	t.log.Trace().
		Uint16("kind", uint16(msg.Kind())).
		Bool("correlated", matched).
		Int("subscribers", len(subs)).
		Msg("dispatch inbound message")

	for _, fn := range subs {
		fn(msg)
	}
}

func (t *sessionTransport) remove(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, w := range t.waits {
		if w.id == id {
			t.waits = append(t.waits[:i], t.waits[i+1:]...)
			return
		}
	}
}

// close releases every pending wait (each completes with ErrClosed) and
// shuts the raw transport down.
func (t *sessionTransport) close() error {
	t.mu.Lock()
	select {
	case <-t.closed:
		t.mu.Unlock()
		return nil
	default:
		close(t.closed)
	}
	t.waits = nil
	t.subs = nil
	t.mu.Unlock()

	return t.raw.close()
}
