package smartglass

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// helloTimeout is the optional wait for an auxiliary-stream hello after a
// title channel opens. Not all console versions send one.
const helloTimeout = time.Second

// defaultDvrSeconds is how far back a DVR capture reaches when the caller
// does not say.
const defaultDvrSeconds = 60

// Client is a connected console session. Create one with Dial.
type Client struct {
	cfg     Config
	st      *sessionTransport
	d       *sessionDispatcher
	onError ErrorHandler

	channelRequests atomic.Uint32

	// Lazy singleton input channel: inputOnce guarantees a single open
	// regardless of concurrent first callers; inputStarted lets Close skip
	// a channel that was never asked for without realizing it.
	inputOnce    sync.Once
	inputStarted atomic.Bool
	inputCh      *Channel
	inputErr     error

	mu     sync.Mutex
	closed bool
}

func newClient(cfg Config, st *sessionTransport, d *sessionDispatcher, onError ErrorHandler) *Client {
	return &Client{
		cfg:     cfg,
		st:      st,
		d:       d,
		onError: onError,
	}
}

// ParticipantID returns the session identity assigned by the console.
func (c *Client) ParticipantID() uint32 {
	return c.d.participantID
}

// DeviceID returns the locally generated identifier for this client.
func (c *Client) DeviceID() uuid.UUID {
	return c.d.deviceID
}

// ConsoleStatus returns the most recent status snapshot pushed by the
// console, or nil if none has arrived yet.
func (c *Client) ConsoleStatus() *ConsoleStatus {
	return c.d.consoleStatus()
}

// OnConsoleStatus registers fn for every status snapshot the console
// pushes. fn runs synchronously on the dispatch path and must be prompt.
func (c *Client) OnConsoleStatus(fn func(*ConsoleStatus)) {
	c.d.onConsoleStatus(fn)
}

// OnMessage registers fn for every inbound session message, including
// those that also fulfill a pending correlation.
func (c *Client) OnMessage(fn func(Message)) {
	c.d.onMessage(fn)
}

// LaunchTitle asks the console to launch a title, fire-and-forget. Launch
// parameters, if any, are percent-encoded into the launch URI.
func (c *Client) LaunchTitle(titleID uint32, opts ...LaunchOption) error {
	if c.isClosed() {
		return ErrClosed
	}

	o := launchDefaults()
	for _, opt := range opts {
		opt(&o)
	}

	uri := fmt.Sprintf("ms-xbl-%08x://default", titleID)
	if o.params != "" {
		uri += "?" + url.QueryEscape(o.params)
	}
	return c.d.send(&TitleLaunch{Location: o.location, URI: uri})
}

// StartDvrRecording asks the console to capture the last lastSeconds of
// gameplay, fire-and-forget. Values <= 0 record the default 60 seconds.
func (c *Client) StartDvrRecording(lastSeconds int32) error {
	if c.isClosed() {
		return ErrClosed
	}
	if lastSeconds <= 0 {
		lastSeconds = defaultDvrSeconds
	}
	return c.d.send(&GameDvrRecord{
		StartTimeDelta: -lastSeconds,
		EndTimeDelta:   0,
	})
}

// InputChannel returns the client-lifetime system input channel, opening
// it on first call. Concurrent first callers converge on a single open
// exchange and all observe the same result.
func (c *Client) InputChannel(ctx context.Context) (*Channel, error) {
	c.inputStarted.Store(true)
	c.inputOnce.Do(func() {
		c.inputCh, c.inputErr = c.OpenChannel(ctx, ServiceSystemInput, 0)
	})
	return c.inputCh, c.inputErr
}

// StartTitleChannel opens a channel scoped to a title, then waits briefly
// for the auxiliary-stream hello. The hello is best-effort — not every
// console version sends it — so a timeout on that wait is swallowed and
// the channel is returned as usable.
func (c *Client) StartTitleChannel(ctx context.Context, titleID uint32) (*Channel, error) {
	ch, err := c.OpenChannel(ctx, ServiceNone, titleID)
	if err != nil {
		return nil, err
	}

	_, err = c.st.sendAndWait(ctx, helloTimeout,
		func() error { return nil },
		func(m Message) bool {
			hello, ok := m.(*AuxiliaryStreamHello)
			return ok && hello.ChannelID == ch.id
		})
	if err != nil && !errors.Is(err, ErrTimeout) && !errors.Is(err, ErrClosed) {
		return nil, err
	}
	return ch, nil
}

// Close tears the client down: input channel, then session dispatcher,
// then transport, in that order. Each release is attempted even if an
// earlier one fails; no close message is sent on the wire.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	var errs []error
	if err := c.releaseInputChannel(); err != nil {
		errs = append(errs, err)
	}
	if err := c.d.close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.st.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// releaseInputChannel discards the singleton input channel. If a
// realization is in flight it is waited for first, so the channel is never
// left half-initialized; if it never started, nothing is realized.
func (c *Client) releaseInputChannel() error {
	if !c.inputStarted.Load() {
		return nil
	}
	c.inputOnce.Do(func() {})
	c.inputCh = nil
	return nil
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
