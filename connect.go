package smartglass

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// connectRetrySchedule is the per-attempt reply window for each handshake
// attempt before the final one. The handshake must tolerate dropped
// datagrams, so the schedule trades latency for robustness as attempts
// escalate.
var connectRetrySchedule = []time.Duration{
	500 * time.Millisecond,
	500 * time.Millisecond,
	1500 * time.Millisecond,
	5 * time.Second,
}

// connectTimeout is the reply window for the final handshake attempt and
// the fixed wait for channel opens.
const connectTimeout = time.Second

// handshakeSequence reserves a begin/end pair per handshake attempt.
// Process-global so sequence numbers are never reused across sessions.
var handshakeSequence atomic.Uint32

// Dial discovers the console at cfg.Address, performs the retried
// handshake, and returns a connected client. The onError handler receives
// client-level errors that cannot be returned to a direct caller (inbound
// decode failures, a failed join announcement); it must not be nil.
func Dial(ctx context.Context, cfg Config, onError ErrorHandler, opts ...DialOption) (*Client, error) {
	resolved, err := resolveConfig(cfg)
	if err != nil {
		return nil, err
	}
	if onError == nil {
		return nil, errors.New("ErrorHandler must not be nil")
	}

	o := dialDefaults()
	for _, opt := range opts {
		opt(&o)
	}

	device, err := Ping(ctx, resolved.Address)
	if err != nil {
		return nil, err
	}

	crypto, err := newCryptoContext(device.Certificate)
	if err != nil {
		return nil, err
	}

	raw := newDatagramTransport(device.Address, crypto, onError, o.logger)
	st := newSessionTransport(raw, o.logger)
	if err := raw.connect(ctx); err != nil {
		return nil, err
	}

	participantID, deviceID, err := establish(ctx, st, crypto.RandomIV(), crypto.publicKey, resolved, device.Address, attemptWindows())
	if err != nil {
		st.close()
		return nil, err
	}

	d := newSessionDispatcher(st, participantID, deviceID, o.displayName, onError, o.logger)
	return newClient(resolved, st, d, onError), nil
}

// attemptWindows returns the reply window for every handshake attempt:
// the retry schedule entries, then the fixed connect timeout for the last
// attempt.
func attemptWindows() []time.Duration {
	windows := make([]time.Duration, 0, len(connectRetrySchedule)+1)
	windows = append(windows, connectRetrySchedule...)
	return append(windows, connectTimeout)
}

// establish runs the handshake against an already-connected transport. The
// IV and device id identify the whole connection attempt and are reused
// across retries; the sequence triple is rebuilt per attempt. Timeout is
// the sole retry trigger — any other failure propagates immediately.
func establish(ctx context.Context, t *sessionTransport, iv, publicKey []byte, cfg Config, address string, windows []time.Duration) (uint32, uuid.UUID, error) {
	deviceID := uuid.New()

	var resp *ConnectResponse
	attempts := 0
	err := retrySchedule(windows, func(window time.Duration) error {
		attempts++
		seq := handshakeSequence.Add(2) - 2
		req := &ConnectRequest{
			IV:            iv,
			PublicKey:     publicKey,
			DeviceID:      deviceID,
			UserHash:      cfg.UserHash,
			UserToken:     cfg.UserToken,
			Sequence:      seq,
			SequenceBegin: seq + 1,
			SequenceEnd:   seq + 1,
		}

		msg, err := t.sendAndWait(ctx, window,
			func() error { return t.send(req) },
			func(m Message) bool {
				_, ok := m.(*ConnectResponse)
				return ok
			})
		if err != nil {
			return err
		}
		resp = msg.(*ConnectResponse)
		return nil
	})
	if errors.Is(err, ErrTimeout) {
		return 0, uuid.Nil, &ConnectionError{Address: address, Attempts: attempts}
	}
	if err != nil {
		return 0, uuid.Nil, err
	}
	if resp.Result != 0 {
		return 0, uuid.Nil, &ConnectionError{
			Address:  address,
			Attempts: attempts,
			Reason:   fmt.Sprintf("console refused connection (result %d)", resp.Result),
		}
	}
	return resp.ParticipantID, deviceID, nil
}

// retrySchedule runs attempt once per window, in order, retrying only on
// ErrTimeout. It returns the first non-timeout result, or the final
// attempt's timeout once the schedule is exhausted.
func retrySchedule(windows []time.Duration, attempt func(window time.Duration) error) error {
	var err error
	for _, window := range windows {
		err = attempt(window)
		if !errors.Is(err, ErrTimeout) {
			return err
		}
	}
	return err
}
