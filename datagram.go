package smartglass

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// consolePort is the UDP port consoles listen on.
const consolePort = "5050"

const (
	ivSize      = 16
	macSize     = 32
	maxDatagram = 2048
)

// datagramTransport implements transport over encrypted UDP datagrams.
// Each datagram is a 2-byte kind, then either a plaintext JSON body
// (discovery and nothing else) or a 16-byte IV, the sealed JSON body, and
// a 32-byte HMAC over everything before it.
type datagramTransport struct {
	addr    string
	crypto  *cryptoContext
	onError ErrorHandler
	log     zerolog.Logger

	conn *net.UDPConn
	wmu  sync.Mutex // serializes datagram writes

	handler func(Message)

	done chan struct{}
}

func newDatagramTransport(addr string, crypto *cryptoContext, onError ErrorHandler, log zerolog.Logger) *datagramTransport {
	return &datagramTransport{
		addr:    withConsolePort(addr),
		crypto:  crypto,
		onError: onError,
		log:     log,
		done:    make(chan struct{}),
	}
}

func (t *datagramTransport) connect(ctx context.Context) error {
	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "udp", t.addr)
	if err != nil {
		return fmt.Errorf("dial console: %w", err)
	}
	t.conn = conn.(*net.UDPConn)

	go t.readLoop()
	return nil
}

func (t *datagramTransport) send(msg Message) error {
	if t.conn == nil {
		return ErrNotConnected
	}
	data, err := encodeMessage(t.crypto, msg)
	if err != nil {
		return err
	}

	t.wmu.Lock()
	defer t.wmu.Unlock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_, err = t.conn.Write(data)
	return err
}

func (t *datagramTransport) setMessageHandler(fn func(Message)) {
	t.handler = fn
}

func (t *datagramTransport) close() error {
	select {
	case <-t.done:
		return nil // already closed
	default:
		close(t.done)
	}
	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}

func (t *datagramTransport) readLoop() {
	buf := make([]byte, maxDatagram)
	for {
		n, err := t.conn.Read(buf)
		if err != nil {
			select {
			case <-t.done:
			default:
				t.log.Debug().Err(err).Msg("read loop terminated")
			}
			return
		}

		data := make([]byte, n)
		copy(data, buf[:n])

		msg, err := decodeMessage(t.crypto, data)
		if err != nil {
			if t.onError != nil {
				t.onError(ClientError{
					Kind:      ErrDecodeFailure,
					Cause:     err,
					Raw:       data,
					Timestamp: time.Now(),
				})
			}
			continue
		}
		if msg == nil {
			// kind this client does not understand
			continue
		}
		if t.handler != nil {
			t.handler(msg)
		}
	}
}

// encodeMessage frames a message for the wire. Discovery messages travel in
// the clear (the certificate is not known yet); everything else requires a
// crypto context.
func encodeMessage(crypto *cryptoContext, msg Message) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %#04x: %w", uint16(msg.Kind()), err)
	}

	head := binary.BigEndian.AppendUint16(nil, uint16(msg.Kind()))

	if plaintextKind(msg.Kind()) {
		return append(head, body...), nil
	}
	if crypto == nil {
		return nil, fmt.Errorf("message %#04x requires an encryption context", uint16(msg.Kind()))
	}

	iv := crypto.RandomIV()
	sealed, err := crypto.seal(body, iv)
	if err != nil {
		return nil, err
	}

	out := append(head, iv...)
	out = append(out, sealed...)
	return append(out, crypto.mac(out)...), nil
}

// decodeMessage parses a framed datagram into a typed message. A nil
// message with nil error means the kind is unknown and should be ignored.
func decodeMessage(crypto *cryptoContext, data []byte) (Message, error) {
	if len(data) < 2 {
		return nil, errors.New("datagram too short")
	}
	kind := MessageKind(binary.BigEndian.Uint16(data[:2]))

	msg := messageForKind(kind)
	if msg == nil {
		return nil, nil
	}

	var body []byte
	if plaintextKind(kind) {
		body = data[2:]
	} else {
		if crypto == nil {
			return nil, fmt.Errorf("message %#04x requires an encryption context", uint16(kind))
		}
		if len(data) < 2+ivSize+macSize {
			return nil, errors.New("protected datagram too short")
		}
		sealed := data[:len(data)-macSize]
		sum := data[len(data)-macSize:]
		if !crypto.verify(sealed, sum) {
			return nil, errors.New("datagram failed authentication")
		}
		var err error
		body, err = crypto.open(sealed[2+ivSize:], sealed[2:2+ivSize])
		if err != nil {
			return nil, err
		}
	}

	if err := json.Unmarshal(body, msg); err != nil {
		return nil, fmt.Errorf("decode %#04x: %w", uint16(kind), err)
	}
	return msg, nil
}

func plaintextKind(kind MessageKind) bool {
	return kind == KindPresenceRequest || kind == KindPresenceResponse
}

// withConsolePort appends the console port when the address has none.
func withConsolePort(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, consolePort)
}
