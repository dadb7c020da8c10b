package smartglass

import (
	"context"
	"net"
	"time"
)

// Device identifies a discovered console: the resolved address plus the
// certificate material the encryption context is seeded from. Immutable
// after discovery.
type Device struct {
	Address     string
	Name        string
	Flags       uint32
	Certificate []byte
}

const pingTimeout = 2 * time.Second

// Ping probes the console at addr (host or host:port) with a presence
// request and returns its identity. Discovery failures abort a connection
// attempt before any handshake begins; they are never retried here.
func Ping(ctx context.Context, addr string) (*Device, error) {
	target := withConsolePort(addr)

	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "udp", target)
	if err != nil {
		return nil, &DiscoveryError{Address: addr, Reason: err.Error()}
	}
	defer conn.Close()

	req, err := encodeMessage(nil, &PresenceRequest{})
	if err != nil {
		return nil, &DiscoveryError{Address: addr, Reason: err.Error()}
	}
	if _, err := conn.Write(req); err != nil {
		return nil, &DiscoveryError{Address: addr, Reason: err.Error()}
	}

	deadline := time.Now().Add(pingTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)

	buf := make([]byte, maxDatagram)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return nil, &DiscoveryError{Address: addr, Reason: "no presence response: " + err.Error()}
		}
		msg, err := decodeMessage(nil, buf[:n])
		if err != nil || msg == nil {
			continue
		}
		resp, ok := msg.(*PresenceResponse)
		if !ok {
			continue
		}
		return &Device{
			Address:     target,
			Name:        resp.Name,
			Flags:       resp.Flags,
			Certificate: resp.Certificate,
		}, nil
	}
}
