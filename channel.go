package smartglass

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// channelOpenTimeout is the fixed wait for a start-channel response.
// Channel opens are not retried; a timeout is the caller's to handle.
const channelOpenTimeout = time.Second

// Channel is a logical sub-stream within the session, identified by the
// console-assigned channel id. It shares the session's transport; all
// channel traffic is distinguished by the channel id stamped into each
// message.
type Channel struct {
	id uint64
	d  *sessionDispatcher
}

// ID returns the console-assigned channel id.
func (ch *Channel) ID() uint64 {
	return ch.id
}

// Send stamps the message with the channel id and transmits it,
// fire-and-forget.
func (ch *Channel) Send(msg Message) error {
	if sm, ok := msg.(sessionMessage); ok {
		sm.header().ChannelID = ch.id
	}
	return ch.d.send(msg)
}

// SendAndWait stamps and transmits the message, then blocks until an
// inbound message on this channel satisfies match or the timeout elapses.
func (ch *Channel) SendAndWait(ctx context.Context, timeout time.Duration, msg Message, match func(Message) bool) (Message, error) {
	return ch.d.sendAndWait(ctx, timeout,
		func() error { return ch.Send(msg) },
		func(m Message) bool {
			sm, ok := m.(sessionMessage)
			return ok && sm.header().ChannelID == ch.id && match(m)
		})
}

// OpenChannel opens a logical channel for the given service, optionally
// scoped to a title. The open is correlated by a locally generated request
// id, so concurrent opens never cross-match; the console's non-zero result
// codes surface as ChannelOpenError.
func (c *Client) OpenChannel(ctx context.Context, service uuid.UUID, titleID uint32) (*Channel, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}

	requestID := c.channelRequests.Add(1)
	req := &StartChannelRequest{
		RequestID: requestID,
		Service:   service,
		TitleID:   titleID,
	}

	msg, err := c.d.sendAndWait(ctx, channelOpenTimeout,
		func() error { return c.d.send(req) },
		func(m Message) bool {
			resp, ok := m.(*StartChannelResponse)
			return ok && resp.RequestID == requestID
		})
	if err != nil {
		return nil, err
	}

	resp := msg.(*StartChannelResponse)
	if resp.Result != 0 {
		return nil, &ChannelOpenError{Service: service, Code: resp.Result}
	}
	return &Channel{id: resp.ChannelID, d: c.d}, nil
}
