package smartglass

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// discardErrors is a no-op ErrorHandler used in tests that don't assert
// error handler behavior.
var discardErrors = func(ClientError) {}

func newTestSession(t *testing.T) (*sessionDispatcher, *mockTransport) {
	t.Helper()
	st, mock := newTestTransport()
	d := newSessionDispatcher(st, 7, uuid.New(), "test-client", discardErrors, zerolog.Nop())
	return d, mock
}

func TestSessionDispatcher_AnnouncesLocalJoin(t *testing.T) {
	_, mock := newTestSession(t)

	sent := mock.getSent()
	if len(sent) != 1 {
		t.Fatalf("messages sent on construction = %d, want 1", len(sent))
	}
	join, ok := sent[0].(*LocalJoin)
	if !ok {
		t.Fatalf("first message is %T, want *LocalJoin", sent[0])
	}
	if join.SessionID != 7 {
		t.Errorf("join SessionID = %d, want participant id 7", join.SessionID)
	}
	if join.DisplayName != "test-client" {
		t.Errorf("join DisplayName = %q, want %q", join.DisplayName, "test-client")
	}
}

func TestSessionDispatcher_JoinFailureRoutedToErrorHandler(t *testing.T) {
	st, mock := newTestTransport()
	mock.sendErr = ErrNotConnected

	var got []ClientError
	newSessionDispatcher(st, 1, uuid.New(), "x", func(e ClientError) { got = append(got, e) }, zerolog.Nop())

	if len(got) != 1 {
		t.Fatalf("error handler called %d times, want 1", len(got))
	}
	if got[0].Kind != ErrJoinSend {
		t.Errorf("Kind = %v, want ErrJoinSend", got[0].Kind)
	}
}

func TestSessionDispatcher_StampsSessionID(t *testing.T) {
	d, mock := newTestSession(t)

	if err := d.send(&GameDvrRecord{StartTimeDelta: -60}); err != nil {
		t.Fatalf("send() error: %v", err)
	}

	sent := mock.getSent()
	rec := sent[len(sent)-1].(*GameDvrRecord)
	if rec.SessionID != 7 {
		t.Errorf("SessionID = %d, want 7", rec.SessionID)
	}
}

func TestSessionDispatcher_StatusSnapshotAndEvent(t *testing.T) {
	d, mock := newTestSession(t)

	if d.consoleStatus() != nil {
		t.Fatal("status should be nil before any snapshot arrives")
	}

	var events []*ConsoleStatus
	d.onConsoleStatus(func(s *ConsoleStatus) { events = append(events, s) })

	first := &ConsoleStatus{Configuration: ConsoleConfiguration{BuildNumber: 100}}
	mock.deliver(first)

	// The event is raised synchronously on the dispatch path.
	if len(events) != 1 || events[0] != first {
		t.Fatalf("status events = %v, want the delivered snapshot", events)
	}
	if d.consoleStatus() != first {
		t.Error("snapshot should be the delivered status")
	}

	// Only the latest snapshot is retained.
	second := &ConsoleStatus{Configuration: ConsoleConfiguration{BuildNumber: 101}}
	mock.deliver(second)
	if d.consoleStatus() != second {
		t.Error("snapshot should be replaced by the newer status")
	}
	if len(events) != 2 {
		t.Errorf("status events = %d, want 2", len(events))
	}
}

func TestSessionDispatcher_UnrecognizedKindIgnored(t *testing.T) {
	d, mock := newTestSession(t)

	var seen []Message
	d.onMessage(func(m Message) { seen = append(seen, m) })

	// A kind with no dispatch policy must not error and must still reach
	// message subscribers.
	hello := &AuxiliaryStreamHello{}
	mock.deliver(hello)

	if len(seen) != 1 || seen[0] != Message(hello) {
		t.Fatalf("message subscribers saw %v, want the delivered message", seen)
	}
	if d.consoleStatus() != nil {
		t.Error("status snapshot should be untouched")
	}
}

func TestSessionDispatcher_CloseDropsSubscribers(t *testing.T) {
	d, mock := newTestSession(t)

	called := false
	d.onConsoleStatus(func(*ConsoleStatus) { called = true })

	if err := d.close(); err != nil {
		t.Fatalf("close() error: %v", err)
	}
	mock.deliver(&ConsoleStatus{})

	if called {
		t.Error("subscriber invoked after close")
	}
}

func TestSessionDispatcher_SendAndWaitDelegates(t *testing.T) {
	d, mock := newTestSession(t)

	mock.onMsg = func(msg Message) {
		if req, ok := msg.(*StartChannelRequest); ok {
			mock.deliver(&StartChannelResponse{RequestID: req.RequestID, ChannelID: 5})
		}
	}

	msg, err := d.sendAndWait(context.Background(), time.Second,
		func() error { return d.send(&StartChannelRequest{RequestID: 2}) },
		func(m Message) bool {
			resp, ok := m.(*StartChannelResponse)
			return ok && resp.RequestID == 2
		})
	if err != nil {
		t.Fatalf("sendAndWait() error: %v", err)
	}
	if msg.(*StartChannelResponse).ChannelID != 5 {
		t.Errorf("ChannelID = %d, want 5", msg.(*StartChannelResponse).ChannelID)
	}
}
