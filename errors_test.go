package smartglass

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestConnectionError_Error(t *testing.T) {
	err := &ConnectionError{Address: "10.0.0.5:5050", Attempts: 5}
	want := "connection failed [10.0.0.5:5050]: no response after 5 attempts"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err = &ConnectionError{Address: "10.0.0.5:5050", Reason: "console refused connection (result 5)"}
	if got := err.Error(); !strings.Contains(got, "result 5") {
		t.Errorf("Error() = %q, want the refusal reason", got)
	}
}

func TestChannelOpenError_ErrorsAs(t *testing.T) {
	err := fmt.Errorf("open input: %w", &ChannelOpenError{Service: ServiceSystemInput, Code: 3})
	var openErr *ChannelOpenError
	if !errors.As(err, &openErr) {
		t.Fatal("errors.As should match ChannelOpenError")
	}
	if openErr.Code != 3 {
		t.Errorf("Code = %d, want 3", openErr.Code)
	}
}

func TestDiscoveryError_Error(t *testing.T) {
	err := &DiscoveryError{Address: "10.0.0.5", Reason: "no presence response"}
	want := "discovery failed [10.0.0.5]: no presence response"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestClientError_Unwrap(t *testing.T) {
	cause := errors.New("short datagram")
	err := &ClientError{Kind: ErrDecodeFailure, Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("ClientError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "ErrDecodeFailure") {
		t.Errorf("Error() = %q, want the kind name", err.Error())
	}
}

func TestErrorKind_String(t *testing.T) {
	if got := ErrJoinSend.String(); got != "ErrJoinSend" {
		t.Errorf("String() = %q, want %q", got, "ErrJoinSend")
	}
	if got := ErrorKind(99).String(); got != "ErrorKind(99)" {
		t.Errorf("String() = %q, want fallback form", got)
	}
}

func TestLogErrors_WritesKindAndCause(t *testing.T) {
	var buf bytes.Buffer
	handler := LogErrors(zerolog.New(&buf))

	handler(ClientError{Kind: ErrDecodeFailure, Cause: errors.New("bad mac")})

	out := buf.String()
	if !strings.Contains(out, "ErrDecodeFailure") || !strings.Contains(out, "bad mac") {
		t.Errorf("log output = %q, want kind and cause", out)
	}
}
