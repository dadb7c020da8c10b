package smartglass

import "github.com/google/uuid"

// MessageKind identifies the wire type of a protocol message.
type MessageKind uint16

// Discovery and handshake messages travel outside an established session;
// everything else is session-scoped.
const (
	KindPresenceRequest  MessageKind = 0xDD00
	KindPresenceResponse MessageKind = 0xDD01
	KindConnectRequest   MessageKind = 0xCC00
	KindConnectResponse  MessageKind = 0xCC01

	KindLocalJoin            MessageKind = 0x0003
	KindAuxiliaryStreamHello MessageKind = 0x0019
	KindConsoleStatus        MessageKind = 0x001E
	KindGameDvrRecord        MessageKind = 0x0024
	KindStartChannelRequest  MessageKind = 0x0026
	KindStartChannelResponse MessageKind = 0x0027
	KindTitleLaunch          MessageKind = 0x002A
)

// Well-known service identifiers for OpenChannel.
var (
	ServiceSystemInput = uuid.MustParse("fa20b8ca-66fb-46e0-adb6-0b978a59d35f")
	ServiceSystemMedia = uuid.MustParse("48a9ca24-eb6d-4e12-8c43-d57469edd3cd")
	ServiceSystemText  = uuid.MustParse("7af3e6a2-488b-40cb-a931-79c04b7da3a0")

	// ServiceNone opens a title channel: no declared service, the title id
	// alone selects the peer.
	ServiceNone = uuid.UUID{}
)

// Message is a single protocol message. Concrete types are fixed,
// externally-defined structures; the client only reads and writes the
// fields it needs for orchestration.
type Message interface {
	Kind() MessageKind
}

// Header carries the session and channel stamps shared by all
// session-scoped messages. The dispatcher fills SessionID on every send;
// channels additionally fill ChannelID.
type Header struct {
	SessionID uint32 `json:"session_id,omitempty"`
	ChannelID uint64 `json:"channel_id,omitempty"`
}

func (h *Header) header() *Header { return h }

// sessionMessage is satisfied by every message that embeds Header.
type sessionMessage interface {
	Message
	header() *Header
}

// PresenceRequest probes a console for identity and availability.
type PresenceRequest struct {
	ClientType uint32 `json:"client_type"`
}

func (*PresenceRequest) Kind() MessageKind { return KindPresenceRequest }

// PresenceResponse carries the console's identity and its certificate,
// from which the session's encryption context is derived.
type PresenceResponse struct {
	Flags       uint32 `json:"flags"`
	Name        string `json:"name"`
	Certificate []byte `json:"certificate"`
}

func (*PresenceResponse) Kind() MessageKind { return KindPresenceResponse }

// ConnectRequest initiates the handshake. IV, DeviceID, and PublicKey
// identify the connection attempt and are reused across retries; the
// sequence triple is rebuilt for every attempt.
type ConnectRequest struct {
	IV            []byte    `json:"iv"`
	PublicKey     []byte    `json:"public_key"`
	DeviceID      uuid.UUID `json:"device_id"`
	UserHash      string    `json:"user_hash,omitempty"`
	UserToken     string    `json:"user_token,omitempty"`
	Sequence      uint32    `json:"sequence"`
	SequenceBegin uint32    `json:"sequence_begin"`
	SequenceEnd   uint32    `json:"sequence_end"`
}

func (*ConnectRequest) Kind() MessageKind { return KindConnectRequest }

// ConnectResponse completes the handshake and assigns the participant id
// the console will use for this session.
type ConnectResponse struct {
	IV            []byte `json:"iv"`
	Result        uint32 `json:"result"`
	PendingLogin  bool   `json:"pending_login"`
	ParticipantID uint32 `json:"participant_id"`
}

func (*ConnectResponse) Kind() MessageKind { return KindConnectResponse }

// LocalJoin announces this client as an active session participant.
type LocalJoin struct {
	Header
	ClientType  uint16 `json:"client_type"`
	DisplayName string `json:"display_name"`
	OSVersion   string `json:"os_version,omitempty"`
}

func (*LocalJoin) Kind() MessageKind { return KindLocalJoin }

// ActiveTitle describes one title currently running on the console.
type ActiveTitle struct {
	TitleID   uint32 `json:"title_id"`
	Focused   bool   `json:"focused"`
	AUMID     string `json:"aum_id,omitempty"`
	TitleName string `json:"title_name,omitempty"`
}

// ConsoleConfiguration is the firmware/locale portion of a status snapshot.
type ConsoleConfiguration struct {
	LiveTVProvision bool   `json:"live_tv_provision"`
	MajorVersion    uint32 `json:"major_version"`
	MinorVersion    uint32 `json:"minor_version"`
	BuildNumber     uint32 `json:"build_number"`
	Locale          string `json:"locale"`
}

// ConsoleStatus is an unsolicited point-in-time snapshot of the console's
// configuration and active titles. Only the latest snapshot is retained.
type ConsoleStatus struct {
	Header
	Configuration ConsoleConfiguration `json:"configuration"`
	ActiveTitles  []ActiveTitle        `json:"active_titles"`
}

func (*ConsoleStatus) Kind() MessageKind { return KindConsoleStatus }

// TitleLaunch asks the console to launch the target URI at a location.
type TitleLaunch struct {
	Header
	Location ActiveTitleLocation `json:"location"`
	URI      string              `json:"uri"`
}

func (*TitleLaunch) Kind() MessageKind { return KindTitleLaunch }

// ActiveTitleLocation selects where a launched title is placed.
type ActiveTitleLocation uint32

const (
	LocationFull ActiveTitleLocation = iota
	LocationFill
	LocationSnapped
	LocationStartView
	LocationSystemUI
	LocationDefault
)

// GameDvrRecord asks the console to capture a clip relative to now; the
// start delta is negative (seconds into the past).
type GameDvrRecord struct {
	Header
	StartTimeDelta int32 `json:"start_time_delta"`
	EndTimeDelta   int32 `json:"end_time_delta"`
}

func (*GameDvrRecord) Kind() MessageKind { return KindGameDvrRecord }

// StartChannelRequest opens a logical channel. RequestID is the locally
// generated correlation id: the channel id is not known until the console
// answers, so the request id is the only value that can disambiguate
// concurrent opens.
type StartChannelRequest struct {
	Header
	RequestID uint32    `json:"request_id"`
	Service   uuid.UUID `json:"service"`
	TitleID   uint32    `json:"title_id,omitempty"`
}

func (*StartChannelRequest) Kind() MessageKind { return KindStartChannelRequest }

// StartChannelResponse answers a StartChannelRequest with the same
// RequestID. Result zero assigns ChannelID; anything else is a refusal.
type StartChannelResponse struct {
	Header
	RequestID uint32 `json:"request_id"`
	Result    uint32 `json:"result"`
	ChannelID uint64 `json:"channel_id"`
}

func (*StartChannelResponse) Kind() MessageKind { return KindStartChannelResponse }

// AuxiliaryStreamHello is the best-effort greeting some console versions
// send on a freshly opened title channel.
type AuxiliaryStreamHello struct {
	Header
	CryptoKey []byte `json:"crypto_key,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
}

func (*AuxiliaryStreamHello) Kind() MessageKind { return KindAuxiliaryStreamHello }

// messageForKind returns a zero value of the concrete type for an inbound
// wire kind, or nil for kinds this client does not understand.
func messageForKind(kind MessageKind) Message {
	switch kind {
	case KindPresenceRequest:
		return &PresenceRequest{}
	case KindPresenceResponse:
		return &PresenceResponse{}
	case KindConnectRequest:
		return &ConnectRequest{}
	case KindConnectResponse:
		return &ConnectResponse{}
	case KindLocalJoin:
		return &LocalJoin{}
	case KindAuxiliaryStreamHello:
		return &AuxiliaryStreamHello{}
	case KindConsoleStatus:
		return &ConsoleStatus{}
	case KindGameDvrRecord:
		return &GameDvrRecord{}
	case KindStartChannelRequest:
		return &StartChannelRequest{}
	case KindStartChannelResponse:
		return &StartChannelResponse{}
	case KindTitleLaunch:
		return &TitleLaunch{}
	default:
		return nil
	}
}
