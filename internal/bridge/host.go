package bridge

import "encoding/json"

// User is the identity the host hands over during the handshake.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
	PhotoURL  string `json:"photo_url"`
}

type PopupButton struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type Popup struct {
	Title   string        `json:"title"`
	Message string        `json:"message"`
	Buttons []PopupButton `json:"buttons"`
}

// Host is the platform SDK surface the client consumes. Implementations
// are black boxes: the websocket host in this package, fakes in tests.
type Host interface {
	// Ready signals the host that the app finished booting.
	Ready()
	Version() string
	Platform() string
	// InitData is the opaque session token proving the user's identity
	// to the backend.
	InitData() string
	User() *User
	StartParam() string
	ThemeBackground() string
	Expand()
	ShowBackButton()
	// OnEvent installs the single event forwarder. Replaces any
	// previous one.
	OnEvent(fn func(Event))
	// ShowPopup blocks until the user dismisses the dialog and returns
	// the pressed button id.
	ShowPopup(p Popup) (string, error)
	OpenTelegramLink(url string) error
	// PostEvent is the last-resort direct method call transport.
	PostEvent(eventType string, data json.RawMessage) error
}

// FramePoster is implemented by hosts reachable through message frames
// (the web postMessage analog). Its presence enables the web transport.
type FramePoster interface {
	PostFrame(eventType string, data json.RawMessage) error
}
