package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsMsg is the frame format spoken with the host bridge, both ways.
type wsMsg struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type hostInfo struct {
	Version    string `json:"version"`
	Platform   string `json:"platform"`
	InitData   string `json:"init_data"`
	StartParam string `json:"start_param"`
	ThemeBG    string `json:"theme_bg"`
	User       *User  `json:"user"`
}

// WebHost is the platform host reached over a websocket: the dev
// harness and web-embedded deployments speak this. It satisfies both
// Host and FramePoster, so the web transport picks it up first.
type WebHost struct {
	conn *websocket.Conn
	info hostInfo

	writeMu sync.Mutex
	onEvent func(Event)
	popupCh chan string
}

// DialHost connects to the host bridge and performs the handshake: the
// host speaks first with a hello frame carrying version, platform,
// init data and user identity.
func DialHost(url string) (*WebHost, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var hello wsMsg
	if err := conn.ReadJSON(&hello); err != nil {
		conn.Close()
		return nil, fmt.Errorf("host hello: %w", err)
	}
	if hello.Type != "hello" {
		conn.Close()
		return nil, fmt.Errorf("unexpected first frame %q", hello.Type)
	}
	conn.SetReadDeadline(time.Time{})

	h := &WebHost{conn: conn, popupCh: make(chan string, 1)}
	if err := json.Unmarshal(hello.Data, &h.info); err != nil {
		conn.Close()
		return nil, fmt.Errorf("host hello: %w", err)
	}
	go h.readLoop()
	return h, nil
}

func (h *WebHost) readLoop() {
	defer h.conn.Close()
	for {
		var in wsMsg
		if err := h.conn.ReadJSON(&in); err != nil {
			log.Printf("host: read: %v", err)
			return
		}
		switch in.Type {
		case "popup_closed":
			var body struct {
				ButtonID string `json:"button_id"`
			}
			_ = json.Unmarshal(in.Data, &body)
			select {
			case h.popupCh <- body.ButtonID:
			default:
			}
		case string(EventThemeChanged):
			var body struct {
				BGColor string `json:"bg_color"`
			}
			_ = json.Unmarshal(in.Data, &body)
			h.forward(Event{Kind: EventThemeChanged, Theme: body.BGColor})
		case string(EventViewportChanged):
			var body struct {
				IsExpanded bool `json:"is_expanded"`
			}
			_ = json.Unmarshal(in.Data, &body)
			h.forward(Event{Kind: EventViewportChanged, Expanded: body.IsExpanded})
		case string(EventAccelChanged):
			var sample AccelSample
			_ = json.Unmarshal(in.Data, &sample)
			h.forward(Event{Kind: EventAccelChanged, Accel: sample})
		case string(EventAccelFailed):
			var body struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(in.Data, &body)
			h.forward(Event{Kind: EventAccelFailed, Err: body.Error})
		case string(EventBackButton), string(EventAccelStarted), string(EventAccelStopped):
			h.forward(Event{Kind: EventKind(in.Type)})
		default:
			log.Printf("host: unknown frame %q", in.Type)
		}
	}
}

func (h *WebHost) forward(ev Event) {
	if h.onEvent != nil {
		h.onEvent(ev)
	}
}

func (h *WebHost) write(typ string, data any) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return err
		}
		raw = b
	}
	return h.conn.WriteJSON(wsMsg{Type: typ, Data: raw})
}

func (h *WebHost) Ready()                  { _ = h.write("ready", nil) }
func (h *WebHost) Version() string         { return h.info.Version }
func (h *WebHost) Platform() string        { return h.info.Platform }
func (h *WebHost) InitData() string        { return h.info.InitData }
func (h *WebHost) StartParam() string      { return h.info.StartParam }
func (h *WebHost) ThemeBackground() string { return h.info.ThemeBG }
func (h *WebHost) User() *User             { return h.info.User }
func (h *WebHost) Expand()                 { _ = h.write("expand", nil) }
func (h *WebHost) ShowBackButton()         { _ = h.write("back_button_show", nil) }

func (h *WebHost) OnEvent(fn func(Event)) { h.onEvent = fn }

func (h *WebHost) ShowPopup(p Popup) (string, error) {
	if err := h.write("popup", p); err != nil {
		return "", err
	}
	select {
	case id := <-h.popupCh:
		return id, nil
	case <-time.After(10 * time.Second):
		return "", errors.New("popup timed out")
	}
}

func (h *WebHost) OpenTelegramLink(url string) error {
	return h.write("open_link", map[string]string{"url": url})
}

// PostFrame delivers an outbound command as a message frame; this is
// the web transport path.
func (h *WebHost) PostFrame(eventType string, data json.RawMessage) error {
	return h.write("event", map[string]any{
		"eventType": eventType,
		"eventData": data,
	})
}

// PostEvent satisfies the direct transport; for a websocket host it is
// the same wire as PostFrame.
func (h *WebHost) PostEvent(eventType string, data json.RawMessage) error {
	return h.PostFrame(eventType, data)
}

func (h *WebHost) Close() error { return h.conn.Close() }
