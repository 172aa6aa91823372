// Package bridge adapts the host platform SDK: it discovers the host,
// extracts the session identity, forwards platform events into the app
// and posts commands back out through version-gated transports.
package bridge

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"time"
)

type Mode int

const (
	ModePolling Mode = iota
	ModeReady
	ModeDegraded
)

// MockUserID is the sentinel identity used when the host never turns up.
const MockUserID int64 = 1

// Session is created once at startup and read-only afterwards. In
// degraded mode Token is empty and UserID is the sentinel.
type Session struct {
	UserID     int64
	Token      string
	Platform   string
	Version    string
	StartParam string
	User       *User
}

type Options struct {
	PollInterval    time.Duration // host discovery step, default 100ms
	PollAttempts    int           // default 50 (5s total)
	RefreshInterval time.Duration // periodic re-auth, default 30s

	// Dispatch posts a closure onto the UI run loop. Defaults to
	// calling inline.
	Dispatch func(func())
	// Notify surfaces a user-visible notification.
	Notify func(message string)
	// OnRefresh runs every RefreshInterval once startup settled,
	// regardless of mode (degraded refreshes short-circuit in the API
	// client).
	OnRefresh func()

	// Optional extra host bridges, in transport priority order after
	// the web transport.
	Proxy    Poster
	Notifier LegacyNotifier
	// Transports overrides the default priority list (tests).
	Transports []Transport
}

type Bridge struct {
	locate     func() Host
	opts       Options
	host       Host
	mode       Mode
	session    Session
	handlers   map[EventKind][]func(Event)
	transports []Transport
}

// New builds a bridge that discovers its host through locate. locate
// returns nil until the host SDK is reachable.
func New(locate func() Host, opts Options) *Bridge {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 100 * time.Millisecond
	}
	if opts.PollAttempts <= 0 {
		opts.PollAttempts = 50
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 30 * time.Second
	}
	if opts.Dispatch == nil {
		opts.Dispatch = func(f func()) { f() }
	}
	if opts.Notify == nil {
		opts.Notify = func(string) {}
	}
	return &Bridge{
		locate:   locate,
		opts:     opts,
		handlers: map[EventKind][]func(Event){},
	}
}

// Init runs the startup state machine: poll for the host, then settle
// in Ready or Degraded. Returns true when the host was initialized.
// The settled mode is terminal for the session.
func (b *Bridge) Init(ctx context.Context) bool {
	for attempt := 1; attempt <= b.opts.PollAttempts; attempt++ {
		if h := b.locate(); h != nil {
			log.Printf("bridge: host found after %d attempt(s)", attempt)
			b.initialize(h)
			b.startRefresh(ctx)
			return b.mode == ModeReady
		}
		select {
		case <-ctx.Done():
			b.degrade("Failed to load Telegram SDK. Please try again later.")
			return false
		case <-time.After(b.opts.PollInterval):
		}
	}
	log.Printf("bridge: host not available after %d attempts", b.opts.PollAttempts)
	b.degrade("Failed to load Telegram SDK. Please try again later.")
	b.startRefresh(ctx)
	return false
}

func (b *Bridge) initialize(h Host) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("bridge: host init failed: %v", r)
			b.degrade("Failed to initialize Telegram SDK.")
		}
	}()

	h.Ready()
	log.Printf("bridge: host ready, version=%s platform=%s", h.Version(), h.Platform())

	b.host = h
	b.session = Session{
		Token:      h.InitData(),
		Platform:   h.Platform(),
		Version:    h.Version(),
		StartParam: h.StartParam(),
	}
	if u := h.User(); u != nil {
		b.session.UserID = u.ID
		b.session.User = u
	} else {
		log.Printf("bridge: no user in init data, using mock identity")
		b.session.UserID = MockUserID
	}

	h.OnEvent(b.dispatch)
	h.Expand()
	h.ShowBackButton()

	b.transports = b.opts.Transports
	if b.transports == nil {
		b.transports = defaultTransports(h, b.opts)
	}
	b.mode = ModeReady
}

func (b *Bridge) degrade(message string) {
	b.mode = ModeDegraded
	b.session = Session{UserID: MockUserID, Platform: "unknown"}
	b.opts.Notify(message)
}

func (b *Bridge) startRefresh(ctx context.Context) {
	if b.opts.OnRefresh == nil {
		return
	}
	go func() {
		tick := time.NewTicker(b.opts.RefreshInterval)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				b.opts.Dispatch(b.opts.OnRefresh)
			}
		}
	}()
}

func (b *Bridge) Mode() Mode       { return b.mode }
func (b *Bridge) Session() Session { return b.session }

// On subscribes fn to one event kind. Handlers run on the UI loop.
func (b *Bridge) On(kind EventKind, fn func(Event)) {
	b.handlers[kind] = append(b.handlers[kind], fn)
}

func (b *Bridge) dispatch(ev Event) {
	for _, fn := range b.handlers[ev.Kind] {
		f := fn
		b.opts.Dispatch(func() { f(ev) })
	}
}

// PostEvent sends a command to the host. False when no host is up, the
// host version is below the command's requirement, or delivery failed.
func (b *Bridge) PostEvent(eventType string, data any) bool {
	if b.host == nil {
		log.Printf("bridge: no host, cannot post %s", eventType)
		return false
	}
	if required := methodVersions[eventType]; required != "" && !b.IsVersionAtLeast(required) {
		log.Printf("bridge: %s requires host %s, have %s", eventType, required, b.session.Version)
		return false
	}

	payload := json.RawMessage("{}")
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			log.Printf("bridge: marshal %s: %v", eventType, err)
			return false
		}
		payload = b
	}

	for _, t := range b.transports {
		if !t.Available() {
			continue
		}
		if err := t.Post(eventType, payload); err != nil {
			log.Printf("bridge: post %s via %s: %v", eventType, t.Name(), err)
			return false
		}
		log.Printf("bridge: posted %s via %s", eventType, t.Name())
		return true
	}
	log.Printf("bridge: no transport for %s", eventType)
	return false
}

// Expand asks the host to expand the viewport. Used when a viewport
// change reports a collapsed state.
func (b *Bridge) Expand() {
	if b.host != nil {
		b.host.Expand()
	}
}

// Haptic triggers impact feedback with the given style.
func (b *Bridge) Haptic(style string) bool {
	return b.PostEvent("web_app_trigger_haptic_feedback", map[string]string{
		"type":         "impact",
		"impact_style": style,
	})
}

// StartAccelerometer asks the host for accelerometer samples at the
// given refresh rate in milliseconds.
func (b *Bridge) StartAccelerometer(refreshRateMS int) bool {
	return b.PostEvent("web_app_start_accelerometer", map[string]int{"refresh_rate": refreshRateMS})
}

// ShowPopup opens a host dialog; false when no host is available or the
// dialog failed, so callers can fall back silently.
func (b *Bridge) ShowPopup(p Popup) (string, bool) {
	if b.host == nil {
		return "", false
	}
	id, err := b.host.ShowPopup(p)
	if err != nil {
		log.Printf("bridge: popup: %v", err)
		return "", false
	}
	return id, true
}

// OpenLink opens url through the host, falling back to the provided
// opener when the host is absent or fails.
func (b *Bridge) OpenLink(url string, fallback func(string)) {
	if b.host != nil {
		if err := b.host.OpenTelegramLink(url); err == nil {
			return
		} else {
			log.Printf("bridge: open link: %v", err)
		}
	}
	if fallback != nil {
		fallback(url)
	}
}

func (b *Bridge) IsVersionAtLeast(v string) bool {
	return versionAtLeast(b.session.Version, v)
}

// versionAtLeast compares dotted numeric versions; missing segments
// count as zero.
func versionAtLeast(current, required string) bool {
	cur := strings.Split(current, ".")
	req := strings.Split(required, ".")
	n := len(cur)
	if len(req) > n {
		n = len(req)
	}
	for i := 0; i < n; i++ {
		c, r := 0, 0
		if i < len(cur) {
			c, _ = strconv.Atoi(strings.TrimSpace(cur[i]))
		}
		if i < len(req) {
			r, _ = strconv.Atoi(strings.TrimSpace(req[i]))
		}
		if c != r {
			return c > r
		}
	}
	return true
}
