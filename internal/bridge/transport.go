package bridge

import (
	"encoding/json"
	"errors"
)

// Minimum host versions per outbound command. Commands not listed are
// ungated.
var methodVersions = map[string]string{
	"web_app_start_accelerometer":     "8.0",
	"web_app_stop_accelerometer":      "8.0",
	"web_app_trigger_haptic_feedback": "6.1",
}

// Transport is one way of delivering a command to the host. The bridge
// holds an ordered list and uses the first available one. The priority
// order is intentional: a host exposing several mechanisms is always
// routed through the highest-priority match.
type Transport interface {
	Name() string
	Available() bool
	Post(eventType string, data json.RawMessage) error
}

// webTransport delivers frames to a message-capable host. Checked
// first, so web hosts win even when other bridges are present.
type webTransport struct {
	host Host
}

func (t *webTransport) Name() string { return "web" }

func (t *webTransport) Available() bool {
	if t.host == nil || t.host.Platform() != "web" {
		return false
	}
	_, ok := t.host.(FramePoster)
	return ok
}

func (t *webTransport) Post(eventType string, data json.RawMessage) error {
	return t.host.(FramePoster).PostFrame(eventType, data)
}

// Poster is the native webview proxy object exposed on desktop and
// mobile hosts.
type Poster interface {
	PostEvent(eventType string, data string) error
}

type proxyTransport struct {
	proxy Poster
}

func (t *proxyTransport) Name() string    { return "webview-proxy" }
func (t *proxyTransport) Available() bool { return t.proxy != nil }

func (t *proxyTransport) Post(eventType string, data json.RawMessage) error {
	return t.proxy.PostEvent(eventType, string(data))
}

// LegacyNotifier is the single-string notify channel one old platform
// family exposes.
type LegacyNotifier func(payload string) error

type notifyTransport struct {
	notify LegacyNotifier
}

func (t *notifyTransport) Name() string    { return "external-notify" }
func (t *notifyTransport) Available() bool { return t.notify != nil }

func (t *notifyTransport) Post(eventType string, data json.RawMessage) error {
	payload, err := json.Marshal(map[string]any{
		"eventType": eventType,
		"eventData": data,
	})
	if err != nil {
		return err
	}
	return t.notify(string(payload))
}

// directTransport calls the host method directly; last resort.
type directTransport struct {
	host Host
}

func (t *directTransport) Name() string    { return "direct" }
func (t *directTransport) Available() bool { return t.host != nil }

func (t *directTransport) Post(eventType string, data json.RawMessage) error {
	if t.host == nil {
		return errors.New("no host")
	}
	return t.host.PostEvent(eventType, data)
}

func defaultTransports(host Host, opts Options) []Transport {
	return []Transport{
		&webTransport{host: host},
		&proxyTransport{proxy: opts.Proxy},
		&notifyTransport{notify: opts.Notifier},
		&directTransport{host: host},
	}
}
