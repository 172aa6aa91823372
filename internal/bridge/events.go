package bridge

// EventKind enumerates the platform events forwarded into the app.
type EventKind string

const (
	EventBackButton      EventKind = "back_button_pressed"
	EventThemeChanged    EventKind = "theme_changed"
	EventViewportChanged EventKind = "viewport_changed"
	EventAccelChanged    EventKind = "accelerometer_changed"
	EventAccelStarted    EventKind = "accelerometer_started"
	EventAccelStopped    EventKind = "accelerometer_stopped"
	EventAccelFailed     EventKind = "accelerometer_failed"
)

type AccelSample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Event is one platform event with its typed payload. Only the fields
// relevant to Kind are set.
type Event struct {
	Kind     EventKind
	Theme    string // theme_changed: background color
	Expanded bool   // viewport_changed
	Accel    AccelSample
	Err      string // accelerometer_failed
}
