// Package features holds the user-facing flows: tap and shake earning,
// the daily claim, referral invites, the lootbox catalog and the wallet
// stub. Handlers run on the app loop and talk to the backend through
// the api client.
package features

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/laboratorys/miniapp/internal/api"
	"github.com/laboratorys/miniapp/internal/bridge"
	"github.com/laboratorys/miniapp/internal/view"
)

const (
	shakeThreshold = 15.0
	shakeCooldown  = 100 * time.Millisecond

	accelRefreshRateMS = 100
)

// MotionSource is the device-motion fallback used when the host
// accelerometer is unavailable or below the required version. Start
// feeds samples until the app shuts down.
type MotionSource interface {
	// RequestPermission returns false when the user denied sensor
	// access. Platforms without a permission gate return true.
	RequestPermission() (bool, error)
	Start(fn func(bridge.AccelSample)) error
}

// Earn drives the tap and shake reward flows. Both funnel into the same
// earn path: POST mini_tap, and only when the response carries both
// hearts and energy, re-fetch the balance and repaint.
type Earn struct {
	Bridge  *bridge.Bridge
	API     *api.Client
	Display *view.Display

	// Motion is the fallback sample feed; nil means no fallback exists
	// on this device.
	Motion MotionSource

	now        func() time.Time
	lastMotion time.Time
}

func NewEarn(b *bridge.Bridge, client *api.Client, display *view.Display) *Earn {
	return &Earn{
		Bridge:  b,
		API:     client,
		Display: display,
		now:     time.Now,
	}
}

// Tap handles a press on the hearts button: haptic first, then the earn
// round-trip.
func (e *Earn) Tap(ctx context.Context) {
	e.Bridge.Haptic("light")
	e.earn(ctx)
}

// HandleSample processes one accelerometer/motion sample. Samples
// closer than shakeCooldown apart are dropped before the threshold
// check.
func (e *Earn) HandleSample(ctx context.Context, s bridge.AccelSample) {
	now := e.now()
	if now.Sub(e.lastMotion) < shakeCooldown {
		return
	}
	e.lastMotion = now

	speed := math.Sqrt(s.X*s.X + s.Y*s.Y + s.Z*s.Z)
	if speed <= shakeThreshold {
		return
	}
	e.Bridge.Haptic("medium")
	e.earn(ctx)
}

// EnableShake starts the preferred accelerometer feed, falling back to
// device motion when the host is absent, too old, or refuses to start.
// Actual samples arrive through HandleSample via the bridge event bus.
func (e *Earn) EnableShake(ctx context.Context) {
	if e.Bridge.Mode() != bridge.ModeReady {
		log.Printf("earn: no host, shake falls back to device motion")
		e.Fallback(ctx)
		return
	}
	if !e.Bridge.IsVersionAtLeast("8.0") {
		log.Printf("earn: host version below 8.0, shake falls back to device motion")
		e.Fallback(ctx)
		return
	}
	if !e.Bridge.StartAccelerometer(accelRefreshRateMS) {
		log.Printf("earn: accelerometer start rejected, shake falls back to device motion")
		e.Fallback(ctx)
	}
}

// Fallback wires the device-motion source. Also invoked when the host
// reports accelerometer_failed after a successful start.
func (e *Earn) Fallback(ctx context.Context) {
	if e.Motion == nil {
		e.Display.Notify("Shake to Earn is not supported on this device.", "error")
		return
	}
	granted, err := e.Motion.RequestPermission()
	if err != nil {
		e.Display.Notify("Failed to access motion sensors. Shake to Earn is unavailable.", "error")
		return
	}
	if !granted {
		e.Display.Notify("Shake to Earn requires motion sensor access. Please allow access to continue.", "error")
		return
	}
	if err := e.Motion.Start(func(s bridge.AccelSample) {
		e.HandleSample(ctx, s)
	}); err != nil {
		log.Printf("earn: motion source: %v", err)
	}
}

func (e *Earn) earn(ctx context.Context) {
	if e.API.Token() == "" {
		log.Printf("earn: no session token, skipping")
		return
	}

	result := e.API.MiniTap(ctx)
	if result == nil || result.Hearts == nil || result.Energy == nil {
		return
	}

	data := e.API.Login(ctx)
	if data == nil || data.Points == nil {
		return
	}
	e.Display.UpdateUI(*data.Points)
}
