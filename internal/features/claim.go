package features

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/laboratorys/miniapp/internal/anim"
	"github.com/laboratorys/miniapp/internal/api"
	"github.com/laboratorys/miniapp/internal/view"
)

// checkmarkWindow is how long the confirmation animation stays visible
// after a successful claim.
const checkmarkWindow = 2 * time.Second

// ClaimInterval is the countdown refresh period.
const ClaimInterval = 60 * time.Second

// Claim owns the daily check-in: countdown rendering, the claim
// round-trip and the confirmation checkmark.
type Claim struct {
	API     *api.Client
	Display *view.Display
	Anim    *anim.Loader

	UserID func() int64

	// Post schedules a deferred closure on the UI loop. Defaults to
	// calling inline.
	Post func(func())

	now func() time.Time
}

func NewClaim(client *api.Client, display *view.Display, loader *anim.Loader) *Claim {
	return &Claim{
		API:     client,
		Display: display,
		Anim:    loader,
		UserID:  func() int64 { return 0 },
		Post:    func(f func()) { f() },
		now:     time.Now,
	}
}

func (c *Claim) setState(timerText string, disabled bool) {
	c.Display.Doc.SetText(view.ElemCheckInTimer, timerText)
	c.Display.Doc.SetDisabled(view.ElemClaimButton, disabled)
}

// Refresh recomputes the countdown. A future next-claim timestamp
// disables the control; anything else offers the claim with the
// streak-plus-one day count.
func (c *Claim) Refresh(ctx context.Context) {
	if c.UserID() == 0 {
		c.setState("User ID not available", true)
		return
	}
	if c.API.Token() == "" {
		c.setState("Init data not available", true)
		return
	}

	status := c.API.ClaimStatus(ctx, c.UserID())
	if status == nil {
		c.setState("Failed to load status", true)
		return
	}

	next, ok := parseClaimTime(status.NextClaimTimestamp)
	if ok && c.now().Before(next) {
		left := int(next.Sub(c.now()).Seconds())
		c.setState(fmt.Sprintf("Next claim in %dh %dm", left/3600, (left%3600)/60), true)
		return
	}
	c.setState(fmt.Sprintf("Claim now! (%d-day check-in)", status.Streak+1), false)
}

// Do performs the claim. No-op while the control is disabled. On a
// response carrying tickets: re-fetch the balance, show the checkmark
// for its fixed window and recompute the countdown.
func (c *Claim) Do(ctx context.Context) {
	if c.Display.Doc.Disabled(view.ElemClaimButton) {
		return
	}

	result := c.API.Claim(ctx, c.UserID())
	if result == nil || result.Tickets == nil {
		return
	}

	if data := c.API.Login(ctx); data != nil && data.Points != nil {
		c.Display.UpdateUI(*data.Points)
	}

	c.Display.Doc.Show(view.SlotCheckmark)
	c.Anim.EnsureLoaded(ctx, view.SlotCheckmark, "/checkmark-animation.json", false, true)
	time.AfterFunc(checkmarkWindow, func() {
		c.Post(func() { c.Display.Doc.Hide(view.SlotCheckmark) })
	})

	c.Refresh(ctx)
}

// parseClaimTime accepts an RFC3339 timestamp or unix milliseconds;
// both shapes have been observed from the backend.
func parseClaimTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), true
	}
	return time.Time{}, false
}
