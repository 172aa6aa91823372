package features

import (
	"context"
	"log"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/laboratorys/miniapp/internal/api"
	"github.com/laboratorys/miniapp/internal/bridge"
	"github.com/laboratorys/miniapp/internal/view"
)

// referralStartPrefix marks a start parameter carrying a referrer id.
const referralStartPrefix = "ref_"

// Invite drives the friend-invite flow: fetch the personalized link,
// offer it through a host popup and copy it to the clipboard on demand.
type Invite struct {
	API     *api.Client
	Bridge  *bridge.Bridge
	Display *view.Display

	UserID func() int64

	// Clipboard writes text to the system clipboard. Defaults to
	// clipboard.WriteAll; tests swap it out.
	Clipboard func(string) error
}

func NewInvite(client *api.Client, b *bridge.Bridge, display *view.Display) *Invite {
	return &Invite{
		API:       client,
		Bridge:    b,
		Display:   display,
		UserID:    func() int64 { return 0 },
		Clipboard: clipboard.WriteAll,
	}
}

// Share fetches the invite link and opens the host share popup. Copy
// Link puts the URL on the clipboard; a missing popup API falls back
// silently.
func (i *Invite) Share(ctx context.Context) {
	if i.UserID() == 0 || i.API.Token() == "" {
		i.Display.Notify("Invites are unavailable right now.", "error")
		return
	}

	link := i.API.InviteLink(ctx, i.UserID())
	if link == nil || link.URL == "" {
		return
	}

	buttonID, ok := i.Bridge.ShowPopup(bridge.Popup{
		Title:   "Invite a Friend",
		Message: "Share this link with your friends:\n" + link.URL,
		Buttons: []bridge.PopupButton{
			{ID: "copy", Type: "default", Text: "Copy Link"},
			{Type: "cancel", Text: "Close"},
		},
	})
	if !ok || buttonID != "copy" {
		return
	}
	if err := i.Clipboard(link.URL); err != nil {
		log.Printf("invite: clipboard: %v", err)
		return
	}
	log.Printf("invite: link copied to clipboard")
}

// RegisterFromStart links the new user to a referrer when the start
// parameter carries one. True when a registration was sent and
// accepted; callers re-fetch the balance and referral count then.
func (i *Invite) RegisterFromStart(ctx context.Context, startParam string) bool {
	if !strings.HasPrefix(startParam, referralStartPrefix) {
		return false
	}
	referrerID := strings.TrimPrefix(startParam, referralStartPrefix)
	if referrerID == "" || i.UserID() == 0 {
		return false
	}
	return i.API.RegisterReferral(ctx, i.UserID(), referrerID)
}
