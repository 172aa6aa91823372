package view

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/laboratorys/miniapp/internal/api"
	"github.com/laboratorys/miniapp/internal/dom"
)

// minimum time the loading spinner stays on screen, measured from the
// start of the first data fetch.
const minLoadingWindow = 3500 * time.Millisecond

// notification lifetime before auto-dismissal.
const notificationTTL = 5 * time.Second

// Display owns the stat labels, profile fields, spinner and
// notifications. All writes land in the dom tree.
type Display struct {
	Doc *dom.Document
	// Post schedules a deferred closure on the UI loop. Defaults to
	// calling inline.
	Post func(func())

	now          func() time.Time
	loadingStart time.Time
	notifySeq    int
}

func NewDisplay(doc *dom.Document) *Display {
	return &Display{
		Doc:  doc,
		Post: func(f func()) { f() },
		now:  time.Now,
	}
}

// FormatNumber renders counters: values below 1000 verbatim, larger
// ones as thousands with at most one decimal and a trailing ".0"
// stripped ("1k", "1.5k").
func FormatNumber(v int) string {
	if v >= 1000 {
		s := strconv.FormatFloat(float64(v)/1000, 'f', 1, 64)
		return strings.Replace(s, ".0", "", 1) + "k"
	}
	return strconv.Itoa(v)
}

// FormatWalletAddress shortens an address to its first and last three
// characters. Short inputs pass through.
func FormatWalletAddress(address string) string {
	if len(address) < 6 {
		return address
	}
	return address[:3] + "..." + address[len(address)-3:]
}

func clampEnergy(energy int) int {
	if energy < 0 {
		return 0
	}
	if energy > 100 {
		return 100
	}
	return energy
}

// UpdateEnergy clamps to [0,100] before rendering both the counter and
// the bar scale.
func (d *Display) UpdateEnergy(energy int) {
	energy = clampEnergy(energy)
	d.Doc.SetText(ElemEnergyCount, fmt.Sprintf("%d/100", energy))
	scale := float64(energy) / 100
	d.Doc.SetAttr(ElemEnergyBar, "scale", strconv.FormatFloat(scale, 'f', -1, 64))
}

// UpdateUI replaces every stat label from a fresh points payload.
func (d *Display) UpdateUI(p api.Points) {
	d.Doc.SetText(ElemTickets, strconv.Itoa(p.Tickets))
	d.Doc.SetText(ElemHearts, FormatNumber(p.Hearts))
	d.UpdateEnergy(p.Energy)

	points := FormatNumber(p.Points)
	d.Doc.SetText(ElemAirdropDesc, points+" points")
	d.Doc.SetText(ElemAirdropAmount, points)
}

func (d *Display) SetProfile(name, avatarURL string, id int64) {
	if name == "" {
		name = "User"
	}
	if avatarURL == "" {
		avatarURL = DefaultAvatar
	}
	d.Doc.SetText(ElemProfileName, name)
	d.Doc.SetAttr(ElemProfileAvatar, "src", avatarURL)
	d.Doc.SetText(ElemProfileID, fmt.Sprintf("ID %d", id))
}

// Notify surfaces a message. Only "success" and "info" render visibly;
// everything else is log-only, as observed.
func (d *Display) Notify(message, typ string) {
	log.Printf("notify [%s]: %s", typ, message)
	if typ != "success" && typ != "info" {
		return
	}
	d.notifySeq++
	id := fmt.Sprintf("notification-%d", d.notifySeq)
	child := &dom.Element{ID: id, Kind: dom.KindListItem, Text: message, Visible: true}
	child.SetAttr("type", typ)
	d.Doc.AppendChild(ElemNotifications, child)

	time.AfterFunc(notificationTTL, func() {
		d.Post(func() { d.Doc.RemoveChild(ElemNotifications, id) })
	})
}

// MarkLoadingStart records when the first fetch began; the spinner
// stays up for at least minLoadingWindow from this point.
func (d *Display) MarkLoadingStart() {
	d.loadingStart = d.now()
}

func (d *Display) HideSpinner() {
	d.Doc.Hide(ElemSpinner)
}

// HideSpinnerWithDelay hides the spinner once the minimum loading
// window has elapsed.
func (d *Display) HideSpinnerWithDelay() {
	remaining := minLoadingWindow - d.now().Sub(d.loadingStart)
	if remaining <= 0 {
		d.HideSpinner()
		return
	}
	time.AfterFunc(remaining, func() {
		d.Post(func() { d.HideSpinner() })
	})
}

// UpdateWallet renders the connect control: a shortened address once
// connected, the call-to-action otherwise.
func (d *Display) UpdateWallet(address string) {
	if address != "" {
		d.Doc.SetText(ElemWalletButton, FormatWalletAddress(address))
		d.Doc.SetDisabled(ElemWalletButton, true)
		d.Doc.SetAttr(ElemWalletButton, "connected", "1")
		return
	}
	d.Doc.SetText(ElemWalletButton, "Connect Wallet")
	d.Doc.SetDisabled(ElemWalletButton, false)
	d.Doc.SetAttr(ElemWalletButton, "connected", "")
}

func (d *Display) UpdateReferralCount(n int) {
	d.Doc.SetText(ElemInviteCount, fmt.Sprintf("+%d", n))
}

// RenderReferrals rebuilds the referral list in full; no incremental
// diffing.
func (d *Display) RenderReferrals(referrals []api.Referral) {
	d.Doc.ClearChildren(ElemReferralsList)
	if len(referrals) == 0 {
		d.Doc.AppendChild(ElemReferralsList, &dom.Element{
			Kind: dom.KindListItem, Text: "No referrals yet.", Visible: true,
		})
		return
	}
	for i, ref := range referrals {
		name := ref.Username
		if name == "" {
			name = ref.FirstName
		}
		if name == "" {
			name = "Name Tag"
		}
		avatar := ref.PhotoURL
		if avatar == "" {
			avatar = DefaultAvatar
		}
		child := &dom.Element{
			ID:      fmt.Sprintf("referral-%d", i),
			Kind:    dom.KindListItem,
			Text:    name,
			Visible: true,
		}
		child.SetAttr("avatar", avatar)
		d.Doc.AppendChild(ElemReferralsList, child)
	}
}
