package view

import "github.com/laboratorys/miniapp/internal/dom"

// Page ids. Lootbox detail pages are created dynamically as
// "lootbox-details-<id>" when the catalog renders.
const (
	PageHome       = "home"
	PageEarn       = "earn"
	PageRoulette   = "roulette"
	PageRewards    = "rewards"
	PageLaboratory = "laboratory"

	DefaultPage = PageHome

	DetailPagePrefix = "lootbox-details-"
)

// Element ids the display and feature handlers mutate.
const (
	ElemBody          = "body"
	ElemSpinner       = "loading-spinner"
	ElemTickets       = "tickets-count"
	ElemHearts        = "hearts-count"
	ElemEnergyCount   = "energy-count"
	ElemEnergyBar     = "energy-bar"
	ElemAirdropDesc   = "airdrop-description"
	ElemAirdropAmount = "airdrop-amount"
	ElemInviteCount   = "invite-count"
	ElemProfileName   = "profile-name"
	ElemProfileAvatar = "profile-avatar"
	ElemProfileID     = "profile-id"
	ElemReferralsList = "referrals-list"
	ElemCheckInTimer  = "check-in-timer"
	ElemClaimButton   = "claim-button"
	ElemHeartsButton  = "hearts-button"
	ElemWalletButton  = "connect-wallet"
	ElemLootboxList   = "lootboxes-list"
	ElemNotifications = "notifications"

	SlotPaint     = "paint-lottie"
	SlotCommunity = "community-lottie"
	SlotCheckmark = "checkmark-lottie"
	SlotShakeTop  = "shake-top-lottie"

	DefaultAvatar = "/default-avatar.png"
)

// BuildDocument lays out the standard element tree: page sections, menu
// buttons, the stat labels and the animation slots with their owning
// pages.
func BuildDocument() *dom.Document {
	d := dom.NewDocument()

	for _, page := range []string{PageHome, PageEarn, PageRoulette, PageRewards, PageLaboratory} {
		d.Add(page, dom.KindPage, page == DefaultPage)
		btn := d.Add("menu-"+page, dom.KindMenuButton, true)
		btn.SetAttr("page", page)
	}

	d.Add(ElemBody, "", true)
	d.Add(ElemSpinner, "", true)
	d.Add(ElemTickets, "", true)
	d.Add(ElemHearts, "", true)
	d.Add(ElemEnergyCount, "", true)
	d.Add(ElemEnergyBar, "", true)
	d.Add(ElemAirdropDesc, "", true)
	d.Add(ElemAirdropAmount, "", true)
	d.Add(ElemInviteCount, "", true)
	d.Add(ElemProfileName, "", true)
	d.Add(ElemProfileAvatar, "", true)
	d.Add(ElemProfileID, "", true)
	d.Add(ElemReferralsList, "", true)
	d.Add(ElemCheckInTimer, "", true)
	d.Add(ElemClaimButton, "", true)
	d.Add(ElemHeartsButton, "", true)
	d.Add(ElemWalletButton, "", true)
	d.Add(ElemLootboxList, "", true)
	d.Add(ElemNotifications, "", true)

	// Page-scoped animation slots follow their page's visibility; the
	// checkmark slot is shown only during the claim confirmation
	// window.
	d.Add(SlotPaint, dom.KindAnimation, true).SetAttr("page", PageHome)
	d.Add(SlotCommunity, dom.KindAnimation, true).SetAttr("page", PageHome)
	d.Add(SlotShakeTop, dom.KindAnimation, false).SetAttr("page", PageEarn)
	d.Add(SlotCheckmark, dom.KindAnimation, false)

	return d
}
