package app

import (
	"context"
	"log"
	"time"

	"github.com/laboratorys/miniapp/internal/anim"
	"github.com/laboratorys/miniapp/internal/api"
	"github.com/laboratorys/miniapp/internal/bridge"
	"github.com/laboratorys/miniapp/internal/cache"
	"github.com/laboratorys/miniapp/internal/config"
	"github.com/laboratorys/miniapp/internal/dom"
	"github.com/laboratorys/miniapp/internal/features"
	"github.com/laboratorys/miniapp/internal/view"
)

const (
	communityChatLink      = "https://t.me/laboratorys_chat"
	stickerStoreLink       = "https://t.me/sticker_bot/?startapp=cid_4"
	memesTournamentLink    = "https://t.me/laboratorys_chat"
	defaultThemeBackground = "#F8F8F8"
)

// App owns every component of the client and the loop they run on.
type App struct {
	Loop    *Loop
	Doc     *dom.Document
	Cache   *cache.Store
	API     *api.Client
	Bridge  *bridge.Bridge
	Anim    *anim.Loader
	Display *view.Display
	Router  *view.Router

	Earn    *features.Earn
	Claim   *features.Claim
	Invite  *features.Invite
	Catalog *features.Catalog
	Wallet  *features.Wallet

	userID int64
}

// New assembles the client. locate discovers the platform host (nil
// until reachable); renderer and motion may be no-ops for headless
// runs.
func New(cfg config.Config, store *cache.Store, locate func() bridge.Host, renderer anim.Renderer, motion features.MotionSource) *App {
	a := &App{
		Loop:  NewLoop(),
		Doc:   view.BuildDocument(),
		Cache: store,
	}

	a.API = api.NewClient(cfg.BackendURL, cfg.AssetURL, cfg.UserAgent, cfg.RequestTimeout.Std())

	a.Display = view.NewDisplay(a.Doc)
	a.Display.Post = a.Loop.Do
	// A dead backend must never leave the spinner stuck.
	a.API.OnFailure = a.Display.HideSpinner

	a.Bridge = bridge.New(locate, bridge.Options{
		Dispatch:  a.Loop.Do,
		Notify:    func(message string) { a.Display.Notify(message, "error") },
		OnRefresh: a.refreshBalance,
	})

	a.Anim = anim.NewLoader(a.Doc, store, a.API.FetchAsset, renderer, cfg.UserAgent)

	a.Router = view.NewRouter(a.Doc, store, a.Anim, a.API, a.Display)
	a.Router.UserID = a.UserID

	a.Earn = features.NewEarn(a.Bridge, a.API, a.Display)
	a.Earn.Motion = motion

	a.Claim = features.NewClaim(a.API, a.Display, a.Anim)
	a.Claim.UserID = a.UserID
	a.Claim.Post = a.Loop.Do

	a.Invite = features.NewInvite(a.API, a.Bridge, a.Display)
	a.Invite.UserID = a.UserID

	a.Catalog = features.NewCatalog(a.API, store, a.Doc, a.Anim, a.Bridge, a.Display)
	a.Catalog.Navigate = func(ctx context.Context, pageID string) {
		a.Router.Navigate(ctx, pageID, false)
	}
	a.Router.OnRouletteOpen = func(ctx context.Context) {
		a.Catalog.Render(ctx, a.Catalog.Load(ctx))
	}
	a.Router.OnDetailOpen = a.Catalog.EnsureDetailAnimations

	a.Wallet = features.NewWallet(store, a.Display)

	return a
}

// UserID reports the session identity; the degraded-mode sentinel
// before startup settles.
func (a *App) UserID() int64 { return a.userID }

// Run boots the client and then serves the loop until ctx is done.
func (a *App) Run(ctx context.Context) {
	a.Loop.Do(func() { a.startup(ctx) })
	a.Loop.Run(ctx)
}

func (a *App) startup(ctx context.Context) {
	a.Display.MarkLoadingStart()

	a.Bridge.Init(ctx)
	sess := a.Bridge.Session()
	a.userID = sess.UserID
	a.API.SetToken(sess.Token)

	if sess.User != nil {
		a.Display.SetProfile(sess.User.FirstName, sess.User.PhotoURL, sess.User.ID)
	} else {
		a.Display.SetProfile("TestUser", "", sess.UserID)
	}

	a.Bridge.On(bridge.EventBackButton, func(bridge.Event) {
		a.Router.Back(ctx)
	})
	a.Bridge.On(bridge.EventThemeChanged, func(ev bridge.Event) {
		bg := ev.Theme
		if bg == "" {
			bg = defaultThemeBackground
		}
		a.Doc.SetAttr(view.ElemBody, "background", bg)
	})
	a.Bridge.On(bridge.EventViewportChanged, func(ev bridge.Event) {
		if !ev.Expanded {
			a.Bridge.Expand()
		}
	})
	a.Bridge.On(bridge.EventAccelChanged, func(ev bridge.Event) {
		a.Earn.HandleSample(ctx, ev.Accel)
	})
	a.Bridge.On(bridge.EventAccelFailed, func(bridge.Event) {
		a.Display.Notify("Failed to access accelerometer. Falling back to device motion.", "error")
		a.Earn.Fallback(ctx)
	})

	a.initialFetch(ctx, sess)

	a.Claim.Refresh(ctx)
	go a.claimTicker(ctx)

	a.Earn.EnableShake(ctx)
	a.Wallet.Restore()

	a.Router.Navigate(ctx, a.Router.SavedPage(), true)
}

// initialFetch is the first login round-trip: paint the balance, report
// the login event and register a referrer carried in the start
// parameter.
func (a *App) initialFetch(ctx context.Context, sess bridge.Session) {
	if sess.Token == "" {
		log.Printf("app: no init data, skipping initial fetch")
		a.Display.UpdateEnergy(0)
		a.Display.HideSpinnerWithDelay()
		return
	}

	data := a.API.Login(ctx)
	if data == nil || data.User == nil {
		a.Display.UpdateEnergy(0)
		a.Display.HideSpinnerWithDelay()
		return
	}
	if data.Points != nil {
		a.Display.UpdateUI(*data.Points)
	}

	a.API.Webhook(ctx, a.userID, "login")

	if a.Invite.RegisterFromStart(ctx, sess.StartParam) {
		if updated := a.API.Login(ctx); updated != nil && updated.Points != nil {
			a.Display.UpdateUI(*updated.Points)
			if refs := a.API.Referrals(ctx, a.userID); refs != nil {
				a.Display.UpdateReferralCount(len(refs.Referrals))
			}
		}
	}

	a.Display.HideSpinnerWithDelay()
}

func (a *App) claimTicker(ctx context.Context) {
	tick := time.NewTicker(features.ClaimInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			a.Loop.Do(func() { a.Claim.Refresh(ctx) })
		}
	}
}

// refreshBalance is the periodic re-auth: login and repaint, nothing
// else.
func (a *App) refreshBalance() {
	if a.API.Token() == "" {
		log.Printf("app: no init data, skipping periodic update")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if data := a.API.Login(ctx); data != nil && data.Points != nil {
		a.Display.UpdateUI(*data.Points)
	}
}

// OpenCommunityChat, OpenStickerStore and OpenMemesTournament route the
// home-page partner buttons through the host, logging when neither the
// host nor a fallback can take the link.
func (a *App) OpenCommunityChat()   { a.openExternal(communityChatLink) }
func (a *App) OpenStickerStore()    { a.openExternal(stickerStoreLink) }
func (a *App) OpenMemesTournament() { a.openExternal(memesTournamentLink) }

func (a *App) openExternal(url string) {
	a.Bridge.OpenLink(url, func(u string) {
		log.Printf("app: open %s externally", u)
	})
}
