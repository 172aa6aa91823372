package view

import (
	"context"
	"log"
	"strings"

	"github.com/laboratorys/miniapp/internal/anim"
	"github.com/laboratorys/miniapp/internal/api"
	"github.com/laboratorys/miniapp/internal/cache"
	"github.com/laboratorys/miniapp/internal/dom"
)

// Router owns the current-page state: it toggles page visibility,
// persists the active page, maps back navigation onto the in-app
// history and drives the per-page refresh cycle.
type Router struct {
	Doc     *dom.Document
	Cache   *cache.Store
	Anim    *anim.Loader
	API     *api.Client
	Display *Display

	// UserID yields the session identity for referral fetches.
	UserID func() int64

	// OnRouletteOpen renders the lootbox catalog; OnDetailOpen ensures
	// reward animations on detail/reward pages. Wired by the app.
	OnRouletteOpen func(ctx context.Context)
	OnDetailOpen   func(ctx context.Context, pageID string)

	current string
	history []string
}

func NewRouter(doc *dom.Document, store *cache.Store, loader *anim.Loader, client *api.Client, display *Display) *Router {
	return &Router{
		Doc:     doc,
		Cache:   store,
		Anim:    loader,
		API:     client,
		Display: display,
		UserID:  func() int64 { return 0 },
	}
}

func (r *Router) Current() string { return r.current }

// HistoryLen reports how many entries back navigation can unwind.
func (r *Router) HistoryLen() int { return len(r.history) }

// SavedPage returns the persisted last-active page, defaulting to home.
func (r *Router) SavedPage() string {
	var page string
	if r.Cache.Load(cache.KeyActivePage, &page) && page != "" {
		return page
	}
	return DefaultPage
}

// Back maps the host back button onto the in-app pages: anywhere but
// home returns home.
func (r *Router) Back(ctx context.Context) {
	if r.current != PageHome {
		r.Navigate(ctx, PageHome, false)
	}
}

// Navigate switches to pageID. isBack marks back/programmatic
// navigation and suppresses the history push. An unknown page redirects
// to the default page, flagged as back-navigation so the redirect does
// not pollute history.
func (r *Router) Navigate(ctx context.Context, pageID string, isBack bool) {
	log.Printf("view: open page %s", pageID)
	r.current = pageID
	if err := r.Cache.Save(cache.KeyActivePage, pageID); err != nil {
		log.Printf("view: persist page: %v", err)
	}

	target := r.Doc.Get(pageID)
	if target == nil || target.Kind != dom.KindPage {
		log.Printf("view: page %s not found, redirecting to %s", pageID, DefaultPage)
		r.Navigate(ctx, DefaultPage, true)
		return
	}

	for _, p := range r.Doc.ByKind(dom.KindPage) {
		p.Visible = p.ID == pageID
	}
	for _, b := range r.Doc.ByKind(dom.KindMenuButton) {
		if b.Attr("page") == pageID {
			b.SetAttr("active", "1")
		} else {
			b.SetAttr("active", "")
		}
	}
	// Page-scoped animation containers follow their page.
	for _, a := range r.Doc.ByKind(dom.KindAnimation) {
		if owner := a.Attr("page"); owner != "" {
			a.Visible = owner == pageID
		}
	}

	if !isBack {
		r.history = append(r.history, pageID)
	}

	r.ensurePageAnimations(ctx, pageID)

	if pageID == PageRoulette {
		// The catalog page always re-fetches: sweep the memoized
		// animation and catalog blobs first.
		r.Cache.ClearPrefixes(cache.PrefixLottie, cache.PrefixLootboxes)
		if r.OnRouletteOpen != nil {
			r.OnRouletteOpen(ctx)
		}
	}
	if strings.HasPrefix(pageID, DetailPagePrefix) || pageID == PageRewards {
		if r.OnDetailOpen != nil {
			r.OnDetailOpen(ctx, pageID)
		}
	}

	r.refresh(ctx, pageID)
}

func (r *Router) ensurePageAnimations(ctx context.Context, pageID string) {
	r.Anim.EnsureLoaded(ctx, SlotPaint, "/paint-animation.json", true, true)
	r.Anim.EnsureLoaded(ctx, SlotCommunity, "/community-animation.json", true, true)
	r.Anim.EnsureLoaded(ctx, SlotCheckmark, "/checkmark-animation.json", false, true)
	if pageID == PageEarn {
		r.Anim.EnsureLoaded(ctx, SlotShakeTop, "/shake-top-animation.json", true, true)
	}
}

// refresh re-fetches UserPoints on every navigation. Failure or a
// missing token shows energy as 0 rather than stale data.
func (r *Router) refresh(ctx context.Context, pageID string) {
	if r.API.Token() == "" {
		log.Printf("view: no session token, skipping page refresh")
		r.Display.UpdateEnergy(0)
		return
	}

	data := r.API.Login(ctx)
	if data == nil || data.Points == nil {
		r.Display.UpdateEnergy(0)
		return
	}
	r.Display.UpdateUI(*data.Points)

	switch pageID {
	case PageHome:
		if refs := r.API.Referrals(ctx, r.UserID()); refs != nil {
			r.Display.UpdateReferralCount(len(refs.Referrals))
		}
	case PageEarn:
		var list []api.Referral
		if refs := r.API.Referrals(ctx, r.UserID()); refs != nil {
			list = refs.Referrals
		}
		r.Display.RenderReferrals(list)
	}
}
