package features

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/laboratorys/miniapp/internal/anim"
	"github.com/laboratorys/miniapp/internal/api"
	"github.com/laboratorys/miniapp/internal/bridge"
	"github.com/laboratorys/miniapp/internal/cache"
	"github.com/laboratorys/miniapp/internal/dom"
	"github.com/laboratorys/miniapp/internal/view"
)

const (
	lootboxesPath = "/lootboxes.json"

	defaultLootboxImage = "/TGImage.svg"
	defaultRibbonText   = "GIFT"

	lvlGateMessage = "To buy spins, you need to have LVL 10"
)

// Lootbox is one catalog entry. Every field besides id is optional;
// missing values get placeholder defaults at render time.
type Lootbox struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Image           string `json:"image"`
	Animation       string `json:"animation"`
	Background      string `json:"background"`
	RibbonText      string `json:"ribbonText"`
	ButtonColor     string `json:"buttonColor"`
	ButtonTextColor string `json:"buttonTextColor"`
}

// Catalog renders the lootbox list and its detail pages, and owns the
// reward reveal animations keyed by entry id.
type Catalog struct {
	API     *api.Client
	Cache   *cache.Store
	Doc     *dom.Document
	Anim    *anim.Loader
	Bridge  *bridge.Bridge
	Display *view.Display

	// Navigate opens a page; wired to the router.
	Navigate func(ctx context.Context, pageID string)

	// listSlots tracks the animation slots created by the last render so
	// the next one can dispose them first.
	listSlots []string
	// rewardPaths maps reveal slot ids to their descriptor paths for the
	// detail/rewards pages.
	rewardPaths map[string]string
}

func NewCatalog(client *api.Client, store *cache.Store, doc *dom.Document, loader *anim.Loader, b *bridge.Bridge, display *view.Display) *Catalog {
	return &Catalog{
		API:         client,
		Cache:       store,
		Doc:         doc,
		Anim:        loader,
		Bridge:      b,
		Display:     display,
		Navigate:    func(context.Context, string) {},
		rewardPaths: map[string]string{},
	}
}

// Load returns the catalog, cache-first. A fetch failure yields an
// empty catalog, which renders as the zero state.
func (c *Catalog) Load(ctx context.Context) []Lootbox {
	key := cache.PrefixLootboxes + lootboxesPath
	var cached []Lootbox
	if c.Cache.Load(key, &cached) {
		return cached
	}

	raw := c.API.FetchAsset(ctx, lootboxesPath)
	if raw == nil {
		return nil
	}
	var boxes []Lootbox
	if err := json.Unmarshal(raw, &boxes); err != nil {
		log.Printf("lootbox: decode catalog: %v", err)
		return nil
	}
	if err := c.Cache.Save(key, boxes); err != nil {
		log.Printf("lootbox: cache catalog: %v", err)
	}
	return boxes
}

// Render rebuilds the list. All animation instances from the previous
// render are disposed before any new one is created.
func (c *Catalog) Render(ctx context.Context, boxes []Lootbox) {
	if c.Doc.Get(view.ElemLootboxList) == nil {
		return
	}

	for _, slot := range c.listSlots {
		c.Anim.Dispose(slot)
	}
	c.listSlots = nil
	c.Doc.ClearChildren(view.ElemLootboxList)

	if len(boxes) == 0 {
		c.Doc.AppendChild(view.ElemLootboxList, &dom.Element{
			Kind: dom.KindListItem, Text: "No lootboxes available.", Visible: true,
		})
		return
	}

	for _, box := range boxes {
		item := &dom.Element{
			ID:      "lootbox-" + box.ID,
			Kind:    dom.KindListItem,
			Text:    orDefault(box.Title, "Lootbox"),
			Visible: true,
		}
		item.SetAttr("lootbox-id", box.ID)
		item.SetAttr("description", orDefault(box.Description, "Contains rewards"))
		item.SetAttr("ribbon", orDefault(box.RibbonText, defaultRibbonText))
		if box.Background != "" {
			item.SetAttr("background", box.Background)
		}
		if box.ButtonColor != "" {
			item.SetAttr("button-color", box.ButtonColor)
		}
		if box.ButtonTextColor != "" {
			item.SetAttr("button-text-color", box.ButtonTextColor)
		}
		c.Doc.AppendChild(view.ElemLootboxList, item)

		if box.Animation != "" {
			slotID := fmt.Sprintf("lootbox-%s-lottie", box.ID)
			c.Doc.AppendChild(view.ElemLootboxList, &dom.Element{
				ID: slotID, Kind: dom.KindAnimation, Visible: true,
			})
			c.listSlots = append(c.listSlots, slotID)
			c.Anim.EnsureReveal(ctx, slotID, box.Animation)
		} else {
			item.SetAttr("image", orDefault(box.Image, defaultLootboxImage))
		}

		c.ensureDetailPage(box.ID)
	}
}

// ensureDetailPage registers the per-entry detail page with its reward
// reveal slot. The slot follows the page's visibility, so reveals only
// instantiate once the page is actually opened.
func (c *Catalog) ensureDetailPage(id string) {
	pageID := view.DetailPagePrefix + id
	c.Doc.Add(pageID, dom.KindPage, false)

	slotID := "reward-" + id + "-lottie"
	c.Doc.Add(slotID, dom.KindAnimation, false).SetAttr("page", pageID)
	c.rewardPaths[slotID] = "/lottie/" + id + ".json"
}

// Open navigates to the entry's detail page.
func (c *Catalog) Open(ctx context.Context, id string) {
	c.Navigate(ctx, view.DetailPagePrefix+id)
}

// EnsureDetailAnimations instantiates reward reveals for the given
// page. Already-loaded slots are skipped; slots on other (hidden)
// pages skip themselves.
func (c *Catalog) EnsureDetailAnimations(ctx context.Context, pageID string) {
	if pageID != view.PageRewards && !strings.HasPrefix(pageID, view.DetailPagePrefix) {
		return
	}
	for slotID, path := range c.rewardPaths {
		c.Anim.EnsureReveal(ctx, slotID, path)
	}
}

// ReplayReward restarts an entry's reveal from frame zero.
func (c *Catalog) ReplayReward(id string) {
	inst := c.Anim.Instance("reward-" + id + "-lottie")
	if inst == nil {
		return
	}
	inst.GoToFrame(0)
	inst.Play()
}

// BuySpins shows the level-gate popup, or a plain notification when the
// host popup is unavailable.
func (c *Catalog) BuySpins() {
	_, ok := c.Bridge.ShowPopup(bridge.Popup{
		Title:   "Buy Spins",
		Message: lvlGateMessage,
		Buttons: []bridge.PopupButton{{Type: "ok", Text: "OK"}},
	})
	if !ok {
		c.Display.Notify(lvlGateMessage, "info")
	}
}

// RewardsList shows the level-gate notification for the rewards list.
func (c *Catalog) RewardsList() {
	c.Display.Notify("To view the rewards list, you need to have LVL 10", "info")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
