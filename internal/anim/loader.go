// Package anim loads animation descriptors and owns the slot registry:
// at most one live renderer instance per slot id, created lazily on
// first visibility and disposed before any re-render.
package anim

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/laboratorys/miniapp/internal/cache"
	"github.com/laboratorys/miniapp/internal/dom"
)

// revealWatchdog caps how long a reveal animation may play before it is
// forced onto its final frame, in case complete events never fire.
const revealWatchdog = 5 * time.Second

type Loader struct {
	doc       *dom.Document
	cache     *cache.Store
	fetch     func(ctx context.Context, path string) []byte
	renderer  Renderer
	userAgent string
	watchdog  time.Duration

	mu        sync.Mutex
	loaded    map[string]bool
	instances map[string]Instance
}

func NewLoader(doc *dom.Document, store *cache.Store, fetch func(ctx context.Context, path string) []byte, renderer Renderer, userAgent string) *Loader {
	return &Loader{
		doc:       doc,
		cache:     store,
		fetch:     fetch,
		renderer:  renderer,
		userAgent: userAgent,
		watchdog:  revealWatchdog,
		loaded:    map[string]bool{},
		instances: map[string]Instance{},
	}
}

// EnsureLoaded instantiates the animation for slotID unless it already
// is, the container is missing, or the container is hidden. Idempotent:
// a loaded slot performs no second fetch and gets no second instance.
func (l *Loader) EnsureLoaded(ctx context.Context, slotID, path string, loop, autoplay bool) Instance {
	l.mu.Lock()
	if l.loaded[slotID] {
		inst := l.instances[slotID]
		l.mu.Unlock()
		return inst
	}
	l.mu.Unlock()

	if !l.doc.Visible(slotID) {
		log.Printf("anim: container %s missing or hidden, skipping %s", slotID, path)
		return nil
	}

	data := l.loadDescriptor(ctx, path)
	if data == nil {
		return nil
	}

	inst, err := l.renderer.Load(slotID, data, Options{Loop: loop, Autoplay: autoplay})
	if err != nil {
		log.Printf("anim: %s: %v", slotID, err)
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if prev := l.instances[slotID]; prev != nil {
		prev.Destroy()
	}
	l.instances[slotID] = inst
	l.loaded[slotID] = true
	return inst
}

// EnsureReveal is EnsureLoaded for reward/roulette reveal slots: plays
// once, parks on the final frame when done, and carries a watchdog that
// forces the final frame even if completion events never arrive.
func (l *Loader) EnsureReveal(ctx context.Context, slotID, path string) Instance {
	inst := l.EnsureLoaded(ctx, slotID, path, false, true)
	if inst == nil {
		return nil
	}

	final := finalFrame(l.cachedDescriptor(path))
	park := func() {
		inst.Stop()
		inst.GoToFrame(final)
	}
	if ev, ok := inst.(EventSource); ok {
		ev.OnComplete(park)
		ev.OnLoopComplete(park)
	}
	time.AfterFunc(l.watchdog, park)
	return inst
}

// Loaded reports whether slotID holds a live instance.
func (l *Loader) Loaded(slotID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded[slotID]
}

// Instance returns the live instance for slotID, or nil.
func (l *Loader) Instance(slotID string) Instance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.instances[slotID]
}

// Dispose destroys the instance for slotID and clears its loaded flag
// so a later EnsureLoaded may create a fresh one.
func (l *Loader) Dispose(slotID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if inst := l.instances[slotID]; inst != nil {
		inst.Destroy()
		delete(l.instances, slotID)
	}
	delete(l.loaded, slotID)
}

// Reset drops all registry state. Test hook.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, inst := range l.instances {
		if inst != nil {
			inst.Destroy()
		}
		delete(l.instances, id)
	}
	for id := range l.loaded {
		delete(l.loaded, id)
	}
}

// loadDescriptor serves the descriptor cache-first. On a fetch failure
// Apple mobile agents get exactly one unconditional retry; everyone
// else gives up.
func (l *Loader) loadDescriptor(ctx context.Context, path string) []byte {
	key := cache.PrefixLottie + path
	var cached json.RawMessage
	if l.cache.Load(key, &cached) {
		return cached
	}

	data := l.fetch(ctx, path)
	if data == nil && isAppleMobile(l.userAgent) {
		log.Printf("anim: retrying %s for apple mobile agent", path)
		data = l.fetch(ctx, path)
	}
	if data == nil {
		return nil
	}
	if err := l.cache.Save(key, json.RawMessage(data)); err != nil {
		log.Printf("anim: cache %s: %v", path, err)
	}
	return data
}

func (l *Loader) cachedDescriptor(path string) []byte {
	var cached json.RawMessage
	if l.cache.Load(cache.PrefixLottie+path, &cached) {
		return cached
	}
	return nil
}

// finalFrame extracts the out-point from a descriptor; frame indexes
// are zero-based, so the last frame is op-1.
func finalFrame(descriptor []byte) int {
	var meta struct {
		Op float64 `json:"op"`
	}
	if descriptor == nil || json.Unmarshal(descriptor, &meta) != nil || meta.Op < 1 {
		return 0
	}
	return int(meta.Op) - 1
}

func isAppleMobile(userAgent string) bool {
	for _, tag := range []string{"iPhone", "iPad", "iPod"} {
		if strings.Contains(userAgent, tag) {
			return true
		}
	}
	return false
}
