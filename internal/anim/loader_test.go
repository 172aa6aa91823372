package anim

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/laboratorys/miniapp/internal/cache"
	"github.com/laboratorys/miniapp/internal/dom"
)

type recInstance struct {
	mu           sync.Mutex
	destroyed    bool
	stopped      bool
	frame        int
	onComplete   func()
	onLoopDone   func()
	playingCalls int
}

func (r *recInstance) Play() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playingCalls++
}
func (r *recInstance) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
}
func (r *recInstance) GoToFrame(f int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame = f
}
func (r *recInstance) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyed = true
}
func (r *recInstance) OnComplete(fn func())     { r.onComplete = fn }
func (r *recInstance) OnLoopComplete(fn func()) { r.onLoopDone = fn }

type recRenderer struct {
	created []*recInstance
}

func (r *recRenderer) Load(slotID string, _ []byte, opts Options) (Instance, error) {
	inst := &recInstance{}
	r.created = append(r.created, inst)
	return inst, nil
}

type countingFetcher struct {
	calls int
	data  []byte
}

func (c *countingFetcher) fetch(ctx context.Context, path string) []byte {
	c.calls++
	return c.data
}

func newTestLoader(t *testing.T, fetcher *countingFetcher, userAgent string) (*Loader, *recRenderer, *dom.Document) {
	t.Helper()
	store, err := cache.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	doc := dom.NewDocument()
	r := &recRenderer{}
	l := NewLoader(doc, store, fetcher.fetch, r, userAgent)
	return l, r, doc
}

func TestEnsureLoadedIdempotent(t *testing.T) {
	fetcher := &countingFetcher{data: []byte(`{"op":120}`)}
	l, r, doc := newTestLoader(t, fetcher, "test-agent")
	doc.Add("paint-lottie", dom.KindAnimation, true)

	first := l.EnsureLoaded(context.Background(), "paint-lottie", "/paint-animation.json", true, true)
	require.NotNil(t, first)
	second := l.EnsureLoaded(context.Background(), "paint-lottie", "/paint-animation.json", true, true)
	require.Same(t, first, second)

	require.Equal(t, 1, fetcher.calls)
	require.Len(t, r.created, 1)
}

func TestEnsureLoadedSkipsHiddenContainer(t *testing.T) {
	fetcher := &countingFetcher{data: []byte(`{"op":120}`)}
	l, r, doc := newTestLoader(t, fetcher, "test-agent")
	doc.Add("shake-top-lottie", dom.KindAnimation, false)

	require.Nil(t, l.EnsureLoaded(context.Background(), "shake-top-lottie", "/shake-top-animation.json", true, true))
	require.Zero(t, fetcher.calls)
	require.Empty(t, r.created)
	require.False(t, l.Loaded("shake-top-lottie"))
}

func TestEnsureLoadedMissingContainer(t *testing.T) {
	fetcher := &countingFetcher{data: []byte(`{"op":120}`)}
	l, _, _ := newTestLoader(t, fetcher, "test-agent")

	require.Nil(t, l.EnsureLoaded(context.Background(), "nowhere", "/x.json", true, true))
	require.Zero(t, fetcher.calls)
}

func TestDescriptorServedFromCache(t *testing.T) {
	fetcher := &countingFetcher{data: []byte(`{"op":120}`)}
	l, _, doc := newTestLoader(t, fetcher, "test-agent")
	doc.Add("a", dom.KindAnimation, true)
	doc.Add("b", dom.KindAnimation, true)

	require.NotNil(t, l.EnsureLoaded(context.Background(), "a", "/shared.json", true, true))
	require.NotNil(t, l.EnsureLoaded(context.Background(), "b", "/shared.json", true, true))
	require.Equal(t, 1, fetcher.calls)
}

func TestAppleMobileRetriesOnce(t *testing.T) {
	fetcher := &countingFetcher{data: nil}
	l, _, doc := newTestLoader(t, fetcher, "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)")
	doc.Add("a", dom.KindAnimation, true)

	require.Nil(t, l.EnsureLoaded(context.Background(), "a", "/x.json", true, true))
	require.Equal(t, 2, fetcher.calls)
}

func TestNonAppleAgentDoesNotRetry(t *testing.T) {
	fetcher := &countingFetcher{data: nil}
	l, _, doc := newTestLoader(t, fetcher, "Mozilla/5.0 (Linux; Android 14)")
	doc.Add("a", dom.KindAnimation, true)

	require.Nil(t, l.EnsureLoaded(context.Background(), "a", "/x.json", true, true))
	require.Equal(t, 1, fetcher.calls)
}

func TestDisposeAllowsReload(t *testing.T) {
	fetcher := &countingFetcher{data: []byte(`{"op":120}`)}
	l, r, doc := newTestLoader(t, fetcher, "test-agent")
	doc.Add("box-1", dom.KindAnimation, true)

	first := l.EnsureLoaded(context.Background(), "box-1", "/lottie/box-1.json", false, true)
	require.NotNil(t, first)

	l.Dispose("box-1")
	require.True(t, r.created[0].destroyed)
	require.False(t, l.Loaded("box-1"))

	second := l.EnsureLoaded(context.Background(), "box-1", "/lottie/box-1.json", false, true)
	require.NotNil(t, second)
	require.NotSame(t, first, second)
	require.Len(t, r.created, 2)
}

func TestRevealParksOnFinalFrame(t *testing.T) {
	fetcher := &countingFetcher{data: []byte(`{"op":120}`)}
	l, r, doc := newTestLoader(t, fetcher, "test-agent")
	doc.Add("reveal-1", dom.KindAnimation, true)

	inst := l.EnsureReveal(context.Background(), "reveal-1", "/lottie/reveal-1.json")
	require.NotNil(t, inst)

	rec := r.created[0]
	require.NotNil(t, rec.onComplete)
	rec.onComplete()
	require.True(t, rec.stopped)
	require.Equal(t, 119, rec.frame)
}

func TestRevealWatchdogFires(t *testing.T) {
	fetcher := &countingFetcher{data: []byte(`{"op":60}`)}
	l, r, doc := newTestLoader(t, fetcher, "test-agent")
	l.watchdog = 10 * time.Millisecond
	doc.Add("reveal-2", dom.KindAnimation, true)

	require.NotNil(t, l.EnsureReveal(context.Background(), "reveal-2", "/lottie/reveal-2.json"))

	rec := r.created[0]
	require.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return rec.stopped && rec.frame == 59
	}, time.Second, 5*time.Millisecond)
}

func TestFinalFrame(t *testing.T) {
	require.Equal(t, 119, finalFrame([]byte(`{"op":120}`)))
	require.Equal(t, 0, finalFrame([]byte(`{}`)))
	require.Equal(t, 0, finalFrame(nil))
	require.Equal(t, 0, finalFrame([]byte(`garbage`)))
}
