package features

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/laboratorys/miniapp/internal/bridge"
	"github.com/laboratorys/miniapp/internal/cache"
)

type fakeHost struct {
	version  string
	platform string
	initData string
	user     *bridge.User
	start    string

	popupID  string
	popupErr error

	posted []string
}

func (h *fakeHost) Ready()                  {}
func (h *fakeHost) Version() string         { return h.version }
func (h *fakeHost) Platform() string        { return h.platform }
func (h *fakeHost) InitData() string        { return h.initData }
func (h *fakeHost) User() *bridge.User      { return h.user }
func (h *fakeHost) StartParam() string      { return h.start }
func (h *fakeHost) ThemeBackground() string { return "" }
func (h *fakeHost) Expand()                 {}
func (h *fakeHost) ShowBackButton()         {}
func (h *fakeHost) OnEvent(func(bridge.Event)) {}

func (h *fakeHost) ShowPopup(p bridge.Popup) (string, error) { return h.popupID, h.popupErr }
func (h *fakeHost) OpenTelegramLink(url string) error        { return nil }

func (h *fakeHost) PostEvent(eventType string, data json.RawMessage) error {
	h.posted = append(h.posted, eventType)
	return nil
}

func newReadyBridge(t *testing.T, h *fakeHost) *bridge.Bridge {
	t.Helper()
	b := bridge.New(func() bridge.Host { return h }, bridge.Options{
		PollInterval: time.Millisecond,
		PollAttempts: 3,
	})
	require.True(t, b.Init(context.Background()))
	return b
}

func newTestStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}
