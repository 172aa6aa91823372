package features

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/laboratorys/miniapp/internal/api"
	"github.com/laboratorys/miniapp/internal/bridge"
	"github.com/laboratorys/miniapp/internal/view"
)

func newInvite(t *testing.T, backendURL string, host *fakeHost) *Invite {
	t.Helper()
	client := api.NewClient(backendURL, backendURL, "test-agent", time.Second)
	client.SetToken("query_id=test")

	i := NewInvite(client, newReadyBridge(t, host), view.NewDisplay(view.BuildDocument()))
	i.UserID = func() int64 { return 7 }
	return i
}

func TestShareCopiesLinkOnCopyButton(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		require.Equal(t, "/api/v1/referrals/invite-link", req.URL.Path)
		require.Equal(t, "7", req.URL.Query().Get("user_id"))
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://t.me/bot?start=ref_7"})
	}))
	defer srv.Close()

	host := &fakeHost{version: "9.0", platform: "android", initData: "x", user: &bridge.User{ID: 7}, popupID: "copy"}
	i := newInvite(t, srv.URL, host)

	var copied string
	i.Clipboard = func(s string) error { copied = s; return nil }

	i.Share(context.Background())

	require.Equal(t, "https://t.me/bot?start=ref_7", copied)
}

func TestShareDismissedPopupDoesNotCopy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://t.me/bot?start=ref_7"})
	}))
	defer srv.Close()

	host := &fakeHost{version: "9.0", platform: "android", initData: "x", user: &bridge.User{ID: 7}, popupID: ""}
	i := newInvite(t, srv.URL, host)

	copies := 0
	i.Clipboard = func(string) error { copies++; return nil }

	i.Share(context.Background())
	require.Zero(t, copies)
}

func TestShareWithoutIdentitySkipsBackend(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	host := &fakeHost{version: "9.0", platform: "android", initData: "x", user: &bridge.User{ID: 7}}
	i := newInvite(t, srv.URL, host)
	i.UserID = func() int64 { return 0 }

	i.Share(context.Background())
	require.Zero(t, hits.Load())
}

func TestRegisterFromStart(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		require.Equal(t, "/api/v1/referrals/register", req.URL.Path)
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	host := &fakeHost{version: "9.0", platform: "android", initData: "x", user: &bridge.User{ID: 7}}
	i := newInvite(t, srv.URL, host)

	require.True(t, i.RegisterFromStart(context.Background(), "ref_42"))
	require.Equal(t, float64(7), body["user_id"])
	require.Equal(t, "42", body["referrer_id"])

	require.False(t, i.RegisterFromStart(context.Background(), "welcome"))
	require.False(t, i.RegisterFromStart(context.Background(), "ref_"))

	i.UserID = func() int64 { return 0 }
	require.False(t, i.RegisterFromStart(context.Background(), "ref_42"))
}
