package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, srv.URL, "test-agent", 2*time.Second)
	c.SetToken("test-init-data")
	return c, srv
}

func TestFetchWithoutTokenSkipsNetwork(t *testing.T) {
	var calls atomic.Int64
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	c.SetToken("")

	raw := c.Fetch(context.Background(), "/api/v1/auth/login", http.MethodPost, nil)
	require.Nil(t, raw)
	require.EqualValues(t, 0, calls.Load())
}

func TestFetchAttachesAuthHeader(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"ok":true}`))
	}))

	raw := c.Fetch(context.Background(), "/api/v1/mini_tap", http.MethodPost, nil)
	require.NotNil(t, raw)
	require.Equal(t, "tma test-init-data", gotAuth)
}

func TestFetchNon2xxReturnsNilAndFiresHook(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	var fired bool
	c.OnFailure = func() { fired = true }

	raw := c.Fetch(context.Background(), "/api/v1/auth/login", http.MethodPost, nil)
	require.Nil(t, raw)
	require.True(t, fired)
}

func TestFetchMalformedBodyReturnsNil(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))

	require.Nil(t, c.Fetch(context.Background(), "/api/v1/auth/login", http.MethodPost, nil))
}

func TestMiniTapFieldPresence(t *testing.T) {
	body := `{"hearts":5}`
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))

	res := c.MiniTap(context.Background())
	require.NotNil(t, res)
	require.NotNil(t, res.Hearts)
	require.Nil(t, res.Energy)

	body = `{"hearts":5,"energy":90}`
	res = c.MiniTap(context.Background())
	require.NotNil(t, res)
	require.EqualValues(t, 5, *res.Hearts)
	require.EqualValues(t, 90, *res.Energy)
}

func TestLoginDecodesPoints(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":   map[string]any{"id": 7, "first_name": "Ada"},
			"points": map[string]any{"tickets": 2, "hearts": 5, "energy": 90, "points": 100},
		})
	}))

	data := c.Login(context.Background())
	require.NotNil(t, data)
	require.NotNil(t, data.User)
	require.EqualValues(t, 7, data.User.ID)
	require.Equal(t, Points{Tickets: 2, Hearts: 5, Energy: 90, Points: 100}, *data.Points)
}

func TestFetchAssetCacheBuster(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"op":120}`))
	}))

	raw := c.FetchAsset(context.Background(), "/paint-animation.json")
	require.NotNil(t, raw)
	require.Contains(t, gotQuery, "v=")
}
