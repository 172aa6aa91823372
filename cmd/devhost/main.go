// devhost is the development stand-in for the real platform: it serves
// the rewards API, the static animation assets and a websocket bridge
// that plays the host side of the platform handshake.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// ========================= State =========================

type userState struct {
	ID        int64
	FirstName string
	Username  string

	Tickets int
	Hearts  int
	Energy  int
	Points  int

	Streak    int
	NextClaim time.Time

	Referrals []referral
}

type referral struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	PhotoURL  string `json:"photo_url"`
}

type server struct {
	mu     sync.Mutex
	users  map[int64]*userState
	tokens map[string]int64
}

func newServer() *server {
	return &server{
		users:  map[int64]*userState{},
		tokens: map[string]int64{},
	}
}

// issueSession mints an init-data token for a user, creating the user
// on first sight.
func (s *server) issueSession(userID int64, firstName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		s.users[userID] = &userState{
			ID:        userID,
			FirstName: firstName,
			Hearts:    1200,
			Energy:    100,
			Points:    3400,
			Tickets:   1,
		}
	}
	token := fmt.Sprintf("query_id=%s&user_id=%d", uuid.Must(uuid.NewV4()).String(), userID)
	s.tokens[token] = userID
	return token
}

// authed resolves the Authorization header to a user, or writes a 401.
func (s *server) authed(w http.ResponseWriter, r *http.Request) *userState {
	auth := r.Header.Get("Authorization")
	const scheme = "tma "
	if len(auth) <= len(scheme) || auth[:len(scheme)] != scheme {
		http.Error(w, "missing tma authorization", http.StatusUnauthorized)
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[auth[len(scheme):]]
	if !ok {
		http.Error(w, "unknown session", http.StatusUnauthorized)
		return nil
	}
	return s.users[id]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// ========================= API handlers =========================

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	u := s.authed(w, r)
	if u == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, map[string]any{
		"user": map[string]any{
			"id":         u.ID,
			"first_name": u.FirstName,
			"username":   u.Username,
		},
		"points": map[string]int{
			"tickets": u.Tickets,
			"hearts":  u.Hearts,
			"energy":  u.Energy,
			"points":  u.Points,
		},
	})
}

func (s *server) handleMiniTap(w http.ResponseWriter, r *http.Request) {
	u := s.authed(w, r)
	if u == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Energy <= 0 {
		// Out of energy: reply without the energy field, which the
		// client treats as "nothing earned".
		writeJSON(w, map[string]int{"hearts": u.Hearts})
		return
	}
	u.Hearts++
	u.Points++
	u.Energy--
	writeJSON(w, map[string]int{"hearts": u.Hearts, "energy": u.Energy})
}

func (s *server) handleReferrals(w http.ResponseWriter, r *http.Request) {
	if s.authed(w, r) == nil {
		return
	}
	id, _ := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		writeJSON(w, map[string]any{"referrals": []referral{}})
		return
	}
	refs := u.Referrals
	if refs == nil {
		refs = []referral{}
	}
	writeJSON(w, map[string]any{"referrals": refs})
}

func (s *server) handleRegisterReferral(w http.ResponseWriter, r *http.Request) {
	u := s.authed(w, r)
	if u == nil {
		return
	}
	var body struct {
		UserID     int64  `json:"user_id"`
		ReferrerID string `json:"referrer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	refID, err := strconv.ParseInt(body.ReferrerID, 10, 64)
	if err != nil {
		http.Error(w, "bad referrer id", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	referrer, ok := s.users[refID]
	if !ok {
		http.Error(w, "unknown referrer", http.StatusNotFound)
		return
	}
	referrer.Referrals = append(referrer.Referrals, referral{
		Username:  u.Username,
		FirstName: u.FirstName,
	})
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *server) handleInviteLink(w http.ResponseWriter, r *http.Request) {
	if s.authed(w, r) == nil {
		return
	}
	userID := r.URL.Query().Get("user_id")
	writeJSON(w, map[string]string{
		"url": "https://t.me/laboratorys_bot?start=ref_" + userID,
	})
}

func (s *server) handleClaimStatus(w http.ResponseWriter, r *http.Request) {
	if s.authed(w, r) == nil {
		return
	}
	id, _ := strconv.ParseInt(mux.Vars(r)["user_id"], 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		http.Error(w, "unknown user", http.StatusNotFound)
		return
	}
	next := ""
	if !u.NextClaim.IsZero() {
		next = u.NextClaim.Format(time.RFC3339)
	}
	writeJSON(w, map[string]any{
		"nextClaimTimestamp": next,
		"streak":             u.Streak,
	})
}

func (s *server) handleClaim(w http.ResponseWriter, r *http.Request) {
	if s.authed(w, r) == nil {
		return
	}
	id, _ := strconv.ParseInt(mux.Vars(r)["user_id"], 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		http.Error(w, "unknown user", http.StatusNotFound)
		return
	}
	if !u.NextClaim.IsZero() && time.Now().Before(u.NextClaim) {
		http.Error(w, "claim not available yet", http.StatusConflict)
		return
	}
	u.Streak++
	u.Tickets++
	u.NextClaim = time.Now().Add(24 * time.Hour)
	writeJSON(w, map[string]int{"tickets": u.Tickets})
}

func (s *server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID int64  `json:"user_id"`
		Event  string `json:"event"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	eventID := uuid.Must(uuid.NewV4()).String()
	log.Printf("webhook: event=%s user=%d id=%s", body.Event, body.UserID, eventID)
	writeJSON(w, map[string]string{"event_id": eventID})
}

// ========================= Assets =========================

func handleDescriptor(frames int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"v": "5.7.4", "fr": 30, "ip": 0, "op": frames})
	}
}

func handleLootboxes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, []map[string]string{
		{
			"id":          "starter",
			"title":       "Starter Box",
			"description": "A little something to get going",
			"animation":   "/lottie/starter.json",
			"ribbonText":  "GIFT",
		},
		{
			"id":              "golden",
			"title":           "Golden Box",
			"description":     "Rare drops inside",
			"image":           "/golden-box.png",
			"background":      "/golden-bg.png",
			"ribbonText":      "RARE",
			"buttonColor":     "#d4af37",
			"buttonTextColor": "#1a1a1a",
		},
	})
}

// ========================= Host bridge =========================

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

type wsMsg struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// handleBridge plays the platform host over a websocket: hello first,
// then commands in, events out. Popups are auto-answered with their
// first button so headless runs never hang.
func (s *server) handleBridge(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("bridge: upgrade: %v", err)
		return
	}
	defer conn.Close()

	userID := int64(7)
	if v, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64); err == nil && v > 0 {
		userID = v
	}
	token := s.issueSession(userID, "Dev")

	var writeMu sync.Mutex
	send := func(typ string, data any) {
		writeMu.Lock()
		defer writeMu.Unlock()
		raw, err := json.Marshal(data)
		if err != nil {
			log.Printf("bridge: marshal %s: %v", typ, err)
			return
		}
		_ = conn.WriteJSON(wsMsg{Type: typ, Data: raw})
	}

	send("hello", map[string]any{
		"version":     "8.0",
		"platform":    "web",
		"init_data":   token,
		"start_param": r.URL.Query().Get("start"),
		"theme_bg":    "#F8F8F8",
		"user":        map[string]any{"id": userID, "first_name": "Dev", "username": "devuser"},
	})

	for {
		var in wsMsg
		if err := conn.ReadJSON(&in); err != nil {
			log.Printf("bridge: read: %v", err)
			return
		}
		switch in.Type {
		case "ready", "expand", "back_button_show":
			log.Printf("bridge: client %s", in.Type)
		case "open_link":
			var body struct {
				URL string `json:"url"`
			}
			_ = json.Unmarshal(in.Data, &body)
			log.Printf("bridge: open link %s", body.URL)
		case "popup":
			var popup struct {
				Title   string `json:"title"`
				Buttons []struct {
					ID string `json:"id"`
				} `json:"buttons"`
			}
			_ = json.Unmarshal(in.Data, &popup)
			buttonID := ""
			if len(popup.Buttons) > 0 {
				buttonID = popup.Buttons[0].ID
			}
			log.Printf("bridge: popup %q answered with %q", popup.Title, buttonID)
			send("popup_closed", map[string]string{"button_id": buttonID})
		case "event":
			var ev struct {
				EventType string          `json:"eventType"`
				EventData json.RawMessage `json:"eventData"`
			}
			_ = json.Unmarshal(in.Data, &ev)
			log.Printf("bridge: command %s %s", ev.EventType, ev.EventData)
			if ev.EventType == "web_app_start_accelerometer" {
				send("accelerometer_started", map[string]any{})
			}
		default:
			log.Printf("bridge: unknown frame %q", in.Type)
		}
	}
}

// ========================= Wiring =========================

func main() {
	addr := ":" + getenv("DEVHOST_PORT", "8080")
	s := newServer()

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/mini_tap", s.handleMiniTap).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/referrals", s.handleReferrals).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/referrals/register", s.handleRegisterReferral).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/referrals/invite-link", s.handleInviteLink).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/claim_daily_points/{user_id:[0-9]+}", s.handleClaimStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/claim_daily_points/{user_id:[0-9]+}", s.handleClaim).Methods(http.MethodPost)
	r.HandleFunc("/webhook", s.handleWebhook).Methods(http.MethodPost)

	r.HandleFunc("/lootboxes.json", handleLootboxes).Methods(http.MethodGet)
	r.HandleFunc("/paint-animation.json", handleDescriptor(120)).Methods(http.MethodGet)
	r.HandleFunc("/community-animation.json", handleDescriptor(120)).Methods(http.MethodGet)
	r.HandleFunc("/checkmark-animation.json", handleDescriptor(60)).Methods(http.MethodGet)
	r.HandleFunc("/shake-top-animation.json", handleDescriptor(120)).Methods(http.MethodGet)
	r.HandleFunc("/lottie/{id:[a-zA-Z0-9_-]+}.json", handleDescriptor(90)).Methods(http.MethodGet)

	r.HandleFunc("/bridge", s.handleBridge)

	log.Printf("devhost listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
