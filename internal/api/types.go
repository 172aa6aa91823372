package api

import (
	"context"
	"fmt"
	"net/http"
)

// Points is the authoritative user balance, replaced wholesale on every
// successful login fetch. Never mutated locally between fetches.
type Points struct {
	Tickets int `json:"tickets"`
	Hearts  int `json:"hearts"`
	Energy  int `json:"energy"`
	Points  int `json:"points"`
}

type UserProfile struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
	PhotoURL  string `json:"photo_url"`
}

type LoginResponse struct {
	User   *UserProfile `json:"user"`
	Points *Points      `json:"points"`
}

type Referral struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	PhotoURL  string `json:"photo_url"`
}

type ReferralsResponse struct {
	Referrals []Referral `json:"referrals"`
}

type InviteLinkResponse struct {
	URL string `json:"url"`
}

// TapResult uses pointer fields: the earn flow only counts a tap when
// the backend returned both hearts and energy. Either missing is a
// silent no-op, not an error.
type TapResult struct {
	Hearts *int `json:"hearts"`
	Energy *int `json:"energy"`
}

type ClaimStatus struct {
	NextClaimTimestamp string `json:"nextClaimTimestamp"`
	Streak             int    `json:"streak"`
}

type ClaimResult struct {
	Tickets *int `json:"tickets"`
}

// Login authenticates and returns the current profile and points.
func (c *Client) Login(ctx context.Context) *LoginResponse {
	return decode[LoginResponse](c.Fetch(ctx, "/api/v1/auth/login", http.MethodPost, nil))
}

func (c *Client) Referrals(ctx context.Context, userID int64) *ReferralsResponse {
	return decode[ReferralsResponse](c.Fetch(ctx, fmt.Sprintf("/api/v1/referrals?user_id=%d", userID), http.MethodGet, nil))
}

// RegisterReferral links userID to the referrer extracted from the
// start parameter. True on any 2xx response.
func (c *Client) RegisterReferral(ctx context.Context, userID int64, referrerID string) bool {
	raw := c.Fetch(ctx, "/api/v1/referrals/register", http.MethodPost, map[string]any{
		"user_id":     userID,
		"referrer_id": referrerID,
	})
	return raw != nil
}

func (c *Client) InviteLink(ctx context.Context, userID int64) *InviteLinkResponse {
	return decode[InviteLinkResponse](c.Fetch(ctx, fmt.Sprintf("/api/v1/referrals/invite-link?user_id=%d", userID), http.MethodGet, nil))
}

// MiniTap registers one tap/shake reward event.
func (c *Client) MiniTap(ctx context.Context) *TapResult {
	return decode[TapResult](c.Fetch(ctx, "/api/v1/mini_tap", http.MethodPost, nil))
}

func (c *Client) ClaimStatus(ctx context.Context, userID int64) *ClaimStatus {
	return decode[ClaimStatus](c.Fetch(ctx, fmt.Sprintf("/api/v1/claim_daily_points/%d", userID), http.MethodGet, nil))
}

func (c *Client) Claim(ctx context.Context, userID int64) *ClaimResult {
	return decode[ClaimResult](c.Fetch(ctx, fmt.Sprintf("/api/v1/claim_daily_points/%d", userID), http.MethodPost, nil))
}

// Webhook posts a fire-and-forget event notification; the result is
// ignored beyond logging inside Fetch.
func (c *Client) Webhook(ctx context.Context, userID int64, event string) {
	c.Fetch(ctx, "/webhook", http.MethodPost, map[string]any{
		"user_id": userID,
		"event":   event,
	})
}
