// Package xtream turns Xtream-Codes credentials into a downloadable M3U feed
// and exposes the account status the panel reports.
package xtream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PlaylistURL builds the get.php download URL for an Xtream account. The
// extended output keeps tvg-* attributes and group titles in the feed.
func PlaylistURL(serverURL, username, password string) (string, error) {
	base, err := parseServerURL(serverURL)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("username", username)
	q.Set("password", password)
	q.Set("type", "m3u_plus")
	q.Set("output", "ts")
	return base + "/get.php?" + q.Encode(), nil
}

// AccountStatus is the subset of player_api.php user_info the refresh summary
// surfaces: whether the subscription is live and when it expires.
type AccountStatus struct {
	Active         bool
	Status         string
	ExpiresAt      *time.Time
	MaxConnections int
}

// Client probes an Xtream panel's player_api endpoint.
type Client struct {
	client *http.Client
}

func NewClient() *Client {
	return &Client{client: &http.Client{Timeout: 30 * time.Second}}
}

// NewClientWith allows tests to inject a client.
func NewClientWith(hc *http.Client) *Client {
	return &Client{client: hc}
}

// AccountStatus fetches and decodes the panel's user_info block.
func (c *Client) AccountStatus(ctx context.Context, serverURL, username, password string) (*AccountStatus, error) {
	base, err := parseServerURL(serverURL)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("username", username)
	q.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/player_api.php?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("player_api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("player_api returned status %d", resp.StatusCode)
	}

	// Panels are loose with types: numbers arrive as strings or ints.
	var payload struct {
		UserInfo struct {
			Status         string      `json:"status"`
			ExpDate        interface{} `json:"exp_date"`
			MaxConnections interface{} `json:"max_connections"`
		} `json:"user_info"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode player_api response: %w", err)
	}

	status := &AccountStatus{
		Status:         payload.UserInfo.Status,
		Active:         strings.EqualFold(payload.UserInfo.Status, "Active"),
		MaxConnections: looseInt(payload.UserInfo.MaxConnections),
	}
	if secs := int64(looseInt(payload.UserInfo.ExpDate)); secs > 0 {
		t := time.Unix(secs, 0)
		status.ExpiresAt = &t
	}
	return status, nil
}

func parseServerURL(serverURL string) (string, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(serverURL), "/")
	u, err := url.Parse(trimmed)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid xtream server URL %q", serverURL)
	}
	return trimmed, nil
}

func looseInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	default:
		return 0
	}
}
