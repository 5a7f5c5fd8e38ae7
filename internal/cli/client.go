package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cleanstart/internal/sim"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type CreatedGame struct {
	GameID string    `json:"game_id"`
	State  sim.State `json:"state"`
}

type TrackInfo struct {
	Track   sim.TechTrack `json:"track"`
	Name    string        `json:"name"`
	Tagline string        `json:"tagline"`
}

func (c *Client) ListTracks(ctx context.Context) ([]TrackInfo, error) {
	var out struct {
		Tracks []TrackInfo `json:"tracks"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/tracks", nil, &out)
	return out.Tracks, err
}

func (c *Client) NewGame(ctx context.Context, track string, seed int64) (CreatedGame, error) {
	var out CreatedGame
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games", map[string]any{
		"track": track,
		"seed":  seed,
	}, &out)
	return out, err
}

func (c *Client) GameState(ctx context.Context, gameID string) (sim.State, error) {
	var out sim.State
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID), nil, &out)
	return out, err
}

func (c *Client) GameHistory(ctx context.Context, gameID string) ([]sim.Metrics, error) {
	var out struct {
		Quarters []sim.Metrics `json:"quarters"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID)+"/history", nil, &out)
	return out.Quarters, err
}

func (c *Client) Advance(ctx context.Context, gameID string, d sim.Decisions) (sim.QuarterResult, error) {
	var out sim.QuarterResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/advance", d, &out)
	return out, err
}

func (c *Client) RaiseFunding(ctx context.Context, gameID, source string) (sim.FundingResult, error) {
	var out sim.FundingResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/funding", map[string]any{
		"source": source,
	}, &out)
	return out, err
}

func (c *Client) HireFire(ctx context.Context, gameID, department string, delta int) (sim.HireResult, error) {
	var out sim.HireResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/staff", map[string]any{
		"department": department,
		"delta":      delta,
	}, &out)
	return out, err
}

// StreamURL converts the API base URL into the websocket endpoint for a game.
func (c *Client) StreamURL(gameID string) string {
	base := c.BaseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/v1/games/" + url.PathEscape(gameID) + "/stream"
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
