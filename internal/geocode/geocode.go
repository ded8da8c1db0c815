// Package geocode resolves coordinates to a display address through an
// external provider. The provider is outside this service's failure domain:
// any error, timeout or empty answer degrades to a plain coordinate string,
// and checkout proceeds either way.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/antonminaichev/darkstore-dispatch/internal/logger"
)

type Client struct {
	Client  *http.Client
	BaseURL string
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// Reverse returns a human address for the point, or "lat, lng" when the
// provider cannot answer in time.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) string {
	fallback := Coordinates(lat, lng)
	if c == nil || c.BaseURL == "" {
		return fallback
	}

	u := fmt.Sprintf("%s/reverse?format=json&lat=%s&lon=%s",
		c.BaseURL,
		url.QueryEscape(fmt.Sprintf("%f", lat)),
		url.QueryEscape(fmt.Sprintf("%f", lng)),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fallback
	}
	hc := c.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		logger.Log.Sugar().Infow("reverse geocoding unavailable", "error", err)
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fallback
	}
	var rr reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil || rr.DisplayName == "" {
		return fallback
	}
	return rr.DisplayName
}

// Coordinates is the deterministic fallback shown when no address exists.
func Coordinates(lat, lng float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lng)
}
