// Package geocode turns coordinates into the location string stored with a punch.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/jrsteele09/go-attendance-portal/internal/errors"
)

const (
	Pending     = "Fetching location..."
	Unavailable = "Unable to fetch location"
	Unsupported = "Geolocation not supported"
)

// Resolver maps coordinates to a display string.
type Resolver interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

var _ Resolver = (*Client)(nil)

// Client is a Nominatim reverse-geocoding client. Requests are throttled to
// one per second to stay inside the public instance's usage policy.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
}

func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

type address struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type reverseResponse struct {
	Address *address `json:"address"`
}

// Format renders "<city|town|village|Unknown>, <state>, <country>".
func (a address) Format() string {
	place := a.City
	if place == "" {
		place = a.Town
	}
	if place == "" {
		place = a.Village
	}
	if place == "" {
		place = "Unknown"
	}
	return strings.TrimSpace(fmt.Sprintf("%s, %s, %s", place, a.State, a.Country))
}

func (c *Client) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("[geocode Reverse] rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("[geocode Reverse] failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("[geocode Reverse] %w: %w", apperrors.ErrNetworkOrServer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("[geocode Reverse] status %d: %w", resp.StatusCode, apperrors.ErrNetworkOrServer)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("[geocode Reverse] %v: %w", err, apperrors.ErrMalformedResponse)
	}
	if body.Address == nil {
		return "", fmt.Errorf("[geocode Reverse] no address: %w", apperrors.ErrMalformedResponse)
	}
	return body.Address.Format(), nil
}

// Describe resolves the location for display, never failing: a missing
// position yields Unsupported and any lookup error yields Unavailable.
func Describe(ctx context.Context, r Resolver, lat, lon *float64) string {
	if lat == nil || lon == nil {
		return Unsupported
	}
	if !validCoordinate(*lat, 90) || !validCoordinate(*lon, 180) {
		return Unavailable
	}
	s, err := r.Reverse(ctx, *lat, *lon)
	if err != nil || s == "" {
		return Unavailable
	}
	return s
}

func validCoordinate(v, limit float64) bool {
	return v >= -limit && v <= limit
}

// ParseCoordinates reads lat/lon query values. Either being absent or
// unparseable yields nil pointers.
func ParseCoordinates(latStr, lonStr string) (*float64, *float64) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return nil, nil
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return nil, nil
	}
	return &lat, &lon
}
