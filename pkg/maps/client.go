package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/platedrop/ordercore/pkg/errors"
	"github.com/platedrop/ordercore/pkg/types"
)

const (
	defaultBaseURL             = "https://api.mapbox.com"
	errorBodyReadLimit   int64 = 1024
	defaultMatrixProfile       = "mapbox/driving"
)

var errTokenRequired = errors.New("mapbox access token is required")

// Client wraps the Mapbox geocoding and directions-matrix APIs used for
// driver-facing distance estimates.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Mapbox base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Mapbox client given an access token.
func NewClient(token string, opts ...Option) (*Client, error) {
	trimmedToken := strings.TrimSpace(token)
	if trimmedToken == "" {
		return nil, errTokenRequired
	}

	client := &Client{
		token:      trimmedToken,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Geocode resolves a freeform address to coordinates. Returns nil when
// the address cannot be resolved; callers degrade gracefully.
func (c *Client) Geocode(ctx context.Context, address string) (*types.LatLng, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mapbox client not configured")
	}
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "geocode address is required")
	}

	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json", strings.TrimRight(c.baseURL, "/"), url.PathEscape(trimmed))
	query := url.Values{
		"access_token": []string{c.token},
		"limit":        []string{"1"},
	}

	var apiResp struct {
		Features []struct {
			Center []float64 `json:"center"`
		} `json:"features"`
	}
	if err := c.get(ctx, endpoint+"?"+query.Encode(), &apiResp); err != nil {
		return nil, err
	}

	if len(apiResp.Features) == 0 {
		return nil, nil
	}
	center := apiResp.Features[0].Center
	if len(center) < 2 {
		return nil, nil
	}
	// Mapbox centers are [lng, lat].
	return &types.LatLng{Latitude: center[1], Longitude: center[0]}, nil
}

// MatrixEntry is the road distance/duration from the source to one
// destination. Nil values mark destinations Mapbox reports unreachable.
type MatrixEntry struct {
	DistanceMeters *float64
	DurationSecs   *float64
}

// DrivingMatrix computes road distances and durations from source to
// every destination, preserving destination order.
func (c *Client) DrivingMatrix(ctx context.Context, source types.LatLng, destinations []types.LatLng) ([]MatrixEntry, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mapbox client not configured")
	}
	if len(destinations) == 0 {
		return nil, nil
	}

	coords := make([]string, 0, len(destinations)+1)
	coords = append(coords, formatPair(source))
	destIdx := make([]string, 0, len(destinations))
	for i, dest := range destinations {
		coords = append(coords, formatPair(dest))
		destIdx = append(destIdx, strconv.Itoa(i+1))
	}

	endpoint := fmt.Sprintf("%s/directions-matrix/v1/%s/%s", strings.TrimRight(c.baseURL, "/"), defaultMatrixProfile, strings.Join(coords, ";"))
	query := url.Values{
		"access_token": []string{c.token},
		"sources":      []string{"0"},
		"destinations": []string{strings.Join(destIdx, ";")},
		"annotations":  []string{"distance,duration"},
	}

	var apiResp struct {
		Distances [][]*float64 `json:"distances"`
		Durations [][]*float64 `json:"durations"`
	}
	if err := c.get(ctx, endpoint+"?"+query.Encode(), &apiResp); err != nil {
		return nil, err
	}

	entries := make([]MatrixEntry, len(destinations))
	for i := range destinations {
		if len(apiResp.Distances) > 0 && i < len(apiResp.Distances[0]) {
			entries[i].DistanceMeters = apiResp.Distances[0][i]
		}
		if len(apiResp.Durations) > 0 && i < len(apiResp.Durations[0]) {
			entries[i].DurationSecs = apiResp.Durations[0][i]
		}
	}
	return entries, nil
}

func (c *Client) get(ctx context.Context, endpoint string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build mapbox request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute mapbox request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "mapbox request failed")
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode mapbox response")
	}
	return nil
}

func formatPair(point types.LatLng) string {
	return fmt.Sprintf("%s,%s",
		strconv.FormatFloat(point.Longitude, 'f', -1, 64),
		strconv.FormatFloat(point.Latitude, 'f', -1, 64))
}
