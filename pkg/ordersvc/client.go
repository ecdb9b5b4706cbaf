package ordersvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/platedrop/ordercore/pkg/enums"
	pkgerrors "github.com/platedrop/ordercore/pkg/errors"
	"github.com/platedrop/ordercore/pkg/types"
)

const errorBodyReadLimit int64 = 4096

var errBaseURLRequired = errors.New("order service base url is required")

// Client wraps the remote order/route service. The service itself is a
// black box; this client only speaks its HTTP contract.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
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

// WithAuthToken attaches a bearer token to every request.
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.authToken = strings.TrimSpace(token)
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds an order service client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// CreateOrder posts a new order and returns the created read view.
func (c *Client) CreateOrder(ctx context.Context, payload OrderCreate) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders/", nil, payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder fetches the full order by id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	path := "/orders/" + url.PathEscape(orderID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus advances the order to the given status server-side.
func (c *Client) UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) (*Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", status))
	}
	var order Order
	path := "/orders/" + url.PathEscape(orderID) + "/status"
	query := url.Values{"new_status": []string{status.String()}}
	if err := c.do(ctx, http.MethodPatch, path, query, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder requests cancellation. The service rejects the call once
// the order is delivered or already cancelled.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (*Order, error) {
	var resp struct {
		Message string `json:"message"`
		OrderID string `json:"order_id"`
		Order   Order  `json:"order"`
	}
	path := "/orders/" + url.PathEscape(orderID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

// Navigation fetches the route for the active leg of a delivery. The
// service picks the leg from the order's current status.
func (c *Client) Navigation(ctx context.Context, orderID string, position types.LatLng) (*types.RouteSnapshot, error) {
	var snapshot types.RouteSnapshot
	path := "/deliveries/active/" + url.PathEscape(orderID) + "/navigation"
	query := url.Values{
		"driver_latitude":  []string{formatCoord(position.Latitude)},
		"driver_longitude": []string{formatCoord(position.Longitude)},
	}
	if err := c.do(ctx, http.MethodGet, path, query, nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ReadyOrders lists unassigned orders that are ready for pickup.
func (c *Client) ReadyOrders(ctx context.Context, position types.LatLng) ([]ReadyOrder, error) {
	var orders []ReadyOrder
	query := url.Values{
		"driver_latitude":  []string{formatCoord(position.Latitude)},
		"driver_longitude": []string{formatCoord(position.Longitude)},
	}
	if err := c.do(ctx, http.MethodGet, "/deliveries/ready", query, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "order service client not configured")
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order service unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.classifyError(resp)
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	// A success status with a non-JSON body means a misconfigured
	// backend; treat it as a failure rather than guessing.
	if !isJSONResponse(resp) {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("unexpected content type %q from order service", resp.Header.Get("Content-Type")))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order service response")
	}
	return nil
}

// classifyError maps a non-success response onto the error taxonomy:
// structured JSON bodies surface their message, anything else collapses
// to an opaque server error carrying the status code.
func (c *Client) classifyError(resp *http.Response) error {
	code := codeForStatus(resp.StatusCode)

	if isJSONResponse(resp) {
		var body struct {
			Detail  string `json:"detail"`
			Message string `json:"message"`
			Error   struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		if err := json.Unmarshal(raw, &body); err == nil {
			msg := strings.TrimSpace(body.Detail)
			if msg == "" {
				msg = strings.TrimSpace(body.Message)
			}
			if msg == "" {
				msg = strings.TrimSpace(body.Error.Message)
			}
			if msg != "" {
				return pkgerrors.New(code, msg)
			}
		}
	} else {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errorBodyReadLimit))
	}

	return pkgerrors.New(code, fmt.Sprintf("server error (%d)", resp.StatusCode))
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.CodeValidation
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	}
	return pkgerrors.CodeDependency
}

func isJSONResponse(resp *http.Response) bool {
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func formatCoord(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
