package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	SandboxBaseURL = "https://api-m.sandbox.paypal.com"
	LiveBaseURL    = "https://api-m.paypal.com"

	StatusCompleted = "COMPLETED"

	IssueAlreadyCaptured = "ORDER_ALREADY_CAPTURED"

	requestIDHeader = "PayPal-Request-Id"
)

type requestIDKey struct{}

// WithRequestID tags calls made with ctx with a PayPal-Request-Id. PayPal
// answers a repeated id with the result of the first call.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type Amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type PurchaseUnitRequest struct {
	ReferenceID string `json:"reference_id"`
	Amount      Amount `json:"amount"`
}

type ApplicationContext struct {
	ReturnURL string `json:"return_url,omitempty"`
	CancelURL string `json:"cancel_url,omitempty"`
	BrandName string `json:"brand_name,omitempty"`
}

type CreateOrderRequest struct {
	Intent             string                `json:"intent"`
	PurchaseUnits      []PurchaseUnitRequest `json:"purchase_units"`
	ApplicationContext *ApplicationContext   `json:"application_context,omitempty"`
}

type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type Capture struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type PurchaseUnit struct {
	ReferenceID string `json:"reference_id,omitempty"`
	Payments    *struct {
		Captures []Capture `json:"captures"`
	} `json:"payments,omitempty"`
}

type OrderResponse struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	Links         []Link         `json:"links,omitempty"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units,omitempty"`
}

// CaptureID returns the first capture id of the first purchase unit.
func (r *OrderResponse) CaptureID() *string {
	if len(r.PurchaseUnits) == 0 || r.PurchaseUnits[0].Payments == nil {
		return nil
	}
	caps := r.PurchaseUnits[0].Payments.Captures
	if len(caps) == 0 || caps[0].ID == "" {
		return nil
	}
	id := caps[0].ID
	return &id
}

// Completed reports whether the order or any of its captures is COMPLETED.
func (r *OrderResponse) Completed() bool {
	if r.Status == StatusCompleted {
		return true
	}
	for _, u := range r.PurchaseUnits {
		if u.Payments == nil {
			continue
		}
		for _, c := range u.Payments.Captures {
			if c.Status == StatusCompleted {
				return true
			}
		}
	}
	return false
}

// APIError is a well-formed non-2xx answer from PayPal.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paypal returned status %d: %s", e.StatusCode, e.Body)
}

// Issues returns the issue codes listed in the error body, if any.
func (e *APIError) Issues() []string {
	var body struct {
		Details []struct {
			Issue string `json:"issue"`
		} `json:"details"`
	}
	if err := json.Unmarshal([]byte(e.Body), &body); err != nil {
		return nil
	}
	out := make([]string, 0, len(body.Details))
	for _, d := range body.Details {
		if d.Issue != "" {
			out = append(out, d.Issue)
		}
	}
	return out
}

// IsAlreadyCaptured reports whether err is PayPal refusing a capture because
// the order was captured before.
func IsAlreadyCaptured(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnprocessableEntity {
		return false
	}
	for _, issue := range apiErr.Issues() {
		if issue == IssueAlreadyCaptured {
			return true
		}
	}
	return false
}

// TransportError wraps failures where no response was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "paypal transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

func NewClient(baseURL, clientID, clientSecret string, timeout time.Duration) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// BaseURLForMode maps "live" to the production API and anything else to the sandbox.
func BaseURLForMode(mode string) string {
	if mode == "live" {
		return LiveBaseURL
	}
	return SandboxBaseURL
}

func (c *Client) RequestToken(ctx context.Context) (*Token, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, errors.New("paypal credentials are missing")
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok Token
	if err := c.do(req, &tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, errors.New("paypal returned an empty access token")
	}
	return &tok, nil
}

func (c *Client) CreateOrder(ctx context.Context, accessToken string, body CreateOrderRequest) (*OrderResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/v2/checkout/orders", accessToken, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	var out OrderResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetOrder(ctx context.Context, accessToken, paymentOrderID string) (*OrderResponse, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/v2/checkout/orders/"+url.PathEscape(paymentOrderID), accessToken, nil)
	if err != nil {
		return nil, err
	}

	var out OrderResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CaptureOrder(ctx context.Context, accessToken, paymentOrderID string) (*OrderResponse, error) {
	path := "/v2/checkout/orders/" + url.PathEscape(paymentOrderID) + "/capture"
	req, err := c.newJSONRequest(ctx, http.MethodPost, path, accessToken, strings.NewReader("{}"))
	if err != nil {
		return nil, err
	}

	var out OrderResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path, accessToken string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	if id := requestID(ctx); id != "" {
		req.Header.Set(requestIDHeader, id)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode paypal response: %w", err)
	}
	return nil
}
