package paypal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "client-id", "client-secret", 2*time.Second)
}

func TestClient_RequestToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/oauth2/token", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"A21AA","token_type":"Bearer","expires_in":32400}`)
	})

	tok, err := c.RequestToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A21AA", tok.AccessToken)
	assert.Equal(t, 32400, tok.ExpiresIn)
}

func TestClient_RequestToken_MissingCredentials(t *testing.T) {
	c := NewClient(SandboxBaseURL, "", "", time.Second)

	_, err := c.RequestToken(context.Background())
	assert.Error(t, err)
	assert.False(t, IsTransportError(err))
}

func TestClient_CreateOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/checkout/orders", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body CreateOrderRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "CAPTURE", body.Intent)
		if assert.Len(t, body.PurchaseUnits, 1) {
			assert.Equal(t, "45.00", body.PurchaseUnits[0].Amount.Value)
		}
		if assert.NotNil(t, body.ApplicationContext) {
			assert.Equal(t, "https://shop.example.com/ok", body.ApplicationContext.ReturnURL)
		}

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"5O190127TN364715T","status":"CREATED","links":[{"href":"https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T","rel":"approve","method":"GET"}]}`)
	})

	res, err := c.CreateOrder(context.Background(), "tok", CreateOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []PurchaseUnitRequest{{
			ReferenceID: "order-1",
			Amount:      Amount{CurrencyCode: "EUR", Value: "45.00"},
		}},
		ApplicationContext: &ApplicationContext{ReturnURL: "https://shop.example.com/ok"},
	})
	require.NoError(t, err)
	assert.Equal(t, "5O190127TN364715T", res.ID)
	require.Len(t, res.Links, 1)
	assert.Equal(t, "approve", res.Links[0].Rel)
}

func TestClient_GetOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v2/checkout/orders/ABC", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"ABC","status":"APPROVED"}`)
	})

	res, err := c.GetOrder(context.Background(), "tok", "ABC")
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", res.Status)
	assert.False(t, res.Completed())
}

func TestClient_CaptureOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/checkout/orders/ABC/capture", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"ABC","status":"COMPLETED","purchase_units":[{"reference_id":"order-1","payments":{"captures":[{"id":"3C679366HH908993F","status":"COMPLETED"}]}}]}`)
	})

	res, err := c.CaptureOrder(context.Background(), "tok", "ABC")
	require.NoError(t, err)
	assert.True(t, res.Completed())
	require.NotNil(t, res.CaptureID())
	assert.Equal(t, "3C679366HH908993F", *res.CaptureID())
}

func TestClient_RequestIDHeader(t *testing.T) {
	var got []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("PayPal-Request-Id"))
		_, _ = io.WriteString(w, `{"id":"ABC","status":"COMPLETED"}`)
	})

	ctx := WithRequestID(context.Background(), "order-1:capture")
	_, err := c.CaptureOrder(ctx, "tok", "ABC")
	require.NoError(t, err)
	_, err = c.CaptureOrder(ctx, "tok", "ABC")
	require.NoError(t, err)
	_, err = c.GetOrder(context.Background(), "tok", "ABC")
	require.NoError(t, err)

	assert.Equal(t, []string{"order-1:capture", "order-1:capture", ""}, got)
}

func TestIsAlreadyCaptured(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "already captured",
			err:      &APIError{StatusCode: 422, Body: `{"name":"UNPROCESSABLE_ENTITY","details":[{"issue":"ORDER_ALREADY_CAPTURED"}]}`},
			expected: true,
		},
		{
			name: "declined",
			err:  &APIError{StatusCode: 422, Body: `{"details":[{"issue":"INSTRUMENT_DECLINED"}]}`},
		},
		{
			name: "other status",
			err:  &APIError{StatusCode: 400, Body: `{"details":[{"issue":"ORDER_ALREADY_CAPTURED"}]}`},
		},
		{
			name: "body is not json",
			err:  &APIError{StatusCode: 422, Body: "bad gateway"},
		},
		{
			name: "transport error",
			err:  &TransportError{Err: io.ErrUnexpectedEOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsAlreadyCaptured(tt.err))
		})
	}
}

func TestClient_ErrorKinds(t *testing.T) {
	t.Run("non-2xx is an api error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"name":"UNPROCESSABLE_ENTITY"}`)
		})

		_, err := c.CaptureOrder(context.Background(), "tok", "ABC")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
		assert.Contains(t, apiErr.Body, "UNPROCESSABLE_ENTITY")
		assert.False(t, IsTransportError(err))
	})

	t.Run("unreachable host is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c := NewClient(url, "id", "secret", time.Second)
		_, err := c.GetOrder(context.Background(), "tok", "ABC")
		assert.True(t, IsTransportError(err))
	})

	t.Run("timeout is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		t.Cleanup(srv.Close)

		c := NewClient(srv.URL, "id", "secret", 50*time.Millisecond)
		_, err := c.GetOrder(context.Background(), "tok", "ABC")
		assert.True(t, IsTransportError(err))
	})
}

func TestOrderResponse_Helpers(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		completed bool
		captureID string
	}{
		{name: "order completed", raw: `{"status":"COMPLETED"}`, completed: true},
		{name: "capture completed", raw: `{"status":"APPROVED","purchase_units":[{"payments":{"captures":[{"id":"C1","status":"COMPLETED"}]}}]}`, completed: true, captureID: "C1"},
		{name: "capture pending", raw: `{"status":"APPROVED","purchase_units":[{"payments":{"captures":[{"id":"C2","status":"PENDING"}]}}]}`, captureID: "C2"},
		{name: "no purchase units", raw: `{"status":"CREATED"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res OrderResponse
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &res))

			assert.Equal(t, tt.completed, res.Completed())
			if tt.captureID == "" {
				assert.Nil(t, res.CaptureID())
			} else {
				require.NotNil(t, res.CaptureID())
				assert.Equal(t, tt.captureID, *res.CaptureID())
			}
		})
	}
}

func TestBaseURLForMode(t *testing.T) {
	assert.Equal(t, LiveBaseURL, BaseURLForMode("live"))
	assert.Equal(t, SandboxBaseURL, BaseURLForMode("sandbox"))
	assert.Equal(t, SandboxBaseURL, BaseURLForMode(""))
}
