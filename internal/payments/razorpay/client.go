// Package razorpay is a minimal client for the Razorpay orders API and the
// checkout signature scheme.
package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrMissingCredentials is returned when the key id or secret is empty.
var ErrMissingCredentials = errors.New("razorpay key id and secret are required")

// APIError is a non-2xx response from the Razorpay API.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("razorpay: status %d", e.StatusCode)
	}
	return fmt.Sprintf("razorpay: status %d: %s: %s", e.StatusCode, e.Code, e.Description)
}

// OrderRequest is the body of POST /orders. Amount is in minor currency units.
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order is the subset of the order entity the gateway uses.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Client talks to Razorpay with HTTP basic auth.
type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	http      *http.Client
}

// NewClient creates a client for baseURL (e.g. https://api.razorpay.com/v1).
func NewClient(keyID, keySecret, baseURL string, timeout time.Duration) (*Client, error) {
	if keyID == "" || keySecret == "" {
		return nil, ErrMissingCredentials
	}
	return &Client{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		http:      &http.Client{Timeout: timeout},
	}, nil
}

// KeyID returns the public key id checkout clients need.
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrder registers a new order and returns its id.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Order{}, fmt.Errorf("encode order: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return Order{}, fmt.Errorf("build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Order{}, fmt.Errorf("read order response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Order{}, decodeAPIError(resp.StatusCode, payload)
	}

	var order Order
	if err := json.Unmarshal(payload, &order); err != nil {
		return Order{}, fmt.Errorf("decode order response: %w", err)
	}
	if order.ID == "" {
		return Order{}, errors.New("razorpay: order response missing id")
	}
	return order, nil
}

// VerifyPaymentSignature reports whether signature is the hex HMAC-SHA256 of
// "orderID|paymentID" under the key secret.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	expected := Sign(c.keySecret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the checkout signature for orderID and paymentID.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func decodeAPIError(status int, payload []byte) error {
	var body struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: status}
	if json.Unmarshal(payload, &body) == nil {
		apiErr.Code = body.Error.Code
		apiErr.Description = body.Error.Description
	}
	return apiErr
}
