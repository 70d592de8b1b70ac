package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/chezvous/backend-booking/internal/resilience"
)

// SignatureHeader is the request header carrying the webhook HMAC digest.
const SignatureHeader = "x-paystack-signature"

// Paystack is a minimal client for the Paystack transaction API. The same
// secret key authenticates outbound API calls and inbound webhook signatures.
type Paystack struct {
	SecretKey string
	BaseURL   string
	HTTP      *resilience.HTTPClient
}

// TransactionRequest captures the fields sent to /transaction/initialize.
// Amount is in the minor currency unit (kobo).
type TransactionRequest struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"`
	CallbackURL string   `json:"callback_url,omitempty"`
	Metadata    Metadata `json:"metadata"`
}

// TransactionResponse is the subset of the initialize response the service uses.
type TransactionResponse struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// InitializeTransaction opens a transaction with the gateway and returns the
// hosted payment page URL the customer should be sent to.
func (p Paystack) InitializeTransaction(ctx context.Context, req TransactionRequest) (TransactionResponse, error) {
	var zero TransactionResponse
	if strings.TrimSpace(p.SecretKey) == "" {
		return zero, errors.New("paystack: secret key not configured")
	}
	if p.HTTP == nil {
		return zero, errors.New("paystack: http client not configured")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return zero, fmt.Errorf("paystack: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL()+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return zero, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTP.Do(ctx, httpReq)
	if err != nil {
		return zero, fmt.Errorf("paystack: initialize transaction: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("paystack: read response: %w", err)
	}
	var decoded struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			AuthorizationURL string `json:"authorization_url"`
			AccessCode       string `json:"access_code"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return zero, fmt.Errorf("paystack: decode response: %w", err)
	}
	if !decoded.Status {
		return zero, fmt.Errorf("paystack: initialization failed: %s", decoded.Message)
	}
	if decoded.Data.AuthorizationURL == "" {
		return zero, errors.New("paystack: response missing authorization url")
	}
	return TransactionResponse{
		AuthorizationURL: decoded.Data.AuthorizationURL,
		AccessCode:       decoded.Data.AccessCode,
		Reference:        decoded.Data.Reference,
	}, nil
}

// VerifyWebhook reports whether signature matches the HMAC-SHA512 hex digest
// of the exact raw body bytes keyed with the shared secret. The comparison is
// constant time. An empty secret or signature never verifies.
func (p Paystack) VerifyWebhook(signature string, body []byte) bool {
	key := strings.TrimSpace(p.SecretKey)
	provided := strings.TrimSpace(signature)
	if key == "" || provided == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(key))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(provided))
}

// Sign computes the webhook digest for a body. Used by tests and by tooling
// that replays events against a local instance.
func (p Paystack) Sign(body []byte) string {
	mac := hmac.New(sha512.New, []byte(p.SecretKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (p Paystack) baseURL() string {
	host := strings.TrimRight(strings.TrimSpace(p.BaseURL), "/")
	if host == "" {
		return "https://api.paystack.co"
	}
	return host
}
