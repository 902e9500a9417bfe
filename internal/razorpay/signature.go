package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// VerifyWebhookSignature checks the X-Razorpay-Signature header: an
// HMAC-SHA256 hex digest computed over the exact raw request body with the
// webhook secret. Comparison is constant-time.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// WebhookEvent is the subset of Razorpay's webhook envelope we consume.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID     string `json:"id"`
				Amount int64  `json:"amount"`
				Status string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
		PaymentLink struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"payment_link"`
	} `json:"payload"`
}

// ParseWebhookEvent decodes an authenticated webhook body.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// PaymentID returns the payment identifier carried by the event, preferring
// the payment entity over the payment-link entity. Empty when the event
// carries neither.
func (e *WebhookEvent) PaymentID() string {
	if id := e.Payload.Payment.Entity.ID; id != "" {
		return id
	}
	return e.Payload.PaymentLink.Entity.ID
}
