package validation

import "encoding/json"

// IssueTokenRequest is the payload for POST /admin/issue-token. Everything is
// optional: an operator may mint a bare token or attach a payment id so the
// claim redirect can find it later.
type IssueTokenRequest struct {
	PaymentID string                 `json:"payment_id,omitempty"`
	Event     string                 `json:"event,omitempty"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// CreatePaymentLinkRequest is the payload for POST /create-payment-link.
// Amount is in the currency's smallest unit.
type CreatePaymentLinkRequest struct {
	Amount      int64             `json:"amount" validate:"required,gt=0"`
	Currency    string            `json:"currency" validate:"required,len=3,uppercase"`
	Description string            `json:"description,omitempty" validate:"max=255"`
	Notes       map[string]string `json:"notes,omitempty"`
}

// GenerateRequest is the payload for POST /generate.
type GenerateRequest struct {
	SetupPayload json.RawMessage `json:"setup_payload" validate:"required"`
	// ViewToken, when set, asks for an update-in-place of that token.
	ViewToken string `json:"view_token,omitempty"`
}
