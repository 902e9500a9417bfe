// Package token implements the purchase/view token lifecycle: issuance with
// payment deduplication, verification, purchase-to-view exchange, and
// claim-redirect resolution. All state lives in an expiring kv.Store; the
// package holds no mutable state of its own.
package token

import (
	"encoding/json"
	"errors"
	"time"
)

// Store key namespaces. Purchase records and payment mappings share the
// purchase TTL; view records live on the longer view TTL.
const (
	purchaseKeyPrefix = "purchase:"
	paymentKeyPrefix  = "payment:"
	viewKeyPrefix     = "view:"
)

var (
	// ErrNoToken means the caller presented no token at all.
	ErrNoToken = errors.New("token: no token presented")
	// ErrTokenInvalid means a token was presented but is expired, unknown,
	// or its stored record cannot be parsed.
	ErrTokenInvalid = errors.New("token: invalid or expired token")
	// ErrClaimNotFound means no live payment mapping exists for a payment id.
	ErrClaimNotFound = errors.New("token: no mapping for payment id")
)

// Metadata is the caller-supplied context recorded at issuance. A non-empty
// PaymentID triggers deduplication against the payment mapping.
type Metadata struct {
	PaymentID string
	Event     string
	Extra     map[string]interface{}
}

// PurchaseRecord is the value stored under a purchase token. Never mutated
// after creation.
type PurchaseRecord struct {
	CreatedAt time.Time              `json:"created_at"`
	PaymentID string                 `json:"payment_id,omitempty"`
	Event     string                 `json:"event,omitempty"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// ViewRecord is the value stored under a view token. OrderMeta carries the
// purchase record that produced it, for provenance; updates replace the
// payload and UpdatedAt but keep OrderMeta and CreatedAt.
type ViewRecord struct {
	SetupPayload json.RawMessage `json:"setup_payload"`
	OrderMeta    *PurchaseRecord `json:"order_meta,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at,omitempty"`
}
