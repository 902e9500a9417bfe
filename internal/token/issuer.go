package token

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tokengate/internal/kv"
)

// Issuer mints purchase tokens.
type Issuer struct {
	store   kv.Store
	ttl     time.Duration // purchase token lifetime, shared by the payment mapping
	logger  *zap.Logger
	newID   func() string
	nowFunc func() time.Time
}

// NewIssuer returns an Issuer writing records with the given TTL.
func NewIssuer(store kv.Store, ttl time.Duration, logger *zap.Logger) *Issuer {
	return &Issuer{
		store:   store,
		ttl:     ttl,
		logger:  logger,
		newID:   uuid.NewString,
		nowFunc: time.Now,
	}
}

// Issue mints a fresh purchase token and stores its record. When meta carries
// a payment id, the payment mapping is written conditionally: the first
// issuance for a payment id wins and later ones leave the mapping untouched,
// so duplicate webhook deliveries converge on one canonical token. Callers
// that care about dedup must resolve through the mapping, not the value
// returned here.
//
// Mapping-write failures are logged and swallowed: a buyer's token must not
// be lost to dedup bookkeeping.
func (i *Issuer) Issue(ctx context.Context, meta Metadata) (string, error) {
	tok := i.newID()
	rec := PurchaseRecord{
		CreatedAt: i.nowFunc().UTC(),
		PaymentID: meta.PaymentID,
		Event:     meta.Event,
		Extra:     meta.Extra,
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal purchase record: %w", err)
	}

	if err := i.store.Set(ctx, purchaseKeyPrefix+tok, string(body), i.ttl); err != nil {
		return "", fmt.Errorf("store purchase token: %w", err)
	}

	if meta.PaymentID != "" {
		created, err := i.store.SetIfAbsent(ctx, paymentKeyPrefix+meta.PaymentID, tok, i.ttl)
		switch {
		case err != nil:
			i.logger.Warn("payment mapping write failed, token issued without dedup",
				zap.String("payment_id", meta.PaymentID),
				zap.Error(err))
		case !created:
			i.logger.Info("payment already mapped, keeping existing token",
				zap.String("payment_id", meta.PaymentID))
		}
	}

	return tok, nil
}
