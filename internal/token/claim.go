package token

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tokengate/internal/kv"
)

// ClaimResolver maps a payment id back to its purchase token for the
// provider's browser return-trip. Strictly read-only: a missing mapping is
// reported as ErrClaimNotFound, never healed by minting, and a hit does not
// extend any TTL. Minting on this path would let anyone replaying a stale
// payment id conjure a live token after the legitimate window closed.
type ClaimResolver struct {
	store  kv.Store
	logger *zap.Logger
}

// NewClaimResolver returns a ClaimResolver over store.
func NewClaimResolver(store kv.Store, logger *zap.Logger) *ClaimResolver {
	return &ClaimResolver{store: store, logger: logger}
}

// Resolve returns the purchase token mapped to paymentID.
func (r *ClaimResolver) Resolve(ctx context.Context, paymentID string) (string, error) {
	tok, found, err := r.store.Get(ctx, paymentKeyPrefix+paymentID)
	if err != nil {
		return "", fmt.Errorf("lookup payment mapping: %w", err)
	}
	if !found {
		r.logger.Info("claim for unmapped payment id",
			zap.String("payment_id", paymentID))
		return "", ErrClaimNotFound
	}
	return tok, nil
}
