package token

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"tokengate/internal/kv"
)

// Gate verifies presented purchase tokens. Pure read path.
type Gate struct {
	store  kv.Store
	logger *zap.Logger
}

// NewGate returns a Gate over store.
func NewGate(store kv.Store, logger *zap.Logger) *Gate {
	return &Gate{store: store, logger: logger}
}

// Verify returns the record behind tok. An empty token is ErrNoToken without
// a store round-trip; an unknown, expired, or unparseable record is
// ErrTokenInvalid. Store failures propagate.
func (g *Gate) Verify(ctx context.Context, tok string) (*PurchaseRecord, error) {
	if tok == "" {
		return nil, ErrNoToken
	}
	val, found, err := g.store.Get(ctx, purchaseKeyPrefix+tok)
	if err != nil {
		return nil, fmt.Errorf("lookup purchase token: %w", err)
	}
	if !found {
		return nil, ErrTokenInvalid
	}
	var rec PurchaseRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		g.logger.Warn("corrupt purchase record rejected", zap.Error(err))
		return nil, ErrTokenInvalid
	}
	return &rec, nil
}
