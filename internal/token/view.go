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

// ViewManager exchanges verified purchase tokens for view tokens and serves
// the view-token read surface.
type ViewManager struct {
	store   kv.Store
	ttl     time.Duration // view token lifetime
	logger  *zap.Logger
	newID   func() string
	nowFunc func() time.Time
}

// NewViewManager returns a ViewManager writing records with the given TTL.
func NewViewManager(store kv.Store, ttl time.Duration, logger *zap.Logger) *ViewManager {
	return &ViewManager{
		store:   store,
		ttl:     ttl,
		logger:  logger,
		newID:   uuid.NewString,
		nowFunc: time.Now,
	}
}

// Exchange binds payload to a view token. The caller must have verified the
// purchase token already; purchase is its record and rides along as
// provenance. If existing names a live view token, its payload is replaced
// and the TTL refreshed, returning the same id — so a buyer can iterate on
// content under one shareable link. A stale or unknown existing id degrades
// to minting a fresh token rather than erroring.
func (m *ViewManager) Exchange(ctx context.Context, purchase *PurchaseRecord, payload json.RawMessage, existing string) (string, error) {
	now := m.nowFunc().UTC()

	if existing != "" {
		val, found, err := m.store.Get(ctx, viewKeyPrefix+existing)
		if err != nil {
			return "", fmt.Errorf("lookup view token: %w", err)
		}
		if found {
			var rec ViewRecord
			if err := json.Unmarshal([]byte(val), &rec); err != nil {
				// corrupt record: mint fresh rather than overwrite in place
				m.logger.Warn("corrupt view record, minting fresh token", zap.Error(err))
			} else {
				rec.SetupPayload = payload
				rec.UpdatedAt = now
				body, err := json.Marshal(rec)
				if err != nil {
					return "", fmt.Errorf("marshal view record: %w", err)
				}
				if err := m.store.Set(ctx, viewKeyPrefix+existing, string(body), m.ttl); err != nil {
					return "", fmt.Errorf("update view token: %w", err)
				}
				return existing, nil
			}
		}
	}

	tok := m.newID()
	rec := ViewRecord{
		SetupPayload: payload,
		OrderMeta:    purchase,
		CreatedAt:    now,
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal view record: %w", err)
	}
	if err := m.store.Set(ctx, viewKeyPrefix+tok, string(body), m.ttl); err != nil {
		return "", fmt.Errorf("store view token: %w", err)
	}
	return tok, nil
}

// Validate returns the record behind a view token, with the same rejection
// semantics as Gate.Verify.
func (m *ViewManager) Validate(ctx context.Context, tok string) (*ViewRecord, error) {
	if tok == "" {
		return nil, ErrNoToken
	}
	val, found, err := m.store.Get(ctx, viewKeyPrefix+tok)
	if err != nil {
		return nil, fmt.Errorf("lookup view token: %w", err)
	}
	if !found {
		return nil, ErrTokenInvalid
	}
	var rec ViewRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		m.logger.Warn("corrupt view record rejected", zap.Error(err))
		return nil, ErrTokenInvalid
	}
	return &rec, nil
}
