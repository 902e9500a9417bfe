package kv

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemory_SetIfAbsentRace(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	wins := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created, err := m.SetIfAbsent(ctx, "payment:pay_1", "tok", time.Hour)
			if err != nil {
				t.Errorf("SetIfAbsent error: %v", err)
			}
			wins[i] = created
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, w := range wins {
		if w {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	now := time.Now()
	m.SetNow(func() time.Time { return now })

	if err := m.Set(ctx, "purchase:tok", "v", 2*time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, found, _ := m.Get(ctx, "purchase:tok"); !found {
		t.Fatalf("expected hit before expiry")
	}

	m.SetNow(func() time.Time { return now.Add(2*time.Hour + time.Second) })
	if _, found, _ := m.Get(ctx, "purchase:tok"); found {
		t.Fatalf("expected miss after expiry")
	}

	// an expired key can be re-created conditionally
	created, err := m.SetIfAbsent(ctx, "purchase:tok", "v2", time.Hour)
	if err != nil || !created {
		t.Fatalf("expected conditional create on expired key, created=%v err=%v", created, err)
	}
}

func TestMemory_RefreshTTL(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	now := time.Now()
	m.SetNow(func() time.Time { return now })

	if err := m.RefreshTTL(ctx, "absent", time.Hour); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := m.Set(ctx, "payment:pay_1", "tok", time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := m.RefreshTTL(ctx, "payment:pay_1", time.Hour); err != nil {
		t.Fatalf("RefreshTTL error: %v", err)
	}
	exp, ok := m.ExpiresAt("payment:pay_1")
	if !ok {
		t.Fatalf("expected key to exist")
	}
	if !exp.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected expiry pushed to +1h, got %s", exp)
	}
}
