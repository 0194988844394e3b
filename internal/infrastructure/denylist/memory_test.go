package denylist

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemory_RevokeAndExpire(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	added, err := m.Revoke(ctx, "jti-1", time.Minute)
	if err != nil || !added {
		t.Fatalf("expected first Revoke to add the entry, got %v (err=%v)", added, err)
	}
	revoked, err := m.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("expected jti-1 revoked, got %v (err=%v)", revoked, err)
	}
	if revoked, _ := m.IsRevoked(ctx, "jti-2"); revoked {
		t.Fatalf("expected jti-2 not revoked")
	}

	now = now.Add(time.Minute)
	if revoked, _ := m.IsRevoked(ctx, "jti-1"); revoked {
		t.Fatalf("expected entry to lapse with the token")
	}
	if m.Len() != 0 {
		t.Fatalf("expected lazy prune on lookup, got %d entries", m.Len())
	}
}

func TestMemory_NonPositiveTTLIsIgnored(t *testing.T) {
	m := NewMemory()
	if _, err := m.Revoke(context.Background(), "jti", 0); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("expected no entry for zero ttl")
	}
}

func TestMemory_BulkPrune(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < pruneEvery-1; i++ {
		_, _ = m.Revoke(ctx, fmt.Sprintf("old-%d", i), time.Second)
	}
	now = now.Add(time.Minute)
	_, _ = m.Revoke(ctx, "fresh", time.Hour)

	if m.Len() != 1 {
		t.Fatalf("expected only the fresh entry after prune, got %d", m.Len())
	}
}

func TestMemory_Concurrent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("jti-%d", i)
			_, _ = m.Revoke(ctx, id, time.Hour)
			if revoked, _ := m.IsRevoked(ctx, id); !revoked {
				t.Errorf("expected %s revoked", id)
			}
		}(i)
	}
	wg.Wait()
}

func TestMemory_RevokeClaimsOnce(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	if added, _ := m.Revoke(ctx, "jti", time.Minute); !added {
		t.Fatalf("expected first Revoke to add the entry")
	}
	if added, _ := m.Revoke(ctx, "jti", time.Hour); added {
		t.Fatalf("expected second Revoke to report an existing entry")
	}

	// The original expiry stands; a repeat revoke does not extend it.
	now = now.Add(time.Minute)
	if revoked, _ := m.IsRevoked(ctx, "jti"); revoked {
		t.Fatalf("expected entry to lapse after the first ttl")
	}
	if added, _ := m.Revoke(ctx, "jti", time.Minute); !added {
		t.Fatalf("expected a lapsed entry to be claimable again")
	}
}

func TestMemory_ConcurrentClaimHasOneWinner(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if added, _ := m.Revoke(ctx, "shared", time.Hour); added {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one winning claim, got %d", wins)
	}
}
