package store

import (
	"context"
	"math/big"
	"testing"
	"time"
)

func enqueue(t *testing.T, st *Store, ctx context.Context, d *Duel, ttl time.Duration) (*MatchQueueEntry, *MatchQueueEntry) {
	t.Helper()
	e := &MatchQueueEntry{
		ID:            NewID(),
		DuelID:        d.ID,
		WalletAddress: d.CreatorAddress,
		Asset:         d.Asset,
		DuelType:      d.DuelType,
		DurationSec:   d.DurationSec,
		StakeWei:      d.StakeWei,
		ExpiresAt:     time.Now().UTC().Add(ttl),
	}
	counterpart, err := st.MatchOrEnqueue(ctx, e)
	if err != nil {
		t.Fatalf("match or enqueue: %v", err)
	}
	return e, counterpart
}

func TestMatchOrEnqueue(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	d1 := mustCreateDuel(t, st, ctx, walletA)
	e1, counterpart := enqueue(t, st, ctx, d1, 5*time.Minute)
	if counterpart != nil {
		t.Fatalf("matched against empty queue: %+v", counterpart)
	}
	if e1.Status != MatchStatusWaiting {
		t.Fatalf("first entry status = %s, want waiting", e1.Status)
	}

	d2 := mustCreateDuel(t, st, ctx, walletB)
	e2, counterpart := enqueue(t, st, ctx, d2, 5*time.Minute)
	if counterpart == nil {
		t.Fatal("compatible entry did not match")
	}
	if counterpart.DuelID != d1.ID || counterpart.Status != MatchStatusMatched {
		t.Fatalf("counterpart = %+v, want matched entry for first duel", counterpart)
	}
	if e2.Status != MatchStatusMatched {
		t.Fatalf("second entry status = %s, want matched", e2.Status)
	}
}

func TestMatchOrEnqueueSkipsOwnWallet(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	d1 := mustCreateDuel(t, st, ctx, walletA)
	enqueue(t, st, ctx, d1, 5*time.Minute)

	d2 := mustCreateDuel(t, st, ctx, walletA)
	_, counterpart := enqueue(t, st, ctx, d2, 5*time.Minute)
	if counterpart != nil {
		t.Fatal("a wallet must not match against itself")
	}
}

func TestMatchOrEnqueueSkipsDifferentStake(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	d1 := mustCreateDuel(t, st, ctx, walletA)
	enqueue(t, st, ctx, d1, 5*time.Minute)

	d2 := mustCreateDuel(t, st, ctx, walletB)
	d2.StakeWei = big.NewInt(99_999)
	_, counterpart := enqueue(t, st, ctx, d2, 5*time.Minute)
	if counterpart != nil {
		t.Fatal("different stakes must not match")
	}
}

func TestRollbackMatch(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	d1 := mustCreateDuel(t, st, ctx, walletA)
	enqueue(t, st, ctx, d1, 5*time.Minute)

	d2 := mustCreateDuel(t, st, ctx, walletB)
	e2, counterpart := enqueue(t, st, ctx, d2, 5*time.Minute)
	if counterpart == nil {
		t.Fatal("compatible entry did not match")
	}

	if err := st.RollbackMatch(ctx, counterpart.ID, e2.ID); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	e1, err := st.GetMatchEntryByDuel(ctx, d1.ID)
	if err != nil {
		t.Fatalf("get first entry: %v", err)
	}
	if e1.Status != MatchStatusWaiting {
		t.Fatalf("first entry status = %s, want waiting", e1.Status)
	}
	if _, err := st.GetMatchEntryByDuel(ctx, d2.ID); err != ErrNotFound {
		t.Fatalf("second entry err = %v, want ErrNotFound", err)
	}

	// The restored entry matches again.
	d3 := mustCreateDuel(t, st, ctx, walletB)
	_, counterpart = enqueue(t, st, ctx, d3, 5*time.Minute)
	if counterpart == nil || counterpart.DuelID != d1.ID {
		t.Fatalf("counterpart = %+v, want rematch against first duel", counterpart)
	}
}

func TestExpireMatchEntries(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	d1 := mustCreateDuel(t, st, ctx, walletA)
	enqueue(t, st, ctx, d1, -time.Minute)

	n, err := st.ExpireMatchEntries(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired %d, want 1", n)
	}

	e, err := st.GetMatchEntryByDuel(ctx, d1.ID)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if e.Status != MatchStatusExpired {
		t.Fatalf("status = %s, want expired", e.Status)
	}

	// An expired entry can no longer match.
	d2 := mustCreateDuel(t, st, ctx, walletB)
	_, counterpart := enqueue(t, st, ctx, d2, 5*time.Minute)
	if counterpart != nil {
		t.Fatal("expired entry must not match")
	}
}
