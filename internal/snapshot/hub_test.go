package snapshot

import (
	"context"
	"testing"

	"teto/internal/core"
	"teto/internal/store/memory"
)

func TestSnapshotCachesUntilInvalidated(t *testing.T) {
	s := memory.New()
	hub := NewHub(s)
	ctx := context.Background()

	first, err := hub.Snapshot(ctx, "alice")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(first.Transactions) != 0 {
		t.Fatalf("fresh owner has %d transactions", len(first.Transactions))
	}

	s.CreateTransaction(ctx, core.Transaction{ID: "t1", OwnerID: "alice"})

	// Cache is warm, the write is not visible yet.
	stale, _ := hub.Snapshot(ctx, "alice")
	if len(stale.Transactions) != 0 {
		t.Fatal("snapshot refreshed without invalidation")
	}

	hub.Invalidate("alice")
	fresh, _ := hub.Snapshot(ctx, "alice")
	if len(fresh.Transactions) != 1 {
		t.Fatalf("got %d transactions after invalidation, want 1", len(fresh.Transactions))
	}
}

func TestSubscribeReceivesWake(t *testing.T) {
	hub := NewHub(memory.New())

	ch, cancel := hub.Subscribe("alice")
	defer cancel()

	hub.Invalidate("alice")
	select {
	case <-ch:
	default:
		t.Fatal("no wake after invalidation")
	}

	// Bursts collapse into one pending wake.
	hub.Invalidate("alice")
	hub.Invalidate("alice")
	<-ch
	select {
	case <-ch:
		t.Fatal("burst delivered more than one pending wake")
	default:
	}
}

func TestSubscribeIsOwnerScoped(t *testing.T) {
	hub := NewHub(memory.New())

	ch, cancel := hub.Subscribe("alice")
	defer cancel()

	hub.Invalidate("bob")
	select {
	case <-ch:
		t.Fatal("woken by another owner's change")
	default:
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	hub := NewHub(memory.New())

	ch, cancel := hub.Subscribe("alice")
	cancel()

	hub.Invalidate("alice")
	select {
	case <-ch:
		t.Fatal("wake delivered after cancel")
	default:
	}
}
