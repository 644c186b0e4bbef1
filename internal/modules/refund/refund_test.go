// README: Refund workflow guard tests against an in-memory store.
package refund

import (
	"context"
	"sync"
	"testing"

	"fleet/internal/modules/booking"
	"fleet/internal/types"
)

type fakeStore struct {
	mu       sync.Mutex
	statuses map[types.ID]booking.RefundStatus
}

func newFakeStore() *fakeStore {
	return &fakeStore{statuses: make(map[types.ID]booking.RefundStatus)}
}

func (f *fakeStore) GetRefundStatus(_ context.Context, id types.ID) (booking.RefundStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.statuses[id]
	if !ok {
		return "", booking.ErrNotFound
	}
	return st, nil
}

func (f *fakeStore) SwapRefundStatus(_ context.Context, id types.ID, from, to booking.RefundStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statuses[id] != from {
		return false, nil
	}
	f.statuses[id] = to
	return true, nil
}

func (f *fakeStore) SetRefundStatus(_ context.Context, id types.ID, to booking.RefundStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.statuses[id]; !ok {
		return booking.ErrNotFound
	}
	f.statuses[id] = to
	return nil
}

func (f *fakeStore) status(id types.ID) booking.RefundStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[id]
}

func TestApproveAndReject(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewService(store, nil)

	store.statuses["b_approve"] = booking.RefundPendingApproval
	if err := svc.Approve(ctx, "b_approve"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := store.status("b_approve"); got != booking.RefundPending {
		t.Fatalf("expected pending, got %s", got)
	}

	store.statuses["b_reject"] = booking.RefundPendingApproval
	if err := svc.Reject(ctx, "b_reject"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got := store.status("b_reject"); got != booking.RefundRejected {
		t.Fatalf("expected rejected, got %s", got)
	}
}

func TestApproveGuards(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewService(store, nil)

	for _, st := range []booking.RefundStatus{
		booking.RefundNone, booking.RefundPending, booking.RefundProcessed, booking.RefundRejected,
	} {
		store.statuses["b1"] = st
		if err := svc.Approve(ctx, "b1"); err != booking.ErrInvalidState {
			t.Errorf("approve from %s: expected ErrInvalidState, got %v", st, err)
		}
		if err := svc.Reject(ctx, "b1"); err != booking.ErrInvalidState {
			t.Errorf("reject from %s: expected ErrInvalidState, got %v", st, err)
		}
	}

	if err := svc.Approve(ctx, "b_gone"); err != booking.ErrNotFound {
		t.Errorf("missing booking: expected ErrNotFound, got %v", err)
	}
}

func TestMarkInitiated(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewService(store, nil)

	// Provider-initiated bypass: no cancellation, no approval.
	store.statuses["b_bypass"] = booking.RefundNone
	if err := svc.MarkInitiated(ctx, "b_bypass"); err != nil {
		t.Fatalf("bypass: %v", err)
	}
	if got := store.status("b_bypass"); got != booking.RefundPending {
		t.Fatalf("expected pending, got %s", got)
	}

	// Normal path after cancellation.
	store.statuses["b_norm"] = booking.RefundPendingApproval
	if err := svc.MarkInitiated(ctx, "b_norm"); err != nil {
		t.Fatalf("initiated after approval request: %v", err)
	}
	if got := store.status("b_norm"); got != booking.RefundPending {
		t.Fatalf("expected pending, got %s", got)
	}

	// Duplicate delivery is a no-op.
	if err := svc.MarkInitiated(ctx, "b_norm"); err != nil {
		t.Fatalf("duplicate initiated: %v", err)
	}

	// A rejected refund cannot be re-initiated.
	store.statuses["b_rejected"] = booking.RefundRejected
	if err := svc.MarkInitiated(ctx, "b_rejected"); err != booking.ErrInvalidState {
		t.Fatalf("initiated after reject: expected ErrInvalidState, got %v", err)
	}
}

func TestMarkProcessedIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewService(store, nil)

	store.statuses["b1"] = booking.RefundPending
	if err := svc.MarkProcessed(ctx, "b1"); err != nil {
		t.Fatalf("processed: %v", err)
	}
	if got := store.status("b1"); got != booking.RefundProcessed {
		t.Fatalf("expected processed, got %s", got)
	}

	// Re-applying changes nothing and does not fail.
	if err := svc.MarkProcessed(ctx, "b1"); err != nil {
		t.Fatalf("repeat processed: %v", err)
	}
	if got := store.status("b1"); got != booking.RefundProcessed {
		t.Fatalf("expected processed after repeat, got %s", got)
	}
}
