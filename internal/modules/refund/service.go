// README: Refund workflow: operator approval plus provider notifications.
package refund

import (
	"context"

	"go.uber.org/zap"

	"fleet/internal/modules/booking"
	"fleet/internal/types"
)

// Store is the slice of the booking store the workflow writes through.
// All compare-and-set semantics live in the store; the service owns the
// guards.
type Store interface {
	GetRefundStatus(ctx context.Context, id types.ID) (booking.RefundStatus, error)
	SwapRefundStatus(ctx context.Context, id types.ID, from, to booking.RefundStatus) (bool, error)
	SetRefundStatus(ctx context.Context, id types.ID, to booking.RefundStatus) error
}

type Service struct {
	store Store
	log   *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log}
}

// Approve moves pending_approval -> pending.
func (s *Service) Approve(ctx context.Context, id types.ID) error {
	return s.swap(ctx, id, booking.RefundPendingApproval, booking.RefundPending)
}

// Reject moves pending_approval -> rejected.
func (s *Service) Reject(ctx context.Context, id types.ID) error {
	return s.swap(ctx, id, booking.RefundPendingApproval, booking.RefundRejected)
}

func (s *Service) swap(ctx context.Context, id types.ID, from, to booking.RefundStatus) error {
	st, err := s.store.GetRefundStatus(ctx, id)
	if err != nil {
		return err
	}
	if st != from {
		return booking.ErrInvalidState
	}
	ok, err := s.store.SwapRefundStatus(ctx, id, from, to)
	if err != nil {
		return err
	}
	if !ok {
		return booking.ErrConflict
	}
	return nil
}

// MarkInitiated consumes a provider "refund initiated" notification.
// From none this bypasses operator approval entirely; the two paths are
// kept distinct and the bypass is logged rather than silently merged.
func (s *Service) MarkInitiated(ctx context.Context, id types.ID) error {
	st, err := s.store.GetRefundStatus(ctx, id)
	if err != nil {
		return err
	}
	switch st {
	case booking.RefundNone:
		s.log.Warn("provider-initiated refund bypasses operator approval",
			zap.String("booking_id", string(id)))
		return s.applySwap(ctx, id, st, booking.RefundPending)
	case booking.RefundPendingApproval:
		return s.applySwap(ctx, id, st, booking.RefundPending)
	case booking.RefundPending, booking.RefundProcessed:
		// Duplicate delivery; nothing to do.
		return nil
	default:
		return booking.ErrInvalidState
	}
}

// MarkProcessed consumes a provider "refund completed" notification.
// Unconditional and idempotent: re-applying is a no-op.
func (s *Service) MarkProcessed(ctx context.Context, id types.ID) error {
	return s.store.SetRefundStatus(ctx, id, booking.RefundProcessed)
}

func (s *Service) applySwap(ctx context.Context, id types.ID, from, to booking.RefundStatus) error {
	ok, err := s.store.SwapRefundStatus(ctx, id, from, to)
	if err != nil {
		return err
	}
	if !ok {
		return booking.ErrConflict
	}
	return nil
}
