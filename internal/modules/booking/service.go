// README: Booking service implements creation, lifecycle transitions and availability checks.
package booking

import (
	"context"
	"errors"
	"time"

	"fleet/internal/types"
)

var (
	ErrNotFound           = errors.New("booking not found")
	ErrInvalidState       = errors.New("invalid booking state transition")
	ErrConflict           = errors.New("booking state conflict")
	ErrVehicleUnavailable = errors.New("vehicle has no free window")
	ErrBadRequest         = errors.New("bad request")
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type CreateCommand struct {
	UserID             types.ID
	Kind               Kind
	RequestedVehicleID types.ID
	StartTime          time.Time
	DurationMinutes    int
}

type CompleteCommand struct {
	BookingID types.ID
}

type CancelCommand struct {
	BookingID types.ID
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (types.ID, error) {
	if cmd.UserID.IsZero() || cmd.RequestedVehicleID.IsZero() || !ValidKind(cmd.Kind) {
		return "", ErrBadRequest
	}
	if cmd.StartTime.IsZero() {
		return "", ErrBadRequest
	}

	start := cmd.StartTime
	dur := time.Duration(cmd.DurationMinutes) * time.Minute
	if dur <= 0 {
		dur = DefaultDuration
	}
	free, err := s.IsFree(ctx, cmd.RequestedVehicleID, start, start.Add(dur), "")
	if err != nil {
		return "", err
	}
	if !free {
		return "", ErrVehicleUnavailable
	}

	b := &Booking{
		ID:                 types.NewID(),
		Kind:               cmd.Kind,
		UserID:             cmd.UserID,
		RequestedVehicleID: cmd.RequestedVehicleID,
		StartTime:          &start,
		DurationMinutes:    cmd.DurationMinutes,
		Status:             StatusUpcoming,
		StatusVersion:      0,
		RefundStatus:       RefundNone,
		CreatedAt:          time.Now(),
	}
	if err := s.store.Create(ctx, b); err != nil {
		return "", err
	}
	return b.ID, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Booking, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID types.ID) ([]Booking, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) ListAwaitingManual(ctx context.Context) ([]Booking, error) {
	return s.store.ListAwaitingManual(ctx)
}

// Complete is operator-triggered. A completion from upcoming is
// accepted: dispatch may report the ride finished before the scheduler
// promotes it.
func (s *Service) Complete(ctx context.Context, cmd CompleteCommand) error {
	return s.transition(ctx, cmd.BookingID, StatusCompleted)
}

// Cancel is owner-triggered. On success the refund workflow opens as a
// side effect of the same conditional update.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	return s.transition(ctx, cmd.BookingID, StatusCancelled)
}

func (s *Service) transition(ctx context.Context, id types.ID, to Status) error {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(b.Status, to) {
		return ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, b.ID, b.Status, to, b.StatusVersion, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

// IsFree answers whether vehicleID is free for [start, end), ignoring
// the booking identified by excludeID. A non-free result is a normal
// false, never an error.
func (s *Service) IsFree(ctx context.Context, vehicleID types.ID, start, end time.Time, excludeID types.ID) (bool, error) {
	existing, err := s.store.ListLiveByVehicle(ctx, vehicleID, excludeID)
	if err != nil {
		return false, err
	}
	return FreeAgainst(start, end, existing), nil
}
