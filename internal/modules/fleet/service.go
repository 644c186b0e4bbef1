// README: Fleet service: vehicle registration, activation guard, availability view.
package fleet

import (
	"context"
	"errors"
	"time"

	"fleet/internal/modules/booking"
	"fleet/internal/types"
)

var (
	ErrNotFound        = errors.New("vehicle not found")
	ErrVehicleInactive = errors.New("vehicle is inactive")
	ErrVehicleInUse    = errors.New("vehicle holds live bookings")
	ErrBadRequest      = errors.New("bad request")
)

// LiveBookingSource is the slice of the booking store the fleet view
// needs. Both queries resolve the effective vehicle, so the
// deactivation guard applies uniformly to every booking kind.
type LiveBookingSource interface {
	CountLiveByVehicle(ctx context.Context, vehicleID types.ID) (int, error)
	ListLive(ctx context.Context) ([]booking.Booking, error)
}

type Service struct {
	store    *Store
	bookings LiveBookingSource
}

func NewService(store *Store, bookings LiveBookingSource) *Service {
	return &Service{store: store, bookings: bookings}
}

type RegisterCommand struct {
	Label string
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (types.ID, error) {
	if cmd.Label == "" {
		return "", ErrBadRequest
	}
	v := &Vehicle{
		ID:        types.NewID(),
		Label:     cmd.Label,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := s.store.Create(ctx, v); err != nil {
		return "", err
	}
	return v.ID, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Vehicle, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Vehicle, error) {
	return s.store.List(ctx)
}

func (s *Service) Activate(ctx context.Context, id types.ID) error {
	ok, err := s.store.SetActive(ctx, id, true, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Deactivate refuses while the vehicle is the effective vehicle of any
// upcoming or active booking.
func (s *Service) Deactivate(ctx context.Context, id types.ID) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.bookings.CountLiveByVehicle(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrVehicleInUse
	}
	ok, err := s.store.SetActive(ctx, id, false, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Availability returns the per-vehicle fleet view at now.
func (s *Service) Availability(ctx context.Context, now time.Time) ([]VehicleAvailability, error) {
	vehicles, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	live, err := s.bookings.ListLive(ctx)
	if err != nil {
		return nil, err
	}

	byVehicle := make(map[types.ID][]booking.Booking)
	for _, b := range live {
		v := b.EffectiveVehicle()
		byVehicle[v] = append(byVehicle[v], b)
	}

	out := make([]VehicleAvailability, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, VehicleAvailability{
			Vehicle: v,
			State:   DeriveState(byVehicle[v.ID], now),
		})
	}
	return out, nil
}
