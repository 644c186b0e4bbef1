// README: Allocation service: the reconciliation tick and the operator assignment gateway.
package allocation

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"fleet/internal/config"
	"fleet/internal/modules/booking"
	"fleet/internal/modules/fleet"
	"fleet/internal/types"
)

// AutoAssignWindow is the grace period after a booking's start time
// during which the scheduler still attempts automatic assignment.
// Bookings discovered later than this go straight to manual handling
// rather than silently auto-assigning long after the fact.
const AutoAssignWindow = 2 * time.Minute

type BookingStore interface {
	ListDue(ctx context.Context, kind booking.Kind, now time.Time) ([]booking.Booking, error)
	ListLiveByVehicle(ctx context.Context, vehicleID, excludeID types.ID) ([]booking.Booking, error)
	Get(ctx context.Context, id types.ID) (*booking.Booking, error)
	Activate(ctx context.Context, id types.ID, version int, now time.Time) (bool, error)
	AssignAndActivate(ctx context.Context, id, vehicleID types.ID, version int, now time.Time) (bool, error)
	AssignVehicle(ctx context.Context, id, vehicleID types.ID, version int, now time.Time) (bool, error)
	FlagManual(ctx context.Context, id types.ID) (bool, error)
}

type VehicleSource interface {
	Get(ctx context.Context, id types.ID) (*fleet.Vehicle, error)
}

type Locker interface {
	AcquireVehicleLock(ctx context.Context, vehicleID types.ID) (bool, error)
	ReleaseVehicleLock(ctx context.Context, vehicleID types.ID) error
}

type Service struct {
	bookings BookingStore
	vehicles VehicleSource
	locks    Locker
	cfg      config.SchedulerConfig
	log      *zap.Logger
}

func NewService(bookings BookingStore, vehicles VehicleSource, locks Locker, cfg config.SchedulerConfig, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{bookings: bookings, vehicles: vehicles, locks: locks, cfg: cfg, log: log}
}

// RunScheduler drives Tick on a fixed cadence until ctx is cancelled.
func (s *Service) RunScheduler(ctx context.Context) {
	tick := time.Duration(s.cfg.TickSeconds) * time.Second
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx, time.Now())
		}
	}
}

// Tick runs one reconciliation pass over all due bookings, each kind
// independently. Safe to re-run at arbitrary, possibly overlapping,
// intervals: every per-booking update is conditional and idempotent.
// One booking's failure never aborts the pass.
func (s *Service) Tick(ctx context.Context, now time.Time) {
	for _, kind := range booking.Kinds() {
		due, err := s.bookings.ListDue(ctx, kind, now)
		if err != nil {
			s.log.Error("list due bookings",
				zap.String("kind", string(kind)), zap.Error(err))
			continue
		}
		for i := range due {
			if err := s.reconcile(ctx, &due[i], now); err != nil {
				s.log.Error("reconcile booking",
					zap.String("booking_id", string(due[i].ID)), zap.Error(err))
			}
		}
	}
}

func (s *Service) reconcile(ctx context.Context, b *booking.Booking, now time.Time) error {
	// A vehicle assigned by any means on a prior pass: promote.
	// A lost compare-and-set means someone else already moved the
	// booking; the next pass re-reads.
	if b.AssignedVehicleID != nil && !b.AssignedVehicleID.IsZero() {
		_, err := s.bookings.Activate(ctx, b.ID, b.StatusVersion, now)
		return err
	}

	lateness := now.Sub(*b.StartTime)
	if lateness > AutoAssignWindow {
		_, err := s.bookings.FlagManual(ctx, b.ID)
		return err
	}
	return s.autoAssign(ctx, b, now)
}

func (s *Service) autoAssign(ctx context.Context, b *booking.Booking, now time.Time) error {
	vehicleID := b.RequestedVehicleID

	locked, err := s.locks.AcquireVehicleLock(ctx, vehicleID)
	if err != nil {
		return err
	}
	if !locked {
		// Another writer holds the vehicle; the next tick retries.
		s.log.Debug("vehicle lock busy, deferring",
			zap.String("booking_id", string(b.ID)),
			zap.String("vehicle_id", string(vehicleID)))
		return nil
	}
	defer func() {
		if err := s.locks.ReleaseVehicleLock(ctx, vehicleID); err != nil {
			s.log.Error("release vehicle lock",
				zap.String("vehicle_id", string(vehicleID)), zap.Error(err))
		}
	}()

	v, err := s.vehicles.Get(ctx, vehicleID)
	if errors.Is(err, fleet.ErrNotFound) {
		_, ferr := s.bookings.FlagManual(ctx, b.ID)
		return ferr
	}
	if err != nil {
		return err
	}
	if !v.IsActive {
		_, err := s.bookings.FlagManual(ctx, b.ID)
		return err
	}

	free, err := s.isFree(ctx, vehicleID, b)
	if err != nil {
		return err
	}
	if !free {
		_, err := s.bookings.FlagManual(ctx, b.ID)
		return err
	}

	_, err = s.bookings.AssignAndActivate(ctx, b.ID, vehicleID, b.StatusVersion, now)
	return err
}

type AssignCommand struct {
	BookingID types.ID
	VehicleID types.ID
}

// Assign is the operator override: attach a vehicle to an upcoming
// booking outside the automatic window, under the same availability
// checks. Status is untouched; the next tick promotes. Reassignment
// over an existing vehicle is allowed.
func (s *Service) Assign(ctx context.Context, cmd AssignCommand) (*booking.Booking, error) {
	b, err := s.bookings.Get(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != booking.StatusUpcoming {
		return nil, booking.ErrInvalidState
	}

	v, err := s.vehicles.Get(ctx, cmd.VehicleID)
	if err != nil {
		return nil, err
	}
	if !v.IsActive {
		return nil, fleet.ErrVehicleInactive
	}

	locked, err := s.locks.AcquireVehicleLock(ctx, cmd.VehicleID)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, booking.ErrConflict
	}
	defer func() {
		if err := s.locks.ReleaseVehicleLock(ctx, cmd.VehicleID); err != nil {
			s.log.Error("release vehicle lock",
				zap.String("vehicle_id", string(cmd.VehicleID)), zap.Error(err))
		}
	}()

	free, err := s.isFree(ctx, cmd.VehicleID, b)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, booking.ErrVehicleUnavailable
	}

	ok, err := s.bookings.AssignVehicle(ctx, b.ID, cmd.VehicleID, b.StatusVersion, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, booking.ErrConflict
	}
	return s.bookings.Get(ctx, b.ID)
}

// isFree checks the booking's own window against every live booking on
// the target vehicle, excluding the booking itself.
func (s *Service) isFree(ctx context.Context, vehicleID types.ID, b *booking.Booking) (bool, error) {
	start, end, ok := b.Window()
	if !ok {
		return false, booking.ErrBadRequest
	}
	existing, err := s.bookings.ListLiveByVehicle(ctx, vehicleID, b.ID)
	if err != nil {
		return false, err
	}
	return booking.FreeAgainst(start, end, existing), nil
}
