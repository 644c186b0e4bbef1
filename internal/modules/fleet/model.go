// README: Vehicle model and availability view states.
package fleet

import (
	"time"

	"fleet/internal/modules/booking"
	"fleet/internal/types"
)

type Vehicle struct {
	ID        types.ID
	Label     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type AvailabilityState string

const (
	StateOnRide       AvailabilityState = "on_ride"
	StateBookedFuture AvailabilityState = "booked_future"
	StateAvailable    AvailabilityState = "available"
)

type VehicleAvailability struct {
	Vehicle Vehicle
	State   AvailabilityState
}

// DeriveState classifies a vehicle from its live bookings: on a ride
// when one is active and covers now, booked for later when any other
// live booking exists, available otherwise.
func DeriveState(live []booking.Booking, now time.Time) AvailabilityState {
	for i := range live {
		b := &live[i]
		if b.Status != booking.StatusActive {
			continue
		}
		start, end, ok := b.Window()
		if !ok {
			// An active booking without a window still occupies the vehicle.
			return StateOnRide
		}
		if !now.Before(start) && now.Before(end) {
			return StateOnRide
		}
	}
	if len(live) > 0 {
		return StateBookedFuture
	}
	return StateAvailable
}
