// README: Booking aggregate, status and refund-status definitions.
package booking

import (
	"time"

	"fleet/internal/types"
)

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Kind string

const (
	KindNormal    Kind = "normal"
	KindCorporate Kind = "corporate"
)

// Kinds lists every booking kind; the scheduler reconciles each independently.
func Kinds() []Kind {
	return []Kind{KindNormal, KindCorporate}
}

func ValidKind(k Kind) bool {
	return k == KindNormal || k == KindCorporate
}

type RefundStatus string

const (
	RefundNone            RefundStatus = "none"
	RefundPendingApproval RefundStatus = "pending_approval"
	RefundPending         RefundStatus = "pending"
	RefundProcessed       RefundStatus = "processed"
	RefundRejected        RefundStatus = "rejected"
)

type Booking struct {
	ID                       types.ID
	Kind                     Kind
	UserID                   types.ID
	RequestedVehicleID       types.ID
	AssignedVehicleID        *types.ID
	StartTime                *time.Time
	DurationMinutes          int
	Status                   Status
	StatusVersion            int
	AwaitingManualAssignment bool
	RefundStatus             RefundStatus
	ActivatedAt              *time.Time
	AssignedAt               *time.Time
	CompletedAt              *time.Time
	CancelledAt              *time.Time
	CreatedAt                time.Time
}

// EffectiveVehicle is the vehicle responsible for this booking: the
// assigned one when present, otherwise the customer's requested one.
// Derived on every read so the two fields can never diverge.
func (b *Booking) EffectiveVehicle() types.ID {
	if b.AssignedVehicleID != nil && !b.AssignedVehicleID.IsZero() {
		return *b.AssignedVehicleID
	}
	return b.RequestedVehicleID
}

// Live reports whether the booking still holds its vehicle.
func (b *Booking) Live() bool {
	return b.Status == StatusUpcoming || b.Status == StatusActive
}

// AllowedTransitions represents the booking status flow as code.
// A completion from upcoming is deliberate: dispatch may report a ride
// finished before the scheduler ever promotes it to active.
var AllowedTransitions = map[Status][]Status{
	StatusUpcoming:  {StatusActive, StatusCompleted, StatusCancelled},
	StatusActive:    {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedRefundTransitions represents the refund workflow. The direct
// none -> pending edge is the provider-initiated bypass: a payment
// provider may start a refund before an operator ever approves one.
var AllowedRefundTransitions = map[RefundStatus][]RefundStatus{
	RefundNone:            {RefundPendingApproval, RefundPending, RefundProcessed},
	RefundPendingApproval: {RefundPending, RefundRejected, RefundProcessed},
	RefundPending:         {RefundProcessed},
	RefundProcessed:       {},
	RefundRejected:        {RefundProcessed},
}

func CanRefundTransition(from, to RefundStatus) bool {
	next, ok := AllowedRefundTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
