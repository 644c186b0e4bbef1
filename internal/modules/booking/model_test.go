// README: State machine tables and derived accessors.
package booking

import (
	"testing"

	"fleet/internal/types"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// forward transitions
		{StatusUpcoming, StatusActive, true},
		{StatusActive, StatusCompleted, true},
		// early completion reported before the scheduler promotes
		{StatusUpcoming, StatusCompleted, true},
		// cancels from every live state
		{StatusUpcoming, StatusCancelled, true},
		{StatusActive, StatusCancelled, true},
		// never backward
		{StatusActive, StatusUpcoming, false},
		{StatusCompleted, StatusActive, false},
		{StatusCompleted, StatusUpcoming, false},
		// terminal states have no outgoing transitions
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusCancelled, StatusActive, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCanRefundTransition(t *testing.T) {
	cases := []struct {
		from, to RefundStatus
		want     bool
	}{
		{RefundNone, RefundPendingApproval, true},
		{RefundPendingApproval, RefundPending, true},
		{RefundPendingApproval, RefundRejected, true},
		{RefundPending, RefundProcessed, true},
		// provider-initiated bypass
		{RefundNone, RefundPending, true},
		// guards
		{RefundNone, RefundRejected, false},
		{RefundPending, RefundRejected, false},
		{RefundProcessed, RefundPending, false},
		{RefundRejected, RefundPendingApproval, false},
	}
	for _, tc := range cases {
		if got := CanRefundTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanRefundTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestEffectiveVehicle(t *testing.T) {
	b := Booking{RequestedVehicleID: "v_req"}
	if got := b.EffectiveVehicle(); got != "v_req" {
		t.Errorf("unassigned: effective vehicle = %s, want v_req", got)
	}

	av := types.ID("v_assigned")
	b.AssignedVehicleID = &av
	if got := b.EffectiveVehicle(); got != av {
		t.Errorf("assigned: effective vehicle = %s, want %s", got, av)
	}

	// An empty assigned id must not shadow the requested vehicle.
	empty := types.ID("")
	b.AssignedVehicleID = &empty
	if got := b.EffectiveVehicle(); got != "v_req" {
		t.Errorf("empty assigned: effective vehicle = %s, want v_req", got)
	}
}

func TestLive(t *testing.T) {
	for st, want := range map[Status]bool{
		StatusUpcoming:  true,
		StatusActive:    true,
		StatusCompleted: false,
		StatusCancelled: false,
	} {
		b := Booking{Status: st}
		if got := b.Live(); got != want {
			t.Errorf("Live(%s) = %v, want %v", st, got, want)
		}
	}
}
