// README: Window math tests: buffer symmetry and half-open interval edges.
package booking

import (
	"testing"
	"time"
)

func mkBooking(start time.Time, durationMinutes int, status Status) Booking {
	s := start
	return Booking{
		ID:                 "bx",
		Kind:               KindNormal,
		RequestedVehicleID: "v1",
		StartTime:          &s,
		DurationMinutes:    durationMinutes,
		Status:             status,
	}
}

func TestWindowDefaultsDuration(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	b := mkBooking(start, 0, StatusUpcoming)
	_, end, ok := b.Window()
	if !ok {
		t.Fatal("expected a window")
	}
	if want := start.Add(DefaultDuration); !end.Equal(want) {
		t.Errorf("zero duration: end = %v, want %v", end, want)
	}

	b = mkBooking(start, 60, StatusUpcoming)
	_, end, _ = b.Window()
	if want := start.Add(60 * time.Minute); !end.Equal(want) {
		t.Errorf("60m duration: end = %v, want %v", end, want)
	}
}

func TestWindowMissingStartTime(t *testing.T) {
	b := Booking{ID: "bx", Status: StatusUpcoming}
	if _, _, ok := b.Window(); ok {
		t.Fatal("booking without start time must have no window")
	}
	cand := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	if Conflicts(cand, cand.Add(time.Hour), &b) {
		t.Fatal("booking without start time cannot conflict")
	}
}

func TestFreeAgainst_NoBookings(t *testing.T) {
	// Scenario: vehicle with no bookings is free for any window.
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	if !FreeAgainst(start, start.Add(time.Hour), nil) {
		t.Fatal("expected free with no existing bookings")
	}
}

func TestConflicts_BufferAppliedToExisting(t *testing.T) {
	// Existing booking on [10:00, 11:00); buffered to [08:00, 13:00).
	existingStart := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	existing := mkBooking(existingStart, 60, StatusUpcoming)
	existingEnd := existingStart.Add(60 * time.Minute)

	cases := []struct {
		name       string
		candStart  time.Time
		candEnd    time.Time
		want bool
	}{
		{
			// 90 minutes after the existing end, inside the 120-minute buffer.
			name:       "inside trailing buffer",
			candStart:  existingEnd.Add(90 * time.Minute),
			candEnd:    existingEnd.Add(90 * time.Minute).Add(time.Hour),
			want: true,
		},
		{
			// 121 minutes after the existing end, clear of the buffer.
			name:       "past trailing buffer",
			candStart:  existingEnd.Add(121 * time.Minute),
			candEnd:    existingEnd.Add(121 * time.Minute).Add(59 * time.Minute),
			want: false,
		},
		{
			// Exactly at buffered end: half-open, so free.
			name:       "exactly at buffered end",
			candStart:  existingEnd.Add(TurnaroundBuffer),
			candEnd:    existingEnd.Add(TurnaroundBuffer).Add(time.Hour),
			want: false,
		},
		{
			name:       "one millisecond inside buffered end",
			candStart:  existingEnd.Add(TurnaroundBuffer).Add(-time.Millisecond),
			candEnd:    existingEnd.Add(TurnaroundBuffer).Add(59 * time.Minute),
			want: true,
		},
		{
			// Candidate ending exactly at buffered start: half-open, free.
			name:       "ends exactly at buffered start",
			candStart:  existingStart.Add(-TurnaroundBuffer).Add(-time.Hour),
			candEnd:    existingStart.Add(-TurnaroundBuffer),
			want: false,
		},
		{
			name:       "overlaps leading buffer",
			candStart:  existingStart.Add(-TurnaroundBuffer).Add(-30 * time.Minute),
			candEnd:    existingStart.Add(-TurnaroundBuffer).Add(time.Minute),
			want: true,
		},
		{
			name:       "identical window",
			candStart:  existingStart,
			candEnd:    existingEnd,
			want: true,
		},
	}
	for _, tc := range cases {
		got := Conflicts(tc.candStart, tc.candEnd, &existing)
		if got != tc.want {
			t.Errorf("%s: Conflicts = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFreeAgainst_FirstConflictWins(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	existing := []Booking{
		mkBooking(start.Add(24*time.Hour), 60, StatusUpcoming), // far away
		mkBooking(start, 60, StatusActive),                     // conflicting
	}
	if FreeAgainst(start, start.Add(time.Hour), existing) {
		t.Fatal("expected conflict with overlapping active booking")
	}
}
