// README: Availability window math: buffered half-open interval conflicts.
package booking

import "time"

const (
	// TurnaroundBuffer pads every existing booking's window on both
	// sides before conflict-testing a candidate, modeling turnaround
	// and travel time between rides.
	TurnaroundBuffer = 120 * time.Minute

	// DefaultDuration applies when a booking carries no duration.
	DefaultDuration = 120 * time.Minute
)

// Window returns the booking's own half-open window [start, start+duration).
// ok is false when the booking has no start time; such bookings cannot
// conflict with anything.
func (b *Booking) Window() (start, end time.Time, ok bool) {
	if b.StartTime == nil || b.StartTime.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	d := time.Duration(b.DurationMinutes) * time.Minute
	if d <= 0 {
		d = DefaultDuration
	}
	return *b.StartTime, b.StartTime.Add(d), true
}

// Conflicts reports whether the candidate window [candStart, candEnd)
// intersects the existing booking's window padded by TurnaroundBuffer.
// The buffer is applied to the existing window, not the candidate.
func Conflicts(candStart, candEnd time.Time, existing *Booking) bool {
	start, end, ok := existing.Window()
	if !ok {
		return false
	}
	bufStart := start.Add(-TurnaroundBuffer)
	bufEnd := end.Add(TurnaroundBuffer)
	return candStart.Before(bufEnd) && bufStart.Before(candEnd)
}

// FreeAgainst reports whether the candidate window is free of conflicts
// with every booking in existing. Pure and safe for concurrent use.
func FreeAgainst(candStart, candEnd time.Time, existing []Booking) bool {
	for i := range existing {
		if Conflicts(candStart, candEnd, &existing[i]) {
			return false
		}
	}
	return true
}
