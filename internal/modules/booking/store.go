// README: Booking store backed by PostgreSQL; all writes are conditional.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fleet/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const bookingColumns = `
	id, kind, user_id, requested_vehicle_id, assigned_vehicle_id,
	start_time, duration_minutes, status, status_version,
	awaiting_manual_assignment, refund_status,
	activated_at, assigned_at, completed_at, cancelled_at, created_at`

func (s *Store) Create(ctx context.Context, b *Booking) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO bookings (
			id, kind, user_id, requested_vehicle_id, assigned_vehicle_id,
			start_time, duration_minutes, status, status_version,
			awaiting_manual_assignment, refund_status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		string(b.ID),
		string(b.Kind),
		string(b.UserID),
		string(b.RequestedVehicleID),
		toStringPtr(b.AssignedVehicleID),
		b.StartTime,
		b.DurationMinutes,
		string(b.Status),
		b.StatusVersion,
		b.AwaitingManualAssignment,
		string(b.RefundStatus),
		b.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Booking, error) {
	row := s.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, string(id))
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) ListByUser(ctx context.Context, userID types.ID) ([]Booking, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`, string(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (s *Store) ListAwaitingManual(ctx context.Context) ([]Booking, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE status = 'upcoming' AND awaiting_manual_assignment
		ORDER BY start_time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListDue returns upcoming bookings of one kind whose start time has
// arrived. Bookings without a start time are never due.
func (s *Store) ListDue(ctx context.Context, kind Kind, now time.Time) ([]Booking, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE kind = $1 AND status = 'upcoming' AND start_time IS NOT NULL AND start_time <= $2
		ORDER BY start_time ASC`, string(kind), now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListLiveByVehicle returns upcoming/active bookings whose effective
// vehicle is vehicleID, excluding excludeID when non-empty.
func (s *Store) ListLiveByVehicle(ctx context.Context, vehicleID, excludeID types.ID) ([]Booking, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE status IN ('upcoming', 'active')
		  AND COALESCE(assigned_vehicle_id, requested_vehicle_id) = $1
		  AND ($2 = '' OR id <> $2)`,
		string(vehicleID), string(excludeID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (s *Store) ListLive(ctx context.Context) ([]Booking, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE status IN ('upcoming', 'active')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (s *Store) CountLiveByVehicle(ctx context.Context, vehicleID types.ID) (int, error) {
	row := s.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM bookings
		WHERE status IN ('upcoming', 'active')
		  AND COALESCE(assigned_vehicle_id, requested_vehicle_id) = $1`,
		string(vehicleID))
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateStatus performs a compare-and-set status transition. Cancelling
// also opens the refund workflow, unless a provider-initiated refund is
// already underway.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, now time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET status = $1,
		    status_version = status_version + 1,
		    activated_at = CASE WHEN $1 = 'active' THEN $2 ELSE activated_at END,
		    completed_at = CASE WHEN $1 = 'completed' THEN $2 ELSE completed_at END,
		    cancelled_at = CASE WHEN $1 = 'cancelled' THEN $2 ELSE cancelled_at END,
		    refund_status = CASE WHEN $1 = 'cancelled' AND refund_status = 'none'
		                         THEN 'pending_approval' ELSE refund_status END
		WHERE id = $3 AND status = $4 AND status_version = $5`,
		string(to), now, string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Activate promotes an upcoming booking, records the activation time
// and clears the manual-assignment flag.
func (s *Store) Activate(ctx context.Context, id types.ID, version int, now time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET status = 'active',
		    status_version = status_version + 1,
		    activated_at = $1,
		    awaiting_manual_assignment = FALSE
		WHERE id = $2 AND status = 'upcoming' AND status_version = $3`,
		now, string(id), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// AssignAndActivate is the scheduler's auto-assignment write: vehicle,
// assignment time, promotion and activation time in one conditional
// update. The assigned_vehicle_id IS NULL guard loses to any racing
// manual assignment.
func (s *Store) AssignAndActivate(ctx context.Context, id, vehicleID types.ID, version int, now time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET assigned_vehicle_id = $1,
		    assigned_at = $2,
		    status = 'active',
		    status_version = status_version + 1,
		    activated_at = $2,
		    awaiting_manual_assignment = FALSE
		WHERE id = $3 AND status = 'upcoming' AND assigned_vehicle_id IS NULL AND status_version = $4`,
		string(vehicleID), now, string(id), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// AssignVehicle records a manual (re)assignment. Status is untouched;
// promotion happens on the next scheduler pass.
func (s *Store) AssignVehicle(ctx context.Context, id, vehicleID types.ID, version int, now time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET assigned_vehicle_id = $1,
		    assigned_at = $2,
		    status_version = status_version + 1
		WHERE id = $3 AND status = 'upcoming' AND status_version = $4`,
		string(vehicleID), now, string(id), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// FlagManual marks an upcoming booking for operator handling.
// Re-flagging an already flagged booking is a no-op by design of the
// idempotent tick, so no version check is needed.
func (s *Store) FlagManual(ctx context.Context, id types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET awaiting_manual_assignment = TRUE
		WHERE id = $1 AND status = 'upcoming'`,
		string(id),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) GetRefundStatus(ctx context.Context, id types.ID) (RefundStatus, error) {
	row := s.db.QueryRow(ctx, `SELECT refund_status FROM bookings WHERE id = $1`, string(id))
	var st string
	err := row.Scan(&st)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return RefundStatus(st), nil
}

// SwapRefundStatus is a compare-and-set on the refund column only.
func (s *Store) SwapRefundStatus(ctx context.Context, id types.ID, from, to RefundStatus) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET refund_status = $1
		WHERE id = $2 AND refund_status = $3`,
		string(to), string(id), string(from),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SetRefundStatus overwrites the refund status unconditionally; used by
// the idempotent refund-completed notification.
func (s *Store) SetRefundStatus(ctx context.Context, id types.ID, to RefundStatus) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings SET refund_status = $1 WHERE id = $2`,
		string(to), string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*Booking, error) {
	var b Booking
	var assignedVehicleID sql.NullString
	var startTime, activatedAt, assignedAt, completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&b.ID, &b.Kind, &b.UserID, &b.RequestedVehicleID, &assignedVehicleID,
		&startTime, &b.DurationMinutes, &b.Status, &b.StatusVersion,
		&b.AwaitingManualAssignment, &b.RefundStatus,
		&activatedAt, &assignedAt, &completedAt, &cancelledAt, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedVehicleID.Valid {
		v := types.ID(assignedVehicleID.String)
		b.AssignedVehicleID = &v
	}
	b.StartTime = toTimePtr(startTime)
	b.ActivatedAt = toTimePtr(activatedAt)
	b.AssignedAt = toTimePtr(assignedAt)
	b.CompletedAt = toTimePtr(completedAt)
	b.CancelledAt = toTimePtr(cancelledAt)
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]Booking, error) {
	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func toTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
