package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotelbook/internal/domain"
	"hotelbook/internal/models"
)

const bookingColumns = `id, hotel_id, room_id, user_id, guest_name, guest_email, guest_phone,
	check_in, check_out, guests, total_amount, paid_amount, special_requests, status,
	cancellation_reason, cancelled_at, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		b                                 models.Booking
		checkIn, checkOut                 string
		guestPhone, special, cancelReason sql.NullString
		cancelledAt                       sql.NullTime
	)
	err := row.Scan(
		&b.ID, &b.HotelID, &b.RoomID, &b.UserID, &b.GuestName, &b.GuestEmail, &guestPhone,
		&checkIn, &checkOut, &b.Guests, &b.TotalAmount, &b.PaidAmount, &special, &b.Status,
		&cancelReason, &cancelledAt, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if b.CheckIn, err = time.Parse(models.DateLayout, checkIn); err != nil {
		return nil, fmt.Errorf("failed to parse check_in %s: %w", checkIn, err)
	}
	if b.CheckOut, err = time.Parse(models.DateLayout, checkOut); err != nil {
		return nil, fmt.Errorf("failed to parse check_out %s: %w", checkOut, err)
	}
	b.GuestPhone = guestPhone.String
	b.SpecialRequests = special.String
	b.CancellationReason = cancelReason.String
	if cancelledAt.Valid {
		t := cancelledAt.Time.UTC()
		b.CancelledAt = &t
	}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return &b, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// FindOverlapping returns bookings of roomID in one of statuses whose stay
// intersects [checkIn, checkOut). Dates are stored as YYYY-MM-DD so string
// comparison orders them.
func (db *DB) FindOverlapping(ctx context.Context, roomID string, statuses []string, checkIn, checkOut time.Time) ([]*models.Booking, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE room_id = ? AND status IN (` + placeholders + `)
              AND check_in < ? AND check_out > ?`

	args := make([]interface{}, 0, len(statuses)+3)
	args = append(args, roomID)
	for _, s := range statuses {
		args = append(args, s)
	}
	args = append(args, checkOut.Format(models.DateLayout), checkIn.Format(models.DateLayout))

	return db.queryBookings(ctx, query, args...)
}

func (db *DB) InsertBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (` + bookingColumns + `)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		booking.ID,
		booking.HotelID,
		booking.RoomID,
		booking.UserID,
		booking.GuestName,
		booking.GuestEmail,
		booking.GuestPhone,
		booking.CheckIn.Format(models.DateLayout),
		booking.CheckOut.Format(models.DateLayout),
		booking.Guests,
		booking.TotalAmount,
		booking.PaidAmount,
		booking.SpecialRequests,
		booking.Status,
		booking.CancellationReason,
		nullTime(booking.CancelledAt),
		booking.Version,
		booking.CreatedAt.UTC(),
		booking.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", translateErr(err))
	}
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get booking %s: %w", id, translateErr(err))
	}
	return booking, nil
}

// GetBookingDetails is GetBooking with the room and requester attached.
// A dangling reference leaves the detail nil.
func (db *DB) GetBookingDetails(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := db.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	room, err := db.GetRoom(ctx, booking.RoomID)
	switch {
	case err == nil:
		booking.Room = room
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	user, err := db.GetUser(ctx, booking.UserID)
	switch {
	case err == nil:
		booking.User = user
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	return booking, nil
}

func (db *DB) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	query := `UPDATE bookings SET
                check_in = ?, check_out = ?, guests = ?, total_amount = ?, paid_amount = ?,
                special_requests = ?, status = ?, cancellation_reason = ?, cancelled_at = ?,
                version = ?, updated_at = ?
              WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		booking.CheckIn.Format(models.DateLayout),
		booking.CheckOut.Format(models.DateLayout),
		booking.Guests,
		booking.TotalAmount,
		booking.PaidAmount,
		booking.SpecialRequests,
		booking.Status,
		booking.CancellationReason,
		nullTime(booking.CancelledAt),
		booking.Version,
		booking.UpdatedAt.UTC(),
		booking.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", booking.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", booking.ID, err)
	}
	if rows == 0 {
		return fmt.Errorf("failed to update booking %s: %w", booking.ID, domain.ErrNotFound)
	}
	return nil
}

// ListBookings returns matching bookings, newest first.
func (db *DB) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.HotelID != "" {
		conds = append(conds, "hotel_id = ?")
		args = append(args, filter.HotelID)
	}
	if filter.RoomID != "" {
		conds = append(conds, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if !filter.EndsAfter.IsZero() {
		conds = append(conds, "check_out > ?")
		args = append(args, models.DateOnly(filter.EndsAfter).Format(models.DateLayout))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`

	switch {
	case filter.Limit == models.NoListLimit:
	case filter.Limit <= 0:
		query += ` LIMIT ?`
		args = append(args, models.DefaultListLimit)
	default:
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	return db.queryBookings(ctx, query, args...)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}
