package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbook/internal/domain"
	"hotelbook/internal/models"
)

func newBooking(id, roomID, checkIn, checkOut, status string) *models.Booking {
	now := time.Now().UTC()
	return &models.Booking{
		ID:          id,
		HotelID:     "hotel-1",
		RoomID:      roomID,
		UserID:      "user-1",
		GuestName:   "Ana Silva",
		GuestEmail:  "ana@example.com",
		CheckIn:     date(checkIn),
		CheckOut:    date(checkOut),
		Guests:      2,
		TotalAmount: 300,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestBookingCRUD(t *testing.T) {
	db := setupTestDB(t)
	seedRoom(t, db, 100)
	ctx := context.Background()

	b := newBooking("b-1", "room-1", "2030-05-01", "2030-05-04", models.StatusPending)
	b.GuestPhone = "+351000"
	b.SpecialRequests = "late arrival"
	require.NoError(t, db.InsertBooking(ctx, b))

	t.Run("Get", func(t *testing.T) {
		got, err := db.GetBooking(ctx, "b-1")
		require.NoError(t, err)
		assert.Equal(t, b.CheckIn, got.CheckIn)
		assert.Equal(t, b.CheckOut, got.CheckOut)
		assert.Equal(t, "+351000", got.GuestPhone)
		assert.Equal(t, "late arrival", got.SpecialRequests)
		assert.Equal(t, 300.0, got.TotalAmount)
		assert.Nil(t, got.CancelledAt)
		assert.WithinDuration(t, b.CreatedAt, got.CreatedAt, time.Second)
		assert.Nil(t, got.Room)
	})

	t.Run("Details", func(t *testing.T) {
		got, err := db.GetBookingDetails(ctx, "b-1")
		require.NoError(t, err)
		require.NotNil(t, got.Room)
		require.NotNil(t, got.User)
		assert.Equal(t, "101", got.Room.RoomNumber)
		assert.Equal(t, "guest@example.com", got.User.Email)
	})

	t.Run("DuplicateID", func(t *testing.T) {
		err := db.InsertBooking(ctx, newBooking("b-1", "room-1", "2031-01-01", "2031-01-02", models.StatusPending))
		assert.True(t, errors.Is(err, domain.ErrAlreadyExists))
	})

	t.Run("Update", func(t *testing.T) {
		got, err := db.GetBooking(ctx, "b-1")
		require.NoError(t, err)

		cancelledAt := time.Now().UTC()
		got.Status = models.StatusCancelled
		got.CancellationReason = "plans changed"
		got.CancelledAt = &cancelledAt
		got.Version++
		require.NoError(t, db.UpdateBooking(ctx, got))

		again, err := db.GetBooking(ctx, "b-1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, again.Status)
		assert.Equal(t, "plans changed", again.CancellationReason)
		assert.Equal(t, int64(1), again.Version)
		require.NotNil(t, again.CancelledAt)
		assert.WithinDuration(t, cancelledAt, *again.CancelledAt, time.Second)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := db.GetBooking(ctx, "missing")
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		_, err = db.GetBookingDetails(ctx, "missing")
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		err = db.UpdateBooking(ctx, newBooking("missing", "room-1", "2030-01-01", "2030-01-02", models.StatusPending))
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestBookingDetails_DanglingRoom(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.InsertBooking(ctx, newBooking("b-1", "ghost-room", "2030-05-01", "2030-05-02", models.StatusPending)))

	got, err := db.GetBookingDetails(ctx, "b-1")
	require.NoError(t, err)
	assert.Nil(t, got.Room)
	assert.Nil(t, got.User)
}

func TestFindOverlapping(t *testing.T) {
	db := setupTestDB(t)
	seedRoom(t, db, 100)
	ctx := context.Background()

	require.NoError(t, db.InsertBooking(ctx, newBooking("live", "room-1", "2030-06-10", "2030-06-15", models.StatusConfirmed)))
	require.NoError(t, db.InsertBooking(ctx, newBooking("dead", "room-1", "2030-06-20", "2030-06-25", models.StatusCancelled)))
	require.NoError(t, db.InsertBooking(ctx, newBooking("other", "room-2", "2030-06-10", "2030-06-15", models.StatusPending)))

	tests := []struct {
		name     string
		checkIn  string
		checkOut string
		want     []string
	}{
		{name: "inside", checkIn: "2030-06-11", checkOut: "2030-06-12", want: []string{"live"}},
		{name: "covering", checkIn: "2030-06-01", checkOut: "2030-06-30", want: []string{"live"}},
		{name: "overlaps start", checkIn: "2030-06-08", checkOut: "2030-06-11", want: []string{"live"}},
		{name: "ends on check-in", checkIn: "2030-06-05", checkOut: "2030-06-10"},
		{name: "starts on check-out", checkIn: "2030-06-15", checkOut: "2030-06-18"},
		{name: "cancelled ignored", checkIn: "2030-06-21", checkOut: "2030-06-22"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := db.FindOverlapping(ctx, "room-1", models.LiveStatuses, date(tt.checkIn), date(tt.checkOut))
			require.NoError(t, err)

			var ids []string
			for _, b := range found {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	t.Run("no statuses", func(t *testing.T) {
		found, err := db.FindOverlapping(ctx, "room-1", nil, date("2030-06-01"), date("2030-06-30"))
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestListBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, tc := range []struct {
		id, room, user, status string
	}{
		{"b-1", "room-1", "user-1", models.StatusPending},
		{"b-2", "room-1", "user-2", models.StatusConfirmed},
		{"b-3", "room-2", "user-1", models.StatusCancelled},
	} {
		b := newBooking(tc.id, tc.room, "2030-02-01", "2030-02-02", tc.status)
		b.UserID = tc.user
		b.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		b.UpdatedAt = b.CreatedAt
		require.NoError(t, db.InsertBooking(ctx, b))
	}

	ids := func(bookings []*models.Booking) []string {
		out := make([]string, 0, len(bookings))
		for _, b := range bookings {
			out = append(out, b.ID)
		}
		return out
	}

	all, err := db.ListBookings(ctx, models.BookingFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b-3", "b-2", "b-1"}, ids(all))

	byUser, err := db.ListBookings(ctx, models.BookingFilter{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b-3", "b-1"}, ids(byUser))

	byRoomStatus, err := db.ListBookings(ctx, models.BookingFilter{RoomID: "room-1", Status: models.StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, []string{"b-2"}, ids(byRoomStatus))

	limited, err := db.ListBookings(ctx, models.BookingFilter{HotelID: "hotel-1", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"b-3"}, ids(limited))
}

func TestListBookingsEndsAfter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.InsertBooking(ctx, newBooking("past", "room-1", "2030-02-01", "2030-02-03", models.StatusConfirmed)))
	require.NoError(t, db.InsertBooking(ctx, newBooking("edge", "room-1", "2030-02-03", "2030-02-05", models.StatusPending)))
	require.NoError(t, db.InsertBooking(ctx, newBooking("future", "room-1", "2030-02-10", "2030-02-12", models.StatusPending)))

	got, err := db.ListBookings(ctx, models.BookingFilter{RoomID: "room-1", EndsAfter: date("2030-02-05")})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "future", got[0].ID)

	got, err = db.ListBookings(ctx, models.BookingFilter{RoomID: "room-1", EndsAfter: date("2030-02-04")})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListBookingsNoLimit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	total := models.DefaultListLimit + 5
	for i := 0; i < total; i++ {
		b := newBooking(fmt.Sprintf("b-%03d", i), "room-1", "2030-02-01", "2030-02-02", models.StatusCancelled)
		require.NoError(t, db.InsertBooking(ctx, b))
	}

	capped, err := db.ListBookings(ctx, models.BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, capped, models.DefaultListLimit)

	all, err := db.ListBookings(ctx, models.BookingFilter{Limit: models.NoListLimit})
	require.NoError(t, err)
	assert.Len(t, all, total)
}
