package mongostore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hotelbook/internal/config"
	"hotelbook/internal/domain"
	"hotelbook/internal/models"
)

func TestOverlapFilter(t *testing.T) {
	in := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	out := time.Date(2030, 5, 4, 0, 0, 0, 0, time.UTC)

	f := overlapFilter("room-1", models.LiveStatuses, in, out)

	assert.Equal(t, "room-1", f["room_id"])
	assert.Equal(t, bson.M{"$in": models.LiveStatuses}, f["status"])
	assert.Equal(t, bson.M{"$lt": out}, f["check_in"])
	assert.Equal(t, bson.M{"$gt": in}, f["check_out"])
}

func TestListFilter(t *testing.T) {
	assert.Empty(t, listFilter(models.BookingFilter{}))

	f := listFilter(models.BookingFilter{UserID: "u", HotelID: "h", RoomID: "r", Status: models.StatusPending})
	assert.Equal(t, bson.M{"user_id": "u", "hotel_id": "h", "room_id": "r", "status": models.StatusPending}, f)
}

func TestListFilterEndsAfter(t *testing.T) {
	after := time.Date(2030, 5, 1, 15, 0, 0, 0, time.UTC)
	f := listFilter(models.BookingFilter{RoomID: "r", EndsAfter: after})
	assert.Equal(t, bson.M{"room_id": "r", "check_out": bson.M{"$gt": models.DateOnly(after)}}, f)
}

func TestSearchFilter(t *testing.T) {
	assert.Equal(t, bson.M{"is_active": true}, searchFilter("", ""))

	f := searchFilter("sea.view", "Porto")
	assert.Equal(t, true, f["is_active"])
	assert.Equal(t, primitive.Regex{Pattern: `Porto`, Options: "i"}, f["location"])
	assert.Equal(t, bson.A{
		bson.M{"name": primitive.Regex{Pattern: `sea\.view`, Options: "i"}},
		bson.M{"description": primitive.Regex{Pattern: `sea\.view`, Options: "i"}},
	}, f["$or"])
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := withTimeout(context.Background(), time.Minute)
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, time.Second)

	short, cancelShort := context.WithTimeout(context.Background(), time.Second)
	defer cancelShort()
	ctx2, cancel2 := withTimeout(short, time.Hour)
	defer cancel2()
	d2, _ := ctx2.Deadline()
	d1, _ := short.Deadline()
	assert.Equal(t, d1, d2)
}

// newTestStore connects to MONGO_URI with a throwaway database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := config.MongoConfig{URI: uri, Database: "hotelbook_test_" + uuid.NewString()[:8]}
	s, err := Connect(ctx, cfg, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.bookings.Database().Drop(context.Background())
		_ = s.Close()
	})
	return s
}

func TestStore_Bookings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateHotel(ctx, &models.Hotel{ID: "h1", Name: "Grand", Location: "Lisbon", IsActive: true}))
	require.NoError(t, s.CreateRoom(ctx, &models.Room{ID: "r1", HotelID: "h1", RoomNumber: "101", Price: 100, Capacity: 2, IsActive: true}))
	require.NoError(t, s.CreateUser(ctx, &models.User{ID: "u1", Email: "a@example.com", FirstName: "Ana", Role: models.RoleGuest}))

	now := time.Now().UTC().Truncate(time.Millisecond)
	b := &models.Booking{
		ID: "b1", HotelID: "h1", RoomID: "r1", UserID: "u1",
		GuestName: "Ana", GuestEmail: "a@example.com",
		CheckIn:  time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2030, 5, 4, 0, 0, 0, 0, time.UTC),
		Guests:   2, TotalAmount: 300, Status: models.StatusPending,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.InsertBooking(ctx, b))
	assert.True(t, errors.Is(s.InsertBooking(ctx, b), domain.ErrAlreadyExists))

	found, err := s.FindOverlapping(ctx, "r1", models.LiveStatuses, b.CheckOut, b.CheckOut.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = s.FindOverlapping(ctx, "r1", models.LiveStatuses, b.CheckIn.AddDate(0, 0, 1), b.CheckOut)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, b.CheckIn, found[0].CheckIn)

	details, err := s.GetBookingDetails(ctx, "b1")
	require.NoError(t, err)
	require.NotNil(t, details.Room)
	require.NotNil(t, details.User)

	b.Status = models.StatusCancelled
	b.Version++
	require.NoError(t, s.UpdateBooking(ctx, b))

	got, err := s.GetBooking(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.Equal(t, int64(1), got.Version)

	list, err := s.ListBookings(ctx, models.BookingFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.GetBooking(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, errors.Is(s.UpdateBooking(ctx, &models.Booking{ID: "missing"}), domain.ErrNotFound))
}

func TestStore_Directory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hotel := &models.Hotel{ID: "h1", Name: "Harbour View", Location: "Porto", Description: "Riverside", IsActive: true}
	require.NoError(t, s.CreateHotel(ctx, hotel))
	require.NoError(t, s.CreateHotel(ctx, &models.Hotel{ID: "h2", Name: "Alpine", Location: "Zermatt", IsActive: true}))
	room := &models.Room{ID: "r1", HotelID: "h1", RoomNumber: "101", Price: 100, Capacity: 2, Status: models.RoomAvailable, IsActive: true}
	require.NoError(t, s.CreateRoom(ctx, room))
	user := &models.User{ID: "u1", Email: "a@example.com", FirstName: "Ana", Role: models.RoleGuest}
	require.NoError(t, s.CreateUser(ctx, user))

	found, err := s.SearchHotels(ctx, "riverSIDE", "")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "h1", found[0].ID)

	found, err = s.SearchHotels(ctx, "", "zerm")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "h2", found[0].ID)

	room.Status = models.RoomMaintenance
	require.NoError(t, s.UpdateRoom(ctx, room))
	gotRoom, err := s.GetRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.RoomMaintenance, gotRoom.Status)

	hotel.Name = "Harbour Palace"
	require.NoError(t, s.UpdateHotel(ctx, hotel))
	user.Phone = "+351"
	require.NoError(t, s.UpdateUser(ctx, user))

	require.NoError(t, s.DeleteRoom(ctx, "r1"))
	require.NoError(t, s.DeleteHotel(ctx, "h1"))
	require.NoError(t, s.DeleteUser(ctx, "u1"))
	assert.True(t, errors.Is(s.DeleteRoom(ctx, "r1"), domain.ErrNotFound))
	assert.True(t, errors.Is(s.UpdateHotel(ctx, hotel), domain.ErrNotFound))
	assert.True(t, errors.Is(s.UpdateUser(ctx, user), domain.ErrNotFound))
}
