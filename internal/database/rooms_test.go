package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbook/internal/domain"
	"hotelbook/internal/models"
)

func TestHotelAndRoomCRUD(t *testing.T) {
	db := setupTestDB(t)
	hotel, room, _ := seedRoom(t, db, 120)
	ctx := context.Background()

	t.Run("GetHotel", func(t *testing.T) {
		got, err := db.GetHotel(ctx, hotel.ID)
		require.NoError(t, err)
		assert.Equal(t, "Grand", got.Name)
		assert.Equal(t, 4.5, got.Rating)
		assert.Empty(t, got.Amenities)
	})

	t.Run("GetRoom", func(t *testing.T) {
		got, err := db.GetRoom(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, 120.0, got.Price)
		assert.Equal(t, []string{"wifi"}, got.Amenities)
		assert.True(t, got.IsActive)
	})

	t.Run("DuplicateRoomNumber", func(t *testing.T) {
		err := db.CreateRoom(ctx, &models.Room{
			ID: "room-dup", HotelID: hotel.ID, RoomNumber: "101", Type: "single",
			Price: 50, Capacity: 1, Status: models.RoomAvailable, IsActive: true,
		})
		assert.True(t, errors.Is(err, domain.ErrAlreadyExists))
	})

	t.Run("ListRooms", func(t *testing.T) {
		require.NoError(t, db.CreateRoom(ctx, &models.Room{
			ID: "room-2", HotelID: hotel.ID, RoomNumber: "102", Type: "single",
			Price: 80, Capacity: 1, Status: models.RoomAvailable, IsActive: true,
		}))
		require.NoError(t, db.CreateRoom(ctx, &models.Room{
			ID: "room-3", HotelID: hotel.ID, RoomNumber: "103", Type: "single",
			Price: 80, Capacity: 1, Status: models.RoomMaintenance, IsActive: false,
		}))

		rooms, err := db.ListRooms(ctx, hotel.ID)
		require.NoError(t, err)
		require.Len(t, rooms, 2)
		assert.Equal(t, "101", rooms[0].RoomNumber)
		assert.Equal(t, "102", rooms[1].RoomNumber)

		none, err := db.ListRooms(ctx, "no-such-hotel")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("ListHotels", func(t *testing.T) {
		require.NoError(t, db.CreateHotel(ctx, &models.Hotel{ID: "hotel-0", Name: "Alpine", Location: "Zermatt", IsActive: true}))
		require.NoError(t, db.CreateHotel(ctx, &models.Hotel{ID: "hotel-x", Name: "Closed", Location: "Nowhere"}))

		hotels, err := db.ListHotels(ctx)
		require.NoError(t, err)
		require.Len(t, hotels, 2)
		assert.Equal(t, "Alpine", hotels[0].Name)
		assert.Equal(t, "Grand", hotels[1].Name)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := db.GetRoom(ctx, "missing")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		_, err = db.GetHotel(ctx, "missing")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestSearchHotels(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, h := range []*models.Hotel{
		{ID: "h-1", Name: "Harbour View", Location: "Porto", Description: "Riverside rooms", IsActive: true},
		{ID: "h-2", Name: "Alpine Lodge", Location: "Zermatt", Description: "Ski-in harbour of calm", IsActive: true},
		{ID: "h-3", Name: "City 100%", Location: "Lisbon", IsActive: true},
		{ID: "h-4", Name: "Harbour Closed", Location: "Porto", IsActive: false},
	} {
		require.NoError(t, db.CreateHotel(ctx, h))
	}

	names := func(hotels []*models.Hotel) []string {
		out := make([]string, 0, len(hotels))
		for _, h := range hotels {
			out = append(out, h.Name)
		}
		return out
	}

	tests := []struct {
		name     string
		text     string
		location string
		want     []string
	}{
		{"NameOrDescription", "HARBOUR", "", []string{"Alpine Lodge", "Harbour View"}},
		{"Location", "", "porto", []string{"Harbour View"}},
		{"Both", "harbour", "zermatt", []string{"Alpine Lodge"}},
		{"WildcardIsLiteral", "%", "", []string{"City 100%"}},
		{"Empty", "", "", []string{"Alpine Lodge", "City 100%", "Harbour View"}},
		{"NoMatch", "castle", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.SearchHotels(ctx, tt.text, tt.location)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestDirectoryUpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	hotel, room, user := seedRoom(t, db, 100)
	ctx := context.Background()

	t.Run("UpdateHotel", func(t *testing.T) {
		hotel.Name = "Grand Palace"
		hotel.Amenities = []string{"spa"}
		require.NoError(t, db.UpdateHotel(ctx, hotel))

		got, err := db.GetHotel(ctx, hotel.ID)
		require.NoError(t, err)
		assert.Equal(t, "Grand Palace", got.Name)
		assert.Equal(t, []string{"spa"}, got.Amenities)
	})

	t.Run("UpdateRoom", func(t *testing.T) {
		room.Price = 150
		room.Status = models.RoomMaintenance
		require.NoError(t, db.UpdateRoom(ctx, room))

		got, err := db.GetRoom(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, 150.0, got.Price)
		assert.Equal(t, models.RoomMaintenance, got.Status)
	})

	t.Run("UpdateUser", func(t *testing.T) {
		user.Phone = "+351111"
		require.NoError(t, db.UpdateUser(ctx, user))

		got, err := db.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "+351111", got.Phone)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, db.DeleteRoom(ctx, room.ID))
		require.NoError(t, db.DeleteHotel(ctx, hotel.ID))
		require.NoError(t, db.DeleteUser(ctx, user.ID))

		_, err := db.GetRoom(ctx, room.ID)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		_, err = db.GetHotel(ctx, hotel.ID)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		_, err = db.GetUser(ctx, user.ID)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("Missing", func(t *testing.T) {
		assert.True(t, errors.Is(db.UpdateHotel(ctx, &models.Hotel{ID: "missing"}), domain.ErrNotFound))
		assert.True(t, errors.Is(db.UpdateRoom(ctx, &models.Room{ID: "missing"}), domain.ErrNotFound))
		assert.True(t, errors.Is(db.UpdateUser(ctx, &models.User{ID: "missing"}), domain.ErrNotFound))
		assert.True(t, errors.Is(db.DeleteHotel(ctx, "missing"), domain.ErrNotFound))
		assert.True(t, errors.Is(db.DeleteRoom(ctx, "missing"), domain.ErrNotFound))
		assert.True(t, errors.Is(db.DeleteUser(ctx, "missing"), domain.ErrNotFound))
	})
}
