package domain

import (
	"context"
	"time"

	"hotelbook/internal/models"
)

// ReservationStore is the authoritative booking storage.
type ReservationStore interface {
	FindOverlapping(ctx context.Context, roomID string, statuses []string, checkIn, checkOut time.Time) ([]*models.Booking, error)
	InsertBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetBookingDetails(ctx context.Context, id string) (*models.Booking, error)
	UpdateBooking(ctx context.Context, booking *models.Booking) error
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)
}

// RoomDirectory resolves rooms, hotels and users. Update and Delete return
// ErrNotFound when the record does not exist.
type RoomDirectory interface {
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	CreateRoom(ctx context.Context, room *models.Room) error
	ListRooms(ctx context.Context, hotelID string) ([]*models.Room, error)
	UpdateRoom(ctx context.Context, room *models.Room) error
	DeleteRoom(ctx context.Context, id string) error
	GetHotel(ctx context.Context, id string) (*models.Hotel, error)
	CreateHotel(ctx context.Context, hotel *models.Hotel) error
	ListHotels(ctx context.Context) ([]*models.Hotel, error)
	SearchHotels(ctx context.Context, text, location string) ([]*models.Hotel, error)
	UpdateHotel(ctx context.Context, hotel *models.Hotel) error
	DeleteHotel(ctx context.Context, id string) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

// Store is a backend implementing both the reservation store and the room directory.
type Store interface {
	ReservationStore
	RoomDirectory
	Ping(ctx context.Context) error
	Close() error
}

// KVStore is the shared key-value store behind leases and the booking cache.
// Get returns ok=false for a missing key.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	CompareAndDelete(ctx context.Context, key, value string) (bool, error)
	Ping(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type BookingService interface {
	CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)
	UpdateBooking(ctx context.Context, id string, patch models.BookingPatch) (*models.Booking, error)
	ConfirmBooking(ctx context.Context, id string) (*models.Booking, error)
	CancelBooking(ctx context.Context, id string, reason string) (*models.Booking, error)
	CompleteBooking(ctx context.Context, id string) (*models.Booking, error)
	CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error)
	FindAvailableRooms(ctx context.Context, hotelID string, checkIn, checkOut time.Time) ([]*models.Room, error)
}

type RoomService interface {
	CreateHotel(ctx context.Context, hotel *models.Hotel) error
	GetHotel(ctx context.Context, id string) (*models.Hotel, error)
	ListHotels(ctx context.Context) ([]*models.Hotel, error)
	SearchHotels(ctx context.Context, text, location string) ([]*models.Hotel, error)
	UpdateHotel(ctx context.Context, id string, patch models.HotelPatch) (*models.Hotel, error)
	DeleteHotel(ctx context.Context, id string) error
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListRooms(ctx context.Context, hotelID string) ([]*models.Room, error)
	UpdateRoom(ctx context.Context, id string, patch models.RoomPatch) (*models.Room, error)
	UpdateRoomStatus(ctx context.Context, id, status string) (*models.Room, error)
	DeleteRoom(ctx context.Context, id string) error
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}
