package models

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// LiveStatuses are the booking statuses that occupy a room.
var LiveStatuses = []string{StatusPending, StatusConfirmed}

const (
	RoomAvailable   = "available"
	RoomOccupied    = "occupied"
	RoomMaintenance = "maintenance"
)

const (
	RoleGuest      = "guest"
	RoleHotelAdmin = "hotel_admin"
	RoleSuperAdmin = "super_admin"
)

const (
	// DateLayout is the wire format for check-in/check-out dates.
	DateLayout = "2006-01-02"

	// DefaultLockTTL bounds how long a crashed holder can block a room.
	DefaultLockTTL = 30 * time.Second

	// DefaultBookingCacheTTL is how long a booking snapshot stays cached.
	DefaultBookingCacheTTL = time.Hour

	// DefaultListLimit caps ListBookings when no limit is given.
	DefaultListLimit = 200

	// NoListLimit asks ListBookings for every matching row.
	NoListLimit = -1
)
