package models

import (
	"math"
	"time"
)

type Booking struct {
	ID                 string     `json:"id" bson:"_id"`
	HotelID            string     `json:"hotel_id" bson:"hotel_id"`
	RoomID             string     `json:"room_id" bson:"room_id"`
	UserID             string     `json:"user_id" bson:"user_id"`
	GuestName          string     `json:"guest_name" bson:"guest_name"`
	GuestEmail         string     `json:"guest_email" bson:"guest_email"`
	GuestPhone         string     `json:"guest_phone,omitempty" bson:"guest_phone,omitempty"`
	CheckIn            time.Time  `json:"check_in" bson:"check_in"`
	CheckOut           time.Time  `json:"check_out" bson:"check_out"`
	Guests             int        `json:"guests" bson:"guests"`
	TotalAmount        float64    `json:"total_amount" bson:"total_amount"`
	PaidAmount         float64    `json:"paid_amount" bson:"paid_amount"`
	SpecialRequests    string     `json:"special_requests,omitempty" bson:"special_requests,omitempty"`
	Status             string     `json:"status" bson:"status"` // pending, confirmed, cancelled, completed
	CancellationReason string     `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	Version            int64      `json:"version" bson:"version"`
	CreatedAt          time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" bson:"updated_at"`

	// Resolved on detailed reads only.
	Room *Room `json:"room,omitempty" bson:"-"`
	User *User `json:"user,omitempty" bson:"-"`
}

// IsLive reports whether the booking still holds its dates.
func (b *Booking) IsLive() bool {
	return IsLiveStatus(b.Status)
}

// IsTerminal reports whether no further mutation is allowed.
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCancelled || b.Status == StatusCompleted
}

// Nights returns the number of nights between check-in and check-out, rounded up.
func (b *Booking) Nights() int {
	return Nights(b.CheckIn, b.CheckOut)
}

// Overlaps reports whether the half-open stay [CheckIn, CheckOut) intersects [checkIn, checkOut).
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return Overlaps(b.CheckIn, b.CheckOut, checkIn, checkOut)
}

// Overlaps reports whether [aIn, aOut) and [bIn, bOut) intersect.
// Touching intervals (aOut == bIn) do not overlap.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && aOut.After(bIn)
}

// Nights rounds the stay length up to whole days.
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func IsLiveStatus(status string) bool {
	return status == StatusPending || status == StatusConfirmed
}

// BookingFilter narrows ListBookings; empty fields match everything.
type BookingFilter struct {
	UserID  string
	HotelID string
	RoomID  string
	Status  string
	// EndsAfter keeps stays whose check-out is after this date.
	EndsAfter time.Time
	// Limit of 0 means DefaultListLimit; NoListLimit lifts the cap.
	Limit int
}
