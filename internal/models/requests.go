package models

import "time"

// CreateBookingRequest carries everything the admission engine needs to admit a stay.
type CreateBookingRequest struct {
	HotelID         string
	RoomID          string
	UserID          string
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	SpecialRequests string
}

// BookingPatch is a partial update; nil fields are left untouched.
type BookingPatch struct {
	CheckIn         *time.Time
	CheckOut        *time.Time
	Guests          *int
	SpecialRequests *string
	Status          *string
}

// Apply copies the set fields onto b.
func (p BookingPatch) Apply(b *Booking) {
	if p.CheckIn != nil {
		b.CheckIn = DateOnly(*p.CheckIn)
	}
	if p.CheckOut != nil {
		b.CheckOut = DateOnly(*p.CheckOut)
	}
	if p.Guests != nil {
		b.Guests = *p.Guests
	}
	if p.SpecialRequests != nil {
		b.SpecialRequests = *p.SpecialRequests
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
}

// HotelPatch is a partial hotel update.
type HotelPatch struct {
	Name        *string
	Location    *string
	Description *string
	Rating      *float64
	Amenities   []string
	IsActive    *bool
}

func (p HotelPatch) Apply(h *Hotel) {
	if p.Name != nil {
		h.Name = *p.Name
	}
	if p.Location != nil {
		h.Location = *p.Location
	}
	if p.Description != nil {
		h.Description = *p.Description
	}
	if p.Rating != nil {
		h.Rating = *p.Rating
	}
	if p.Amenities != nil {
		h.Amenities = p.Amenities
	}
	if p.IsActive != nil {
		h.IsActive = *p.IsActive
	}
}

// RoomPatch is a partial room update. HotelID and RoomNumber are fixed once created.
type RoomPatch struct {
	Type        *string
	Price       *float64
	Capacity    *int
	Amenities   []string
	Status      *string
	Description *string
	IsActive    *bool
}

func (p RoomPatch) Apply(r *Room) {
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.Price != nil {
		r.Price = *p.Price
	}
	if p.Capacity != nil {
		r.Capacity = *p.Capacity
	}
	if p.Amenities != nil {
		r.Amenities = p.Amenities
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.IsActive != nil {
		r.IsActive = *p.IsActive
	}
}

// UserPatch is a partial user update.
type UserPatch struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
	Role      *string
}

func (p UserPatch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}
