package models

import "time"

type Room struct {
	ID          string    `json:"id" bson:"_id" yaml:"id"`
	HotelID     string    `json:"hotel_id" bson:"hotel_id" yaml:"hotel_id"`
	RoomNumber  string    `json:"room_number" bson:"room_number" yaml:"room_number"`
	Type        string    `json:"type" bson:"type" yaml:"type"`
	Price       float64   `json:"price" bson:"price" yaml:"price"` // per night
	Capacity    int       `json:"capacity" bson:"capacity" yaml:"capacity"`
	Amenities   []string  `json:"amenities" bson:"amenities" yaml:"amenities"`
	Status      string    `json:"status" bson:"status" yaml:"status"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" yaml:"description"`
	IsActive    bool      `json:"is_active" bson:"is_active" yaml:"is_active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at" yaml:"-"`
}

type Hotel struct {
	ID          string    `json:"id" bson:"_id" yaml:"id"`
	Name        string    `json:"name" bson:"name" yaml:"name"`
	Location    string    `json:"location" bson:"location" yaml:"location"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" yaml:"description"`
	Rating      float64   `json:"rating" bson:"rating" yaml:"rating"`
	Amenities   []string  `json:"amenities" bson:"amenities" yaml:"amenities"`
	IsActive    bool      `json:"is_active" bson:"is_active" yaml:"is_active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at" yaml:"-"`
}
