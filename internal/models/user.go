package models

import "time"

type User struct {
	ID        string    `json:"id" bson:"_id" yaml:"id"`
	Email     string    `json:"email" bson:"email" yaml:"email"`
	FirstName string    `json:"first_name" bson:"first_name" yaml:"first_name"`
	LastName  string    `json:"last_name,omitempty" bson:"last_name,omitempty" yaml:"last_name"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty" yaml:"phone"`
	Role      string    `json:"role" bson:"role" yaml:"role"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" yaml:"-"`
}
