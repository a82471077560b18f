package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"hotelbook/internal/models"

	"github.com/go-playground/validator/v10"
)

// errMalformed marks input that could not be decoded at all.
var errMalformed = errors.New("malformed request")

type createBookingRequest struct {
	HotelID         string `json:"hotel_id" validate:"required"`
	RoomID          string `json:"room_id" validate:"required"`
	UserID          string `json:"user_id" validate:"required"`
	GuestName       string `json:"guest_name" validate:"required,max=200"`
	GuestEmail      string `json:"guest_email" validate:"required,email"`
	GuestPhone      string `json:"guest_phone" validate:"omitempty,max=32"`
	CheckIn         string `json:"check_in" validate:"required"`
	CheckOut        string `json:"check_out" validate:"required"`
	Guests          int    `json:"guests" validate:"min=1"`
	SpecialRequests string `json:"special_requests" validate:"max=2000"`
}

func (r createBookingRequest) toModel() (models.CreateBookingRequest, error) {
	checkIn, err := parseDate("check_in", r.CheckIn)
	if err != nil {
		return models.CreateBookingRequest{}, err
	}
	checkOut, err := parseDate("check_out", r.CheckOut)
	if err != nil {
		return models.CreateBookingRequest{}, err
	}
	return models.CreateBookingRequest{
		HotelID:         r.HotelID,
		RoomID:          r.RoomID,
		UserID:          r.UserID,
		GuestName:       strings.TrimSpace(r.GuestName),
		GuestEmail:      strings.TrimSpace(r.GuestEmail),
		GuestPhone:      r.GuestPhone,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          r.Guests,
		SpecialRequests: r.SpecialRequests,
	}, nil
}

type updateBookingRequest struct {
	CheckIn         *string `json:"check_in"`
	CheckOut        *string `json:"check_out"`
	Guests          *int    `json:"guests" validate:"omitempty,min=1"`
	SpecialRequests *string `json:"special_requests" validate:"omitempty,max=2000"`
	Status          *string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
}

func (r updateBookingRequest) toPatch() (models.BookingPatch, error) {
	patch := models.BookingPatch{
		Guests:          r.Guests,
		SpecialRequests: r.SpecialRequests,
		Status:          r.Status,
	}
	if r.CheckIn != nil {
		t, err := parseDate("check_in", *r.CheckIn)
		if err != nil {
			return patch, err
		}
		patch.CheckIn = &t
	}
	if r.CheckOut != nil {
		t, err := parseDate("check_out", *r.CheckOut)
		if err != nil {
			return patch, err
		}
		patch.CheckOut = &t
	}
	return patch, nil
}

type cancelBookingRequest struct {
	CancellationReason string `json:"cancellation_reason" validate:"max=500"`
}

type createHotelRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Location    string   `json:"location" validate:"required,max=200"`
	Description string   `json:"description"`
	Rating      float64  `json:"rating" validate:"gte=0,lte=5"`
	Amenities   []string `json:"amenities" validate:"dive,required"`
}

func (r createHotelRequest) toModel() *models.Hotel {
	return &models.Hotel{
		Name:        r.Name,
		Location:    r.Location,
		Description: r.Description,
		Rating:      r.Rating,
		Amenities:   r.Amenities,
		IsActive:    true,
	}
}

type updateHotelRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=200"`
	Location    *string  `json:"location" validate:"omitempty,max=200"`
	Description *string  `json:"description"`
	Rating      *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Amenities   []string `json:"amenities" validate:"omitempty,dive,required"`
	IsActive    *bool    `json:"is_active"`
}

func (r updateHotelRequest) toPatch() models.HotelPatch {
	return models.HotelPatch{
		Name:        r.Name,
		Location:    r.Location,
		Description: r.Description,
		Rating:      r.Rating,
		Amenities:   r.Amenities,
		IsActive:    r.IsActive,
	}
}

type createRoomRequest struct {
	HotelID     string   `json:"hotel_id" validate:"required"`
	RoomNumber  string   `json:"room_number" validate:"required,max=20"`
	Type        string   `json:"type" validate:"required"`
	Price       float64  `json:"price" validate:"gt=0"`
	Capacity    int      `json:"capacity" validate:"min=1"`
	Amenities   []string `json:"amenities" validate:"dive,required"`
	Status      string   `json:"status" validate:"omitempty,oneof=available occupied maintenance"`
	Description string   `json:"description"`
}

func (r createRoomRequest) toModel() *models.Room {
	return &models.Room{
		HotelID:     r.HotelID,
		RoomNumber:  r.RoomNumber,
		Type:        r.Type,
		Price:       r.Price,
		Capacity:    r.Capacity,
		Amenities:   r.Amenities,
		Status:      r.Status,
		Description: r.Description,
		IsActive:    true,
	}
}

type updateRoomRequest struct {
	Type        *string  `json:"type" validate:"omitempty,min=1"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Capacity    *int     `json:"capacity" validate:"omitempty,min=1"`
	Amenities   []string `json:"amenities" validate:"omitempty,dive,required"`
	Status      *string  `json:"status" validate:"omitempty,oneof=available occupied maintenance"`
	Description *string  `json:"description"`
	IsActive    *bool    `json:"is_active"`
}

func (r updateRoomRequest) toPatch() models.RoomPatch {
	return models.RoomPatch{
		Type:        r.Type,
		Price:       r.Price,
		Capacity:    r.Capacity,
		Amenities:   r.Amenities,
		Status:      r.Status,
		Description: r.Description,
		IsActive:    r.IsActive,
	}
}

type roomStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available occupied maintenance"`
}

type createUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	Role      string `json:"role" validate:"omitempty,oneof=guest hotel_admin super_admin"`
}

func (r createUserRequest) toModel() *models.User {
	return &models.User{
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Role:      r.Role,
	}
}

type updateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
	Role      *string `json:"role" validate:"omitempty,oneof=guest hotel_admin super_admin"`
}

func (r updateUserRequest) toPatch() models.UserPatch {
	return models.UserPatch{
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Role:      r.Role,
	}
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a date in YYYY-MM-DD format", errMalformed, field)
	}
	return t, nil
}

// ValidationError is one field-level complaint.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, e := range v {
		messages = append(messages, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(messages, "; ")
}

// requestValidator wraps validator.Validate so errors come back keyed by JSON field name.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return &requestValidator{validate: v}
}

func (v *requestValidator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return translateValidationErrors(validationErrs)
	}
	return err
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))
	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min", "gte":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max", "lte":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		default:
			message = err.Error()
		}
		out = append(out, ValidationError{Field: err.Field(), Message: message})
	}
	return out
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
