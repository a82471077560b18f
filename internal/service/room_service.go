package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hotelbook/internal/domain"
	"hotelbook/internal/models"
)

// RoomService manages the hotel, room and user directory. Deletes consult
// the reservation store so nothing with a live stay ahead is removed.
type RoomService struct {
	dir      domain.RoomDirectory
	bookings domain.ReservationStore
	now      func() time.Time
	logger   *zerolog.Logger
}

var _ domain.RoomService = (*RoomService)(nil)

func NewRoomService(dir domain.RoomDirectory, bookings domain.ReservationStore, logger *zerolog.Logger) *RoomService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &RoomService{dir: dir, bookings: bookings, now: time.Now, logger: logger}
}

func validateHotel(hotel *models.Hotel) error {
	if strings.TrimSpace(hotel.Name) == "" || strings.TrimSpace(hotel.Location) == "" {
		return validationErr("hotel name and location are required")
	}
	if hotel.Rating < 0 || hotel.Rating > 5 {
		return validationErr("hotel rating must be between 0 and 5")
	}
	return nil
}

func (s *RoomService) CreateHotel(ctx context.Context, hotel *models.Hotel) error {
	if err := validateHotel(hotel); err != nil {
		return err
	}
	if hotel.ID == "" {
		hotel.ID = uuid.NewString()
	}
	if err := s.dir.CreateHotel(ctx, hotel); err != nil {
		return err
	}
	s.logger.Info().Str("hotel_id", hotel.ID).Str("name", hotel.Name).Msg("hotel created")
	return nil
}

func (s *RoomService) GetHotel(ctx context.Context, id string) (*models.Hotel, error) {
	return s.dir.GetHotel(ctx, id)
}

func (s *RoomService) ListHotels(ctx context.Context) ([]*models.Hotel, error) {
	return s.dir.ListHotels(ctx)
}

func (s *RoomService) SearchHotels(ctx context.Context, text, location string) ([]*models.Hotel, error) {
	return s.dir.SearchHotels(ctx, strings.TrimSpace(text), strings.TrimSpace(location))
}

func (s *RoomService) UpdateHotel(ctx context.Context, id string, patch models.HotelPatch) (*models.Hotel, error) {
	hotel, err := s.dir.GetHotel(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(hotel)
	if err := validateHotel(hotel); err != nil {
		return nil, err
	}
	if err := s.dir.UpdateHotel(ctx, hotel); err != nil {
		return nil, err
	}
	s.logger.Info().Str("hotel_id", id).Msg("hotel updated")
	return hotel, nil
}

// DeleteHotel refuses while the hotel still lists active rooms.
func (s *RoomService) DeleteHotel(ctx context.Context, id string) error {
	if _, err := s.dir.GetHotel(ctx, id); err != nil {
		return err
	}
	rooms, err := s.dir.ListRooms(ctx, id)
	if err != nil {
		return fmt.Errorf("list rooms of hotel %s: %w", id, err)
	}
	if len(rooms) > 0 {
		return fmt.Errorf("%w: hotel %s has %d active rooms", ErrInUse, id, len(rooms))
	}
	if err := s.dir.DeleteHotel(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("hotel_id", id).Msg("hotel deleted")
	return nil
}

func validateRoom(room *models.Room) error {
	if strings.TrimSpace(room.RoomNumber) == "" {
		return validationErr("room number is required")
	}
	if room.Price <= 0 {
		return validationErr("room price must be positive")
	}
	if room.Capacity < 1 {
		return validationErr("room capacity must be at least 1")
	}
	if !isRoomStatus(room.Status) {
		return validationErr("unknown room status %q", room.Status)
	}
	return nil
}

func isRoomStatus(status string) bool {
	switch status {
	case models.RoomAvailable, models.RoomOccupied, models.RoomMaintenance:
		return true
	}
	return false
}

func (s *RoomService) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.Status == "" {
		room.Status = models.RoomAvailable
	}
	if err := validateRoom(room); err != nil {
		return err
	}

	if _, err := s.dir.GetHotel(ctx, room.HotelID); err != nil {
		return fmt.Errorf("resolve hotel: %w", err)
	}

	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if err := s.dir.CreateRoom(ctx, room); err != nil {
		return err
	}
	s.logger.Info().Str("room_id", room.ID).Str("hotel_id", room.HotelID).Msg("room created")
	return nil
}

func (s *RoomService) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	return s.dir.GetRoom(ctx, id)
}

func (s *RoomService) ListRooms(ctx context.Context, hotelID string) ([]*models.Room, error) {
	return s.dir.ListRooms(ctx, hotelID)
}

func (s *RoomService) UpdateRoom(ctx context.Context, id string, patch models.RoomPatch) (*models.Room, error) {
	room, err := s.dir.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(room)
	if err := validateRoom(room); err != nil {
		return nil, err
	}
	if err := s.dir.UpdateRoom(ctx, room); err != nil {
		return nil, err
	}
	s.logger.Info().Str("room_id", id).Str("status", room.Status).Msg("room updated")
	return room, nil
}

func (s *RoomService) UpdateRoomStatus(ctx context.Context, id, status string) (*models.Room, error) {
	return s.UpdateRoom(ctx, id, models.RoomPatch{Status: &status})
}

// DeleteRoom refuses while a live reservation of the room has not ended.
func (s *RoomService) DeleteRoom(ctx context.Context, id string) error {
	if _, err := s.dir.GetRoom(ctx, id); err != nil {
		return err
	}
	if err := s.checkNoLiveStays(ctx, models.BookingFilter{RoomID: id}, "room", id); err != nil {
		return err
	}
	if err := s.dir.DeleteRoom(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("room_id", id).Msg("room deleted")
	return nil
}

func validateUser(user *models.User) error {
	if user.Email == "" || strings.TrimSpace(user.FirstName) == "" {
		return validationErr("email and first name are required")
	}
	switch user.Role {
	case models.RoleGuest, models.RoleHotelAdmin, models.RoleSuperAdmin:
		return nil
	}
	return validationErr("unknown role %q", user.Role)
}

func (s *RoomService) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Role == "" {
		user.Role = models.RoleGuest
	}
	if err := validateUser(user); err != nil {
		return err
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	return s.dir.CreateUser(ctx, user)
}

func (s *RoomService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.dir.GetUser(ctx, id)
}

func (s *RoomService) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	user, err := s.dir.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(user)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := validateUser(user); err != nil {
		return nil, err
	}
	if err := s.dir.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser refuses while the user holds a live reservation that has not ended.
func (s *RoomService) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.dir.GetUser(ctx, id); err != nil {
		return err
	}
	if err := s.checkNoLiveStays(ctx, models.BookingFilter{UserID: id}, "user", id); err != nil {
		return err
	}
	if err := s.dir.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *RoomService) checkNoLiveStays(ctx context.Context, filter models.BookingFilter, kind, id string) error {
	if s.bookings == nil {
		return nil
	}
	filter.EndsAfter = models.DateOnly(s.now().UTC())
	filter.Limit = models.NoListLimit
	stays, err := s.bookings.ListBookings(ctx, filter)
	if err != nil {
		return fmt.Errorf("list bookings of %s %s: %w", kind, id, err)
	}
	for _, b := range stays {
		if b.IsLive() {
			return fmt.Errorf("%w: %s %s has live booking %s", ErrInUse, kind, id, b.ID)
		}
	}
	return nil
}
