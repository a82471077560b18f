package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hotelbook/internal/cache"
	"hotelbook/internal/domain"
	"hotelbook/internal/events"
	"hotelbook/internal/lock"
	"hotelbook/internal/metrics"
	"hotelbook/internal/models"
)

type BookingOptions struct {
	// LockTTL bounds how long an admission may hold a room lease.
	LockTTL time.Duration
	// MaxAdvanceDays rejects check-ins further out than this; 0 disables the check.
	MaxAdvanceDays int
	// Now is the engine clock; defaults to time.Now.
	Now func() time.Time
}

// BookingService admits reservations and drives their lifecycle.
type BookingService struct {
	store          domain.ReservationStore
	rooms          domain.RoomDirectory
	locks          *lock.Manager
	cache          *cache.BookingCache
	events         domain.EventPublisher
	lockTTL        time.Duration
	maxAdvanceDays int
	now            func() time.Time
	logger         *zerolog.Logger
}

var _ domain.BookingService = (*BookingService)(nil)

func NewBookingService(
	store domain.ReservationStore,
	rooms domain.RoomDirectory,
	locks *lock.Manager,
	bookingCache *cache.BookingCache,
	publisher domain.EventPublisher,
	opts BookingOptions,
	logger *zerolog.Logger,
) *BookingService {
	if opts.LockTTL <= 0 {
		opts.LockTTL = models.DefaultLockTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if locks == nil {
		locks = lock.NewManager(nil, opts.LockTTL, logger)
	}
	return &BookingService{
		store:          store,
		rooms:          rooms,
		locks:          locks,
		cache:          bookingCache,
		events:         publisher,
		lockTTL:        opts.LockTTL,
		maxAdvanceDays: opts.MaxAdvanceDays,
		now:            opts.Now,
		logger:         logger,
	}
}

// CreateBooking admits a new reservation. The room lease is held from the
// first check until the write completes and is released on every path.
func (s *BookingService) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error) {
	lease, ok := s.locks.TryLock(ctx, lock.RoomKey(req.RoomID), s.lockTTL)
	if !ok {
		metrics.IncBooking("busy")
		return nil, ErrRoomBusy
	}
	defer lease.Release(context.WithoutCancel(ctx))

	booking, room, err := s.admit(ctx, req)
	if err != nil {
		metrics.IncBooking(resultLabel(err))
		return nil, err
	}

	metrics.IncBooking("created")
	s.publish(events.EventBookingCreated, booking)
	if s.attachDetails(ctx, booking, room) {
		s.cache.Set(ctx, booking)
	}

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("room_id", booking.RoomID).
		Str("check_in", booking.CheckIn.Format(models.DateLayout)).
		Str("check_out", booking.CheckOut.Format(models.DateLayout)).
		Float64("total_amount", booking.TotalAmount).
		Msg("booking created")
	return booking, nil
}

// admit runs the checks and the insert; the caller holds the room lease.
func (s *BookingService) admit(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, *models.Room, error) {
	checkIn := models.DateOnly(req.CheckIn)
	checkOut := models.DateOnly(req.CheckOut)

	if err := s.validateStay(checkIn, checkOut, req.Guests); err != nil {
		return nil, nil, err
	}

	existing, err := s.store.FindOverlapping(ctx, req.RoomID, models.LiveStatuses, checkIn, checkOut)
	if err != nil {
		return nil, nil, fmt.Errorf("check room %s availability: %w", req.RoomID, err)
	}
	if len(existing) > 0 {
		return nil, nil, ErrDatesUnavailable
	}

	room, err := s.rooms.GetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve room: %w", err)
	}
	if req.HotelID != "" && req.HotelID != room.HotelID {
		return nil, nil, validationErr("room %s does not belong to hotel %s", room.RoomNumber, req.HotelID)
	}
	if room.Capacity > 0 && req.Guests > room.Capacity {
		return nil, nil, validationErr("room %s holds at most %d guests", room.RoomNumber, room.Capacity)
	}

	now := s.now().UTC()
	booking := &models.Booking{
		ID:              uuid.NewString(),
		HotelID:         room.HotelID,
		RoomID:          req.RoomID,
		UserID:          req.UserID,
		GuestName:       req.GuestName,
		GuestEmail:      req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          req.Guests,
		TotalAmount:     room.Price * float64(models.Nights(checkIn, checkOut)),
		SpecialRequests: req.SpecialRequests,
		Status:          models.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.InsertBooking(ctx, booking); err != nil {
		return nil, nil, fmt.Errorf("save booking: %w", err)
	}
	return booking, room, nil
}

// attachDetails resolves the same room and requester that GetBooking
// serves from the store. A missing user leaves User nil. It reports false
// when the lookup failed and the booking should not be cached.
func (s *BookingService) attachDetails(ctx context.Context, booking *models.Booking, room *models.Room) bool {
	booking.Room = room
	user, err := s.rooms.GetUser(ctx, booking.UserID)
	switch {
	case err == nil:
		booking.User = user
	case !errors.Is(err, domain.ErrNotFound):
		s.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("resolve booking user")
		return false
	}
	return true
}

func (s *BookingService) validateStay(checkIn, checkOut time.Time, guests int) error {
	if !checkOut.After(checkIn) {
		return validationErr("check-out date must be after check-in date")
	}
	today := models.DateOnly(s.now().UTC())
	if checkIn.Before(today) {
		return validationErr("check-in date cannot be in the past")
	}
	if s.maxAdvanceDays > 0 && checkIn.After(today.AddDate(0, 0, s.maxAdvanceDays)) {
		return validationErr("check-in date is more than %d days ahead", s.maxAdvanceDays)
	}
	if guests < 1 {
		return validationErr("at least one guest is required")
	}
	return nil
}

// GetBooking serves from the cache when it can, otherwise from the store
// with room and requester attached.
func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	if cached, ok := s.cache.Get(ctx, id); ok {
		return cached, nil
	}

	booking, err := s.store.GetBookingDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, booking)
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	if filter.Status != "" && !isKnownStatus(filter.Status) {
		return nil, validationErr("unknown status %q", filter.Status)
	}
	return s.store.ListBookings(ctx, filter)
}

// UpdateBooking applies patch to a non-terminal booking. A date change holds
// the room lease while the new stay is checked against other live
// reservations and repriced.
func (s *BookingService) UpdateBooking(ctx context.Context, id string, patch models.BookingPatch) (*models.Booking, error) {
	if patch.CheckIn == nil && patch.CheckOut == nil {
		return s.applyPatch(ctx, id, patch)
	}

	current, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	lease, ok := s.locks.TryLock(ctx, lock.RoomKey(current.RoomID), s.lockTTL)
	if !ok {
		return nil, ErrRoomBusy
	}
	defer lease.Release(context.WithoutCancel(ctx))

	return s.applyPatch(ctx, id, patch)
}

func (s *BookingService) applyPatch(ctx context.Context, id string, patch models.BookingPatch) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot update a %s booking", ErrTerminalState, booking.Status)
	}

	if patch.Guests != nil && *patch.Guests < 1 {
		return nil, validationErr("at least one guest is required")
	}
	if patch.Status != nil && !isKnownStatus(*patch.Status) {
		return nil, validationErr("unknown status %q", *patch.Status)
	}

	datesChanged := patch.CheckIn != nil || patch.CheckOut != nil
	patch.Apply(booking)
	if !booking.CheckOut.After(booking.CheckIn) {
		return nil, validationErr("check-out date must be after check-in date")
	}
	if patch.CheckIn != nil && booking.CheckIn.Before(models.DateOnly(s.now().UTC())) {
		return nil, validationErr("check-in date cannot be in the past")
	}

	if datesChanged || patch.Guests != nil {
		room, err := s.rooms.GetRoom(ctx, booking.RoomID)
		if err != nil {
			return nil, fmt.Errorf("resolve room: %w", err)
		}
		if room.Capacity > 0 && booking.Guests > room.Capacity {
			return nil, validationErr("room %s holds at most %d guests", room.RoomNumber, room.Capacity)
		}
		if datesChanged {
			if err := s.checkMove(ctx, booking); err != nil {
				return nil, err
			}
			booking.TotalAmount = room.Price * float64(booking.Nights())
		}
	}

	if err := s.persist(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(eventForStatus(booking.Status), booking)
	return booking, nil
}

// checkMove rejects new dates that collide with another live reservation
// of the same room.
func (s *BookingService) checkMove(ctx context.Context, booking *models.Booking) error {
	if !booking.IsLive() {
		return nil
	}
	existing, err := s.store.FindOverlapping(ctx, booking.RoomID, models.LiveStatuses, booking.CheckIn, booking.CheckOut)
	if err != nil {
		return fmt.Errorf("check room %s availability: %w", booking.RoomID, err)
	}
	for _, other := range existing {
		if other.ID != booking.ID {
			return ErrDatesUnavailable
		}
	}
	return nil
}

func (s *BookingService) ConfirmBooking(ctx context.Context, id string) (*models.Booking, error) {
	status := models.StatusConfirmed
	return s.UpdateBooking(ctx, id, models.BookingPatch{Status: &status})
}

func (s *BookingService) CompleteBooking(ctx context.Context, id string) (*models.Booking, error) {
	status := models.StatusCompleted
	return s.UpdateBooking(ctx, id, models.BookingPatch{Status: &status})
}

func (s *BookingService) CancelBooking(ctx context.Context, id string, reason string) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case models.StatusCancelled:
		return nil, ErrAlreadyCancelled
	case models.StatusCompleted:
		return nil, fmt.Errorf("%w: cannot cancel a completed booking", ErrTerminalState)
	}

	cancelledAt := s.now().UTC()
	booking.Status = models.StatusCancelled
	booking.CancellationReason = reason
	booking.CancelledAt = &cancelledAt

	if err := s.persist(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(events.EventBookingCancelled, booking)
	s.logger.Info().Str("booking_id", id).Str("reason", reason).Msg("booking cancelled")
	return booking, nil
}

// CheckAvailability answers without taking the lease, so the answer is advisory.
func (s *BookingService) CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	checkIn = models.DateOnly(checkIn)
	checkOut = models.DateOnly(checkOut)
	if !checkOut.After(checkIn) {
		return false, validationErr("check-out date must be after check-in date")
	}

	existing, err := s.store.FindOverlapping(ctx, roomID, models.LiveStatuses, checkIn, checkOut)
	if err != nil {
		return false, fmt.Errorf("check room %s availability: %w", roomID, err)
	}
	return len(existing) == 0, nil
}

// FindAvailableRooms lists the hotel's active rooms that are not under
// maintenance and have no live reservation overlapping the stay. Like
// CheckAvailability it takes no lease.
func (s *BookingService) FindAvailableRooms(ctx context.Context, hotelID string, checkIn, checkOut time.Time) ([]*models.Room, error) {
	checkIn = models.DateOnly(checkIn)
	checkOut = models.DateOnly(checkOut)
	if !checkOut.After(checkIn) {
		return nil, validationErr("check-out date must be after check-in date")
	}

	if _, err := s.rooms.GetHotel(ctx, hotelID); err != nil {
		return nil, fmt.Errorf("resolve hotel: %w", err)
	}
	rooms, err := s.rooms.ListRooms(ctx, hotelID)
	if err != nil {
		return nil, fmt.Errorf("list rooms of hotel %s: %w", hotelID, err)
	}

	bookings, err := s.store.ListBookings(ctx, models.BookingFilter{
		HotelID:   hotelID,
		EndsAfter: checkIn,
		Limit:     models.NoListLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list bookings of hotel %s: %w", hotelID, err)
	}

	taken := make(map[string]bool)
	for _, b := range bookings {
		if b.IsLive() && b.Overlaps(checkIn, checkOut) {
			taken[b.RoomID] = true
		}
	}

	available := make([]*models.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.Status == models.RoomMaintenance || taken[room.ID] {
			continue
		}
		available = append(available, room)
	}
	return available, nil
}

// persist bumps the revision, writes the booking and drops its cache entry.
func (s *BookingService) persist(ctx context.Context, booking *models.Booking) error {
	booking.Version++
	booking.UpdatedAt = s.now().UTC()
	booking.Room = nil
	booking.User = nil

	if err := s.store.UpdateBooking(ctx, booking); err != nil {
		return fmt.Errorf("save booking %s: %w", booking.ID, err)
	}
	s.cache.Invalidate(ctx, booking.ID)
	return nil
}

func (s *BookingService) publish(eventType string, booking *models.Booking) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(eventType, events.PayloadFromBooking(booking)); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

func eventForStatus(status string) string {
	switch status {
	case models.StatusConfirmed:
		return events.EventBookingConfirmed
	case models.StatusCompleted:
		return events.EventBookingCompleted
	case models.StatusCancelled:
		return events.EventBookingCancelled
	default:
		return events.EventBookingUpdated
	}
}

func isKnownStatus(status string) bool {
	switch status {
	case models.StatusPending, models.StatusConfirmed, models.StatusCancelled, models.StatusCompleted:
		return true
	}
	return false
}

func resultLabel(err error) string {
	switch KindOf(err) {
	case KindConflict:
		return "unavailable"
	case KindValidation:
		return "invalid"
	case KindNotFound:
		return "not_found"
	default:
		return "error"
	}
}
