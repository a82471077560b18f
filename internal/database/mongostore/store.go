// Package mongostore keeps reservations, rooms, hotels and users in MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotelbook/internal/config"
	"hotelbook/internal/domain"
	"hotelbook/internal/models"
)

const (
	BookingsCollection = "bookings"
	RoomsCollection    = "rooms"
	HotelsCollection   = "hotels"
	UsersCollection    = "users"
)

var indexes = map[string][]mongo.IndexModel{
	BookingsCollection: {
		{Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "check_in", Value: 1}, {Key: "check_out", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "check_in", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	},
	RoomsCollection: {
		{Keys: bson.D{{Key: "hotel_id", Value: 1}, {Key: "room_number", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	UsersCollection: {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
}

type Store struct {
	client       *mongo.Client
	bookings     *mongo.Collection
	rooms        *mongo.Collection
	hotels       *mongo.Collection
	users        *mongo.Collection
	readTimeout  time.Duration
	writeTimeout time.Duration
	logger       *zerolog.Logger
}

var _ domain.Store = (*Store)(nil)

// Connect dials MongoDB, checks the connection and ensures indexes.
func Connect(ctx context.Context, cfg config.MongoConfig, logger *zerolog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	s := New(client, cfg, logger)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	s.logger.Info().Str("database", cfg.Database).Msg("Connected to MongoDB")
	return s, nil
}

// New wraps an already connected client.
func New(client *mongo.Client, cfg config.MongoConfig, logger *zerolog.Logger) *Store {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	db := client.Database(cfg.Database)
	return &Store{
		client:       client,
		bookings:     db.Collection(BookingsCollection),
		rooms:        db.Collection(RoomsCollection),
		hotels:       db.Collection(HotelsCollection),
		users:        db.Collection(UsersCollection),
		readTimeout:  orDefault(cfg.ReadTimeout, 5*time.Second),
		writeTimeout: orDefault(cfg.WriteTimeout, 10*time.Second),
		logger:       logger,
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	db := s.bookings.Database()
	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}
	return nil
}

// withTimeout caps ctx by timeout without extending an earlier deadline.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", domain.ErrAlreadyExists, err)
	default:
		return err
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// overlapFilter selects bookings of roomID in statuses whose stay intersects [checkIn, checkOut).
func overlapFilter(roomID string, statuses []string, checkIn, checkOut time.Time) bson.M {
	return bson.M{
		"room_id":   roomID,
		"status":    bson.M{"$in": statuses},
		"check_in":  bson.M{"$lt": checkOut},
		"check_out": bson.M{"$gt": checkIn},
	}
}

func listFilter(f models.BookingFilter) bson.M {
	filter := bson.M{}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.HotelID != "" {
		filter["hotel_id"] = f.HotelID
	}
	if f.RoomID != "" {
		filter["room_id"] = f.RoomID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if !f.EndsAfter.IsZero() {
		filter["check_out"] = bson.M{"$gt": models.DateOnly(f.EndsAfter)}
	}
	return filter
}

func (s *Store) FindOverlapping(ctx context.Context, roomID string, statuses []string, checkIn, checkOut time.Time) ([]*models.Booking, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	return s.findBookings(ctx, overlapFilter(roomID, statuses, checkIn, checkOut), options.Find())
}

func (s *Store) InsertBooking(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	if _, err := s.bookings.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to insert booking: %w", translateErr(err))
	}
	return nil
}

func (s *Store) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()

	var booking models.Booking
	if err := s.bookings.FindOne(ctx, bson.M{"_id": id}).Decode(&booking); err != nil {
		return nil, fmt.Errorf("failed to get booking %s: %w", id, translateErr(err))
	}
	normalizeBooking(&booking)
	return &booking, nil
}

func (s *Store) GetBookingDetails(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if room, err := s.GetRoom(ctx, booking.RoomID); err == nil {
		booking.Room = room
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if user, err := s.GetUser(ctx, booking.UserID); err == nil {
		booking.User = user
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	return booking, nil
}

func (s *Store) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"check_in":            booking.CheckIn,
			"check_out":           booking.CheckOut,
			"guests":              booking.Guests,
			"total_amount":        booking.TotalAmount,
			"paid_amount":         booking.PaidAmount,
			"special_requests":    booking.SpecialRequests,
			"status":              booking.Status,
			"cancellation_reason": booking.CancellationReason,
			"cancelled_at":        booking.CancelledAt,
			"version":             booking.Version,
			"updated_at":          booking.UpdatedAt,
		},
	}

	result, err := s.bookings.UpdateOne(ctx, bson.M{"_id": booking.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", booking.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("failed to update booking %s: %w", booking.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	switch {
	case filter.Limit == models.NoListLimit:
	case filter.Limit <= 0:
		opts.SetLimit(models.DefaultListLimit)
	default:
		opts.SetLimit(int64(filter.Limit))
	}
	return s.findBookings(ctx, listFilter(filter), opts)
}

func (s *Store) findBookings(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Booking, error) {
	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()

	cursor, err := s.bookings.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	for _, b := range bookings {
		normalizeBooking(b)
	}
	return bookings, nil
}

// normalizeBooking puts decoded BSON dates back in UTC.
func normalizeBooking(b *models.Booking) {
	b.CheckIn = b.CheckIn.UTC()
	b.CheckOut = b.CheckOut.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	if b.CancelledAt != nil {
		t := b.CancelledAt.UTC()
		b.CancelledAt = &t
	}
}
