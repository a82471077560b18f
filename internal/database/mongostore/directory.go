package mongostore

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotelbook/internal/domain"
	"hotelbook/internal/models"
)

func (s *Store) CreateHotel(ctx context.Context, hotel *models.Hotel) error {
	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	hotel.CreatedAt = now
	hotel.UpdatedAt = now
	if _, err := s.hotels.InsertOne(ctx, hotel); err != nil {
		return fmt.Errorf("failed to create hotel: %w", translateErr(err))
	}
	return nil
}

func (s *Store) GetHotel(ctx context.Context, id string) (*models.Hotel, error) {
	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()

	var hotel models.Hotel
	if err := s.hotels.FindOne(ctx, bson.M{"_id": id}).Decode(&hotel); err != nil {
		return nil, fmt.Errorf("failed to get hotel %s: %w", id, translateErr(err))
	}
	return &hotel, nil
}

func (s *Store) ListHotels(ctx context.Context) ([]*models.Hotel, error) {
	return s.findHotels(ctx, bson.M{"is_active": true})
}

// SearchHotels matches text against name or description and location
// against location, case-insensitively.
func (s *Store) SearchHotels(ctx context.Context, text, location string) ([]*models.Hotel, error) {
	return s.findHotels(ctx, searchFilter(text, location))
}

func searchFilter(text, location string) bson.M {
	filter := bson.M{"is_active": true}
	if text != "" {
		pattern := containsPattern(text)
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	if location != "" {
		filter["location"] = containsPattern(location)
	}
	return filter
}

func containsPattern(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func (s *Store) findHotels(ctx context.Context, filter bson.M) ([]*models.Hotel, error) {
	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()

	cursor, err := s.hotels.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	defer cursor.Close(ctx)

	var hotels []*models.Hotel
	if err := cursor.All(ctx, &hotels); err != nil {
		return nil, fmt.Errorf("failed to decode hotels: %w", err)
	}
	return hotels, nil
}

func (s *Store) CreateRoom(ctx context.Context, room *models.Room) error {
	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	room.CreatedAt = now
	room.UpdatedAt = now
	if _, err := s.rooms.InsertOne(ctx, room); err != nil {
		return fmt.Errorf("failed to create room: %w", translateErr(err))
	}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()

	var room models.Room
	if err := s.rooms.FindOne(ctx, bson.M{"_id": id}).Decode(&room); err != nil {
		return nil, fmt.Errorf("failed to get room %s: %w", id, translateErr(err))
	}
	return &room, nil
}

func (s *Store) ListRooms(ctx context.Context, hotelID string) ([]*models.Room, error) {
	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()

	filter := bson.M{"is_active": true}
	if hotelID != "" {
		filter["hotel_id"] = hotelID
	}
	opts := options.Find().SetSort(bson.D{{Key: "hotel_id", Value: 1}, {Key: "room_number", Value: 1}})

	cursor, err := s.rooms.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var rooms []*models.Room
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}
	return rooms, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", translateErr(err))
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()

	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, translateErr(err))
	}
	return &user, nil
}

func (s *Store) UpdateHotel(ctx context.Context, hotel *models.Hotel) error {
	hotel.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	return s.replace(ctx, s.hotels, "hotel", hotel.ID, hotel)
}

func (s *Store) DeleteHotel(ctx context.Context, id string) error {
	return s.remove(ctx, s.hotels, "hotel", id)
}

func (s *Store) UpdateRoom(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	return s.replace(ctx, s.rooms, "room", room.ID, room)
}

func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	return s.remove(ctx, s.rooms, "room", id)
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	return s.replace(ctx, s.users, "user", user.ID, user)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.remove(ctx, s.users, "user", id)
}

func (s *Store) replace(ctx context.Context, coll *mongo.Collection, kind, id string, doc interface{}) error {
	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	result, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", kind, id, translateErr(err))
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("failed to update %s %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) remove(ctx context.Context, coll *mongo.Collection, kind, id string) error {
	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	result, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}
