package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hotelbook/internal/domain"
	"hotelbook/internal/models"
)

func encodeAmenities(a []string) string {
	if len(a) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(a)
	return string(data)
}

func decodeAmenities(raw string) ([]string, error) {
	var a []string
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, fmt.Errorf("failed to decode amenities: %w", err)
	}
	return a, nil
}

func (db *DB) CreateHotel(ctx context.Context, hotel *models.Hotel) error {
	query := `INSERT INTO hotels (id, name, location, description, rating, amenities, is_active, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	hotel.CreatedAt = now
	hotel.UpdatedAt = now
	_, err := db.ExecContext(ctx, query,
		hotel.ID,
		hotel.Name,
		hotel.Location,
		hotel.Description,
		hotel.Rating,
		encodeAmenities(hotel.Amenities),
		hotel.IsActive,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create hotel: %w", translateErr(err))
	}
	return nil
}

const hotelColumns = `id, name, location, description, rating, amenities, is_active, created_at, updated_at`

func scanHotel(row rowScanner) (*models.Hotel, error) {
	var (
		h           models.Hotel
		description sql.NullString
		amenities   string
	)
	if err := row.Scan(&h.ID, &h.Name, &h.Location, &description, &h.Rating, &amenities,
		&h.IsActive, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}
	a, err := decodeAmenities(amenities)
	if err != nil {
		return nil, err
	}
	h.Description = description.String
	h.Amenities = a
	return &h, nil
}

func (db *DB) GetHotel(ctx context.Context, id string) (*models.Hotel, error) {
	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE id = ?`
	hotel, err := scanHotel(db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get hotel %s: %w", id, translateErr(err))
	}
	return hotel, nil
}

func (db *DB) ListHotels(ctx context.Context) ([]*models.Hotel, error) {
	return db.queryHotels(ctx, `SELECT `+hotelColumns+` FROM hotels WHERE is_active = 1 ORDER BY name`)
}

// SearchHotels matches text against name or description and location
// against location. LIKE is case-insensitive for ASCII. Empty arguments match all.
func (db *DB) SearchHotels(ctx context.Context, text, location string) ([]*models.Hotel, error) {
	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE is_active = 1`
	var args []interface{}
	if text != "" {
		query += ` AND (name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`
		pattern := likePattern(text)
		args = append(args, pattern, pattern)
	}
	if location != "" {
		query += ` AND location LIKE ? ESCAPE '\'`
		args = append(args, likePattern(location))
	}
	query += ` ORDER BY name`
	return db.queryHotels(ctx, query, args...)
}

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (db *DB) queryHotels(ctx context.Context, query string, args ...interface{}) ([]*models.Hotel, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	defer rows.Close()

	var hotels []*models.Hotel
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hotel: %w", err)
		}
		hotels = append(hotels, h)
	}
	return hotels, rows.Err()
}

func (db *DB) CreateRoom(ctx context.Context, room *models.Room) error {
	query := `INSERT INTO rooms (id, hotel_id, room_number, type, price, capacity, amenities,
                                 status, description, is_active, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now
	_, err := db.ExecContext(ctx, query,
		room.ID,
		room.HotelID,
		room.RoomNumber,
		room.Type,
		room.Price,
		room.Capacity,
		encodeAmenities(room.Amenities),
		room.Status,
		room.Description,
		room.IsActive,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", translateErr(err))
	}
	return nil
}

const roomColumns = `id, hotel_id, room_number, type, price, capacity, amenities, status,
	description, is_active, created_at, updated_at`

func scanRoom(row rowScanner) (*models.Room, error) {
	var (
		r           models.Room
		description sql.NullString
		amenities   string
	)
	if err := row.Scan(&r.ID, &r.HotelID, &r.RoomNumber, &r.Type, &r.Price, &r.Capacity, &amenities,
		&r.Status, &description, &r.IsActive, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	a, err := decodeAmenities(amenities)
	if err != nil {
		return nil, err
	}
	r.Description = description.String
	r.Amenities = a
	return &r, nil
}

func (db *DB) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	room, err := scanRoom(db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get room %s: %w", id, translateErr(err))
	}
	return room, nil
}

// ListRooms returns active rooms, optionally limited to one hotel.
func (db *DB) ListRooms(ctx context.Context, hotelID string) ([]*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE is_active = 1`
	var args []interface{}
	if hotelID != "" {
		query += ` AND hotel_id = ?`
		args = append(args, hotelID)
	}
	query += ` ORDER BY hotel_id, room_number`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

func (db *DB) UpdateHotel(ctx context.Context, hotel *models.Hotel) error {
	query := `UPDATE hotels SET name = ?, location = ?, description = ?, rating = ?, amenities = ?,
                is_active = ?, updated_at = ?
              WHERE id = ?`
	hotel.UpdatedAt = time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		hotel.Name,
		hotel.Location,
		hotel.Description,
		hotel.Rating,
		encodeAmenities(hotel.Amenities),
		hotel.IsActive,
		hotel.UpdatedAt,
		hotel.ID,
	)
	return checkAffected(result, err, "update hotel", hotel.ID)
}

func (db *DB) DeleteHotel(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM hotels WHERE id = ?`, id)
	return checkAffected(result, err, "delete hotel", id)
}

func (db *DB) UpdateRoom(ctx context.Context, room *models.Room) error {
	query := `UPDATE rooms SET type = ?, price = ?, capacity = ?, amenities = ?, status = ?,
                description = ?, is_active = ?, updated_at = ?
              WHERE id = ?`
	room.UpdatedAt = time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		room.Type,
		room.Price,
		room.Capacity,
		encodeAmenities(room.Amenities),
		room.Status,
		room.Description,
		room.IsActive,
		room.UpdatedAt,
		room.ID,
	)
	return checkAffected(result, err, "update room", room.ID)
}

func (db *DB) DeleteRoom(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	return checkAffected(result, err, "delete room", id)
}

// checkAffected turns a zero-row write into domain.ErrNotFound.
func checkAffected(result sql.Result, err error, op, id string) error {
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", op, id, translateErr(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", op, id, err)
	}
	if rows == 0 {
		return fmt.Errorf("failed to %s %s: %w", op, id, domain.ErrNotFound)
	}
	return nil
}
