package cache

import (
	"context"
	"encoding/json"
	"time"

	"hotelbook/internal/domain"
	"hotelbook/internal/metrics"
	"hotelbook/internal/models"

	"github.com/rs/zerolog"
)

const bookingKeyPrefix = "booking:"

func BookingKey(id string) string {
	return bookingKeyPrefix + id
}

// BookingCache holds JSON snapshots of bookings. It is derived state only:
// every failure is logged and reported as a miss, never returned.
// A nil *BookingCache is a valid, disabled cache.
type BookingCache struct {
	store  domain.KVStore
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewBookingCache(store domain.KVStore, ttl time.Duration, logger *zerolog.Logger) *BookingCache {
	if store == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = models.DefaultBookingCacheTTL
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &BookingCache{store: store, ttl: ttl, logger: logger}
}

func (c *BookingCache) Get(ctx context.Context, id string) (*models.Booking, bool) {
	if c == nil {
		return nil, false
	}
	raw, ok, err := c.store.Get(ctx, BookingKey(id))
	if err != nil {
		metrics.IncCache("error")
		c.logger.Warn().Err(err).Str("booking_id", id).Msg("booking cache read failed")
		return nil, false
	}
	if !ok {
		metrics.IncCache("miss")
		return nil, false
	}

	var booking models.Booking
	if err := json.Unmarshal([]byte(raw), &booking); err != nil {
		metrics.IncCache("error")
		c.logger.Warn().Err(err).Str("booking_id", id).Msg("corrupt booking cache entry")
		c.Invalidate(ctx, id)
		return nil, false
	}
	metrics.IncCache("hit")
	return &booking, true
}

func (c *BookingCache) Set(ctx context.Context, booking *models.Booking) {
	if c == nil || booking == nil {
		return
	}
	data, err := json.Marshal(booking)
	if err != nil {
		c.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("failed to encode booking for cache")
		return
	}
	if err := c.store.Set(ctx, BookingKey(booking.ID), string(data), c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("booking cache write failed")
	}
}

// Invalidate drops the snapshot; the next read repopulates it from the store.
func (c *BookingCache) Invalidate(ctx context.Context, id string) {
	if c == nil {
		return
	}
	if err := c.store.Delete(ctx, BookingKey(id)); err != nil {
		c.logger.Warn().Err(err).Str("booking_id", id).Msg("booking cache invalidation failed")
	}
}
