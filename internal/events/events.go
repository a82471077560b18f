package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"hotelbook/internal/models"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingUpdated   = "booking_updated"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
	EventBookingCompleted = "booking_completed"
)

// BookingEventPayload is the booking snapshot carried by booking events.
type BookingEventPayload struct {
	BookingID          string    `json:"booking_id"`
	HotelID            string    `json:"hotel_id"`
	RoomID             string    `json:"room_id"`
	UserID             string    `json:"user_id"`
	Status             string    `json:"status"`
	CheckIn            time.Time `json:"check_in"`
	CheckOut           time.Time `json:"check_out"`
	TotalAmount        float64   `json:"total_amount"`
	Version            int64     `json:"version"`
	CancellationReason string    `json:"cancellation_reason,omitempty"`
}

func PayloadFromBooking(b *models.Booking) BookingEventPayload {
	return BookingEventPayload{
		BookingID:          b.ID,
		HotelID:            b.HotelID,
		RoomID:             b.RoomID,
		UserID:             b.UserID,
		Status:             b.Status,
		CheckIn:            b.CheckIn,
		CheckOut:           b.CheckOut,
		TotalAmount:        b.TotalAmount,
		Version:            b.Version,
		CancellationReason: b.CancellationReason,
	}
}

// Event is a published domain event. Key groups related events, e.g. per booking.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Key       string          `json:"key,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub. Handlers registered with
// SubscribeAll see every event type.
type EventBus struct {
	subscribers map[string][]EventHandler
	wildcard    []EventHandler
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

func (b *EventBus) SubscribeAll(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wildcard = append(b.wildcard, handler)
}

// Publish runs the handlers synchronously and returns the first handler error.
// Every handler runs even if an earlier one failed.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := make([]EventHandler, 0, len(b.subscribers[event.Type])+len(b.wildcard))
	handlers = append(handlers, b.subscribers[event.Type]...)
	handlers = append(handlers, b.wildcard...)
	b.mu.RUnlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	var first error
	for _, handler := range handlers {
		if err := handler(event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// PublishJSON serializes the payload and publishes an event.
// A BookingEventPayload keys the event by booking id.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	event, err := NewJSONEvent(eventType, payload)
	if err != nil {
		return err
	}
	return b.Publish(&event)
}

func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}
	switch p := payload.(type) {
	case BookingEventPayload:
		event.Key = p.BookingID
	case *BookingEventPayload:
		event.Key = p.BookingID
	}
	return event, nil
}
