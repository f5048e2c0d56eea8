package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	EventBookingCreated      = "booking_created"
	EventBookingStateChanged = "booking_state_changed"
)

type BookingEvent struct {
	Type       string       `json:"type"`
	BookingID  string       `json:"booking_id"`
	TripID     string       `json:"trip_id,omitempty"`
	TripName   string       `json:"trip_name,omitempty"`
	Customer   string       `json:"customer"`
	Email      string       `json:"email"`
	Tickets    int          `json:"tickets"`
	TotalPrice domain.Money `json:"total_price"`
	Payment    bool         `json:"payment"`
	CheckIn    bool         `json:"check_in"`
	Status     bool         `json:"status"`
	EmailSent  bool         `json:"email_sent"`
	OccurredAt time.Time    `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *domain.Booking, at time.Time) BookingEvent {
	event := BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		TripID:     b.TripID,
		Customer:   b.User.FullName(),
		Email:      b.User.Email,
		Tickets:    b.Tickets(),
		TotalPrice: b.TotalPrice,
		Payment:    b.Payment,
		CheckIn:    b.CheckIn,
		Status:     b.Status,
		OccurredAt: at,
	}
	if b.Trip != nil {
		event.TripName = b.Trip.Name
	}
	return event
}

func DecodeBookingEvent(msg kafka.Message) (BookingEvent, error) {
	var event BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return BookingEvent{}, fmt.Errorf("decode booking event at offset %d: %w", msg.Offset, err)
	}
	if event.Type == "" || event.BookingID == "" {
		return BookingEvent{}, fmt.Errorf("booking event at offset %d has no type or booking id", msg.Offset)
	}
	return event, nil
}
