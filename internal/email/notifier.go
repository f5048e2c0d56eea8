package email

import (
	"context"
	"fmt"
	"log"

	"github.com/Domenick1991/tripoffice/internal/kafka"
	kafkaGo "github.com/segmentio/kafka-go"
)

// Notifier mails the back-office inbox about new bookings read from Kafka.
type Notifier struct {
	sender Sender
	to     string
}

func NewNotifier(sender Sender, to string) *Notifier {
	return &Notifier{sender: sender, to: to}
}

// HandleMessage skips undecodable messages and events other than booking_created.
func (n *Notifier) HandleMessage(ctx context.Context, msg kafkaGo.Message) error {
	event, err := kafka.DecodeBookingEvent(msg)
	if err != nil {
		log.Printf("WARNING: skipping message: %v", err)
		return nil
	}
	if event.Type != kafka.EventBookingCreated || n.to == "" {
		return nil
	}

	notice, err := BookingNotice(event, n.to)
	if err != nil {
		return err
	}
	if err := n.sender.Send(ctx, notice); err != nil {
		return fmt.Errorf("send booking notice %s: %w", event.BookingID, err)
	}
	log.Printf("booking notice sent for %s", event.BookingID)
	return nil
}
