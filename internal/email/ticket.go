package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/Domenick1991/tripoffice/internal/kafka"
)

var ticketTemplate = template.Must(template.New("ticket").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Your booking is confirmed</h2>
  <p>Hello {{.Name}}, thank you for booking with us.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><b>Ticket</b></td><td>#{{.Ref}}</td></tr>
    <tr><td><b>Trip</b></td><td>{{.Trip}}</td></tr>
    <tr><td><b>Date</b></td><td>{{.Date}}</td></tr>
    <tr><td><b>Adults</b></td><td>{{.Adult}}</td></tr>
    <tr><td><b>Children</b></td><td>{{.Child}}</td></tr>
    <tr><td><b>Transportation</b></td><td>{{if .Transportation}}Included{{else}}Not included{{end}}</td></tr>
    <tr><td><b>Total</b></td><td>{{printf "%.2f" .EGP}} EGP / {{printf "%.2f" .Euro}} EUR</td></tr>
    <tr><td><b>Email</b></td><td>{{.Email}}</td></tr>
    <tr><td><b>Phone</b></td><td>{{.Phone}}</td></tr>
  </table>
  {{if .Message}}<p><i>{{.Message}}</i></p>{{end}}
  <p>Please show this ticket reference at the gate.</p>
</body>
</html>`))

type ticketView struct {
	Name           string
	Ref            string
	Trip           string
	Date           string
	Adult          int
	Child          int
	Transportation bool
	EGP            float64
	Euro           float64
	Email          string
	Phone          string
	Message        string
}

// TicketMessage renders the customer ticket for a stored booking.
func TicketMessage(b *domain.Booking, bcc string) (Message, error) {
	view := ticketView{
		Name:           b.User.FullName(),
		Ref:            b.TicketRef(),
		Date:           b.BookingDate.Format("Monday, 02 January 2006"),
		Adult:          b.Adult,
		Child:          b.Child,
		Transportation: b.Transportation,
		EGP:            b.TotalPrice.EGP,
		Euro:           b.TotalPrice.Euro,
		Email:          b.User.Email,
		Phone:          b.User.Phone,
		Message:        b.User.Message,
	}
	if b.Trip != nil {
		view.Trip = b.Trip.Name
	}

	var buf bytes.Buffer
	if err := ticketTemplate.Execute(&buf, view); err != nil {
		return Message{}, fmt.Errorf("render ticket: %w", err)
	}

	msg := Message{
		To:      []string{b.User.Email},
		Subject: fmt.Sprintf("Your ticket #%s - %s", view.Ref, view.Trip),
		HTML:    buf.String(),
	}
	if bcc != "" {
		msg.Bcc = []string{bcc}
	}
	return msg, nil
}

var noticeTemplate = template.Must(template.New("notice").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <h3>New booking #{{.Ref}}</h3>
  <p>{{.Customer}} ({{.Email}}) booked {{.Tickets}} ticket(s){{if .TripName}} for {{.TripName}}{{end}}.</p>
  <p>Total: {{printf "%.2f" .TotalPrice.EGP}} EGP / {{printf "%.2f" .TotalPrice.Euro}} EUR</p>
  {{if not .EmailSent}}<p style="color: #b00;">The customer ticket email was not delivered.</p>{{end}}
</body>
</html>`))

// BookingNotice renders the back-office notification for a new booking.
func BookingNotice(event kafka.BookingEvent, to string) (Message, error) {
	data := struct {
		kafka.BookingEvent
		Ref string
	}{event, domain.TicketRef(event.BookingID)}

	var buf bytes.Buffer
	if err := noticeTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render booking notice: %w", err)
	}
	return Message{
		To:      []string{to},
		Subject: fmt.Sprintf("New booking #%s", data.Ref),
		HTML:    buf.String(),
	}, nil
}
