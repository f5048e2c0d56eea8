package domain

import (
	"strings"
	"time"
)

type Money struct {
	EGP  float64 `json:"egp"`
	Euro float64 `json:"euro"`
}

func (m Money) Add(o Money) Money {
	return Money{EGP: m.EGP + o.EGP, Euro: m.Euro + o.Euro}
}

type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message,omitempty"`
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// TripSummary is the slice of a trip embedded into booking responses.
type TripSummary struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Images []string `json:"images"`
}

type Booking struct {
	ID             string       `json:"id"`
	TripID         string       `json:"-"`
	Trip           *TripSummary `json:"tripInfo,omitempty"`
	Adult          int          `json:"adult"`
	Child          int          `json:"child"`
	TotalPrice     Money        `json:"totalPrice"`
	Transportation bool         `json:"transportation"`
	User           Customer     `json:"user"`
	BookingDate    time.Time    `json:"bookingDate"`
	Payment        bool         `json:"payment"`
	CheckIn        bool         `json:"checkIn"`
	Status         bool         `json:"status"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// Tickets is the party size of the booking.
func (b *Booking) Tickets() int {
	return b.Adult + b.Child
}

// SetState applies payment/check-in flags and recomputes the completion status.
// Nil flags are left as they are.
func (b *Booking) SetState(payment, checkIn *bool) {
	if payment != nil {
		b.Payment = *payment
	}
	if checkIn != nil {
		b.CheckIn = *checkIn
	}
	b.Status = b.Payment && b.CheckIn
}

// TicketRef is the short reference printed on the emailed ticket.
func (b *Booking) TicketRef() string {
	return TicketRef(b.ID)
}

func TicketRef(id string) string {
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return strings.ToUpper(id)
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

type BookingFilter struct {
	From           *time.Time
	To             *time.Time
	Transportation *bool
	TripName       string
	Sort           SortOrder
	Limit          int
	Offset         int
}

type BookingTotals struct {
	Bookings int     `json:"totalBookings"`
	Tickets  int     `json:"totalTickets"`
	EGP      float64 `json:"totalEgp"`
	Euro     float64 `json:"totalEuro"`
}

type TripStats struct {
	TripID        string    `json:"tripId"`
	TripName      string    `json:"tripName"`
	CoverImage    string    `json:"coverImage"`
	TripCreatedAt time.Time `json:"tripCreatedAt"`
	TripUpdatedAt time.Time `json:"tripUpdatedAt"`
	BookingTotals
}
