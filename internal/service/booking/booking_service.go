package booking

import (
	"context"
	"errors"
	"log"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/Domenick1991/tripoffice/internal/apperror"
	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/Domenick1991/tripoffice/internal/email"
	"github.com/Domenick1991/tripoffice/internal/kafka"
	"github.com/Domenick1991/tripoffice/internal/repository"
	"github.com/Domenick1991/tripoffice/internal/timerange"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateResult, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	ListBookings(ctx context.Context, query ListQuery) (*Page, error)
	UpdateState(ctx context.Context, id string, input StateInput) (*domain.Booking, error)
	TripReports(ctx context.Context, window *timerange.Range) ([]domain.TripStats, error)
	TotalReport(ctx context.Context, window *timerange.Range) (domain.BookingTotals, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateBookingInput struct {
	TripInfo       string          `json:"tripInfo"`
	TripID         string          `json:"tripId"`
	Adult          int             `json:"adult"`
	Child          int             `json:"child"`
	TotalPrice     domain.Money    `json:"totalPrice"`
	Transportation bool            `json:"transportation"`
	User           domain.Customer `json:"user"`
	BookingDate    *time.Time      `json:"bookingDate"`
}

type CreateResult struct {
	Booking   *domain.Booking `json:"booking"`
	EmailSent bool            `json:"emailSent"`
}

// StateInput carries the flags to change; nil flags keep their stored value.
type StateInput struct {
	Payment *bool `json:"payment"`
	CheckIn *bool `json:"checkIn"`
}

type ListQuery struct {
	Filter domain.BookingFilter
	Page   int
	Limit  int
}

type Page struct {
	TotalBookings int                  `json:"totalBookings"`
	CurrentPage   int                  `json:"currentPage"`
	TotalPages    int                  `json:"totalPages"`
	Sort          domain.SortOrder     `json:"sort"`
	Totals        domain.BookingTotals `json:"totals"`
	Bookings      []domain.Booking     `json:"bookings"`
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type BookingService struct {
	bookings           repository.BookingRepository
	trips              repository.TripRepository
	mailer             email.Sender
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	adminBCC           string
	emailTimeout       time.Duration
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithAdminBCC(address string) BookingServiceOption {
	return func(s *BookingService) {
		s.adminBCC = address
	}
}

func WithEmailTimeout(timeout time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.emailTimeout = timeout
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	trips repository.TripRepository,
	mailer email.Sender,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		trips:        trips,
		mailer:       mailer,
		producer:     producer,
		bookingTopic: bookingTopic,
		emailTimeout: 15 * time.Second,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateResult, error) {
	tripID := strings.TrimSpace(input.TripInfo)
	if tripID == "" {
		tripID = strings.TrimSpace(input.TripID)
	}
	if tripID == "" {
		return nil, apperror.Validation("tripInfo is required")
	}
	user, err := validateCreate(input)
	if err != nil {
		return nil, err
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Trip not found")
		}
		return nil, apperror.Wrap(err, "load trip")
	}

	booking := &domain.Booking{
		TripID:         trip.ID,
		Trip:           trip.Summary(),
		Adult:          input.Adult,
		Child:          input.Child,
		TotalPrice:     input.TotalPrice,
		Transportation: input.Transportation,
		User:           user,
		BookingDate:    s.now(),
	}
	if input.BookingDate != nil && !input.BookingDate.IsZero() {
		booking.BookingDate = *input.BookingDate
	}
	booking.SetState(nil, nil)

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, apperror.Wrap(err, "create booking")
	}

	sent := s.sendTicket(ctx, booking)

	event := kafka.NewBookingEvent(kafka.EventBookingCreated, booking, s.now())
	event.EmailSent = sent
	if err := s.publish(ctx, booking.ID, event); err != nil {
		log.Printf("WARNING: Failed to publish %s event for booking %s: %v", event.Type, booking.ID, err)
	}
	return &CreateResult{Booking: booking, EmailSent: sent}, nil
}

// sendTicket runs after the booking is stored. Failures only flip emailSent.
func (s *BookingService) sendTicket(ctx context.Context, booking *domain.Booking) bool {
	if s.mailer == nil {
		return false
	}
	msg, err := email.TicketMessage(booking, s.adminBCC)
	if err != nil {
		log.Printf("WARNING: Failed to render ticket for booking %s: %v", booking.ID, err)
		return false
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.emailTimeout)
	defer cancel()
	if err := s.mailer.Send(sendCtx, msg); err != nil {
		log.Printf("WARNING: Failed to email ticket for booking %s: %v", booking.ID, err)
		return false
	}
	return true
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Booking not found")
		}
		return nil, apperror.Wrap(err, "load booking")
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, query ListQuery) (*Page, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	filter := query.Filter
	if filter.Sort != domain.SortAsc {
		filter.Sort = domain.SortDesc
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	totals, err := s.bookings.Summarize(ctx, filter)
	if err != nil {
		return nil, apperror.Wrap(err, "summarize bookings")
	}
	bookings, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, apperror.Wrap(err, "list bookings")
	}

	return &Page{
		TotalBookings: totals.Bookings,
		CurrentPage:   page,
		TotalPages:    int(math.Ceil(float64(totals.Bookings) / float64(limit))),
		Sort:          filter.Sort,
		Totals:        totals,
		Bookings:      bookings,
	}, nil
}

func (s *BookingService) UpdateState(ctx context.Context, id string, input StateInput) (*domain.Booking, error) {
	if input.Payment == nil && input.CheckIn == nil {
		return nil, apperror.Validation("payment or checkIn is required")
	}

	booking, err := s.bookings.UpdateState(ctx, id, input.Payment, input.CheckIn)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Booking not found")
		}
		return nil, apperror.Wrap(err, "update booking state")
	}

	event := kafka.NewBookingEvent(kafka.EventBookingStateChanged, booking, s.now())
	if err := s.publish(ctx, booking.ID, event); err != nil {
		log.Printf("WARNING: Failed to publish %s event for booking %s: %v", event.Type, booking.ID, err)
	}
	return booking, nil
}

func (s *BookingService) TripReports(ctx context.Context, window *timerange.Range) ([]domain.TripStats, error) {
	from, to := bounds(window)
	stats, err := s.bookings.TripStats(ctx, from, to)
	if err != nil {
		return nil, apperror.Wrap(err, "trip report")
	}
	return stats, nil
}

// TotalReport always yields one row, zero-filled for an empty window.
func (s *BookingService) TotalReport(ctx context.Context, window *timerange.Range) (domain.BookingTotals, error) {
	from, to := bounds(window)
	totals, err := s.bookings.Summarize(ctx, domain.BookingFilter{From: from, To: to})
	if err != nil {
		return domain.BookingTotals{}, apperror.Wrap(err, "total report")
	}
	return totals, nil
}

func (s *BookingService) publish(ctx context.Context, key string, event kafka.BookingEvent) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, key, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" && event.Type == kafka.EventBookingCreated {
		return s.producer.Publish(ctx, s.notificationsTopic, key, event)
	}
	return nil
}

func validateCreate(input CreateBookingInput) (domain.Customer, error) {
	if input.Adult < 1 {
		return domain.Customer{}, apperror.Validation("adult must be at least 1")
	}
	if input.Child < 0 {
		return domain.Customer{}, apperror.Validation("child cannot be negative")
	}
	if input.TotalPrice.EGP < 0 || input.TotalPrice.Euro < 0 {
		return domain.Customer{}, apperror.Validation("totalPrice cannot be negative")
	}

	user := domain.Customer{
		FirstName: strings.TrimSpace(input.User.FirstName),
		LastName:  strings.TrimSpace(input.User.LastName),
		Email:     strings.TrimSpace(input.User.Email),
		Phone:     strings.TrimSpace(input.User.Phone),
		Message:   strings.TrimSpace(input.User.Message),
	}
	if user.FirstName == "" || user.LastName == "" || user.Email == "" || user.Phone == "" {
		return domain.Customer{}, apperror.Validation("user firstName, lastName, email and phone are required")
	}
	if _, err := mail.ParseAddress(user.Email); err != nil {
		return domain.Customer{}, apperror.Validation("user email is invalid")
	}
	return user, nil
}

func bounds(window *timerange.Range) (*time.Time, *time.Time) {
	if window == nil {
		return nil, nil
	}
	return window.Start, window.End
}

var _ BookingUseCase = (*BookingService)(nil)
