package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/jackc/pgx/v5"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	Summarize(ctx context.Context, filter domain.BookingFilter) (domain.BookingTotals, error)
	UpdateState(ctx context.Context, id string, payment, checkIn *bool) (*domain.Booking, error)
	TripStats(ctx context.Context, from, to *time.Time) ([]domain.TripStats, error)
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `b.id, b.trip_id, t.name, t.images, b.adult, b.child, b.total_egp, b.total_euro, b.transportation,
	b.first_name, b.last_name, b.email, b.phone, b.message, b.booking_date, b.payment, b.check_in, b.status,
	b.created_at, b.updated_at`

const bookingSelect = `SELECT ` + bookingColumns + `
	FROM bookings b LEFT JOIN trips t ON t.id = b.trip_id`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b        domain.Booking
		tripID   *string
		tripName *string
		images   []string
	)
	if err := row.Scan(&b.ID, &tripID, &tripName, &images, &b.Adult, &b.Child, &b.TotalPrice.EGP, &b.TotalPrice.Euro, &b.Transportation,
		&b.User.FirstName, &b.User.LastName, &b.User.Email, &b.User.Phone, &b.User.Message, &b.BookingDate,
		&b.Payment, &b.CheckIn, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	if tripID != nil {
		b.TripID = *tripID
		if tripName != nil {
			b.Trip = &domain.TripSummary{ID: *tripID, Name: *tripName, Images: images}
		}
	}
	return &b, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	err := r.db.QueryRow(ctx, `INSERT INTO bookings (trip_id, adult, child, total_egp, total_euro, transportation,
		first_name, last_name, email, phone, message, booking_date, payment, check_in, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`,
		booking.TripID, booking.Adult, booking.Child, booking.TotalPrice.EGP, booking.TotalPrice.Euro, booking.Transportation,
		booking.User.FirstName, booking.User.LastName, booking.User.Email, booking.User.Phone, booking.User.Message,
		booking.BookingDate, booking.Payment, booking.CheckIn, booking.Status).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", translate(err))
	}
	return nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, bookingSelect+` WHERE b.id=$1`, id))
}

func (r *PGBookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	where, args := bookingWhere(filter)

	order := "DESC"
	if filter.Sort == domain.SortAsc {
		order = "ASC"
	}
	query := bookingSelect + where + ` ORDER BY b.created_at ` + order
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) Summarize(ctx context.Context, filter domain.BookingFilter) (domain.BookingTotals, error) {
	where, args := bookingWhere(filter)

	var totals domain.BookingTotals
	err := r.db.QueryRow(ctx, `SELECT COUNT(b.id),
		COALESCE(SUM(COALESCE(b.adult, 0) + COALESCE(b.child, 0)), 0),
		COALESCE(SUM(COALESCE(b.total_egp, 0)), 0),
		COALESCE(SUM(COALESCE(b.total_euro, 0)), 0)
		FROM bookings b LEFT JOIN trips t ON t.id = b.trip_id`+where, args...).
		Scan(&totals.Bookings, &totals.Tickets, &totals.EGP, &totals.Euro)
	if err != nil {
		return domain.BookingTotals{}, fmt.Errorf("summarize bookings: %w", err)
	}
	return totals, nil
}

// UpdateState changes only the flags that are non-nil and recomputes status in the same statement.
func (r *PGBookingRepository) UpdateState(ctx context.Context, id string, payment, checkIn *bool) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `WITH b AS (
		UPDATE bookings SET payment = COALESCE($2, payment), check_in = COALESCE($3, check_in),
			status = COALESCE($2, payment) AND COALESCE($3, check_in), updated_at = now()
		WHERE id = $1
		RETURNING *)
		SELECT `+bookingColumns+` FROM b LEFT JOIN trips t ON t.id = b.trip_id`, id, payment, checkIn))
	if err != nil {
		return nil, fmt.Errorf("update booking state: %w", err)
	}
	return b, nil
}

// TripStats groups bookings per trip, richest trip first. Bookings whose trip is gone are skipped.
func (r *PGBookingRepository) TripStats(ctx context.Context, from, to *time.Time) ([]domain.TripStats, error) {
	where, args := bookingWhere(domain.BookingFilter{From: from, To: to})
	if where == "" {
		where = " WHERE b.trip_id IS NOT NULL"
	} else {
		where += " AND b.trip_id IS NOT NULL"
	}

	rows, err := r.db.Query(ctx, `SELECT t.id, t.name, COALESCE(t.images[1], ''), t.created_at, t.updated_at,
		COUNT(b.id),
		COALESCE(SUM(COALESCE(b.adult, 0) + COALESCE(b.child, 0)), 0),
		COALESCE(SUM(COALESCE(b.total_egp, 0)), 0),
		COALESCE(SUM(COALESCE(b.total_euro, 0)), 0)
		FROM bookings b JOIN trips t ON t.id = b.trip_id`+where+`
		GROUP BY t.id
		ORDER BY 8 DESC, t.name ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]domain.TripStats, 0)
	for rows.Next() {
		var s domain.TripStats
		if err := rows.Scan(&s.TripID, &s.TripName, &s.CoverImage, &s.TripCreatedAt, &s.TripUpdatedAt,
			&s.Bookings, &s.Tickets, &s.EGP, &s.Euro); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// bookingWhere renders the filter as a WHERE clause over "bookings b LEFT JOIN trips t".
func bookingWhere(f domain.BookingFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.From != nil {
		add("b.created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("b.created_at < $%d", *f.To)
	}
	if f.Transportation != nil {
		add("b.transportation = $%d", *f.Transportation)
	}
	if name := strings.TrimSpace(f.TripName); name != "" {
		add("t.name ILIKE $%d", "%"+escapeLike(name)+"%")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
