package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var totalsColumns = []string{"count", "tickets", "egp", "euro"}

var tripStatsColumns = []string{"id", "name", "cover", "created_at", "updated_at", "count", "tickets", "egp", "euro"}

var bookingRowColumns = []string{"id", "trip_id", "name", "images", "adult", "child", "total_egp", "total_euro", "transportation",
	"first_name", "last_name", "email", "phone", "message", "booking_date", "payment", "check_in", "status",
	"created_at", "updated_at"}

func newMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	db, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

// sqlPattern joins literal fragments that must appear in order.
func sqlPattern(fragments ...string) string {
	pattern := "(?s)"
	for i, f := range fragments {
		if i > 0 {
			pattern += `.*`
		}
		pattern += regexp.QuoteMeta(f)
	}
	return pattern
}

func TestBookingRepository_Summarize_EmptyWindowIsZeroRow(t *testing.T) {
	db := newMockDB(t)
	repo := NewBookingRepository(db)

	db.ExpectQuery(sqlPattern(
		"SELECT COUNT(b.id)",
		"COALESCE(SUM(COALESCE(b.adult, 0) + COALESCE(b.child, 0)), 0)",
		"COALESCE(SUM(COALESCE(b.total_egp, 0)), 0)",
		"COALESCE(SUM(COALESCE(b.total_euro, 0)), 0)",
		"FROM bookings b LEFT JOIN trips t ON t.id = b.trip_id",
	) + `$`).
		WillReturnRows(pgxmock.NewRows(totalsColumns).AddRow(0, 0, 0.0, 0.0))

	totals, err := repo.Summarize(context.Background(), domain.BookingFilter{})

	require.NoError(t, err)
	assert.Equal(t, domain.BookingTotals{}, totals)
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestBookingRepository_Summarize_Window(t *testing.T) {
	db := newMockDB(t)
	repo := NewBookingRepository(db)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	db.ExpectQuery(sqlPattern("FROM bookings b LEFT JOIN trips t ON t.id = b.trip_id WHERE b.created_at >= $1 AND b.created_at < $2") + `$`).
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows(totalsColumns).AddRow(2, 5, 3000.0, 90.5))

	totals, err := repo.Summarize(context.Background(), domain.BookingFilter{From: &from, To: &to})

	require.NoError(t, err)
	assert.Equal(t, domain.BookingTotals{Bookings: 2, Tickets: 5, EGP: 3000, Euro: 90.5}, totals)
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestBookingRepository_TripStats(t *testing.T) {
	db := newMockDB(t)
	repo := NewBookingRepository(db)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	db.ExpectQuery(sqlPattern(
		"SELECT t.id, t.name, COALESCE(t.images[1], ''), t.created_at, t.updated_at",
		"COUNT(b.id)",
		"COALESCE(SUM(COALESCE(b.total_egp, 0)), 0)",
		"FROM bookings b JOIN trips t ON t.id = b.trip_id WHERE b.created_at >= $1 AND b.created_at < $2 AND b.trip_id IS NOT NULL",
		"GROUP BY t.id",
		"ORDER BY 8 DESC, t.name ASC",
	)).
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows(tripStatsColumns).
			AddRow("t2", "White Desert", "desert.jpg", created, created, 3, 7, 9000.0, 210.0).
			AddRow("t1", "Siwa Oasis", "", created, created, 1, 2, 1500.0, 0.0))

	stats, err := repo.TripStats(context.Background(), &from, &to)

	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, domain.TripStats{
		TripID:        "t2",
		TripName:      "White Desert",
		CoverImage:    "desert.jpg",
		TripCreatedAt: created,
		TripUpdatedAt: created,
		BookingTotals: domain.BookingTotals{Bookings: 3, Tickets: 7, EGP: 9000, Euro: 210},
	}, stats[0])
	assert.Equal(t, "t1", stats[1].TripID)
	assert.Equal(t, "", stats[1].CoverImage)
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestBookingRepository_TripStats_NoWindowSkipsOrphans(t *testing.T) {
	db := newMockDB(t)
	repo := NewBookingRepository(db)

	db.ExpectQuery(sqlPattern("JOIN trips t ON t.id = b.trip_id WHERE b.trip_id IS NOT NULL", "GROUP BY t.id")).
		WillReturnRows(pgxmock.NewRows(tripStatsColumns))

	stats, err := repo.TripStats(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, []domain.TripStats{}, stats)
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestBookingRepository_UpdateState_SingleStatement(t *testing.T) {
	db := newMockDB(t)
	repo := NewBookingRepository(db)

	yes := true
	tripID, tripName := "t1", "Siwa Oasis"
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	db.ExpectQuery(sqlPattern(
		"UPDATE bookings SET payment = COALESCE($2, payment), check_in = COALESCE($3, check_in)",
		"status = COALESCE($2, payment) AND COALESCE($3, check_in)",
		"WHERE id = $1",
		"FROM b LEFT JOIN trips t ON t.id = b.trip_id",
	)).
		WithArgs("b1", &yes, (*bool)(nil)).
		WillReturnRows(pgxmock.NewRows(bookingRowColumns).AddRow(
			"b1", &tripID, &tripName, []string{"siwa.jpg"}, 2, 0, 2000.0, 60.0, false,
			"Mona", "Adel", "mona@example.com", "+201000", "", at, true, true, true, at, at))

	b, err := repo.UpdateState(context.Background(), "b1", &yes, nil)

	require.NoError(t, err)
	assert.True(t, b.Payment)
	assert.True(t, b.CheckIn)
	assert.True(t, b.Status)
	require.NotNil(t, b.Trip)
	assert.Equal(t, "Siwa Oasis", b.Trip.Name)
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestBookingRepository_UpdateState_NotFound(t *testing.T) {
	db := newMockDB(t)
	repo := NewBookingRepository(db)

	yes := true
	db.ExpectQuery(sqlPattern("UPDATE bookings SET")).
		WithArgs("missing", (*bool)(nil), &yes).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.UpdateState(context.Background(), "missing", nil, &yes)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, db.ExpectationsWereMet())
}
