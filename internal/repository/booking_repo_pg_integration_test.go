package repository

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPool gives each test its own schema with the migrations applied.
// The tests are skipped unless TEST_DATABASE_URL is set.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	admin, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(admin.Close)

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = admin.Exec(ctx, `CREATE SCHEMA `+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), `DROP SCHEMA `+schema+` CASCADE`)
	})

	cfg, err := pgxpool.ParseConfig(url)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ddl, err := os.ReadFile("../../migrations/000001_init.up.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(ddl))
	require.NoError(t, err)
	return pool
}

func seedTrip(t *testing.T, repo TripRepository, name string, images ...string) *domain.Trip {
	t.Helper()
	trip := &domain.Trip{
		Name:        name,
		Description: name + " day trip",
		Images:      images,
		TripTime:    domain.TripTime{From: "08:00", To: "18:00"},
		IsActive:    true,
	}
	require.NoError(t, repo.Create(context.Background(), trip))
	return trip
}

func seedBooking(t *testing.T, repo BookingRepository, tripID string, adult, child int, egp, euro float64) *domain.Booking {
	t.Helper()
	b := &domain.Booking{
		TripID:      tripID,
		Adult:       adult,
		Child:       child,
		TotalPrice:  domain.Money{EGP: egp, Euro: euro},
		User:        domain.Customer{FirstName: "Mona", LastName: "Adel", Email: "mona@example.com", Phone: "+201000"},
		BookingDate: time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

func TestPGBookingRepository_Reports(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	trips := NewTripRepository(pool)
	bookings := NewBookingRepository(pool)

	siwa := seedTrip(t, trips, "Siwa Oasis", "siwa.jpg", "siwa-2.jpg")
	desert := seedTrip(t, trips, "White Desert", "desert.jpg")
	gone := seedTrip(t, trips, "Cancelled Cruise", "cruise.jpg")

	seedBooking(t, bookings, siwa.ID, 2, 1, 1500, 45)
	seedBooking(t, bookings, desert.ID, 3, 0, 6000, 120)
	seedBooking(t, bookings, desert.ID, 1, 2, 3000, 0)
	seedBooking(t, bookings, gone.ID, 4, 0, 99999, 999)
	require.NoError(t, trips.Delete(ctx, gone.ID))

	stats, err := bookings.TripStats(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, desert.ID, stats[0].TripID)
	assert.Equal(t, "desert.jpg", stats[0].CoverImage)
	assert.Equal(t, domain.BookingTotals{Bookings: 2, Tickets: 6, EGP: 9000, Euro: 120}, stats[0].BookingTotals)
	assert.Equal(t, siwa.ID, stats[1].TripID)
	assert.Equal(t, "siwa.jpg", stats[1].CoverImage)
	assert.Equal(t, domain.BookingTotals{Bookings: 1, Tickets: 3, EGP: 1500, Euro: 45}, stats[1].BookingTotals)

	totals, err := bookings.Summarize(ctx, domain.BookingFilter{})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingTotals{Bookings: 4, Tickets: 13, EGP: 109499, Euro: 1164}, totals)

	future := time.Now().AddDate(1, 0, 0)
	empty, err := bookings.Summarize(ctx, domain.BookingFilter{From: &future})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingTotals{}, empty)

	none, err := bookings.TripStats(ctx, &future, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPGBookingRepository_UpdateState_ConcurrentFlags(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	trips := NewTripRepository(pool)
	bookings := NewBookingRepository(pool)

	trip := seedTrip(t, trips, "Siwa Oasis", "siwa.jpg")
	b := seedBooking(t, bookings, trip.ID, 1, 0, 500, 15)

	yes := true
	var wg sync.WaitGroup
	for _, flags := range [][2]*bool{{&yes, nil}, {nil, &yes}} {
		wg.Add(1)
		go func(payment, checkIn *bool) {
			defer wg.Done()
			_, err := bookings.UpdateState(ctx, b.ID, payment, checkIn)
			assert.NoError(t, err)
		}(flags[0], flags[1])
	}
	wg.Wait()

	got, err := bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Payment)
	assert.True(t, got.CheckIn)
	assert.True(t, got.Status)

	_, err = bookings.UpdateState(ctx, uuid.NewString(), &yes, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
