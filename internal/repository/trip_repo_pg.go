package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/jackc/pgx/v5"
)

type TripRepository interface {
	List(ctx context.Context) ([]domain.Trip, error)
	GetByID(ctx context.Context, id string) (*domain.Trip, error)
	Create(ctx context.Context, trip *domain.Trip) error
	Update(ctx context.Context, trip *domain.Trip) error
	Delete(ctx context.Context, id string) error
}

type PGTripRepository struct {
	db DB
}

func NewTripRepository(db DB) TripRepository {
	return &PGTripRepository{db: db}
}

const tripColumns = `id, name, description, images, features, trip_time_from, trip_time_to,
	adult_egp, adult_euro, child_egp, child_euro, is_active, created_at, updated_at`

func scanTrip(row pgx.Row) (*domain.Trip, error) {
	var (
		t        domain.Trip
		features []byte
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Images, &features, &t.TripTime.From, &t.TripTime.To,
		&t.Prices.Adult.EGP, &t.Prices.Adult.Euro, &t.Prices.Child.EGP, &t.Prices.Child.Euro,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	if err := json.Unmarshal(features, &t.Features); err != nil {
		return nil, fmt.Errorf("decode trip features: %w", err)
	}
	return &t, nil
}

func (r *PGTripRepository) List(ctx context.Context) ([]domain.Trip, error) {
	rows, err := r.db.Query(ctx, `SELECT `+tripColumns+` FROM trips ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := make([]domain.Trip, 0)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}

func (r *PGTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	return scanTrip(r.db.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id=$1`, id))
}

func (r *PGTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	features, err := json.Marshal(featuresOrEmpty(trip.Features))
	if err != nil {
		return fmt.Errorf("encode trip features: %w", err)
	}

	err = r.db.QueryRow(ctx, `INSERT INTO trips (name, description, images, features, trip_time_from, trip_time_to,
		adult_egp, adult_euro, child_egp, child_euro, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		trip.Name, trip.Description, trip.Images, features, trip.TripTime.From, trip.TripTime.To,
		trip.Prices.Adult.EGP, trip.Prices.Adult.Euro, trip.Prices.Child.EGP, trip.Prices.Child.Euro, trip.IsActive).
		Scan(&trip.ID, &trip.CreatedAt, &trip.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert trip: %w", translate(err))
	}
	return nil
}

func (r *PGTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	features, err := json.Marshal(featuresOrEmpty(trip.Features))
	if err != nil {
		return fmt.Errorf("encode trip features: %w", err)
	}

	err = r.db.QueryRow(ctx, `UPDATE trips SET name=$1, description=$2, images=$3, features=$4, trip_time_from=$5, trip_time_to=$6,
		adult_egp=$7, adult_euro=$8, child_egp=$9, child_euro=$10, is_active=$11, updated_at=now()
		WHERE id=$12 RETURNING updated_at`,
		trip.Name, trip.Description, trip.Images, features, trip.TripTime.From, trip.TripTime.To,
		trip.Prices.Adult.EGP, trip.Prices.Adult.Euro, trip.Prices.Child.EGP, trip.Prices.Child.Euro, trip.IsActive, trip.ID).
		Scan(&trip.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update trip: %w", translate(err))
	}
	return nil
}

func (r *PGTripRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func featuresOrEmpty(f []domain.Feature) []domain.Feature {
	if f == nil {
		return []domain.Feature{}
	}
	return f
}

var _ TripRepository = (*PGTripRepository)(nil)
