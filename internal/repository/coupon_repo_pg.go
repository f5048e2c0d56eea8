package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/jackc/pgx/v5"
)

type CouponRepository interface {
	Create(ctx context.Context, coupon *domain.Coupon) error
	List(ctx context.Context) ([]domain.Coupon, error)
	GetByID(ctx context.Context, id string) (*domain.Coupon, error)
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	Update(ctx context.Context, coupon *domain.Coupon) error
	Delete(ctx context.Context, id string) error
}

type PGCouponRepository struct {
	db DB
}

func NewCouponRepository(db DB) CouponRepository {
	return &PGCouponRepository{db: db}
}

const couponColumns = `id, code, type, discount_percent, discount_egp, discount_euro, expiration_date, active, created_at, updated_at`

func scanCoupon(row pgx.Row) (*domain.Coupon, error) {
	var c domain.Coupon
	if err := row.Scan(&c.ID, &c.Code, &c.Type, &c.Discount.Percent, &c.Discount.EGP, &c.Discount.Euro,
		&c.ExpirationDate, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *PGCouponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	err := r.db.QueryRow(ctx, `INSERT INTO coupons (code, type, discount_percent, discount_egp, discount_euro, expiration_date, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		coupon.Code, coupon.Type, coupon.Discount.Percent, coupon.Discount.EGP, coupon.Discount.Euro, coupon.ExpirationDate, coupon.Active).
		Scan(&coupon.ID, &coupon.CreatedAt, &coupon.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert coupon: %w", translate(err))
	}
	return nil
}

func (r *PGCouponRepository) List(ctx context.Context) ([]domain.Coupon, error) {
	rows, err := r.db.Query(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coupons := make([]domain.Coupon, 0)
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

func (r *PGCouponRepository) GetByID(ctx context.Context, id string) (*domain.Coupon, error) {
	return scanCoupon(r.db.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id=$1`, id))
}

func (r *PGCouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return scanCoupon(r.db.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE code=$1`, code))
}

func (r *PGCouponRepository) Update(ctx context.Context, coupon *domain.Coupon) error {
	err := r.db.QueryRow(ctx, `UPDATE coupons SET code=$1, type=$2, discount_percent=$3, discount_egp=$4, discount_euro=$5,
		expiration_date=$6, active=$7, updated_at=now()
		WHERE id=$8 RETURNING updated_at`,
		coupon.Code, coupon.Type, coupon.Discount.Percent, coupon.Discount.EGP, coupon.Discount.Euro,
		coupon.ExpirationDate, coupon.Active, coupon.ID).
		Scan(&coupon.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update coupon: %w", translate(err))
	}
	return nil
}

func (r *PGCouponRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM coupons WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ CouponRepository = (*PGCouponRepository)(nil)
