package coupons

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Domenick1991/tripoffice/internal/apperror"
	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/Domenick1991/tripoffice/internal/repository"
)

type CouponUseCase interface {
	Create(ctx context.Context, input CouponInput) (*domain.Coupon, error)
	List(ctx context.Context) ([]domain.Coupon, error)
	Get(ctx context.Context, id string) (*domain.Coupon, error)
	Update(ctx context.Context, id string, patch CouponPatch) (*domain.Coupon, error)
	Delete(ctx context.Context, id string) error
	Toggle(ctx context.Context, id string) (*domain.Coupon, error)
	Validate(ctx context.Context, code string, apply *ApplyRequest) (*Validation, error)
}

type CouponInput struct {
	Code           string            `json:"code"`
	Type           domain.CouponType `json:"type"`
	Discount       domain.Discount   `json:"discount"`
	ExpirationDate time.Time         `json:"expirationDate"`
	Active         *bool             `json:"active"`
}

// CouponPatch is a partial update; nil fields are left alone.
type CouponPatch struct {
	Code           *string            `json:"code"`
	Type           *domain.CouponType `json:"type"`
	Discount       *domain.Discount   `json:"discount"`
	ExpirationDate *time.Time         `json:"expirationDate"`
	Active         *bool              `json:"active"`
}

type ApplyRequest struct {
	Total    float64
	Currency string
}

type Validation struct {
	Code           string              `json:"code"`
	Type           domain.CouponType   `json:"type"`
	Discount       domain.Discount     `json:"discount"`
	ExpirationDate time.Time           `json:"expirationDate"`
	Application    *domain.Application `json:"application,omitempty"`
}

type CouponService struct {
	repo repository.CouponRepository
	now  func() time.Time
}

func NewCouponService(repo repository.CouponRepository) *CouponService {
	return &CouponService{repo: repo, now: time.Now}
}

func (s *CouponService) Create(ctx context.Context, input CouponInput) (*domain.Coupon, error) {
	coupon := &domain.Coupon{
		Code:           strings.TrimSpace(input.Code),
		Type:           input.Type,
		Discount:       input.Discount,
		ExpirationDate: input.ExpirationDate,
		Active:         true,
	}
	if input.Active != nil {
		coupon.Active = *input.Active
	}
	if err := validateCoupon(coupon); err != nil {
		return nil, err
	}
	if err := s.ensureCodeFree(ctx, coupon.Code, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, mapWriteError(err, "create coupon")
	}
	return coupon, nil
}

func (s *CouponService) List(ctx context.Context) ([]domain.Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, "list coupons")
	}
	return coupons, nil
}

func (s *CouponService) Get(ctx context.Context, id string) (*domain.Coupon, error) {
	coupon, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapWriteError(err, "load coupon")
	}
	return coupon, nil
}

func (s *CouponService) Update(ctx context.Context, id string, patch CouponPatch) (*domain.Coupon, error) {
	coupon, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Code != nil {
		coupon.Code = strings.TrimSpace(*patch.Code)
	}
	if patch.Type != nil {
		coupon.Type = *patch.Type
	}
	if patch.Discount != nil {
		coupon.Discount = *patch.Discount
	}
	if patch.ExpirationDate != nil {
		coupon.ExpirationDate = *patch.ExpirationDate
	}
	if patch.Active != nil {
		coupon.Active = *patch.Active
	}
	if err := validateCoupon(coupon); err != nil {
		return nil, err
	}
	if patch.Code != nil {
		if err := s.ensureCodeFree(ctx, coupon.Code, coupon.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, coupon); err != nil {
		return nil, mapWriteError(err, "update coupon")
	}
	return coupon, nil
}

func (s *CouponService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapWriteError(err, "delete coupon")
	}
	return nil
}

func (s *CouponService) Toggle(ctx context.Context, id string) (*domain.Coupon, error) {
	coupon, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	coupon.Active = !coupon.Active
	if err := s.repo.Update(ctx, coupon); err != nil {
		return nil, mapWriteError(err, "toggle coupon")
	}
	return coupon, nil
}

// Validate checks that code is redeemable now and optionally prices a total with it.
func (s *CouponService) Validate(ctx context.Context, code string, apply *ApplyRequest) (*Validation, error) {
	coupon, err := s.repo.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Wrap(err, "load coupon")
	}
	if err != nil || !coupon.Active {
		return nil, apperror.Validation("Invalid or inactive coupon code")
	}

	now := s.now()
	if !coupon.Redeemable(now) {
		return nil, apperror.Validation("Coupon has expired")
	}

	result := &Validation{
		Code:           coupon.Code,
		Type:           coupon.Type,
		Discount:       coupon.Discount,
		ExpirationDate: coupon.ExpirationDate,
	}
	if apply != nil {
		if apply.Total < 0 {
			return nil, apperror.Validation("total cannot be negative")
		}
		application := coupon.ApplyTo(apply.Total, apply.Currency, now)
		result.Application = &application
	}
	return result, nil
}

func (s *CouponService) ensureCodeFree(ctx context.Context, code, selfID string) error {
	existing, err := s.repo.GetByCode(ctx, code)
	switch {
	case err == nil && existing.ID != selfID:
		return codeTaken()
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return apperror.Wrap(err, "check coupon code")
	}
	return nil
}

func validateCoupon(c *domain.Coupon) error {
	if c.Code == "" {
		return apperror.Validation("Coupon code is required")
	}
	if c.ExpirationDate.IsZero() {
		return apperror.Validation("Expiration date is required")
	}

	d := c.Discount
	switch c.Type {
	case domain.CouponPercent:
		if d.Percent == nil {
			return apperror.Validation("discount.percent is required for percent coupons")
		}
		if *d.Percent < 0 || *d.Percent > 100 {
			return apperror.Validation("discount.percent must be between 0 and 100")
		}
	case domain.CouponAmount:
		if d.EGP == nil && d.Euro == nil {
			return apperror.Validation("Amount coupons must include at least one currency amount (egp or euro).")
		}
		if (d.EGP != nil && *d.EGP < 0) || (d.Euro != nil && *d.Euro < 0) {
			return apperror.Validation("Discount amounts cannot be negative")
		}
	default:
		return apperror.Validation("Coupon type must be amount or percent")
	}
	return nil
}

func codeTaken() error {
	return apperror.Conflict("A coupon with this code already exists")
}

func mapWriteError(err error, op string) error {
	var dup *repository.DuplicateError
	switch {
	case errors.As(err, &dup):
		return codeTaken()
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound("No coupon found with that ID")
	}
	return apperror.Wrap(err, op)
}

var _ CouponUseCase = (*CouponService)(nil)
