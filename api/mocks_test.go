package api

import (
	"context"
	"time"

	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/Domenick1991/tripoffice/internal/service/booking"
	"github.com/Domenick1991/tripoffice/internal/service/coupons"
	"github.com/Domenick1991/tripoffice/internal/service/trips"
	"github.com/Domenick1991/tripoffice/internal/timerange"
	"github.com/stretchr/testify/mock"
)

type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Create(ctx context.Context, admin *domain.AdminUser) error {
	return m.Called(ctx, admin).Error(0)
}

func (m *MockAdminRepository) GetByID(ctx context.Context, id string) (*domain.AdminUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminUser), args.Error(1)
}

func (m *MockAdminRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminUser), args.Error(1)
}

func (m *MockAdminRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.AdminUser, error) {
	args := m.Called(ctx, email, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminUser), args.Error(1)
}

func (m *MockAdminRepository) List(ctx context.Context) ([]domain.AdminUser, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.AdminUser), args.Error(1)
}

func (m *MockAdminRepository) Update(ctx context.Context, admin *domain.AdminUser) error {
	return m.Called(ctx, admin).Error(0)
}

func (m *MockAdminRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAdminRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type MockTripUseCase struct {
	mock.Mock
}

func (m *MockTripUseCase) List(ctx context.Context) ([]domain.Trip, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Trip), args.Error(1)
}

func (m *MockTripUseCase) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trip), args.Error(1)
}

func (m *MockTripUseCase) Create(ctx context.Context, input trips.TripInput) (*domain.Trip, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trip), args.Error(1)
}

func (m *MockTripUseCase) Update(ctx context.Context, id string, patch trips.TripPatch) (*domain.Trip, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trip), args.Error(1)
}

func (m *MockTripUseCase) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*booking.CreateResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.CreateResult), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context, query booking.ListQuery) (*booking.Page, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Page), args.Error(1)
}

func (m *MockBookingUseCase) UpdateState(ctx context.Context, id string, input booking.StateInput) (*domain.Booking, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) TripReports(ctx context.Context, window *timerange.Range) ([]domain.TripStats, error) {
	args := m.Called(ctx, window)
	return args.Get(0).([]domain.TripStats), args.Error(1)
}

func (m *MockBookingUseCase) TotalReport(ctx context.Context, window *timerange.Range) (domain.BookingTotals, error) {
	args := m.Called(ctx, window)
	return args.Get(0).(domain.BookingTotals), args.Error(1)
}

type MockCouponUseCase struct {
	mock.Mock
}

func (m *MockCouponUseCase) Create(ctx context.Context, input coupons.CouponInput) (*domain.Coupon, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coupon), args.Error(1)
}

func (m *MockCouponUseCase) List(ctx context.Context) ([]domain.Coupon, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Coupon), args.Error(1)
}

func (m *MockCouponUseCase) Get(ctx context.Context, id string) (*domain.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coupon), args.Error(1)
}

func (m *MockCouponUseCase) Update(ctx context.Context, id string, patch coupons.CouponPatch) (*domain.Coupon, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coupon), args.Error(1)
}

func (m *MockCouponUseCase) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCouponUseCase) Toggle(ctx context.Context, id string) (*domain.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coupon), args.Error(1)
}

func (m *MockCouponUseCase) Validate(ctx context.Context, code string, apply *coupons.ApplyRequest) (*coupons.Validation, error) {
	args := m.Called(ctx, code, apply)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupons.Validation), args.Error(1)
}
