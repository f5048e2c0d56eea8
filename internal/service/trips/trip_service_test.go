package trips

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/tripoffice/internal/apperror"
	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/Domenick1991/tripoffice/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTripRepository struct {
	mock.Mock
}

func (m *MockTripRepository) List(ctx context.Context) ([]domain.Trip, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Trip), args.Error(1)
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trip), args.Error(1)
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	args := m.Called(ctx, trip)
	return args.Error(0)
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	args := m.Called(ctx, trip)
	return args.Error(0)
}

func (m *MockTripRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetTrips(ctx context.Context) ([]domain.Trip, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Trip), args.Error(1)
}

func (m *MockCache) SetTrips(ctx context.Context, trips []domain.Trip) error {
	args := m.Called(ctx, trips)
	return args.Error(0)
}

func (m *MockCache) InvalidateTrips(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func validInput() TripInput {
	return TripInput{
		Name:        " Fayoum Day Trip ",
		Description: "Lakes and waterfalls",
		Images:      []string{"a.jpg", "b.jpg"},
		Features:    []domain.Feature{{Title: "Lunch", Subtitle: "Included"}},
		TripTime:    domain.TripTime{From: "08:00", To: "18:00"},
		Prices: domain.Prices{
			Adult: domain.Money{EGP: 1200, Euro: 35},
			Child: domain.Money{EGP: 600, Euro: 18},
		},
	}
}

func TestTripService_List_CacheMiss(t *testing.T) {
	repo := &MockTripRepository{}
	cache := &MockCache{}
	service := NewTripService(repo, cache)
	ctx := context.Background()

	trips := []domain.Trip{{ID: "t1", Name: "Luxor"}}
	cache.On("GetTrips", ctx).Return(nil, nil)
	repo.On("List", ctx).Return(trips, nil)
	cache.On("SetTrips", ctx, trips).Return(nil)

	result, err := service.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, trips, result)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestTripService_List_CacheHit(t *testing.T) {
	repo := &MockTripRepository{}
	cache := &MockCache{}
	service := NewTripService(repo, cache)
	ctx := context.Background()

	cached := []domain.Trip{{ID: "t1", Name: "Luxor"}}
	cache.On("GetTrips", ctx).Return(cached, nil)

	result, err := service.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, cached, result)
	repo.AssertNotCalled(t, "List", mock.Anything)
}

func TestTripService_List_EmptyIsNotAnError(t *testing.T) {
	repo := &MockTripRepository{}
	service := NewTripService(repo, nil)
	ctx := context.Background()

	repo.On("List", ctx).Return([]domain.Trip{}, nil)

	result, err := service.List(ctx)

	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestTripService_GetByID_NotFound(t *testing.T) {
	repo := &MockTripRepository{}
	service := NewTripService(repo, nil)
	ctx := context.Background()

	repo.On("GetByID", ctx, "missing").Return(nil, repository.ErrNotFound)

	_, err := service.GetByID(ctx, "missing")

	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestTripService_Create(t *testing.T) {
	repo := &MockTripRepository{}
	cache := &MockCache{}
	service := NewTripService(repo, cache)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Trip")).Return(nil)
	cache.On("InvalidateTrips", ctx).Return(errors.New("redis down"))

	trip, err := service.Create(ctx, validInput())

	require.NoError(t, err)
	assert.Equal(t, "Fayoum Day Trip", trip.Name)
	assert.True(t, trip.IsActive)
	cache.AssertExpectations(t)
}

func TestTripService_Create_Validation(t *testing.T) {
	service := NewTripService(&MockTripRepository{}, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*TripInput)
		msg    string
	}{
		{"no images", func(in *TripInput) { in.Images = nil }, "Trip must have between 1 and 5 images."},
		{"six images", func(in *TripInput) { in.Images = []string{"1", "2", "3", "4", "5", "6"} }, "Trip must have between 1 and 5 images."},
		{"blank name", func(in *TripInput) { in.Name = "  " }, "Trip name is required"},
		{"negative price", func(in *TripInput) { in.Prices.Child.Euro = -1 }, "Prices cannot be negative"},
		{"feature without subtitle", func(in *TripInput) { in.Features = []domain.Feature{{Title: "Lunch"}} }, "Feature 1 needs a title and a subtitle"},
		{"missing trip time", func(in *TripInput) { in.TripTime.To = "" }, "Trip time from and to are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := service.Create(ctx, in)

			assert.True(t, apperror.Is(err, apperror.KindValidation))
			assert.EqualError(t, err, tt.msg)
		})
	}
}

func TestTripService_Update_Partial(t *testing.T) {
	repo := &MockTripRepository{}
	cache := &MockCache{}
	service := NewTripService(repo, cache)
	ctx := context.Background()

	stored := &domain.Trip{
		ID: "t1", Name: "Luxor", Description: "Temples", Images: []string{"a.jpg"},
		TripTime: domain.TripTime{From: "06:00", To: "20:00"}, IsActive: true,
	}
	repo.On("GetByID", ctx, "t1").Return(stored, nil)
	repo.On("Update", ctx, stored).Return(nil)
	cache.On("InvalidateTrips", ctx).Return(nil)

	inactive := false
	updated, err := service.Update(ctx, "t1", TripPatch{IsActive: &inactive})

	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Luxor", updated.Name)
	cache.AssertExpectations(t)
}

func TestTripService_Update_RevalidatesImages(t *testing.T) {
	repo := &MockTripRepository{}
	service := NewTripService(repo, nil)
	ctx := context.Background()

	stored := &domain.Trip{ID: "t1", Name: "Luxor", Description: "Temples", Images: []string{"a.jpg"}, TripTime: domain.TripTime{From: "a", To: "b"}}
	repo.On("GetByID", ctx, "t1").Return(stored, nil)

	empty := []string{}
	_, err := service.Update(ctx, "t1", TripPatch{Images: &empty})

	assert.True(t, apperror.Is(err, apperror.KindValidation))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTripService_Delete(t *testing.T) {
	repo := &MockTripRepository{}
	cache := &MockCache{}
	service := NewTripService(repo, cache)
	ctx := context.Background()

	repo.On("Delete", ctx, "t1").Return(nil)
	repo.On("Delete", ctx, "missing").Return(repository.ErrNotFound)
	cache.On("InvalidateTrips", ctx).Return(nil).Once()

	assert.NoError(t, service.Delete(ctx, "t1"))
	assert.True(t, apperror.Is(service.Delete(ctx, "missing"), apperror.KindNotFound))
	cache.AssertExpectations(t)
}
