package trips

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/Domenick1991/tripoffice/internal/apperror"
	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/Domenick1991/tripoffice/internal/repository"
)

type TripUseCase interface {
	List(ctx context.Context) ([]domain.Trip, error)
	GetByID(ctx context.Context, id string) (*domain.Trip, error)
	Create(ctx context.Context, input TripInput) (*domain.Trip, error)
	Update(ctx context.Context, id string, patch TripPatch) (*domain.Trip, error)
	Delete(ctx context.Context, id string) error
}

type TripCache interface {
	GetTrips(ctx context.Context) ([]domain.Trip, error)
	SetTrips(ctx context.Context, trips []domain.Trip) error
	InvalidateTrips(ctx context.Context) error
}

type TripInput struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Images      []string         `json:"images"`
	Features    []domain.Feature `json:"features"`
	TripTime    domain.TripTime  `json:"tripTime"`
	Prices      domain.Prices    `json:"prices"`
	IsActive    *bool            `json:"isActive"`
}

// TripPatch is a partial update; nil fields are left alone.
type TripPatch struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Images      *[]string         `json:"images"`
	Features    *[]domain.Feature `json:"features"`
	TripTime    *domain.TripTime  `json:"tripTime"`
	Prices      *domain.Prices    `json:"prices"`
	IsActive    *bool             `json:"isActive"`
}

type TripService struct {
	repo  repository.TripRepository
	cache TripCache
}

func NewTripService(repo repository.TripRepository, cache TripCache) *TripService {
	return &TripService{repo: repo, cache: cache}
}

func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetTrips(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	trips, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, "list trips")
	}
	if s.cache != nil {
		if err := s.cache.SetTrips(ctx, trips); err != nil {
			log.Printf("WARNING: failed to cache trips: %v", err)
		}
	}
	return trips, nil
}

func (s *TripService) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "load trip")
	}
	return trip, nil
}

func (s *TripService) Create(ctx context.Context, input TripInput) (*domain.Trip, error) {
	trip := &domain.Trip{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Images:      input.Images,
		Features:    input.Features,
		TripTime:    input.TripTime,
		Prices:      input.Prices,
		IsActive:    true,
	}
	if input.IsActive != nil {
		trip.IsActive = *input.IsActive
	}
	if err := validateTrip(trip); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, trip); err != nil {
		return nil, apperror.Wrap(err, "create trip")
	}
	s.invalidate(ctx)
	return trip, nil
}

func (s *TripService) Update(ctx context.Context, id string, patch TripPatch) (*domain.Trip, error) {
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "load trip")
	}

	if patch.Name != nil {
		trip.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		trip.Description = *patch.Description
	}
	if patch.Images != nil {
		trip.Images = *patch.Images
	}
	if patch.Features != nil {
		trip.Features = *patch.Features
	}
	if patch.TripTime != nil {
		trip.TripTime = *patch.TripTime
	}
	if patch.Prices != nil {
		trip.Prices = *patch.Prices
	}
	if patch.IsActive != nil {
		trip.IsActive = *patch.IsActive
	}
	if err := validateTrip(trip); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, trip); err != nil {
		return nil, notFoundOr(err, "update trip")
	}
	s.invalidate(ctx)
	return trip, nil
}

func (s *TripService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "delete trip")
	}
	s.invalidate(ctx)
	return nil
}

func (s *TripService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTrips(ctx); err != nil {
		log.Printf("WARNING: failed to invalidate trips cache: %v", err)
	}
}

func validateTrip(t *domain.Trip) error {
	if t.Name == "" {
		return apperror.Validation("Trip name is required")
	}
	if strings.TrimSpace(t.Description) == "" {
		return apperror.Validation("Trip description is required")
	}
	if len(t.Images) < domain.MinTripImages || len(t.Images) > domain.MaxTripImages {
		return apperror.Validation("Trip must have between %d and %d images.", domain.MinTripImages, domain.MaxTripImages)
	}
	for i := range t.Features {
		t.Features[i].Title = strings.TrimSpace(t.Features[i].Title)
		t.Features[i].Subtitle = strings.TrimSpace(t.Features[i].Subtitle)
		if t.Features[i].Title == "" || t.Features[i].Subtitle == "" {
			return apperror.Validation("Feature %d needs a title and a subtitle", i+1)
		}
	}
	if t.TripTime.From == "" || t.TripTime.To == "" {
		return apperror.Validation("Trip time from and to are required")
	}
	p := t.Prices
	if p.Adult.EGP < 0 || p.Adult.Euro < 0 || p.Child.EGP < 0 || p.Child.Euro < 0 {
		return apperror.Validation("Prices cannot be negative")
	}
	return nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("No trip found with this ID")
	}
	return apperror.Wrap(err, op)
}

var _ TripUseCase = (*TripService)(nil)
