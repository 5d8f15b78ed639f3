package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/waypost/waypost/backend/internal/domain"
	"github.com/waypost/waypost/backend/internal/repo"
)

// StopService implements business logic for Stop operations.
// It holds the trip repo too because creating a stop requires verifying the
// parent trip exists before anything is written.
type StopService struct {
	trips repo.TripRepo
	stops repo.StopRepo
}

// NewStopService constructs a StopService backed by the provided repos.
func NewStopService(trips repo.TripRepo, stops repo.StopRepo) *StopService {
	return &StopService{trips: trips, stops: stops}
}

// ListByTrip returns a trip's stops in route order. An unknown trip yields an
// empty list rather than an error.
func (s *StopService) ListByTrip(ctx context.Context, tripID string) ([]domain.Stop, error) {
	stops, err := s.stops.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.StopService.ListByTrip: %w", err)
	}
	if stops == nil {
		stops = []domain.Stop{}
	}
	return stops, nil
}

// GetByID returns a single stop by id.
func (s *StopService) GetByID(ctx context.Context, id string) (domain.Stop, error) {
	stop, err := s.stops.GetByID(ctx, id)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.GetByID: %w", err)
	}
	return stop, nil
}

// Create validates the stop, verifies the parent trip exists, then persists.
// Returns domain.ErrValidation if input violates a field constraint and
// domain.ErrNotFound if the parent trip does not exist.
func (s *StopService) Create(ctx context.Context, tripID string, in domain.StopInput) (domain.Stop, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Create: %w", err)
	}
	if err := validateStop(stopFromInput(in)); err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Create: %w", err)
	}
	stop, err := s.stops.Create(ctx, tripID, in)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Create: %w", err)
	}
	return stop, nil
}

// Update applies a partial patch to an existing stop. The patch is applied to
// the current state and the result validated as a whole, so create and update
// share one rule set.
func (s *StopService) Update(ctx context.Context, id string, patch domain.StopPatch) (domain.Stop, error) {
	stop, err := s.stops.GetByID(ctx, id)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Update: %w", err)
	}

	patch.Apply(&stop)

	if err := validateStop(stop); err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Update: %w", err)
	}

	updated, err := s.stops.Update(ctx, stop)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a stop. Returns domain.ErrNotFound if it does not exist.
func (s *StopService) Delete(ctx context.Context, id string) error {
	deleted, err := s.stops.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("service.StopService.Delete: %w", err)
	}
	if !deleted {
		return fmt.Errorf("service.StopService.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// Reorder assigns order = index for each id in ids and returns the stops in
// their new sequence. The id list must be a permutation of the trip's current
// stop ids; this layer is the single strictness gate, the repo underneath
// stays permissive.
func (s *StopService) Reorder(ctx context.Context, tripID string, ids []string) ([]domain.Stop, error) {
	current, err := s.stops.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.StopService.Reorder: %w", err)
	}

	existing := lo.Map(current, func(st domain.Stop, _ int) string { return st.ID })
	if len(ids) != len(existing) ||
		len(lo.Uniq(ids)) != len(ids) ||
		!lo.Every(existing, ids) {
		return nil, fmt.Errorf("service.StopService.Reorder: %w", invalid("stop_ids must be a permutation of the trip's stop ids"))
	}

	if err := s.stops.Reorder(ctx, tripID, ids); err != nil {
		return nil, fmt.Errorf("service.StopService.Reorder: %w", err)
	}

	reordered, err := s.stops.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.StopService.Reorder: %w", err)
	}
	return reordered, nil
}

// stopFromInput builds the would-be stop for validation purposes only.
func stopFromInput(in domain.StopInput) domain.Stop {
	return domain.Stop{
		Name:          in.Name,
		Type:          in.Type,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		Description:   in.Description,
		Notes:         in.Notes,
		DurationValue: in.DurationValue,
		DurationUnit:  in.DurationUnit,
		IsOptional:    in.IsOptional,
		Tags:          in.Tags,
		Links:         in.Links,
		TransportType: in.TransportType,
	}
}
