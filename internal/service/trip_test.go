package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypost/waypost/backend/internal/domain"
	"github.com/waypost/waypost/backend/internal/repo"
	"github.com/waypost/waypost/backend/internal/service"
)

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field; set only the ones your test needs.
type mockTripRepo struct {
	list    func(ctx context.Context) ([]domain.Trip, error)
	getByID func(ctx context.Context, id string) (domain.Trip, error)
	create  func(ctx context.Context, in domain.TripInput) (domain.Trip, error)
	update  func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete  func(ctx context.Context, id string) (bool, error)
	restore func(ctx context.Context, trip domain.Trip) error
}

func (m *mockTripRepo) List(ctx context.Context) ([]domain.Trip, error) { return m.list(ctx) }
func (m *mockTripRepo) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) Create(ctx context.Context, in domain.TripInput) (domain.Trip, error) {
	return m.create(ctx, in)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, id string) (bool, error) {
	return m.delete(ctx, id)
}
func (m *mockTripRepo) Restore(ctx context.Context, trip domain.Trip) error {
	return m.restore(ctx, trip)
}

// compile-time check: mockTripRepo must satisfy repo.TripRepo.
var _ repo.TripRepo = (*mockTripRepo)(nil)

func storedTrip() domain.Trip {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	desc := "around the island"
	return domain.Trip{
		ID:          uuid.NewString(),
		Name:        "Iceland",
		Description: &desc,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// echoTripRepo returns whatever it receives, so tests exercise only the
// service's validation logic.
func echoTripRepo() *mockTripRepo {
	stored := storedTrip()
	return &mockTripRepo{
		create: func(_ context.Context, in domain.TripInput) (domain.Trip, error) {
			return domain.Trip{ID: uuid.NewString(), Name: in.Name, Description: in.Description}, nil
		},
		getByID: func(_ context.Context, _ string) (domain.Trip, error) { return stored, nil },
		update:  func(_ context.Context, trip domain.Trip) (domain.Trip, error) { return trip, nil },
	}
}

func TestTripService_Create_Valid(t *testing.T) {
	svc := service.NewTripService(echoTripRepo())

	got, err := svc.Create(context.Background(), domain.TripInput{Name: "Iceland"})

	require.NoError(t, err)
	assert.Equal(t, "Iceland", got.Name)
}

func TestTripService_Create_MissingName(t *testing.T) {
	svc := service.NewTripService(echoTripRepo())

	_, err := svc.Create(context.Background(), domain.TripInput{Name: "   "})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Create_NameTooLong(t *testing.T) {
	svc := service.NewTripService(echoTripRepo())

	_, err := svc.Create(context.Background(), domain.TripInput{Name: strings.Repeat("x", 201)})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Create_NameAtLimit(t *testing.T) {
	svc := service.NewTripService(echoTripRepo())

	_, err := svc.Create(context.Background(), domain.TripInput{Name: strings.Repeat("x", 200)})

	assert.NoError(t, err, "bounds are inclusive")
}

func TestTripService_Update_AbsentFieldsUntouched(t *testing.T) {
	svc := service.NewTripService(echoTripRepo())

	got, err := svc.Update(context.Background(), uuid.NewString(), domain.TripPatch{
		Name: domain.Some("Renamed"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	require.NotNil(t, got.Description, "absent description must survive the patch")
	assert.Equal(t, "around the island", *got.Description)
}

func TestTripService_Update_ExplicitNullClearsDescription(t *testing.T) {
	svc := service.NewTripService(echoTripRepo())

	got, err := svc.Update(context.Background(), uuid.NewString(), domain.TripPatch{
		Description: domain.Some[*string](nil),
	})

	require.NoError(t, err)
	assert.Nil(t, got.Description)
}

func TestTripService_Update_PatchedStateValidated(t *testing.T) {
	svc := service.NewTripService(echoTripRepo())

	_, err := svc.Update(context.Background(), uuid.NewString(), domain.TripPatch{
		Name: domain.Some(""),
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Delete_NotFound(t *testing.T) {
	svc := service.NewTripService(&mockTripRepo{
		delete: func(_ context.Context, _ string) (bool, error) { return false, nil },
	})

	err := svc.Delete(context.Background(), uuid.NewString())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_List_NeverNil(t *testing.T) {
	svc := service.NewTripService(&mockTripRepo{
		list: func(_ context.Context) ([]domain.Trip, error) { return nil, nil },
	})

	got, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
