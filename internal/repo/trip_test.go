package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypost/waypost/backend/internal/domain"
	"github.com/waypost/waypost/backend/internal/repo"
	"github.com/waypost/waypost/backend/testutil"
)

func strPtr(s string) *string { return &s }

func tripInput() domain.TripInput {
	return domain.TripInput{
		Name:        "Iceland Ring Road",
		Description: strPtr("Two weeks around the island"),
	}
}

func TestTripRepo_Create(t *testing.T) {
	r := repo.NewTripRepo(testutil.NewAdapter(t))
	ctx := context.Background()

	got, err := r.Create(ctx, tripInput())

	require.NoError(t, err)
	assert.NoError(t, uuid.Validate(got.ID), "ID should be a valid uuid")
	assert.Equal(t, "Iceland Ring Road", got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, "Two weeks around the island", *got.Description)
	assert.False(t, got.CreatedAt.IsZero())
	assert.True(t, got.CreatedAt.Equal(got.UpdatedAt), "fresh trip has identical timestamps")
}

func TestTripRepo_GetByID_RoundTrips(t *testing.T) {
	r := repo.NewTripRepo(testutil.NewAdapter(t))
	ctx := context.Background()

	created, err := r.Create(ctx, tripInput())
	require.NoError(t, err)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, *created.Description, *got.Description)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestTripRepo_GetByID_NotFound(t *testing.T) {
	r := repo.NewTripRepo(testutil.NewAdapter(t))

	_, err := r.GetByID(context.Background(), uuid.NewString())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripRepo_List_MostRecentlyUpdatedFirst(t *testing.T) {
	r := repo.NewTripRepo(testutil.NewAdapter(t))
	ctx := context.Background()

	first, err := r.Create(ctx, domain.TripInput{Name: "First"})
	require.NoError(t, err)
	second, err := r.Create(ctx, domain.TripInput{Name: "Second"})
	require.NoError(t, err)

	// Touch the older trip so it jumps to the front.
	first.Name = "First, renamed"
	_, err = r.Update(ctx, first)
	require.NoError(t, err)

	trips, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, first.ID, trips[0].ID)
	assert.Equal(t, second.ID, trips[1].ID)
}

func TestTripRepo_Update_ClearsDescription(t *testing.T) {
	r := repo.NewTripRepo(testutil.NewAdapter(t))
	ctx := context.Background()

	created, err := r.Create(ctx, tripInput())
	require.NoError(t, err)

	created.Description = nil
	updated, err := r.Update(ctx, created)
	require.NoError(t, err)
	assert.Nil(t, updated.Description)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Description, "cleared description must persist as NULL")
}

func TestTripRepo_Update_NotFound(t *testing.T) {
	r := repo.NewTripRepo(testutil.NewAdapter(t))

	_, err := r.Update(context.Background(), domain.Trip{ID: uuid.NewString(), Name: "ghost"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripRepo_Delete_RemovesOwnedRows(t *testing.T) {
	db := testutil.NewAdapter(t)
	trips := repo.NewTripRepo(db)
	stops := repo.NewStopRepo(db)
	convos := repo.NewConversationRepo(db)
	ctx := context.Background()

	trip, err := trips.Create(ctx, tripInput())
	require.NoError(t, err)
	_, err = stops.Create(ctx, trip.ID, stopInput("Reykjavik"))
	require.NoError(t, err)
	_, err = convos.Save(ctx, trip.ID, []domain.Message{
		{Role: domain.RoleUser, Content: "hi", Timestamp: time.Now().UTC()},
	})
	require.NoError(t, err)

	deleted, err := trips.Delete(ctx, trip.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = trips.GetByID(ctx, trip.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	remaining, err := stops.ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining, "stops must be removed with the trip")

	_, err = convos.Get(ctx, trip.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "conversation must be removed with the trip")
}

func TestTripRepo_Delete_UnknownIsNoOp(t *testing.T) {
	r := repo.NewTripRepo(testutil.NewAdapter(t))

	deleted, err := r.Delete(context.Background(), uuid.NewString())

	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestTripRepo_Restore_PreservesIDAndTimestamps(t *testing.T) {
	r := repo.NewTripRepo(testutil.NewAdapter(t))
	ctx := context.Background()

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	trip := domain.Trip{
		ID:        uuid.NewString(),
		Name:      "Restored",
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
	}

	require.NoError(t, r.Restore(ctx, trip))

	got, err := r.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, got.ID)
	assert.True(t, got.CreatedAt.Equal(trip.CreatedAt))
	assert.True(t, got.UpdatedAt.Equal(trip.UpdatedAt))
}
