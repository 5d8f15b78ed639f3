package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/waypost/waypost/backend/internal/domain"
	"github.com/waypost/waypost/backend/internal/storage"
)

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the implementation,
// which allows the services to be unit-tested with a mock.
type TripRepo interface {
	// List returns all trips, most recently updated first.
	List(ctx context.Context) ([]domain.Trip, error)

	// GetByID retrieves a single trip. Returns domain.ErrNotFound if no trip
	// with that id exists.
	GetByID(ctx context.Context, id string) (domain.Trip, error)

	// Create inserts a new trip with a fresh id and identical created/updated
	// timestamps, and returns the persisted record.
	Create(ctx context.Context, in domain.TripInput) (domain.Trip, error)

	// Update overwrites the mutable fields of an existing trip and refreshes
	// updated_at. Returns domain.ErrNotFound if the trip does not exist.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip and everything it owns (stops, conversation) in
	// one transaction. Reports whether a trip row was actually removed.
	Delete(ctx context.Context, id string) (bool, error)

	// Restore inserts a trip verbatim, preserving its id and timestamps.
	// Used by the import path.
	Restore(ctx context.Context, trip domain.Trip) error
}

type tripRepo struct {
	db storage.Adapter
}

// NewTripRepo constructs a TripRepo backed by the provided adapter.
func NewTripRepo(db storage.Adapter) TripRepo {
	return &tripRepo{db: db}
}

const tripColumns = `id, name, description, created_at, updated_at`

func (r *tripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	rows, err := r.db.Query(ctx, `SELECT `+tripColumns+` FROM trips ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.List: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: rows: %w", err)
	}
	return trips, nil
}

func (r *tripRepo) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	row := r.db.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = ?`, id)
	t, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return t, nil
}

func (r *tripRepo) Create(ctx context.Context, in domain.TripInput) (domain.Trip, error) {
	now := time.Now().UTC()
	t := domain.Trip{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.insert(ctx, t); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return t, nil
}

func (r *tripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip.UpdatedAt = time.Now().UTC()

	n, err := r.db.Exec(ctx,
		`UPDATE trips SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		trip.Name, trip.Description, formatTime(trip.UpdatedAt), trip.ID,
	)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	if n == 0 {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", domain.ErrNotFound)
	}
	return trip, nil
}

func (r *tripRepo) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.InTx(ctx, func(q storage.Querier) error {
		if _, err := q.Exec(ctx, `DELETE FROM stops WHERE trip_id = ?`, id); err != nil {
			return err
		}
		if _, err := q.Exec(ctx, `DELETE FROM conversations WHERE trip_id = ?`, id); err != nil {
			return err
		}
		n, err := q.Exec(ctx, `DELETE FROM trips WHERE id = ?`, id)
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	return deleted, nil
}

func (r *tripRepo) Restore(ctx context.Context, trip domain.Trip) error {
	if err := r.insert(ctx, trip); err != nil {
		return fmt.Errorf("repo.TripRepo.Restore: %w", err)
	}
	return nil
}

func (r *tripRepo) insert(ctx context.Context, t domain.Trip) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO trips (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	return err
}

// scanTrip maps a single database row into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t                  domain.Trip
		desc               sql.NullString
		createdAt, updated string
	)
	if err := s.Scan(&t.ID, &t.Name, &desc, &createdAt, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}
	if desc.Valid {
		d := desc.String
		t.Description = &d
	}

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Trip{}, err
	}
	if t.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.Trip{}, err
	}
	return t, nil
}
