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

// StopRepo defines the persistence operations for Stops.
// Every mutation refreshes the parent trip's updated_at in the same
// transaction as the row write, so either both happen or neither does.
type StopRepo interface {
	// ListByTrip returns the trip's stops ordered by "order" ascending.
	// An unknown trip id yields an empty list, not an error.
	ListByTrip(ctx context.Context, tripID string) ([]domain.Stop, error)

	// GetByID retrieves a single stop. Returns domain.ErrNotFound if no stop
	// with that id exists.
	GetByID(ctx context.Context, id string) (domain.Stop, error)

	// Create inserts a new stop. When in.Order is nil the stop is appended:
	// max(order)+1 within the trip, or 0 for the first stop, resolved inside
	// the insert transaction.
	Create(ctx context.Context, tripID string, in domain.StopInput) (domain.Stop, error)

	// Update overwrites the mutable fields of a stop and refreshes
	// updated_at. Returns domain.ErrNotFound if the stop does not exist.
	Update(ctx context.Context, stop domain.Stop) (domain.Stop, error)

	// Delete removes a stop. Reports whether a row was actually removed;
	// deleting an unknown stop is a no-op, not an error.
	Delete(ctx context.Context, id string) (bool, error)

	// Reorder assigns order = index for each id in ids, restricted to stops
	// belonging to tripID. Ids that match no row in that trip are silently
	// ignored; strictness is the service layer's job.
	Reorder(ctx context.Context, tripID string, ids []string) error

	// Restore inserts a stop verbatim, preserving id, order, and timestamps.
	// Used by the import path.
	Restore(ctx context.Context, stop domain.Stop) error
}

type stopRepo struct {
	db storage.Adapter
}

// NewStopRepo constructs a StopRepo backed by the provided adapter.
func NewStopRepo(db storage.Adapter) StopRepo {
	return &stopRepo{db: db}
}

const stopColumns = `id, trip_id, name, type, latitude, longitude, description, notes,
	duration_value, duration_unit, is_optional, tags, links, "order",
	transport_type, departure_time, arrival_time, departure_location, arrival_location,
	created_at, updated_at`

func (r *stopRepo) ListByTrip(ctx context.Context, tripID string) ([]domain.Stop, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+stopColumns+` FROM stops WHERE trip_id = ? ORDER BY "order" ASC`, tripID)
	if err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	stops := []domain.Stop{}
	for rows.Next() {
		st, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.StopRepo.ListByTrip: scan: %w", err)
		}
		stops = append(stops, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByTrip: rows: %w", err)
	}
	return stops, nil
}

func (r *stopRepo) GetByID(ctx context.Context, id string) (domain.Stop, error) {
	st, err := getStop(ctx, r.db, id)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.GetByID: %w", err)
	}
	return st, nil
}

func (r *stopRepo) Create(ctx context.Context, tripID string, in domain.StopInput) (domain.Stop, error) {
	now := time.Now().UTC()
	st := domain.Stop{
		ID:                uuid.NewString(),
		TripID:            tripID,
		Name:              in.Name,
		Type:              in.Type,
		Latitude:          in.Latitude,
		Longitude:         in.Longitude,
		Description:       in.Description,
		Notes:             in.Notes,
		DurationValue:     in.DurationValue,
		DurationUnit:      in.DurationUnit,
		IsOptional:        in.IsOptional,
		Tags:              in.Tags,
		Links:             in.Links,
		TransportType:     in.TransportType,
		DepartureTime:     in.DepartureTime,
		ArrivalTime:       in.ArrivalTime,
		DepartureLocation: in.DepartureLocation,
		ArrivalLocation:   in.ArrivalLocation,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if st.Tags == nil {
		st.Tags = []string{}
	}
	if st.Links == nil {
		st.Links = []string{}
	}

	err := r.db.InTx(ctx, func(q storage.Querier) error {
		if in.Order != nil {
			st.Order = *in.Order
		} else {
			row := q.QueryRow(ctx,
				`SELECT COALESCE(MAX("order") + 1, 0) FROM stops WHERE trip_id = ?`, tripID)
			if err := row.Scan(&st.Order); err != nil {
				return err
			}
		}
		// Touch before insert: an unknown trip surfaces as ErrNotFound here
		// instead of as a foreign key violation on the insert.
		if err := touchTrip(ctx, q, tripID, now); err != nil {
			return err
		}
		return insertStop(ctx, q, st)
	})
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.Create: %w", err)
	}
	return st, nil
}

func (r *stopRepo) Update(ctx context.Context, stop domain.Stop) (domain.Stop, error) {
	now := time.Now().UTC()
	stop.UpdatedAt = now

	tags, err := marshalStrings(stop.Tags)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.Update: %w", err)
	}
	links, err := marshalStrings(stop.Links)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.Update: %w", err)
	}

	err = r.db.InTx(ctx, func(q storage.Querier) error {
		n, err := q.Exec(ctx, `
			UPDATE stops SET
				name = ?, type = ?, latitude = ?, longitude = ?,
				description = ?, notes = ?, duration_value = ?, duration_unit = ?,
				is_optional = ?, tags = ?, links = ?,
				transport_type = ?, departure_time = ?, arrival_time = ?,
				departure_location = ?, arrival_location = ?,
				updated_at = ?
			WHERE id = ?`,
			stop.Name, string(stop.Type), stop.Latitude, stop.Longitude,
			stop.Description, stop.Notes, stop.DurationValue, nullableUnit(stop.DurationUnit),
			stop.IsOptional, tags, links,
			nullableTransport(stop.TransportType), stop.DepartureTime, stop.ArrivalTime,
			stop.DepartureLocation, stop.ArrivalLocation,
			formatTime(now), stop.ID,
		)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return touchTrip(ctx, q, stop.TripID, now)
	})
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.Update: %w", err)
	}
	return stop, nil
}

func (r *stopRepo) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.InTx(ctx, func(q storage.Querier) error {
		st, err := getStop(ctx, q, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := q.Exec(ctx, `DELETE FROM stops WHERE id = ?`, id); err != nil {
			return err
		}
		deleted = true
		return touchTrip(ctx, q, st.TripID, time.Now().UTC())
	})
	if err != nil {
		return false, fmt.Errorf("repo.StopRepo.Delete: %w", err)
	}
	return deleted, nil
}

func (r *stopRepo) Reorder(ctx context.Context, tripID string, ids []string) error {
	err := r.db.InTx(ctx, func(q storage.Querier) error {
		for i, id := range ids {
			_, err := q.Exec(ctx,
				`UPDATE stops SET "order" = ? WHERE id = ? AND trip_id = ?`, i, id, tripID)
			if err != nil {
				return err
			}
		}
		return touchTrip(ctx, q, tripID, time.Now().UTC())
	})
	if err != nil {
		return fmt.Errorf("repo.StopRepo.Reorder: %w", err)
	}
	return nil
}

func (r *stopRepo) Restore(ctx context.Context, stop domain.Stop) error {
	err := r.db.InTx(ctx, func(q storage.Querier) error {
		return insertStop(ctx, q, stop)
	})
	if err != nil {
		return fmt.Errorf("repo.StopRepo.Restore: %w", err)
	}
	return nil
}

func insertStop(ctx context.Context, q storage.Querier, st domain.Stop) error {
	tags, err := marshalStrings(st.Tags)
	if err != nil {
		return err
	}
	links, err := marshalStrings(st.Links)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `
		INSERT INTO stops (
			id, trip_id, name, type, latitude, longitude, description, notes,
			duration_value, duration_unit, is_optional, tags, links, "order",
			transport_type, departure_time, arrival_time, departure_location, arrival_location,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.TripID, st.Name, string(st.Type), st.Latitude, st.Longitude,
		st.Description, st.Notes,
		st.DurationValue, nullableUnit(st.DurationUnit), st.IsOptional, tags, links, st.Order,
		nullableTransport(st.TransportType), st.DepartureTime, st.ArrivalTime,
		st.DepartureLocation, st.ArrivalLocation,
		formatTime(st.CreatedAt), formatTime(st.UpdatedAt),
	)
	return err
}

func getStop(ctx context.Context, q storage.Querier, id string) (domain.Stop, error) {
	row := q.QueryRow(ctx, `SELECT `+stopColumns+` FROM stops WHERE id = ?`, id)
	return scanStop(row)
}

// nullableUnit converts an enum pointer into a driver-friendly value.
func nullableUnit(u *domain.DurationUnit) any {
	if u == nil {
		return nil
	}
	return string(*u)
}

func nullableTransport(t *domain.TransportType) any {
	if t == nil {
		return nil
	}
	return string(*t)
}

// scanStop maps a single database row into a domain.Stop, decoding the
// JSON-encoded tag/link lists and the nullable enum columns.
func scanStop(s scanner) (domain.Stop, error) {
	var (
		st                             domain.Stop
		desc, notes                    sql.NullString
		dUnit, tType                   sql.NullString
		depTime, arrTime, depLoc, arrL sql.NullString
		dVal                           sql.NullFloat64
		tagsJSON, linksJSON            string
		createdAt, updatedAt           string
	)
	err := s.Scan(
		&st.ID, &st.TripID, &st.Name, &st.Type, &st.Latitude, &st.Longitude, &desc, &notes,
		&dVal, &dUnit, &st.IsOptional, &tagsJSON, &linksJSON, &st.Order,
		&tType, &depTime, &arrTime, &depLoc, &arrL,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Stop{}, domain.ErrNotFound
		}
		return domain.Stop{}, err
	}

	st.Description = nullString(desc)
	st.Notes = nullString(notes)
	if dVal.Valid {
		v := dVal.Float64
		st.DurationValue = &v
	}
	if dUnit.Valid {
		u := domain.DurationUnit(dUnit.String)
		st.DurationUnit = &u
	}
	if tType.Valid {
		t := domain.TransportType(tType.String)
		st.TransportType = &t
	}
	st.DepartureTime = nullString(depTime)
	st.ArrivalTime = nullString(arrTime)
	st.DepartureLocation = nullString(depLoc)
	st.ArrivalLocation = nullString(arrL)

	if st.Tags, err = unmarshalStrings(tagsJSON); err != nil {
		return domain.Stop{}, err
	}
	if st.Links, err = unmarshalStrings(linksJSON); err != nil {
		return domain.Stop{}, err
	}
	if st.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Stop{}, err
	}
	if st.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Stop{}, err
	}
	return st, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
