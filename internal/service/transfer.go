package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/waypost/waypost/backend/internal/domain"
	"github.com/waypost/waypost/backend/internal/repo"
)

// TransferService implements full-data export and import.
type TransferService struct {
	trips  repo.TripRepo
	stops  repo.StopRepo
	convos repo.ConversationRepo
}

// NewTransferService constructs a TransferService backed by the provided repos.
func NewTransferService(trips repo.TripRepo, stops repo.StopRepo, convos repo.ConversationRepo) *TransferService {
	return &TransferService{trips: trips, stops: stops, convos: convos}
}

// Export assembles a full-data document: every trip with its stops inlined
// and, when one exists, its conversation.
func (s *TransferService) Export(ctx context.Context) (domain.ExportDocument, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return domain.ExportDocument{}, fmt.Errorf("service.TransferService.Export: %w", err)
	}

	doc := domain.ExportDocument{
		Version:    domain.ExportVersion,
		ExportedAt: time.Now().UTC(),
		Trips:      []domain.ExportTrip{},
	}
	for _, t := range trips {
		stops, err := s.stops.ListByTrip(ctx, t.ID)
		if err != nil {
			return domain.ExportDocument{}, fmt.Errorf("service.TransferService.Export: %w", err)
		}

		et := domain.ExportTrip{Trip: t, Stops: stops}
		convo, err := s.convos.Get(ctx, t.ID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// no conversation saved for this trip
		case err != nil:
			return domain.ExportDocument{}, fmt.Errorf("service.TransferService.Export: %w", err)
		default:
			et.Conversation = &convo
		}
		doc.Trips = append(doc.Trips, et)
	}
	return doc, nil
}

// Import loads an export document. In merge mode, trips whose id already
// exists are skipped; in replace mode, all existing trips are removed first.
// The document is validated in full before anything is written, so a bad
// document never produces a partial import.
func (s *TransferService) Import(ctx context.Context, doc domain.ExportDocument, mode domain.ImportMode) (domain.ImportResult, error) {
	if !mode.Valid() {
		return domain.ImportResult{}, fmt.Errorf("service.TransferService.Import: %w", invalid("mode must be merge or replace"))
	}
	if doc.Version != domain.ExportVersion {
		return domain.ImportResult{}, fmt.Errorf("service.TransferService.Import: %w", invalid("unsupported export version %d", doc.Version))
	}
	if err := validateImport(doc); err != nil {
		return domain.ImportResult{}, fmt.Errorf("service.TransferService.Import: %w", err)
	}

	if mode == domain.ImportReplace {
		existing, err := s.trips.List(ctx)
		if err != nil {
			return domain.ImportResult{}, fmt.Errorf("service.TransferService.Import: %w", err)
		}
		for _, t := range existing {
			if _, err := s.trips.Delete(ctx, t.ID); err != nil {
				return domain.ImportResult{}, fmt.Errorf("service.TransferService.Import: %w", err)
			}
		}
	}

	var result domain.ImportResult
	for _, et := range doc.Trips {
		if mode == domain.ImportMerge {
			_, err := s.trips.GetByID(ctx, et.ID)
			if err == nil {
				result.Skipped++
				continue
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return result, fmt.Errorf("service.TransferService.Import: %w", err)
			}
		}

		if err := s.trips.Restore(ctx, et.Trip); err != nil {
			return result, fmt.Errorf("service.TransferService.Import: %w", err)
		}
		for _, st := range et.Stops {
			st.TripID = et.ID
			if err := s.stops.Restore(ctx, st); err != nil {
				return result, fmt.Errorf("service.TransferService.Import: %w", err)
			}
		}
		if et.Conversation != nil {
			c := *et.Conversation
			c.TripID = et.ID
			// Documents from other tools may omit row bookkeeping; fill it in
			// rather than storing an unkeyed row.
			if c.ID == "" {
				c.ID = uuid.NewString()
			}
			now := time.Now().UTC()
			if c.CreatedAt.IsZero() {
				c.CreatedAt = now
			}
			if c.UpdatedAt.IsZero() {
				c.UpdatedAt = now
			}
			if err := s.convos.Restore(ctx, c); err != nil {
				return result, fmt.Errorf("service.TransferService.Import: %w", err)
			}
		}
		result.Imported++
	}
	return result, nil
}

// validateImport runs the same field rules over every entity in the document
// that create and update enforce, plus id well-formedness.
func validateImport(doc domain.ExportDocument) error {
	ids := lo.Map(doc.Trips, func(et domain.ExportTrip, _ int) string { return et.ID })
	if len(lo.Uniq(ids)) != len(ids) {
		return invalid("duplicate trip ids in document")
	}

	for _, et := range doc.Trips {
		if uuid.Validate(et.ID) != nil {
			return invalid("trip id %q is not a valid uuid", et.ID)
		}
		if err := validateName(et.Name); err != nil {
			return err
		}
		if err := validateOptionalText("description", et.Description, maxDescriptionLen); err != nil {
			return err
		}
		for _, st := range et.Stops {
			if uuid.Validate(st.ID) != nil {
				return invalid("stop id %q is not a valid uuid", st.ID)
			}
			if err := validateStop(st); err != nil {
				return err
			}
		}
		if et.Conversation != nil {
			for _, m := range et.Conversation.Messages {
				if !m.Role.Valid() {
					return invalid("conversation role must be user or assistant")
				}
				if len(m.Content) > maxMessageLen {
					return invalid("content must be at most %d characters", maxMessageLen)
				}
			}
		}
	}
	return nil
}
