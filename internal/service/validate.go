package service

import (
	"fmt"
	"strings"

	"github.com/waypost/waypost/backend/internal/domain"
)

// Field bounds enforced at the API boundary. Checked before any mutation,
// so a failed validation never leaves a partial write behind.
const (
	maxNameLen        = 200
	maxDescriptionLen = 2000
	maxNotesLen       = 5000
	maxMessageLen     = 10000
	maxTags           = 20
	maxTagLen         = 50
	maxLinks          = 20
	maxLinkLen        = 500
)

// invalid builds a domain.ErrValidation carrying a message that names the
// offending field.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name is required")
	}
	if len(name) > maxNameLen {
		return invalid("name must be at most %d characters", maxNameLen)
	}
	return nil
}

func validateOptionalText(field string, v *string, max int) error {
	if v != nil && len(*v) > max {
		return invalid("%s must be at most %d characters", field, max)
	}
	return nil
}

func validateStringList(field string, vs []string, maxItems, maxItemLen int) error {
	if len(vs) > maxItems {
		return invalid("%s must have at most %d entries", field, maxItems)
	}
	for _, v := range vs {
		if len(v) > maxItemLen {
			return invalid("%s entries must be at most %d characters", field, maxItemLen)
		}
	}
	return nil
}

// validateStop checks every caller-controlled field of a stop. It is applied
// to the would-be final state, so create and partial update share one rule
// set. Latitude ±90 and longitude ±180 are inclusive bounds.
func validateStop(s domain.Stop) error {
	if err := validateName(s.Name); err != nil {
		return err
	}
	if !s.Type.Valid() {
		return invalid("type must be one of base_camp, waypoint, stop, transport")
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		return invalid("latitude must be between -90 and 90")
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return invalid("longitude must be between -180 and 180")
	}
	if err := validateOptionalText("description", s.Description, maxDescriptionLen); err != nil {
		return err
	}
	if err := validateOptionalText("notes", s.Notes, maxNotesLen); err != nil {
		return err
	}

	// duration_value and duration_unit travel together.
	if (s.DurationValue == nil) != (s.DurationUnit == nil) {
		return invalid("duration_value and duration_unit must be provided together")
	}
	if s.DurationValue != nil && *s.DurationValue <= 0 {
		return invalid("duration_value must be positive")
	}
	if s.DurationUnit != nil && !s.DurationUnit.Valid() {
		return invalid("duration_unit must be one of hours, nights, days")
	}

	if err := validateStringList("tags", s.Tags, maxTags, maxTagLen); err != nil {
		return err
	}
	if err := validateStringList("links", s.Links, maxLinks, maxLinkLen); err != nil {
		return err
	}

	// Transport metadata is tolerated on any type (UI convention), but an
	// unknown mode is still rejected.
	if s.TransportType != nil && !s.TransportType.Valid() {
		return invalid("transport_type must be one of ferry, flight, train, bus")
	}
	return nil
}
