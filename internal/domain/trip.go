// Package domain contains the core data types for the Waypost application.
// This package has no dependencies on other internal packages and is imported
// by every other internal package (storage, repo, service, handler, assistant).
package domain

import "time"

// Trip is a journey: an ordered collection of stops plus at most one
// assistant conversation. UpdatedAt is a "last activity" marker; it is
// refreshed whenever any owned stop is created, updated, deleted, or
// reordered, not only on direct edits.
type Trip struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TripInput carries the caller-supplied fields for creating a trip.
type TripInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// TripPatch is a partial update. Only fields with Set=true are applied;
// Description supports explicit null (clear) distinct from absent (keep).
type TripPatch struct {
	Name        Optional[string]  `json:"name"`
	Description Optional[*string] `json:"description"`
}

// Apply overwrites the fields of t that are present in the patch.
func (p TripPatch) Apply(t *Trip) {
	if p.Name.Set {
		t.Name = p.Name.Value
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
}
