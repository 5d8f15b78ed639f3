package assistant

import (
	"fmt"

	"github.com/waypost/waypost/backend/internal/domain"
)

// toolKind is the closed set of tools exposed to the model. Dispatch is an
// exhaustive switch over this type, so adding a tool without handling it is a
// compile-visible gap rather than a silent fallthrough.
type toolKind int

const (
	toolGetTripInfo toolKind = iota
	toolAddStop
	toolUpdateStop
	toolRemoveStop
	toolReorderStops
)

const (
	nameGetTripInfo  = "get_trip_info"
	nameAddStop      = "add_stop"
	nameUpdateStop   = "update_stop"
	nameRemoveStop   = "remove_stop"
	nameReorderStops = "reorder_stops"
)

func parseToolKind(name string) (toolKind, error) {
	switch name {
	case nameGetTripInfo:
		return toolGetTripInfo, nil
	case nameAddStop:
		return toolAddStop, nil
	case nameUpdateStop:
		return toolUpdateStop, nil
	case nameRemoveStop:
		return toolRemoveStop, nil
	case nameReorderStops:
		return toolReorderStops, nil
	}
	return 0, fmt.Errorf("unknown tool %q", name)
}

// addStopArgs mirrors domain.StopInput with the snake_case field names the
// tool schema advertises.
type addStopArgs struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	Description   *string  `json:"description"`
	Notes         *string  `json:"notes"`
	DurationValue *float64 `json:"duration_value"`
	DurationUnit  *string  `json:"duration_unit"`
	IsOptional    bool     `json:"is_optional"`
	Tags          []string `json:"tags"`
	Links         []string `json:"links"`
}

func (a addStopArgs) input() domain.StopInput {
	in := domain.StopInput{
		Name:        a.Name,
		Type:        domain.StopType(a.Type),
		Latitude:    a.Latitude,
		Longitude:   a.Longitude,
		Description: a.Description,
		Notes:       a.Notes,
		IsOptional:  a.IsOptional,
		Tags:        a.Tags,
		Links:       a.Links,
	}
	in.DurationValue = a.DurationValue
	if a.DurationUnit != nil {
		u := domain.DurationUnit(*a.DurationUnit)
		in.DurationUnit = &u
	}
	return in
}

// updateStopArgs carries a stop id plus the same optional fields as a patch.
// Pointers distinguish omitted fields from provided ones; the tool surface
// has no "explicit null" concept, so absent means unchanged.
type updateStopArgs struct {
	StopID        string   `json:"stop_id"`
	Name          *string  `json:"name"`
	Type          *string  `json:"type"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Description   *string  `json:"description"`
	Notes         *string  `json:"notes"`
	DurationValue *float64 `json:"duration_value"`
	DurationUnit  *string  `json:"duration_unit"`
	IsOptional    *bool    `json:"is_optional"`
	Tags          []string `json:"tags"`
	Links         []string `json:"links"`
}

func (a updateStopArgs) patch() domain.StopPatch {
	var p domain.StopPatch
	if a.Name != nil {
		p.Name = domain.Some(*a.Name)
	}
	if a.Type != nil {
		p.Type = domain.Some(domain.StopType(*a.Type))
	}
	if a.Latitude != nil {
		p.Latitude = domain.Some(*a.Latitude)
	}
	if a.Longitude != nil {
		p.Longitude = domain.Some(*a.Longitude)
	}
	if a.Description != nil {
		p.Description = domain.Some(a.Description)
	}
	if a.Notes != nil {
		p.Notes = domain.Some(a.Notes)
	}
	if a.DurationValue != nil {
		p.DurationValue = domain.Some(a.DurationValue)
	}
	if a.DurationUnit != nil {
		u := domain.DurationUnit(*a.DurationUnit)
		p.DurationUnit = domain.Some(&u)
	}
	if a.IsOptional != nil {
		p.IsOptional = domain.Some(*a.IsOptional)
	}
	if a.Tags != nil {
		p.Tags = domain.Some(a.Tags)
	}
	if a.Links != nil {
		p.Links = domain.Some(a.Links)
	}
	return p
}

type removeStopArgs struct {
	StopID string `json:"stop_id"`
}

type reorderArgs struct {
	StopIDs []string `json:"stop_ids"`
}

// toolSpecs returns the schemas advertised to the model.
func toolSpecs() []ToolSpec {
	stopFields := map[string]any{
		"name":           map[string]any{"type": "string"},
		"type":           map[string]any{"type": "string", "enum": []string{"base_camp", "waypoint", "stop", "transport"}},
		"latitude":       map[string]any{"type": "number", "minimum": -90, "maximum": 90},
		"longitude":      map[string]any{"type": "number", "minimum": -180, "maximum": 180},
		"description":    map[string]any{"type": "string"},
		"notes":          map[string]any{"type": "string"},
		"duration_value": map[string]any{"type": "number"},
		"duration_unit":  map[string]any{"type": "string", "enum": []string{"hours", "nights", "days"}},
		"is_optional":    map[string]any{"type": "boolean"},
		"tags":           map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"links":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	}

	updateFields := map[string]any{
		"stop_id": map[string]any{"type": "string", "description": "Id of the stop to update."},
	}
	for k, v := range stopFields {
		updateFields[k] = v
	}

	return []ToolSpec{
		{
			Name:        nameGetTripInfo,
			Description: "Get the trip's details and its current stops in route order.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        nameAddStop,
			Description: "Add a new stop to the trip. It is appended to the end of the route.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": stopFields,
				"required":   []string{"name", "type", "latitude", "longitude"},
			},
		},
		{
			Name:        nameUpdateStop,
			Description: "Update fields of an existing stop. Omitted fields are left unchanged.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": updateFields,
				"required":   []string{"stop_id"},
			},
		},
		{
			Name:        nameRemoveStop,
			Description: "Remove a stop from the trip.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"stop_id": map[string]any{"type": "string", "description": "Id of the stop to remove."},
				},
				"required": []string{"stop_id"},
			},
		},
		{
			Name:        nameReorderStops,
			Description: "Reorder the trip's stops. stop_ids must list every current stop id exactly once, in the desired order.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"stop_ids": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
				"required": []string{"stop_ids"},
			},
		},
	}
}
