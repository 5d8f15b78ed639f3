package domain

import "time"

// StopType classifies a stop's role in the itinerary.
type StopType string

const (
	// StopTypeBaseCamp is a multi-night anchor location.
	StopTypeBaseCamp StopType = "base_camp"
	// StopTypeWaypoint is a single overnight stop.
	StopTypeWaypoint StopType = "waypoint"
	// StopTypeStop is an hours-only visit.
	StopTypeStop StopType = "stop"
	// StopTypeTransport is a transit segment (ferry, flight, train, bus).
	StopTypeTransport StopType = "transport"
)

// Valid reports whether t is one of the known stop types.
func (t StopType) Valid() bool {
	switch t {
	case StopTypeBaseCamp, StopTypeWaypoint, StopTypeStop, StopTypeTransport:
		return true
	}
	return false
}

// DurationUnit qualifies a stop's duration value.
type DurationUnit string

const (
	DurationHours  DurationUnit = "hours"
	DurationNights DurationUnit = "nights"
	DurationDays   DurationUnit = "days"
)

// Valid reports whether u is one of the known duration units.
func (u DurationUnit) Valid() bool {
	switch u {
	case DurationHours, DurationNights, DurationDays:
		return true
	}
	return false
}

// TransportType is the mode of a transport stop.
type TransportType string

const (
	TransportFerry  TransportType = "ferry"
	TransportFlight TransportType = "flight"
	TransportTrain  TransportType = "train"
	TransportBus    TransportType = "bus"
)

// Valid reports whether t is one of the known transport modes.
func (t TransportType) Valid() bool {
	switch t {
	case TransportFerry, TransportFlight, TransportTrain, TransportBus:
		return true
	}
	return false
}

// Stop is a single location or event entry in a trip's itinerary.
// Order is a zero-based dense sequence unique within the trip; after any
// reorder the orders of a trip's stops form a contiguous 0..N-1 permutation.
// The transport fields are only meaningful when Type is transport, but that
// exclusivity is a UI convention, not enforced here.
type Stop struct {
	ID            string        `json:"id"`
	TripID        string        `json:"tripId"`
	Name          string        `json:"name"`
	Type          StopType      `json:"type"`
	Latitude      float64       `json:"latitude"`
	Longitude     float64       `json:"longitude"`
	Description   *string       `json:"description,omitempty"`
	Notes         *string       `json:"notes,omitempty"`
	DurationValue *float64      `json:"durationValue,omitempty"`
	DurationUnit  *DurationUnit `json:"durationUnit,omitempty"`
	// IsOptional marks a "serendipity candidate" stop.
	IsOptional bool     `json:"isOptional"`
	Tags       []string `json:"tags"`
	Links      []string `json:"links"`
	Order      int      `json:"order"`

	TransportType     *TransportType `json:"transportType,omitempty"`
	DepartureTime     *string        `json:"departureTime,omitempty"`
	ArrivalTime       *string        `json:"arrivalTime,omitempty"`
	DepartureLocation *string        `json:"departureLocation,omitempty"`
	ArrivalLocation   *string        `json:"arrivalLocation,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StopInput carries the caller-supplied fields for creating a stop.
// Order is optional: when nil the repository assigns max(order)+1 within
// the trip (0 for the first stop).
type StopInput struct {
	Name          string        `json:"name"`
	Type          StopType      `json:"type"`
	Latitude      float64       `json:"latitude"`
	Longitude     float64       `json:"longitude"`
	Description   *string       `json:"description"`
	Notes         *string       `json:"notes"`
	DurationValue *float64      `json:"durationValue"`
	DurationUnit  *DurationUnit `json:"durationUnit"`
	IsOptional    bool          `json:"isOptional"`
	Tags          []string      `json:"tags"`
	Links         []string      `json:"links"`
	Order         *int          `json:"order"`

	TransportType     *TransportType `json:"transportType"`
	DepartureTime     *string        `json:"departureTime"`
	ArrivalTime       *string        `json:"arrivalTime"`
	DepartureLocation *string        `json:"departureLocation"`
	ArrivalLocation   *string        `json:"arrivalLocation"`
}

// StopPatch is a partial update. Only fields with Set=true are applied;
// pointer-valued fields support explicit null distinct from absent.
type StopPatch struct {
	Name          Optional[string]        `json:"name"`
	Type          Optional[StopType]      `json:"type"`
	Latitude      Optional[float64]       `json:"latitude"`
	Longitude     Optional[float64]       `json:"longitude"`
	Description   Optional[*string]       `json:"description"`
	Notes         Optional[*string]       `json:"notes"`
	DurationValue Optional[*float64]      `json:"durationValue"`
	DurationUnit  Optional[*DurationUnit] `json:"durationUnit"`
	IsOptional    Optional[bool]          `json:"isOptional"`
	Tags          Optional[[]string]      `json:"tags"`
	Links         Optional[[]string]      `json:"links"`

	TransportType     Optional[*TransportType] `json:"transportType"`
	DepartureTime     Optional[*string]        `json:"departureTime"`
	ArrivalTime       Optional[*string]        `json:"arrivalTime"`
	DepartureLocation Optional[*string]        `json:"departureLocation"`
	ArrivalLocation   Optional[*string]        `json:"arrivalLocation"`
}

// Apply overwrites the fields of s that are present in the patch.
// Order is deliberately not patchable here; the reorder operation keeps the
// trip-wide order sequence dense.
func (p StopPatch) Apply(s *Stop) {
	if p.Name.Set {
		s.Name = p.Name.Value
	}
	if p.Type.Set {
		s.Type = p.Type.Value
	}
	if p.Latitude.Set {
		s.Latitude = p.Latitude.Value
	}
	if p.Longitude.Set {
		s.Longitude = p.Longitude.Value
	}
	if p.Description.Set {
		s.Description = p.Description.Value
	}
	if p.Notes.Set {
		s.Notes = p.Notes.Value
	}
	if p.DurationValue.Set {
		s.DurationValue = p.DurationValue.Value
	}
	if p.DurationUnit.Set {
		s.DurationUnit = p.DurationUnit.Value
	}
	if p.IsOptional.Set {
		s.IsOptional = p.IsOptional.Value
	}
	if p.Tags.Set {
		s.Tags = p.Tags.Value
	}
	if p.Links.Set {
		s.Links = p.Links.Value
	}
	if p.TransportType.Set {
		s.TransportType = p.TransportType.Value
	}
	if p.DepartureTime.Set {
		s.DepartureTime = p.DepartureTime.Value
	}
	if p.ArrivalTime.Set {
		s.ArrivalTime = p.ArrivalTime.Value
	}
	if p.DepartureLocation.Set {
		s.DepartureLocation = p.DepartureLocation.Value
	}
	if p.ArrivalLocation.Set {
		s.ArrivalLocation = p.ArrivalLocation.Value
	}
}
