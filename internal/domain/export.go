package domain

import "time"

// ExportVersion is the current export document version.
const ExportVersion = 1

// ExportDocument is the full-data export: every trip with its stops inlined
// and, when present, its conversation. The same shape is accepted on import.
type ExportDocument struct {
	Version    int          `json:"version"`
	ExportedAt time.Time    `json:"exportedAt"`
	Trips      []ExportTrip `json:"trips"`
}

// ExportTrip is a trip with its owned entities inlined.
type ExportTrip struct {
	Trip
	Stops        []Stop        `json:"stops"`
	Conversation *Conversation `json:"conversation,omitempty"`
}

// ImportMode controls how an import treats trips whose id already exists.
type ImportMode string

const (
	// ImportMerge skips trips whose id already exists.
	ImportMerge ImportMode = "merge"
	// ImportReplace clears all existing trips before inserting.
	ImportReplace ImportMode = "replace"
)

// Valid reports whether m is one of the known import modes.
func (m ImportMode) Valid() bool {
	return m == ImportMerge || m == ImportReplace
}

// ImportResult reports what an import actually did.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
