package handler

import (
	"errors"
	"net/http"

	"github.com/waypost/waypost/backend/internal/domain"
)

// ListStops handles GET /api/trips/{tripID}/stops.
func (s *Server) ListStops(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "tripID")
	if err != nil {
		writeValidation(w, err.Error())
		return
	}

	stops, err := s.stops.ListByTrip(r.Context(), tripID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stops)
}

// CreateStop handles POST /api/trips/{tripID}/stops.
func (s *Server) CreateStop(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "tripID")
	if err != nil {
		writeValidation(w, err.Error())
		return
	}

	var in domain.StopInput
	if err := decode(r, &in); err != nil {
		writeValidation(w, err.Error())
		return
	}

	stop, err := s.stops.Create(r.Context(), tripID, in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "trip not found")
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stop)
}

// GetStop handles GET /api/trips/{tripID}/stops/{stopID}.
func (s *Server) GetStop(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "stopID")
	if err != nil {
		writeValidation(w, err.Error())
		return
	}

	stop, err := s.stops.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "stop not found")
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stop)
}

// UpdateStop handles PUT /api/trips/{tripID}/stops/{stopID}.
func (s *Server) UpdateStop(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "stopID")
	if err != nil {
		writeValidation(w, err.Error())
		return
	}

	var patch domain.StopPatch
	if err := decode(r, &patch); err != nil {
		writeValidation(w, err.Error())
		return
	}

	stop, err := s.stops.Update(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "stop not found")
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stop)
}

// DeleteStop handles DELETE /api/trips/{tripID}/stops/{stopID}.
func (s *Server) DeleteStop(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "stopID")
	if err != nil {
		writeValidation(w, err.Error())
		return
	}

	if err := s.stops.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "stop not found")
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// reorderRequest is the body for PUT /api/trips/{tripID}/stops/order.
type reorderRequest struct {
	StopIDs []string `json:"stopIds"`
}

// ReorderStops handles PUT /api/trips/{tripID}/stops/order. The body must
// list every current stop id exactly once, in the desired order; the response
// is the full stop list in its new sequence.
func (s *Server) ReorderStops(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "tripID")
	if err != nil {
		writeValidation(w, err.Error())
		return
	}

	var req reorderRequest
	if err := decode(r, &req); err != nil {
		writeValidation(w, err.Error())
		return
	}

	stops, err := s.stops.Reorder(r.Context(), tripID, req.StopIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stops)
}
