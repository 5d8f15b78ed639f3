package handler

import (
	"errors"
	"net/http"

	"github.com/waypost/waypost/backend/internal/domain"
)

// assistantRequest is the body for POST /api/trips/{tripID}/assistant.
type assistantRequest struct {
	Message string `json:"message"`
}

// assistantResponse carries the assistant's reply.
type assistantResponse struct {
	Message domain.Message `json:"message"`
}

// SendAssistantMessage handles POST /api/trips/{tripID}/assistant. It runs
// one full assistant turn, persisting both the user message and the reply
// into the trip's conversation.
func (s *Server) SendAssistantMessage(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "tripID")
	if err != nil {
		writeValidation(w, err.Error())
		return
	}

	var req assistantRequest
	if err := decode(r, &req); err != nil {
		writeValidation(w, err.Error())
		return
	}

	reply, err := s.assistant.Send(r.Context(), tripID, req.Message)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "trip not found")
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assistantResponse{Message: reply})
}
