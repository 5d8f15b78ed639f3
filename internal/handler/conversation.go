package handler

import (
	"errors"
	"net/http"

	"github.com/waypost/waypost/backend/internal/domain"
)

// GetConversation handles GET /api/trips/{tripID}/conversation.
func (s *Server) GetConversation(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "tripID")
	if err != nil {
		writeValidation(w, err.Error())
		return
	}

	convo, err := s.convos.Get(r.Context(), tripID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "conversation not found")
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convo)
}

// saveConversationRequest is the body for PUT .../conversation.
type saveConversationRequest struct {
	Messages []domain.Message `json:"messages"`
}

// SaveConversation handles PUT /api/trips/{tripID}/conversation. The message
// list replaces the stored conversation in full.
func (s *Server) SaveConversation(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "tripID")
	if err != nil {
		writeValidation(w, err.Error())
		return
	}

	var req saveConversationRequest
	if err := decode(r, &req); err != nil {
		writeValidation(w, err.Error())
		return
	}

	convo, err := s.convos.Save(r.Context(), tripID, req.Messages)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "trip not found")
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convo)
}

// ClearConversation handles DELETE /api/trips/{tripID}/conversation.
func (s *Server) ClearConversation(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "tripID")
	if err != nil {
		writeValidation(w, err.Error())
		return
	}

	if err := s.convos.Clear(r.Context(), tripID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "conversation not found")
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
