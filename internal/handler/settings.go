package handler

import (
	"errors"
	"net/http"

	"github.com/waypost/waypost/backend/internal/domain"
)

// GetAssistantKey handles GET /api/settings/assistant-key. The response never
// contains the stored value, only whether one exists and a masked preview.
func (s *Server) GetAssistantKey(w http.ResponseWriter, r *http.Request) {
	preview, err := s.settings.AssistantKeyPreview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// setKeyRequest is the body for PUT /api/settings/assistant-key.
type setKeyRequest struct {
	Key string `json:"key"`
}

// SetAssistantKey handles PUT /api/settings/assistant-key.
func (s *Server) SetAssistantKey(w http.ResponseWriter, r *http.Request) {
	var req setKeyRequest
	if err := decode(r, &req); err != nil {
		writeValidation(w, err.Error())
		return
	}

	preview, err := s.settings.SetAssistantKey(r.Context(), req.Key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// DeleteAssistantKey handles DELETE /api/settings/assistant-key.
func (s *Server) DeleteAssistantKey(w http.ResponseWriter, r *http.Request) {
	if err := s.settings.DeleteAssistantKey(r.Context()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "assistant key not set")
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
