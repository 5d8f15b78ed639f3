package handler

import (
	"net/http"

	"github.com/waypost/waypost/backend/internal/domain"
)

// Export handles GET /api/export.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := s.transfer.Export(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="waypost-export.json"`)
	writeJSON(w, http.StatusOK, doc)
}

// importRequest is the body for POST /api/import.
type importRequest struct {
	Mode domain.ImportMode     `json:"mode"`
	Data domain.ExportDocument `json:"data"`
}

// Import handles POST /api/import.
func (s *Server) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decode(r, &req); err != nil {
		writeValidation(w, err.Error())
		return
	}

	result, err := s.transfer.Import(r.Context(), req.Data, req.Mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
