package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// pathID reads a path parameter and rejects anything that is not a
// well-formed uuid, so malformed ids fail fast instead of producing a
// confusing not-found from the repo.
func pathID(r *http.Request, name string) (string, error) {
	id := chi.URLParam(r, name)
	if err := uuid.Validate(id); err != nil {
		return "", fmt.Errorf("%s must be a valid uuid", name)
	}
	return id, nil
}

// decode reads the request body into v. An empty body and malformed JSON are
// both reported as validation failures.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	switch {
	case errors.Is(err, io.EOF):
		return errors.New("request body is required")
	case err != nil:
		return fmt.Errorf("invalid request body: %s", err)
	}
	return nil
}
