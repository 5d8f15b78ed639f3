package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypost/waypost/backend/internal/domain"
	"github.com/waypost/waypost/backend/internal/handler"
)

// mockSettingServicer is a test double for handler.SettingServicer.
type mockSettingServicer struct {
	set     func(ctx context.Context, value string) (domain.SettingPreview, error)
	preview func(ctx context.Context) (domain.SettingPreview, error)
	delete  func(ctx context.Context) error
}

func (m *mockSettingServicer) SetAssistantKey(ctx context.Context, value string) (domain.SettingPreview, error) {
	return m.set(ctx, value)
}
func (m *mockSettingServicer) AssistantKeyPreview(ctx context.Context) (domain.SettingPreview, error) {
	return m.preview(ctx)
}
func (m *mockSettingServicer) DeleteAssistantKey(ctx context.Context) error {
	return m.delete(ctx)
}

var _ handler.SettingServicer = (*mockSettingServicer)(nil)

func TestGetAssistantKey_200_Configured(t *testing.T) {
	settings := &mockSettingServicer{
		preview: func(_ context.Context) (domain.SettingPreview, error) {
			return domain.SettingPreview{Configured: true, Preview: "sk-proj...1234"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/settings/assistant-key", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(serverOverrides{settings: settings}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp domain.SettingPreview
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Configured)
	assert.Equal(t, "sk-proj...1234", resp.Preview)
}

func TestGetAssistantKey_200_Unconfigured(t *testing.T) {
	settings := &mockSettingServicer{
		preview: func(_ context.Context) (domain.SettingPreview, error) {
			return domain.SettingPreview{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/settings/assistant-key", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(serverOverrides{settings: settings}).ServeHTTP(rec, req)

	// An unset key is an ordinary state, not an error.
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp domain.SettingPreview
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Configured)
}

func TestSetAssistantKey_200_NeverEchoesValue(t *testing.T) {
	settings := &mockSettingServicer{
		set: func(_ context.Context, value string) (domain.SettingPreview, error) {
			assert.Equal(t, "sk-proj-secret-value-1234", value)
			return domain.SettingPreview{Configured: true, Preview: "sk-proj...1234"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/api/settings/assistant-key",
		jsonBody(t, map[string]any{"key": "sk-proj-secret-value-1234"}))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(serverOverrides{settings: settings}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-value")
}

func TestSetAssistantKey_422_Empty(t *testing.T) {
	settings := &mockSettingServicer{
		set: func(_ context.Context, _ string) (domain.SettingPreview, error) {
			return domain.SettingPreview{}, fmt.Errorf("%w: key is required", domain.ErrValidation)
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/api/settings/assistant-key",
		jsonBody(t, map[string]any{"key": ""}))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(serverOverrides{settings: settings}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", errorCode(t, rec))
}

func TestDeleteAssistantKey_204(t *testing.T) {
	settings := &mockSettingServicer{
		delete: func(_ context.Context) error { return nil },
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/settings/assistant-key", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(serverOverrides{settings: settings}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteAssistantKey_404(t *testing.T) {
	settings := &mockSettingServicer{
		delete: func(_ context.Context) error { return domain.ErrNotFound },
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/settings/assistant-key", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(serverOverrides{settings: settings}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "assistant key not set")
}
