package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/waypost/waypost/backend/internal/domain"
	"github.com/waypost/waypost/backend/internal/repo"
)

// maxCredentialLen bounds the stored assistant credential.
const maxCredentialLen = 500

// SettingService implements business logic for process-wide settings.
// The assistant credential is write-only: after a write, callers only ever
// see a masked preview. envKey is an optional fallback credential from the
// environment, used when nothing has been stored.
type SettingService struct {
	settings repo.SettingRepo
	envKey   string
}

// NewSettingService constructs a SettingService backed by the provided repo.
// envKey may be empty.
func NewSettingService(r repo.SettingRepo, envKey string) *SettingService {
	return &SettingService{settings: r, envKey: envKey}
}

// SetAssistantKey stores (or overwrites) the assistant credential.
func (s *SettingService) SetAssistantKey(ctx context.Context, value string) (domain.SettingPreview, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.SettingPreview{}, fmt.Errorf("service.SettingService.SetAssistantKey: %w", invalid("key is required"))
	}
	if len(value) > maxCredentialLen {
		return domain.SettingPreview{}, fmt.Errorf("service.SettingService.SetAssistantKey: %w", invalid("key must be at most %d characters", maxCredentialLen))
	}
	if _, err := s.settings.Set(ctx, domain.SettingAssistantKey, value); err != nil {
		return domain.SettingPreview{}, fmt.Errorf("service.SettingService.SetAssistantKey: %w", err)
	}
	return domain.SettingPreview{Configured: true, Preview: maskSecret(value)}, nil
}

// AssistantKeyPreview reports whether a credential is configured and, if so,
// its masked preview. Never returns the plaintext value.
func (s *SettingService) AssistantKeyPreview(ctx context.Context) (domain.SettingPreview, error) {
	key, err := s.AssistantKey(ctx)
	if errors.Is(err, domain.ErrNotConfigured) {
		return domain.SettingPreview{Configured: false}, nil
	}
	if err != nil {
		return domain.SettingPreview{}, fmt.Errorf("service.SettingService.AssistantKeyPreview: %w", err)
	}
	return domain.SettingPreview{Configured: true, Preview: maskSecret(key)}, nil
}

// AssistantKey returns the plaintext credential for internal use (the tool
// loop's model client). Falls back to the environment-provided key when the
// settings store has none. Returns domain.ErrNotConfigured when neither is
// set.
func (s *SettingService) AssistantKey(ctx context.Context) (string, error) {
	setting, err := s.settings.Get(ctx, domain.SettingAssistantKey)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if s.envKey != "" {
			return s.envKey, nil
		}
		return "", fmt.Errorf("service.SettingService.AssistantKey: %w", domain.ErrNotConfigured)
	case err != nil:
		return "", fmt.Errorf("service.SettingService.AssistantKey: %w", err)
	}
	return setting.Value, nil
}

// DeleteAssistantKey removes the stored credential.
// Returns domain.ErrNotFound when none was stored.
func (s *SettingService) DeleteAssistantKey(ctx context.Context) error {
	deleted, err := s.settings.Delete(ctx, domain.SettingAssistantKey)
	if err != nil {
		return fmt.Errorf("service.SettingService.DeleteAssistantKey: %w", err)
	}
	if !deleted {
		return fmt.Errorf("service.SettingService.DeleteAssistantKey: %w", domain.ErrNotFound)
	}
	return nil
}

// maskSecret renders the first 7 and last 4 characters of a credential,
// or a fully masked string when it is too short to reveal anything safely.
func maskSecret(v string) string {
	if len(v) <= 11 {
		return strings.Repeat("*", len(v))
	}
	return v[:7] + "..." + v[len(v)-4:]
}
