package service

import (
	"context"
	"fmt"

	"github.com/waypost/waypost/backend/internal/domain"
	"github.com/waypost/waypost/backend/internal/repo"
)

// ConversationService implements business logic for the one-per-trip
// assistant conversation.
type ConversationService struct {
	trips  repo.TripRepo
	convos repo.ConversationRepo
}

// NewConversationService constructs a ConversationService backed by the
// provided repos.
func NewConversationService(trips repo.TripRepo, convos repo.ConversationRepo) *ConversationService {
	return &ConversationService{trips: trips, convos: convos}
}

// Get returns a trip's conversation.
// Returns domain.ErrNotFound when none has been saved yet.
func (s *ConversationService) Get(ctx context.Context, tripID string) (domain.Conversation, error) {
	c, err := s.convos.Get(ctx, tripID)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("service.ConversationService.Get: %w", err)
	}
	return c, nil
}

// Save replaces the trip's full message list, creating the conversation on
// first save. The parent trip must exist.
func (s *ConversationService) Save(ctx context.Context, tripID string, messages []domain.Message) (domain.Conversation, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return domain.Conversation{}, fmt.Errorf("service.ConversationService.Save: %w", err)
	}
	for _, m := range messages {
		if !m.Role.Valid() {
			return domain.Conversation{}, fmt.Errorf("service.ConversationService.Save: %w", invalid("role must be user or assistant"))
		}
		if len(m.Content) > maxMessageLen {
			return domain.Conversation{}, fmt.Errorf("service.ConversationService.Save: %w", invalid("content must be at most %d characters", maxMessageLen))
		}
	}
	c, err := s.convos.Save(ctx, tripID, messages)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("service.ConversationService.Save: %w", err)
	}
	return c, nil
}

// Clear hard-deletes a trip's conversation.
// Returns domain.ErrNotFound when there was nothing to clear.
func (s *ConversationService) Clear(ctx context.Context, tripID string) error {
	cleared, err := s.convos.Clear(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.ConversationService.Clear: %w", err)
	}
	if !cleared {
		return fmt.Errorf("service.ConversationService.Clear: %w", domain.ErrNotFound)
	}
	return nil
}
