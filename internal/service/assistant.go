package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/waypost/waypost/backend/internal/assistant"
	"github.com/waypost/waypost/backend/internal/domain"
	"github.com/waypost/waypost/backend/internal/repo"
)

// ModelFactory builds a chat model bound to a credential. Injected so tests
// can substitute a scripted model.
type ModelFactory func(apiKey string) assistant.Model

// KeySource supplies the assistant credential.
// Satisfied by SettingService.
type KeySource interface {
	AssistantKey(ctx context.Context) (string, error)
}

// AssistantService runs one assistant turn for a trip: it loads the
// conversation, drives the tool loop, and persists the extended conversation.
type AssistantService struct {
	trips    repo.TripRepo
	convos   repo.ConversationRepo
	stops    assistant.StopPlanner
	keys     KeySource
	newModel ModelFactory
}

// NewAssistantService constructs an AssistantService.
func NewAssistantService(
	trips repo.TripRepo,
	convos repo.ConversationRepo,
	stops assistant.StopPlanner,
	keys KeySource,
	newModel ModelFactory,
) *AssistantService {
	return &AssistantService{
		trips:    trips,
		convos:   convos,
		stops:    stops,
		keys:     keys,
		newModel: newModel,
	}
}

// Send appends the user's message to the trip's conversation, runs the tool
// loop, persists both new messages, and returns the assistant's reply.
//
// Returns domain.ErrNotFound for an unknown trip, domain.ErrNotConfigured
// when no credential is available, and domain.ErrUpstream when the model
// backend fails. The conversation is only saved after a successful turn, so
// a failed turn leaves it untouched.
func (s *AssistantService) Send(ctx context.Context, tripID, content string) (domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Message{}, fmt.Errorf("service.AssistantService.Send: %w", invalid("message is required"))
	}
	if len(content) > maxMessageLen {
		return domain.Message{}, fmt.Errorf("service.AssistantService.Send: %w", invalid("message must be at most %d characters", maxMessageLen))
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("service.AssistantService.Send: %w", err)
	}

	key, err := s.keys.AssistantKey(ctx)
	if err != nil {
		return domain.Message{}, fmt.Errorf("service.AssistantService.Send: %w", err)
	}

	history := []domain.Message{}
	convo, err := s.convos.Get(ctx, tripID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// first turn for this trip
	case err != nil:
		return domain.Message{}, fmt.Errorf("service.AssistantService.Send: %w", err)
	default:
		history = convo.Messages
	}

	history = append(history, domain.Message{
		Role:      domain.RoleUser,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})

	loop := assistant.NewLoop(s.newModel(key), s.stops)
	text, err := loop.Run(ctx, trip, history)
	if err != nil {
		return domain.Message{}, fmt.Errorf("service.AssistantService.Send: %w", err)
	}

	reply := domain.Message{
		Role:      domain.RoleAssistant,
		Content:   text,
		Timestamp: time.Now().UTC(),
	}
	if _, err := s.convos.Save(ctx, tripID, append(history, reply)); err != nil {
		return domain.Message{}, fmt.Errorf("service.AssistantService.Send: %w", err)
	}
	return reply, nil
}
