// Package handler implements the HTTP handlers for the Waypost API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, etc.) but all share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/waypost/waypost/backend/internal/domain"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	List(ctx context.Context) ([]domain.Trip, error)
	GetByID(ctx context.Context, id string) (domain.Trip, error)
	Create(ctx context.Context, in domain.TripInput) (domain.Trip, error)
	Update(ctx context.Context, id string, patch domain.TripPatch) (domain.Trip, error)
	Delete(ctx context.Context, id string) error
}

// StopServicer defines the business operations the stop handlers depend on.
type StopServicer interface {
	ListByTrip(ctx context.Context, tripID string) ([]domain.Stop, error)
	GetByID(ctx context.Context, id string) (domain.Stop, error)
	Create(ctx context.Context, tripID string, in domain.StopInput) (domain.Stop, error)
	Update(ctx context.Context, id string, patch domain.StopPatch) (domain.Stop, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, tripID string, ids []string) ([]domain.Stop, error)
}

// ConversationServicer defines the operations the conversation handlers
// depend on.
type ConversationServicer interface {
	Get(ctx context.Context, tripID string) (domain.Conversation, error)
	Save(ctx context.Context, tripID string, messages []domain.Message) (domain.Conversation, error)
	Clear(ctx context.Context, tripID string) error
}

// SettingServicer defines the operations the settings handlers depend on.
type SettingServicer interface {
	SetAssistantKey(ctx context.Context, value string) (domain.SettingPreview, error)
	AssistantKeyPreview(ctx context.Context) (domain.SettingPreview, error)
	DeleteAssistantKey(ctx context.Context) error
}

// TransferServicer defines the export/import operations.
type TransferServicer interface {
	Export(ctx context.Context) (domain.ExportDocument, error)
	Import(ctx context.Context, doc domain.ExportDocument, mode domain.ImportMode) (domain.ImportResult, error)
}

// AssistantServicer runs one assistant turn for a trip.
type AssistantServicer interface {
	Send(ctx context.Context, tripID, content string) (domain.Message, error)
}

// Server holds the dependencies for all API endpoints.
// Methods are in domain-specific files but all operate on this struct.
type Server struct {
	trips     TripServicer
	stops     StopServicer
	convos    ConversationServicer
	settings  SettingServicer
	transfer  TransferServicer
	assistant AssistantServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(
	trips TripServicer,
	stops StopServicer,
	convos ConversationServicer,
	settings SettingServicer,
	transfer TransferServicer,
	assistant AssistantServicer,
) *Server {
	return &Server{
		trips:     trips,
		stops:     stops,
		convos:    convos,
		settings:  settings,
		transfer:  transfer,
		assistant: assistant,
	}
}

// Routes mounts every endpoint on a fresh chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/trips", func(r chi.Router) {
			r.Get("/", s.ListTrips)
			r.Post("/", s.CreateTrip)
			r.Route("/{tripID}", func(r chi.Router) {
				r.Get("/", s.GetTrip)
				r.Put("/", s.UpdateTrip)
				r.Delete("/", s.DeleteTrip)

				r.Route("/stops", func(r chi.Router) {
					r.Get("/", s.ListStops)
					r.Post("/", s.CreateStop)
					r.Put("/order", s.ReorderStops)
					r.Get("/{stopID}", s.GetStop)
					r.Put("/{stopID}", s.UpdateStop)
					r.Delete("/{stopID}", s.DeleteStop)
				})

				r.Route("/conversation", func(r chi.Router) {
					r.Get("/", s.GetConversation)
					r.Put("/", s.SaveConversation)
					r.Delete("/", s.ClearConversation)
				})

				r.Post("/assistant", s.SendAssistantMessage)
			})
		})

		r.Route("/settings/assistant-key", func(r chi.Router) {
			r.Get("/", s.GetAssistantKey)
			r.Put("/", s.SetAssistantKey)
			r.Delete("/", s.DeleteAssistantKey)
		})

		r.Get("/export", s.Export)
		r.Post("/import", s.Import)
	})

	return r
}
