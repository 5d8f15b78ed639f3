// Package assistant runs the trip-planning tool loop: it sends the
// conversation to a chat model together with a set of itinerary tools,
// executes the tool calls the model emits, and repeats until the model
// answers with plain text or the turn budget runs out.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/waypost/waypost/backend/internal/domain"
)

// maxMessages bounds the transcript in two ways: seeded history is truncated
// to its newest maxMessages entries before the turn starts, and the turn ends
// once it has grown the transcript by maxMessages more. The growth bound caps
// both model spend and the damage of a model stuck calling tools forever,
// without an old conversation eating into the turn's budget.
const maxMessages = 20

// capFallback is returned when the loop ends without a usable text reply.
const capFallback = "I've updated the trip as far as I could in this turn. Ask me to continue if something is still missing."

// StopPlanner is the slice of stop operations the tools need. It is satisfied
// by the stop service, so tool calls pass through the same validation as the
// HTTP API.
type StopPlanner interface {
	ListByTrip(ctx context.Context, tripID string) ([]domain.Stop, error)
	Create(ctx context.Context, tripID string, in domain.StopInput) (domain.Stop, error)
	Update(ctx context.Context, id string, patch domain.StopPatch) (domain.Stop, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, tripID string, ids []string) ([]domain.Stop, error)
}

// Loop drives one assistant turn against a model.
type Loop struct {
	model Model
	stops StopPlanner
}

// NewLoop constructs a Loop over the given model and stop operations.
func NewLoop(model Model, stops StopPlanner) *Loop {
	return &Loop{model: model, stops: stops}
}

// Run executes one assistant turn. history is the full conversation so far,
// ending with the user's newest message. The returned string is the
// assistant's final text reply.
//
// Tool calls are executed sequentially in emission order. Tool-level
// not-found and validation failures are fed back to the model as tool
// results; storage failures abort the turn. Model failures are reported as
// domain.ErrUpstream.
func (l *Loop) Run(ctx context.Context, trip domain.Trip, history []domain.Message) (string, error) {
	transcript := lo.Map(history, func(m domain.Message, _ int) Message {
		return Message{Role: Role(m.Role), Content: m.Content}
	})
	// Old turns beyond the window only cost tokens; the newest entries carry
	// the user's current request. Without this, a long stored conversation
	// would exhaust the growth bound before the first model call.
	if len(transcript) > maxMessages {
		transcript = transcript[len(transcript)-maxMessages:]
	}
	seeded := len(transcript)
	tools := toolSpecs()

	// lastText holds the newest non-empty text the model produced alongside
	// tool calls, so hitting the cap can still return something it said.
	var lastText string

	for {
		system, err := l.systemPrompt(ctx, trip)
		if err != nil {
			return "", fmt.Errorf("assistant.Loop.Run: %w", err)
		}

		reply, err := l.model.Complete(ctx, system, transcript, tools)
		if err != nil {
			return "", fmt.Errorf("assistant.Loop.Run: %w: %w", domain.ErrUpstream, err)
		}

		if len(reply.ToolCalls) == 0 {
			if strings.TrimSpace(reply.Text) == "" {
				return capFallback, nil
			}
			return reply.Text, nil
		}

		if strings.TrimSpace(reply.Text) != "" {
			lastText = reply.Text
		}
		transcript = append(transcript, Message{
			Role:      RoleAssistant,
			Content:   reply.Text,
			ToolCalls: reply.ToolCalls,
		})
		for _, call := range reply.ToolCalls {
			result, err := l.execute(ctx, trip, call)
			if err != nil {
				return "", fmt.Errorf("assistant.Loop.Run: %s: %w", call.Name, err)
			}
			transcript = append(transcript, Message{
				Role:       RoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}

		if len(transcript)-seeded >= maxMessages {
			if lastText != "" {
				return lastText, nil
			}
			return capFallback, nil
		}
	}
}

// execute runs one tool call. A (string, nil) return is a tool result for the
// model, including input mistakes like unknown ids or out-of-range values.
// A non-nil error aborts the turn.
func (l *Loop) execute(ctx context.Context, trip domain.Trip, call ToolCall) (string, error) {
	kind, err := parseToolKind(call.Name)
	if err != nil {
		return err.Error(), nil
	}

	switch kind {
	case toolGetTripInfo:
		return l.renderTrip(ctx, trip)

	case toolAddStop:
		var args addStopArgs
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return "invalid arguments: " + err.Error(), nil
		}
		st, err := l.stops.Create(ctx, trip.ID, args.input())
		if err != nil {
			return toolFailure(err)
		}
		return fmt.Sprintf("Added stop %q (id %s) at position %d.", st.Name, st.ID, st.Order), nil

	case toolUpdateStop:
		var args updateStopArgs
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return "invalid arguments: " + err.Error(), nil
		}
		st, err := l.stops.Update(ctx, args.StopID, args.patch())
		if err != nil {
			return toolFailure(err)
		}
		return fmt.Sprintf("Updated stop %q (id %s).", st.Name, st.ID), nil

	case toolRemoveStop:
		var args removeStopArgs
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return "invalid arguments: " + err.Error(), nil
		}
		if err := l.stops.Delete(ctx, args.StopID); err != nil {
			return toolFailure(err)
		}
		return fmt.Sprintf("Removed stop %s.", args.StopID), nil

	case toolReorderStops:
		var args reorderArgs
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return "invalid arguments: " + err.Error(), nil
		}
		stops, err := l.stops.Reorder(ctx, trip.ID, args.StopIDs)
		if err != nil {
			return toolFailure(err)
		}
		return "Reordered stops. New order:\n" + renderStopLines(stops), nil
	}
	return "", fmt.Errorf("unhandled tool kind %d", kind)
}

// toolFailure routes a stop-operation error: expected failures become tool
// results the model can react to, anything else aborts the turn.
func toolFailure(err error) (string, error) {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
		return "error: " + err.Error(), nil
	}
	return "", err
}

// stopSummary is the view of a stop shown to the model. It carries the id the
// model needs for follow-up calls and omits server bookkeeping.
type stopSummary struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	Description   *string  `json:"description,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
	DurationValue *float64 `json:"duration_value,omitempty"`
	DurationUnit  *string  `json:"duration_unit,omitempty"`
	IsOptional    bool     `json:"is_optional"`
	Tags          []string `json:"tags,omitempty"`
	Order         int      `json:"order"`
}

func summarize(st domain.Stop) stopSummary {
	s := stopSummary{
		ID:            st.ID,
		Name:          st.Name,
		Type:          string(st.Type),
		Latitude:      st.Latitude,
		Longitude:     st.Longitude,
		Description:   st.Description,
		Notes:         st.Notes,
		DurationValue: st.DurationValue,
		IsOptional:    st.IsOptional,
		Tags:          st.Tags,
		Order:         st.Order,
	}
	if st.DurationUnit != nil {
		u := string(*st.DurationUnit)
		s.DurationUnit = &u
	}
	return s
}

func (l *Loop) renderTrip(ctx context.Context, trip domain.Trip) (string, error) {
	stops, err := l.stops.ListByTrip(ctx, trip.ID)
	if err != nil {
		return "", err
	}
	view := struct {
		Name        string        `json:"name"`
		Description *string       `json:"description,omitempty"`
		Stops       []stopSummary `json:"stops"`
	}{
		Name:        trip.Name,
		Description: trip.Description,
		Stops:       lo.Map(stops, func(st domain.Stop, _ int) stopSummary { return summarize(st) }),
	}
	encoded, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func renderStopLines(stops []domain.Stop) string {
	lines := lo.Map(stops, func(st domain.Stop, i int) string {
		return fmt.Sprintf("%d. %s (id %s)", i, st.Name, st.ID)
	})
	return strings.Join(lines, "\n")
}

// systemPrompt is rebuilt before every model call with a fresh snapshot of
// the trip's stops, so the model always plans against post-mutation state.
func (l *Loop) systemPrompt(ctx context.Context, trip domain.Trip) (string, error) {
	current, err := l.renderTrip(ctx, trip)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("You are a trip-planning assistant. You help the user shape the itinerary of one trip ")
	b.WriteString("by answering questions and by calling the provided tools to add, update, remove, and reorder stops. ")
	b.WriteString("Use stop ids exactly as given. When you change the itinerary, summarize what you did in your final reply. ")
	b.WriteString("Keep replies short and concrete.\n\n")
	b.WriteString("Current trip state:\n")
	b.WriteString(current)
	return b.String(), nil
}
