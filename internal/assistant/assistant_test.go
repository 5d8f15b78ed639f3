package assistant_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypost/waypost/backend/internal/assistant"
	"github.com/waypost/waypost/backend/internal/domain"
	"github.com/waypost/waypost/backend/internal/repo"
	"github.com/waypost/waypost/backend/internal/service"
	"github.com/waypost/waypost/backend/testutil"
)

// funcModel scripts model behavior per call. The test function receives the
// 1-based call number plus everything the loop sent, so scenarios can assert
// on the transcript mid-turn.
type funcModel struct {
	calls int
	fn    func(call int, system string, transcript []assistant.Message, tools []assistant.ToolSpec) (assistant.Reply, error)
}

func (m *funcModel) Complete(_ context.Context, system string, transcript []assistant.Message, tools []assistant.ToolSpec) (assistant.Reply, error) {
	m.calls++
	return m.fn(m.calls, system, transcript, tools)
}

var _ assistant.Model = (*funcModel)(nil)

// loopFixture wires a Loop over a real in-memory database, so tool calls run
// through the same validation and persistence as the HTTP API.
type loopFixture struct {
	trip  domain.Trip
	stops *service.StopService
}

func newLoopFixture(t *testing.T) loopFixture {
	t.Helper()
	db := testutil.NewAdapter(t)
	trips := repo.NewTripRepo(db)
	stops := repo.NewStopRepo(db)

	trip, err := trips.Create(context.Background(), domain.TripInput{Name: "Iceland"})
	require.NoError(t, err)

	return loopFixture{
		trip:  trip,
		stops: service.NewStopService(trips, stops),
	}
}

func userTurn(content string) []domain.Message {
	return []domain.Message{{Role: domain.RoleUser, Content: content}}
}

func toolCall(name string, args any) assistant.ToolCall {
	encoded, err := json.Marshal(args)
	if err != nil {
		panic(err)
	}
	return assistant.ToolCall{ID: "call_" + uuid.NewString()[:8], Name: name, Args: encoded}
}

func TestLoop_PlainTextReply(t *testing.T) {
	f := newLoopFixture(t)
	model := &funcModel{fn: func(_ int, _ string, _ []assistant.Message, _ []assistant.ToolSpec) (assistant.Reply, error) {
		return assistant.Reply{Text: "Sounds like a great trip."}, nil
	}}
	loop := assistant.NewLoop(model, f.stops)

	text, err := loop.Run(context.Background(), f.trip, userTurn("any tips?"))

	require.NoError(t, err)
	assert.Equal(t, "Sounds like a great trip.", text)
	assert.Equal(t, 1, model.calls)
}

func TestLoop_EmptyReplyGetsFallbackText(t *testing.T) {
	f := newLoopFixture(t)
	model := &funcModel{fn: func(_ int, _ string, _ []assistant.Message, _ []assistant.ToolSpec) (assistant.Reply, error) {
		return assistant.Reply{}, nil
	}}
	loop := assistant.NewLoop(model, f.stops)

	text, err := loop.Run(context.Background(), f.trip, userTurn("hello"))

	require.NoError(t, err)
	assert.NotEmpty(t, text, "an empty model reply must not produce an empty API response")
}

func TestLoop_AddStopToolPersists(t *testing.T) {
	f := newLoopFixture(t)
	ctx := context.Background()

	model := &funcModel{fn: func(call int, _ string, transcript []assistant.Message, _ []assistant.ToolSpec) (assistant.Reply, error) {
		switch call {
		case 1:
			return assistant.Reply{ToolCalls: []assistant.ToolCall{
				toolCall("add_stop", map[string]any{
					"name": "Vik", "type": "waypoint", "latitude": 63.4, "longitude": -19.0,
				}),
			}}, nil
		default:
			// The tool result must have been appended before the next call.
			last := transcript[len(transcript)-1]
			assert.Equal(t, assistant.RoleTool, last.Role)
			assert.Contains(t, last.Content, "Added stop")
			return assistant.Reply{Text: "Added Vik to your route."}, nil
		}
	}}
	loop := assistant.NewLoop(model, f.stops)

	text, err := loop.Run(ctx, f.trip, userTurn("add Vik"))

	require.NoError(t, err)
	assert.Equal(t, "Added Vik to your route.", text)

	stops, err := f.stops.ListByTrip(ctx, f.trip.ID)
	require.NoError(t, err)
	require.Len(t, stops, 1)
	assert.Equal(t, "Vik", stops[0].Name)
}

func TestLoop_SnapshotRefreshedAfterMutation(t *testing.T) {
	f := newLoopFixture(t)

	model := &funcModel{fn: func(call int, system string, _ []assistant.Message, _ []assistant.ToolSpec) (assistant.Reply, error) {
		switch call {
		case 1:
			assert.NotContains(t, system, "Husavik")
			return assistant.Reply{ToolCalls: []assistant.ToolCall{
				toolCall("add_stop", map[string]any{
					"name": "Husavik", "type": "stop", "latitude": 66.0, "longitude": -17.3,
				}),
			}}, nil
		default:
			assert.Contains(t, system, "Husavik",
				"the next model call must see post-mutation state")
			return assistant.Reply{Text: "done"}, nil
		}
	}}
	loop := assistant.NewLoop(model, f.stops)

	_, err := loop.Run(context.Background(), f.trip, userTurn("add Husavik"))
	require.NoError(t, err)
}

func TestLoop_ReorderThroughTool(t *testing.T) {
	f := newLoopFixture(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"A", "B", "C"} {
		st, err := f.stops.Create(ctx, f.trip.ID, domain.StopInput{
			Name: name, Type: domain.StopTypeWaypoint, Latitude: 64, Longitude: -20,
		})
		require.NoError(t, err)
		ids = append(ids, st.ID)
	}

	model := &funcModel{fn: func(call int, _ string, _ []assistant.Message, _ []assistant.ToolSpec) (assistant.Reply, error) {
		if call == 1 {
			return assistant.Reply{ToolCalls: []assistant.ToolCall{
				toolCall("reorder_stops", map[string]any{"stop_ids": []string{ids[2], ids[0], ids[1]}}),
			}}, nil
		}
		return assistant.Reply{Text: "reordered"}, nil
	}}
	loop := assistant.NewLoop(model, f.stops)

	_, err := loop.Run(ctx, f.trip, userTurn("put C first"))
	require.NoError(t, err)

	stops, err := f.stops.ListByTrip(ctx, f.trip.ID)
	require.NoError(t, err)
	require.Len(t, stops, 3)
	assert.Equal(t, "C", stops[0].Name)
	assert.Equal(t, "A", stops[1].Name)
	assert.Equal(t, "B", stops[2].Name)
}

func TestLoop_UnknownStopFedBackAsToolResult(t *testing.T) {
	f := newLoopFixture(t)

	model := &funcModel{fn: func(call int, _ string, transcript []assistant.Message, _ []assistant.ToolSpec) (assistant.Reply, error) {
		if call == 1 {
			return assistant.Reply{ToolCalls: []assistant.ToolCall{
				toolCall("remove_stop", map[string]any{"stop_id": uuid.NewString()}),
			}}, nil
		}
		last := transcript[len(transcript)-1]
		assert.Equal(t, assistant.RoleTool, last.Role)
		assert.Contains(t, last.Content, "error:",
			"a missing stop is a tool result the model can react to, not a turn failure")
		return assistant.Reply{Text: "That stop does not exist."}, nil
	}}
	loop := assistant.NewLoop(model, f.stops)

	text, err := loop.Run(context.Background(), f.trip, userTurn("remove it"))

	require.NoError(t, err)
	assert.Equal(t, "That stop does not exist.", text)
}

func TestLoop_MalformedArgsFedBackAsToolResult(t *testing.T) {
	f := newLoopFixture(t)

	model := &funcModel{fn: func(call int, _ string, transcript []assistant.Message, _ []assistant.ToolSpec) (assistant.Reply, error) {
		if call == 1 {
			return assistant.Reply{ToolCalls: []assistant.ToolCall{
				{ID: "call_1", Name: "add_stop", Args: json.RawMessage(`{"latitude": "far north"}`)},
			}}, nil
		}
		last := transcript[len(transcript)-1]
		assert.Contains(t, last.Content, "invalid arguments")
		return assistant.Reply{Text: "ok"}, nil
	}}
	loop := assistant.NewLoop(model, f.stops)

	_, err := loop.Run(context.Background(), f.trip, userTurn("add something"))
	require.NoError(t, err)
}

func TestLoop_ModelFailureIsUpstream(t *testing.T) {
	f := newLoopFixture(t)
	model := &funcModel{fn: func(_ int, _ string, _ []assistant.Message, _ []assistant.ToolSpec) (assistant.Reply, error) {
		return assistant.Reply{}, errors.New("401 invalid api key")
	}}
	loop := assistant.NewLoop(model, f.stops)

	_, err := loop.Run(context.Background(), f.trip, userTurn("hello"))

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestLoop_ToolFrenzyHitsCap(t *testing.T) {
	f := newLoopFixture(t)
	model := &funcModel{fn: func(call int, _ string, _ []assistant.Message, _ []assistant.ToolSpec) (assistant.Reply, error) {
		// A model that never stops calling tools.
		return assistant.Reply{ToolCalls: []assistant.ToolCall{
			{ID: fmt.Sprintf("call_%d", call), Name: "get_trip_info", Args: json.RawMessage(`{}`)},
		}}, nil
	}}
	loop := assistant.NewLoop(model, f.stops)

	text, err := loop.Run(context.Background(), f.trip, userTurn("loop forever"))

	require.NoError(t, err)
	assert.NotEmpty(t, text, "hitting the cap must still yield a reply")
	assert.Less(t, model.calls, 15, "the transcript cap must bound model calls")
}

// A long stored conversation must not starve the turn: only the newest
// entries are carried into the transcript, leaving room for tool calls and
// the model's final text.
func TestLoop_LongHistoryStillCompletesToolTurns(t *testing.T) {
	f := newLoopFixture(t)

	history := make([]domain.Message, 0, 22)
	for i := 0; i < 21; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		history = append(history, domain.Message{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}
	history = append(history, domain.Message{Role: domain.RoleUser, Content: "add Vik"})

	model := &funcModel{fn: func(call int, _ string, transcript []assistant.Message, _ []assistant.ToolSpec) (assistant.Reply, error) {
		if call == 1 {
			assert.LessOrEqual(t, len(transcript), 20, "seeded history is truncated to the newest entries")
			assert.Equal(t, "add Vik", transcript[len(transcript)-1].Content,
				"truncation keeps the user's current request")
			return assistant.Reply{ToolCalls: []assistant.ToolCall{
				toolCall("add_stop", map[string]any{
					"name": "Vik", "type": "waypoint", "latitude": 63.4, "longitude": -19.0,
				}),
			}}, nil
		}
		return assistant.Reply{Text: "Vik is on the south coast."}, nil
	}}
	loop := assistant.NewLoop(model, f.stops)

	text, err := loop.Run(context.Background(), f.trip, history)

	require.NoError(t, err)
	assert.Equal(t, "Vik is on the south coast.", text,
		"the model gets to produce its final text after the tool call")
	assert.Equal(t, 2, model.calls)
}

func TestLoop_MultipleToolCallsRunInOrder(t *testing.T) {
	f := newLoopFixture(t)
	ctx := context.Background()

	model := &funcModel{fn: func(call int, _ string, _ []assistant.Message, _ []assistant.ToolSpec) (assistant.Reply, error) {
		if call == 1 {
			return assistant.Reply{ToolCalls: []assistant.ToolCall{
				toolCall("add_stop", map[string]any{"name": "First", "type": "stop", "latitude": 1, "longitude": 1}),
				toolCall("add_stop", map[string]any{"name": "Second", "type": "stop", "latitude": 2, "longitude": 2}),
			}}, nil
		}
		return assistant.Reply{Text: "added both"}, nil
	}}
	loop := assistant.NewLoop(model, f.stops)

	_, err := loop.Run(ctx, f.trip, userTurn("add two stops"))
	require.NoError(t, err)

	stops, err := f.stops.ListByTrip(ctx, f.trip.ID)
	require.NoError(t, err)
	require.Len(t, stops, 2)
	assert.Equal(t, "First", stops[0].Name, "emission order decides route order")
	assert.Equal(t, "Second", stops[1].Name)
}
