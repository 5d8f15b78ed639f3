package assistant_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypost/waypost/backend/internal/assistant"
)

// chatServer fakes the chat completions endpoint, capturing the request body
// and returning a canned response.
func chatServer(t *testing.T, status int, response string, captured *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
}

func TestOpenAIModel_Complete_TextReply(t *testing.T) {
	var captured map[string]any
	srv := chatServer(t, http.StatusOK,
		`{"choices":[{"message":{"content":"Hello there."}}]}`, &captured)
	defer srv.Close()

	m := assistant.NewOpenAIModel("sk-test",
		assistant.WithEndpoint(srv.URL), assistant.WithModel("gpt-5"))

	reply, err := m.Complete(context.Background(), "be helpful",
		[]assistant.Message{{Role: assistant.RoleUser, Content: "hi"}},
		[]assistant.ToolSpec{{Name: "get_trip_info", Parameters: map[string]any{"type": "object"}}})

	require.NoError(t, err)
	assert.Equal(t, "Hello there.", reply.Text)
	assert.Empty(t, reply.ToolCalls)

	assert.Equal(t, "gpt-5", captured["model"])
	msgs, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	first, ok := msgs[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "be helpful", first["content"])
	tools, ok := captured["tools"].([]any)
	require.True(t, ok)
	assert.Len(t, tools, 1)
}

func TestOpenAIModel_Complete_ToolCalls(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{
		"choices":[{"message":{
			"content":"",
			"tool_calls":[{"id":"call_1","type":"function","function":{
				"name":"add_stop","arguments":"{\"name\":\"Vik\"}"}}]
		}}]
	}`, nil)
	defer srv.Close()

	m := assistant.NewOpenAIModel("sk-test", assistant.WithEndpoint(srv.URL))

	reply, err := m.Complete(context.Background(), "", nil, nil)

	require.NoError(t, err)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, "call_1", reply.ToolCalls[0].ID)
	assert.Equal(t, "add_stop", reply.ToolCalls[0].Name)
	assert.JSONEq(t, `{"name":"Vik"}`, string(reply.ToolCalls[0].Args))
}

func TestOpenAIModel_Complete_APIError(t *testing.T) {
	srv := chatServer(t, http.StatusUnauthorized,
		`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`, nil)
	defer srv.Close()

	m := assistant.NewOpenAIModel("sk-test", assistant.WithEndpoint(srv.URL))

	_, err := m.Complete(context.Background(), "", nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}

func TestOpenAIModel_Complete_NoChoices(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{"choices":[]}`, nil)
	defer srv.Close()

	m := assistant.NewOpenAIModel("sk-test", assistant.WithEndpoint(srv.URL))

	_, err := m.Complete(context.Background(), "", nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

// Tool-call turns must round-trip: the assistant message carrying the calls
// and the tool result referencing its id both appear in the wire payload.
func TestOpenAIModel_Complete_EncodesToolTurns(t *testing.T) {
	var captured map[string]any
	srv := chatServer(t, http.StatusOK,
		`{"choices":[{"message":{"content":"done"}}]}`, &captured)
	defer srv.Close()

	m := assistant.NewOpenAIModel("sk-test", assistant.WithEndpoint(srv.URL))

	transcript := []assistant.Message{
		{Role: assistant.RoleUser, Content: "add Vik"},
		{Role: assistant.RoleAssistant, ToolCalls: []assistant.ToolCall{
			{ID: "call_1", Name: "add_stop", Args: json.RawMessage(`{"name":"Vik"}`)},
		}},
		{Role: assistant.RoleTool, Content: "Added stop", ToolCallID: "call_1"},
	}

	_, err := m.Complete(context.Background(), "sys", transcript, nil)
	require.NoError(t, err)

	msgs, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 4)

	asst, ok := msgs[2].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "assistant", asst["role"])
	calls, ok := asst["tool_calls"].([]any)
	require.True(t, ok)
	require.Len(t, calls, 1)

	tool, ok := msgs[3].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "tool", tool["role"])
	assert.Equal(t, "call_1", tool["tool_call_id"])
}
