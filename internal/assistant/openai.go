package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-5-mini"

const chatCompletionsEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIModel implements Model against the OpenAI chat completions API.
type OpenAIModel struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// OpenAIOption configures an OpenAIModel.
type OpenAIOption func(*OpenAIModel)

// WithModel overrides the default chat model.
func WithModel(model string) OpenAIOption {
	return func(m *OpenAIModel) {
		if model != "" {
			m.model = model
		}
	}
}

// WithEndpoint sets a custom API endpoint, e.g. for proxies or tests.
func WithEndpoint(endpoint string) OpenAIOption {
	return func(m *OpenAIModel) { m.endpoint = endpoint }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(m *OpenAIModel) { m.client = c }
}

// NewOpenAIModel creates a chat completion backend authenticated with apiKey.
func NewOpenAIModel(apiKey string, opts ...OpenAIOption) *OpenAIModel {
	m := &OpenAIModel{
		apiKey:   apiKey,
		model:    DefaultModel,
		endpoint: chatCompletionsEndpoint,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []chatTool    `json:"tools,omitempty"`
}

type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type chatToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chatTool struct {
	Type     string      `json:"type"`
	Function chatToolDef `json:"function"`
}

type chatToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string         `json:"content"`
			ToolCalls []chatToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends one chat completion request and maps the first choice back
// into the neutral Reply shape.
func (m *OpenAIModel) Complete(ctx context.Context, system string, transcript []Message, tools []ToolSpec) (Reply, error) {
	req := chatRequest{Model: m.model}
	req.Messages = append(req.Messages, chatMessage{Role: "system", Content: system})
	for _, msg := range transcript {
		req.Messages = append(req.Messages, encodeMessage(msg))
	}
	for _, t := range tools {
		req.Tools = append(req.Tools, chatTool{
			Type: "function",
			Function: chatToolDef{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Reply{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return Reply{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("read response: %w", err)
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		if resp.StatusCode != http.StatusOK {
			return Reply{}, fmt.Errorf("chat completions API returned %d: %s", resp.StatusCode, string(respBody))
		}
		return Reply{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if result.Error != nil {
		return Reply{}, fmt.Errorf("openai error: %s (%s)", result.Error.Message, result.Error.Type)
	}
	if resp.StatusCode != http.StatusOK {
		return Reply{}, fmt.Errorf("chat completions API returned %d", resp.StatusCode)
	}
	if len(result.Choices) == 0 {
		return Reply{}, errors.New("chat completions API returned no choices")
	}

	choice := result.Choices[0].Message
	reply := Reply{Text: choice.Content}
	for _, tc := range choice.ToolCalls {
		reply.ToolCalls = append(reply.ToolCalls, ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: json.RawMessage(tc.Function.Arguments),
		})
	}
	return reply, nil
}

// encodeMessage maps a neutral transcript entry into the wire shape,
// reconstructing assistant tool-call turns so the model sees its own prior
// calls next to their results.
func encodeMessage(msg Message) chatMessage {
	out := chatMessage{
		Role:       string(msg.Role),
		Content:    msg.Content,
		ToolCallID: msg.ToolCallID,
	}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, chatToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: chatFunction{
				Name:      tc.Name,
				Arguments: string(tc.Args),
			},
		})
	}
	return out
}
