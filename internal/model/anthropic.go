package model

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/jsonschema-go/jsonschema"

	apperrors "github.com/paperchat-ai/paperchat/internal/errors"
)

// AnthropicConfig configures the Anthropic client.
type AnthropicConfig struct {
	APIKey    string
	Model     string // e.g. "claude-sonnet-4-20250514"
	MaxTokens int
}

// AnthropicModel implements Model using the Anthropic Messages API.
type AnthropicModel struct {
	cfg    *AnthropicConfig
	client anthropic.Client
}

// NewAnthropicModel creates a new Anthropic-backed model. Extra request
// options are passed through to the client; tests use them to point the
// client at a local server.
func NewAnthropicModel(cfg *AnthropicConfig, opts ...option.RequestOption) *AnthropicModel {
	clientOpts := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	return &AnthropicModel{
		cfg:    cfg,
		client: anthropic.NewClient(clientOpts...),
	}
}

// Generate sends the conversation and tool list to the Messages API and
// maps the reply back into the conversation model.
func (m *AnthropicModel) Generate(ctx context.Context, req *Request) (*Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = m.cfg.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.cfg.Model),
		MaxTokens: int64(maxTokens),
		Messages:  toMessageParams(req.Messages),
		Tools:     toToolParams(req.Tools),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeModelUnavailable, "model call failed", apperrors.CategoryTemporary)
	}

	assistant, err := fromMessage(msg)
	if err != nil {
		return nil, err
	}

	return &Response{
		Message:    assistant,
		StopReason: string(msg.StopReason),
		TokensUsed: int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
	}, nil
}

// IsAvailable checks if the client is configured.
func (m *AnthropicModel) IsAvailable() bool {
	return m != nil && m.cfg != nil && m.cfg.APIKey != ""
}

// Name returns the model identifier.
func (m *AnthropicModel) Name() string {
	if m.cfg != nil {
		return m.cfg.Model
	}
	return "anthropic"
}

// ============================================================
// Conversion to API params
// ============================================================

func toMessageParams(messages []Message) []anthropic.MessageParam {
	params := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		role := anthropic.MessageParamRoleUser
		if msg.Role == RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}
		// The wire format has no tool role: tool results travel in a
		// user-role message.
		params = append(params, anthropic.MessageParam{
			Role:    role,
			Content: toBlockParams(msg.Content),
		})
	}
	return params
}

func toBlockParams(blocks []ContentBlock) []anthropic.ContentBlockParamUnion {
	params := make([]anthropic.ContentBlockParamUnion, 0, len(blocks))
	for _, block := range blocks {
		switch block.Type {
		case BlockText:
			params = append(params, anthropic.ContentBlockParamUnion{
				OfText: &anthropic.TextBlockParam{Text: block.Text},
			})
		case BlockToolUse:
			params = append(params, anthropic.ContentBlockParamUnion{
				OfToolUse: &anthropic.ToolUseBlockParam{
					ID:    block.ID,
					Name:  block.Name,
					Input: block.Input,
				},
			})
		case BlockToolResult:
			params = append(params, anthropic.ContentBlockParamUnion{
				OfToolResult: &anthropic.ToolResultBlockParam{
					ToolUseID: block.ToolUseID,
					IsError:   anthropic.Bool(block.IsError),
					Content: []anthropic.ToolResultBlockParamContentUnion{
						{OfText: &anthropic.TextBlockParam{Text: block.Content}},
					},
				},
			})
		}
	}
	return params
}

func toToolParams(tools []ToolDescriptor) []anthropic.ToolUnionParam {
	params := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		params = append(params, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name,
				Description: anthropic.String(tool.Description),
				InputSchema: toInputSchema(tool.InputSchema),
			},
		})
	}
	return params
}

// toInputSchema converts a JSON schema into the API's input_schema shape.
func toInputSchema(schema *jsonschema.Schema) anthropic.ToolInputSchemaParam {
	out := anthropic.ToolInputSchemaParam{Properties: map[string]any{}}
	if schema == nil {
		return out
	}

	data, err := json.Marshal(schema)
	if err != nil {
		return out
	}
	var decoded struct {
		Properties map[string]any `json:"properties"`
		Required   []string       `json:"required"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return out
	}
	if decoded.Properties != nil {
		out.Properties = decoded.Properties
	}
	out.Required = decoded.Required
	return out
}

// ============================================================
// Conversion from API responses
// ============================================================

func fromMessage(msg *anthropic.Message) (Message, error) {
	assistant := Message{Role: RoleAssistant}

	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			assistant.Content = append(assistant.Content, TextBlock(block.Text))
		case "tool_use":
			var input map[string]any
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &input); err != nil {
					return Message{}, apperrors.Wrap(err, apperrors.CodeModelInvalidResponse,
						fmt.Sprintf("tool use %q carries malformed input", block.Name), apperrors.CategoryTemporary)
				}
			}
			assistant.Content = append(assistant.Content, ToolUseBlock(block.ID, block.Name, input))
		}
	}

	if len(assistant.Content) == 0 {
		return Message{}, apperrors.NewBuilder(apperrors.CodeModelInvalidResponse, "model returned empty response").
			Temporary().
			WithSuggestion("Try rephrasing your request").
			Build()
	}
	return assistant, nil
}
