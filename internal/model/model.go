package model

import "context"

// Model represents a language model collaborator.
type Model interface {
	// Generate runs one inference over the full conversation.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// IsAvailable checks if the model is configured and ready.
	IsAvailable() bool

	// Name returns the model identifier.
	Name() string
}

// Request represents a model inference request.
type Request struct {
	System    string
	Messages  []Message
	Tools     []ToolDescriptor
	MaxTokens int
}

// Response represents a model inference response. Message is always an
// assistant message containing text blocks, tool use blocks, or both.
type Response struct {
	Message    Message
	StopReason string
	TokensUsed int
}
