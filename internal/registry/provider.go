// Package registry aggregates tool providers behind a single lookup and
// invocation surface.
package registry

import (
	"context"

	"github.com/paperchat-ai/paperchat/internal/model"
)

// PromptArgument describes one argument accepted by a prompt.
type PromptArgument struct {
	Name        string
	Description string
	Required    bool
}

// PromptDescriptor describes one prompt offered by a provider.
type PromptDescriptor struct {
	Name        string
	Description string
	Arguments   []PromptArgument
}

// ResourceDescriptor describes one directly-listed resource.
type ResourceDescriptor struct {
	URI         string
	Name        string
	Description string
}

// Provider is a tool-providing collaborator: an MCP server reachable over
// some transport. The registry treats every provider the same way,
// regardless of whether it runs in a subprocess or across the network.
type Provider interface {
	// Name identifies the provider in logs and errors.
	Name() string

	// Tools returns the provider's tool descriptors.
	Tools(ctx context.Context) ([]model.ToolDescriptor, error)

	// Prompts returns the provider's prompt descriptors.
	Prompts(ctx context.Context) ([]PromptDescriptor, error)

	// Resources returns the provider's directly-listed resources.
	Resources(ctx context.Context) ([]ResourceDescriptor, error)

	// CallTool invokes a named tool. The bool reports a tool-level
	// failure; err reports a transport-level one.
	CallTool(ctx context.Context, name string, args map[string]any) (string, bool, error)

	// GetPrompt fetches a prompt rendered with the given arguments.
	GetPrompt(ctx context.Context, name string, args map[string]string) (string, error)

	// ReadResource reads a resource by URI.
	ReadResource(ctx context.Context, uri string) (string, error)

	// Close releases the provider's connection.
	Close() error
}
