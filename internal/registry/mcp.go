package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/paperchat-ai/paperchat/internal/config"
	apperrors "github.com/paperchat-ai/paperchat/internal/errors"
	"github.com/paperchat-ai/paperchat/internal/model"
)

// MCPProvider implements Provider over an MCP client session.
type MCPProvider struct {
	name    string
	session *mcp.ClientSession
}

// Dial connects to the MCP server described by the connector: a stdio
// subprocess when a command is configured, a streamable HTTP endpoint
// otherwise.
func Dial(ctx context.Context, name string, conn config.Connector) (*MCPProvider, error) {
	var transport mcp.Transport
	switch {
	case conn.Command != "":
		cmd := exec.Command(conn.Command, conn.Args...)
		cmd.Env = append(os.Environ(), conn.Env...)
		transport = &mcp.CommandTransport{Command: cmd}
	case conn.Endpoint != "":
		transport = &mcp.StreamableClientTransport{Endpoint: conn.Endpoint}
	default:
		return nil, apperrors.New(apperrors.CodeConfigInvalid,
			fmt.Sprintf("server %q declares neither command nor endpoint", name), apperrors.CategorySystem)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "paperchat", Version: "0.1.0"}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeRegistryUnavailable,
			fmt.Sprintf("cannot connect to server %q", name), apperrors.CategoryTemporary)
	}

	return &MCPProvider{name: name, session: session}, nil
}

// NewSessionProvider wraps an already-connected session. Tests use it with
// in-memory transports.
func NewSessionProvider(name string, session *mcp.ClientSession) *MCPProvider {
	return &MCPProvider{name: name, session: session}
}

// Name identifies the provider.
func (p *MCPProvider) Name() string { return p.name }

// Tools lists the server's tools as descriptors.
func (p *MCPProvider) Tools(ctx context.Context) ([]model.ToolDescriptor, error) {
	res, err := p.session.ListTools(ctx, nil)
	if err != nil {
		return nil, err
	}
	descriptors := make([]model.ToolDescriptor, 0, len(res.Tools))
	for _, tool := range res.Tools {
		descriptors = append(descriptors, model.ToolDescriptor{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: toSchema(tool.InputSchema),
		})
	}
	return descriptors, nil
}

// Prompts lists the server's prompts as descriptors.
func (p *MCPProvider) Prompts(ctx context.Context) ([]PromptDescriptor, error) {
	res, err := p.session.ListPrompts(ctx, nil)
	if err != nil {
		return nil, err
	}
	descriptors := make([]PromptDescriptor, 0, len(res.Prompts))
	for _, prompt := range res.Prompts {
		desc := PromptDescriptor{Name: prompt.Name, Description: prompt.Description}
		for _, arg := range prompt.Arguments {
			desc.Arguments = append(desc.Arguments, PromptArgument{
				Name:        arg.Name,
				Description: arg.Description,
				Required:    arg.Required,
			})
		}
		descriptors = append(descriptors, desc)
	}
	return descriptors, nil
}

// Resources lists the server's directly-listed resources.
func (p *MCPProvider) Resources(ctx context.Context) ([]ResourceDescriptor, error) {
	res, err := p.session.ListResources(ctx, nil)
	if err != nil {
		return nil, err
	}
	descriptors := make([]ResourceDescriptor, 0, len(res.Resources))
	for _, resource := range res.Resources {
		descriptors = append(descriptors, ResourceDescriptor{
			URI:         resource.URI,
			Name:        resource.Name,
			Description: resource.Description,
		})
	}
	return descriptors, nil
}

// CallTool forwards a tool invocation to the server.
func (p *MCPProvider) CallTool(ctx context.Context, name string, args map[string]any) (string, bool, error) {
	res, err := p.session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", false, err
	}
	return textFromContent(res.Content), res.IsError, nil
}

// GetPrompt fetches a prompt and flattens its messages to text.
func (p *MCPProvider) GetPrompt(ctx context.Context, name string, args map[string]string) (string, error) {
	res, err := p.session.GetPrompt(ctx, &mcp.GetPromptParams{Name: name, Arguments: args})
	if err != nil {
		return "", err
	}
	var parts []string
	for _, msg := range res.Messages {
		if tc, ok := msg.Content.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// ReadResource reads a resource and returns its text contents.
func (p *MCPProvider) ReadResource(ctx context.Context, uri string) (string, error) {
	res, err := p.session.ReadResource(ctx, &mcp.ReadResourceParams{URI: uri})
	if err != nil {
		return "", err
	}
	var parts []string
	for _, contents := range res.Contents {
		if contents.Text != "" {
			parts = append(parts, contents.Text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// Close closes the underlying session.
func (p *MCPProvider) Close() error {
	return p.session.Close()
}

// toSchema converts the SDK's untyped input schema (a *jsonschema.Schema
// from typed handlers, a map[string]any on the client side) into a
// *jsonschema.Schema.
func toSchema(v any) *jsonschema.Schema {
	if v == nil {
		return nil
	}
	if s, ok := v.(*jsonschema.Schema); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	return &s
}

func textFromContent(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
