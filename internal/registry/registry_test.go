package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/paperchat-ai/paperchat/internal/errors"
	"github.com/paperchat-ai/paperchat/internal/model"
)

type stubProvider struct {
	name      string
	tools     []model.ToolDescriptor
	prompts   []PromptDescriptor
	resources []ResourceDescriptor

	callErr   error
	callText  string
	isError   bool
	resource  string
	prompt    string
	toolsErr  error
	closedCnt int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Tools(context.Context) ([]model.ToolDescriptor, error) {
	return p.tools, p.toolsErr
}

func (p *stubProvider) Prompts(context.Context) ([]PromptDescriptor, error) {
	return p.prompts, nil
}

func (p *stubProvider) Resources(context.Context) ([]ResourceDescriptor, error) {
	return p.resources, nil
}

func (p *stubProvider) CallTool(context.Context, string, map[string]any) (string, bool, error) {
	return p.callText, p.isError, p.callErr
}

func (p *stubProvider) GetPrompt(context.Context, string, map[string]string) (string, error) {
	if p.prompt == "" {
		return "", errors.New("no such prompt")
	}
	return p.prompt, nil
}

func (p *stubProvider) ReadResource(context.Context, string) (string, error) {
	if p.resource == "" {
		return "", errors.New("no such resource")
	}
	return p.resource, nil
}

func (p *stubProvider) Close() error {
	p.closedCnt++
	return nil
}

func TestNewRejectsDuplicateToolNames(t *testing.T) {
	a := &stubProvider{name: "alpha", tools: []model.ToolDescriptor{{Name: "search"}}}
	b := &stubProvider{name: "beta", tools: []model.ToolDescriptor{{Name: "search"}}}

	_, err := New(context.Background(), zap.NewNop(), a, b)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeRegistryDuplicateTool))
	assert.Contains(t, err.Error(), "alpha")
	assert.Contains(t, err.Error(), "beta")
}

func TestNewFailsWhenToolListingFails(t *testing.T) {
	p := &stubProvider{name: "alpha", toolsErr: errors.New("connection refused")}

	_, err := New(context.Background(), zap.NewNop(), p)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeRegistryUnavailable))
}

func TestToolsPreserveRegistrationOrder(t *testing.T) {
	a := &stubProvider{name: "alpha", tools: []model.ToolDescriptor{{Name: "search"}, {Name: "extract"}}}
	b := &stubProvider{name: "beta", tools: []model.ToolDescriptor{{Name: "fetch"}}}

	reg, err := New(context.Background(), zap.NewNop(), a, b)
	require.NoError(t, err)

	names := make([]string, 0, 3)
	for _, tool := range reg.Tools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"search", "extract", "fetch"}, names)
}

func TestInvokeUnknownToolReturnsErrorResult(t *testing.T) {
	reg, err := New(context.Background(), zap.NewNop(),
		&stubProvider{name: "alpha", tools: []model.ToolDescriptor{{Name: "search"}}})
	require.NoError(t, err)

	result := reg.Invoke(context.Background(), "call-1", "bogus", nil)
	assert.Equal(t, model.BlockToolResult, result.Type)
	assert.Equal(t, "call-1", result.ToolUseID)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "bogus")
}

func TestInvokeWrapsProviderFailure(t *testing.T) {
	p := &stubProvider{
		name:    "alpha",
		tools:   []model.ToolDescriptor{{Name: "search"}},
		callErr: errors.New("timeout"),
	}
	reg, err := New(context.Background(), zap.NewNop(), p)
	require.NoError(t, err)

	result := reg.Invoke(context.Background(), "call-1", "search", nil)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "timeout")
}

func TestInvokePassesThroughToolLevelError(t *testing.T) {
	p := &stubProvider{
		name:     "alpha",
		tools:    []model.ToolDescriptor{{Name: "search"}},
		callText: "rate limited",
		isError:  true,
	}
	reg, err := New(context.Background(), zap.NewNop(), p)
	require.NoError(t, err)

	result := reg.Invoke(context.Background(), "call-1", "search", nil)
	assert.True(t, result.IsError)
	assert.Equal(t, "rate limited", result.Content)
}

func TestGetPromptUnknownName(t *testing.T) {
	reg, err := New(context.Background(), zap.NewNop(), &stubProvider{name: "alpha"})
	require.NoError(t, err)

	_, err = reg.GetPrompt(context.Background(), "bogus", nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodePromptNotFound))
}

func TestGetPromptRoutesToOwner(t *testing.T) {
	p := &stubProvider{
		name:    "alpha",
		prompts: []PromptDescriptor{{Name: "generate_search_prompt"}},
		prompt:  "search for papers",
	}
	reg, err := New(context.Background(), zap.NewNop(), p)
	require.NoError(t, err)

	text, err := reg.GetPrompt(context.Background(), "generate_search_prompt", map[string]string{"topic": "ai"})
	require.NoError(t, err)
	assert.Equal(t, "search for papers", text)
}

func TestReadResourceFallsBackToSchemeOwner(t *testing.T) {
	p := &stubProvider{
		name:      "alpha",
		resources: []ResourceDescriptor{{URI: "papers://folders"}},
		resource:  "# Papers on Ai",
	}
	reg, err := New(context.Background(), zap.NewNop(), p)
	require.NoError(t, err)

	// papers://ai is not listed, but alpha owns the papers scheme.
	text, err := reg.ReadResource(context.Background(), "papers://ai")
	require.NoError(t, err)
	assert.Equal(t, "# Papers on Ai", text)
}

func TestReadResourceUnknownScheme(t *testing.T) {
	reg, err := New(context.Background(), zap.NewNop(), &stubProvider{name: "alpha"})
	require.NoError(t, err)

	_, err = reg.ReadResource(context.Background(), "bogus://thing")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeResourceNotFound))
}

func TestCloseClosesAllProviders(t *testing.T) {
	a := &stubProvider{name: "alpha"}
	b := &stubProvider{name: "beta"}
	reg, err := New(context.Background(), zap.NewNop(), a, b)
	require.NoError(t, err)

	require.NoError(t, reg.Close())
	assert.Equal(t, 1, a.closedCnt)
	assert.Equal(t, 1, b.closedCnt)
}
