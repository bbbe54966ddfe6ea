package registry

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/paperchat-ai/paperchat/internal/errors"
	"github.com/paperchat-ai/paperchat/internal/model"
)

// Registry routes tool invocations, prompt fetches, and resource reads to
// the provider that owns them. It is built once at startup and read-only
// afterwards.
type Registry struct {
	providers []Provider
	logger    *zap.Logger

	tools   []model.ToolDescriptor
	prompts []PromptDescriptor

	toolOwners     map[string]Provider
	promptOwners   map[string]Provider
	resourceOwners map[string]Provider
}

// New builds a registry from the given providers. A tool name declared by
// two providers is a configuration error and fails construction. A provider
// whose prompt or resource listing fails keeps its tools; the missing
// capability is logged and skipped.
func New(ctx context.Context, logger *zap.Logger, providers ...Provider) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Registry{
		providers:      providers,
		logger:         logger,
		toolOwners:     make(map[string]Provider),
		promptOwners:   make(map[string]Provider),
		resourceOwners: make(map[string]Provider),
	}

	for _, p := range providers {
		tools, err := p.Tools(ctx)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeRegistryUnavailable,
				fmt.Sprintf("cannot list tools of provider %q", p.Name()), apperrors.CategoryTemporary)
		}
		for _, tool := range tools {
			if owner, ok := r.toolOwners[tool.Name]; ok {
				return nil, apperrors.NewBuilder(apperrors.CodeRegistryDuplicateTool,
					fmt.Sprintf("tool %q declared by both %q and %q", tool.Name, owner.Name(), p.Name())).
					System().
					WithSuggestion("Rename the tool in one of the server configurations").
					Build()
			}
			r.toolOwners[tool.Name] = p
			r.tools = append(r.tools, tool)
		}

		prompts, err := p.Prompts(ctx)
		if err != nil {
			logger.Info("provider has no prompts", zap.String("provider", p.Name()), zap.Error(err))
		}
		for _, prompt := range prompts {
			if _, ok := r.promptOwners[prompt.Name]; ok {
				continue
			}
			r.promptOwners[prompt.Name] = p
			r.prompts = append(r.prompts, prompt)
		}

		resources, err := p.Resources(ctx)
		if err != nil {
			logger.Info("provider has no resources", zap.String("provider", p.Name()), zap.Error(err))
		}
		for _, resource := range resources {
			if _, ok := r.resourceOwners[resource.URI]; ok {
				continue
			}
			r.resourceOwners[resource.URI] = p
		}
	}

	logger.Info("registry built",
		zap.Int("providers", len(providers)),
		zap.Int("tools", len(r.tools)),
		zap.Int("prompts", len(r.prompts)))
	return r, nil
}

// Tools returns the aggregated tool descriptors in registration order.
func (r *Registry) Tools() []model.ToolDescriptor {
	return r.tools
}

// Prompts returns the aggregated prompt descriptors in registration order.
func (r *Registry) Prompts() []PromptDescriptor {
	return r.prompts
}

// Invoke routes a tool call to its owning provider and returns a result
// block correlated by callID. Tool-level failures never surface as errors:
// they become error results the model can react to.
func (r *Registry) Invoke(ctx context.Context, callID, name string, args map[string]any) model.ContentBlock {
	provider, ok := r.toolOwners[name]
	if !ok {
		r.logger.Warn("unknown tool requested", zap.String("tool", name))
		return model.ToolResultBlock(callID, fmt.Sprintf("Error: unknown tool %q", name), true)
	}

	content, isError, err := provider.CallTool(ctx, name, args)
	if err != nil {
		r.logger.Warn("tool invocation failed",
			zap.String("tool", name),
			zap.String("provider", provider.Name()),
			zap.Error(err))
		return model.ToolResultBlock(callID, fmt.Sprintf("Error: tool %q failed: %v", name, err), true)
	}

	return model.ToolResultBlock(callID, content, isError)
}

// GetPrompt fetches a named prompt from its owning provider.
func (r *Registry) GetPrompt(ctx context.Context, name string, args map[string]string) (string, error) {
	provider, ok := r.promptOwners[name]
	if !ok {
		return "", apperrors.New(apperrors.CodePromptNotFound,
			fmt.Sprintf("prompt %q not found", name), apperrors.CategoryUser)
	}
	text, err := provider.GetPrompt(ctx, name, args)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodePromptNotFound,
			fmt.Sprintf("cannot fetch prompt %q", name), apperrors.CategoryTemporary)
	}
	return text, nil
}

// ReadResource reads a resource by URI. Templated URIs are not listed up
// front, so an unknown URI falls back to the provider owning the same
// scheme before giving up.
func (r *Registry) ReadResource(ctx context.Context, uri string) (string, error) {
	provider, ok := r.resourceOwners[uri]
	if !ok {
		provider, ok = r.schemeOwner(uri)
	}
	if !ok {
		return "", apperrors.New(apperrors.CodeResourceNotFound,
			fmt.Sprintf("resource %q not found", uri), apperrors.CategoryUser)
	}

	text, err := provider.ReadResource(ctx, uri)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeResourceNotFound,
			fmt.Sprintf("cannot read resource %q", uri), apperrors.CategoryTemporary)
	}
	return text, nil
}

func (r *Registry) schemeOwner(uri string) (Provider, bool) {
	scheme, _, ok := strings.Cut(uri, "://")
	if !ok {
		return nil, false
	}
	for known, provider := range r.resourceOwners {
		if strings.HasPrefix(known, scheme+"://") {
			return provider, true
		}
	}
	return nil, false
}

// Close closes all providers, returning the first error.
func (r *Registry) Close() error {
	var firstErr error
	for _, p := range r.providers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
