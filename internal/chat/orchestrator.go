package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/paperchat-ai/paperchat/internal/errors"
	"github.com/paperchat-ai/paperchat/internal/model"
	"github.com/paperchat-ai/paperchat/internal/registry"
)

// Orchestrator drives a single query through the model/tool loop: call the
// model with the conversation and tool list, execute any requested tools,
// feed the results back, and repeat until the model answers in plain text.
type Orchestrator struct {
	model    model.Model
	registry *registry.Registry
	maxTurns int
	logger   *zap.Logger
}

// NewOrchestrator creates an orchestrator. maxTurns bounds the model
// round-trips per query; a non-positive value falls back to 10.
func NewOrchestrator(m model.Model, reg *registry.Registry, maxTurns int, logger *zap.Logger) *Orchestrator {
	if maxTurns <= 0 {
		maxTurns = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		model:    m,
		registry: reg,
		maxTurns: maxTurns,
		logger:   logger,
	}
}

// Run processes one user query on the given conversation and returns the
// model's final text answer.
//
// Model failures abort the turn and surface to the caller; the conversation
// keeps everything appended so far for diagnostics. Tool failures never
// abort the turn: they come back as error results the model can react to.
func (o *Orchestrator) Run(ctx context.Context, conv *Conversation, query string) (string, error) {
	log := o.logger.With(zap.String("run_id", uuid.NewString()))

	conv.Append(model.UserMessage(query))

	for turn := 1; turn <= o.maxTurns; turn++ {
		resp, err := o.model.Generate(ctx, &model.Request{
			Messages: conv.Messages(),
			Tools:    o.registry.Tools(),
		})
		if err != nil {
			log.Error("model call failed", zap.Int("turn", turn), zap.Error(err))
			return "", err
		}

		conv.Append(resp.Message)

		uses := resp.Message.ToolUses()
		if len(uses) == 0 {
			log.Info("turn complete",
				zap.Int("round_trips", turn),
				zap.Int("tokens_used", resp.TokensUsed))
			return resp.Message.Text(), nil
		}

		log.Info("executing tools", zap.Int("turn", turn), zap.Int("count", len(uses)))
		results := o.executeToolUses(ctx, uses)

		// One tool message per round, appended only after every call has
		// fully resolved, so a cancelled run never leaves partial state.
		conv.Append(model.ToolMessage(results...))
	}

	log.Warn("loop limit exceeded", zap.Int("max_turns", o.maxTurns))
	return "", apperrors.NewBuilder(apperrors.CodeLoopLimitExceeded,
		fmt.Sprintf("query did not settle within %d model calls", o.maxTurns)).
		Permanent().
		WithSuggestion("Break the request into smaller steps").
		WithSuggestion("Raise max_turns in the runtime configuration").
		Build()
}

// executeToolUses runs the requested tool calls concurrently and returns
// their results in request order.
func (o *Orchestrator) executeToolUses(ctx context.Context, uses []model.ContentBlock) []model.ContentBlock {
	results := make([]model.ContentBlock, len(uses))

	var wg sync.WaitGroup
	for i, use := range uses {
		wg.Add(1)
		go func(idx int, use model.ContentBlock) {
			defer wg.Done()
			results[idx] = o.registry.Invoke(ctx, use.ID, use.Name, use.Input)
		}(i, use)
	}
	wg.Wait()

	return results
}
