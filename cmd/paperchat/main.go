// Command paperchat is the interactive research chatbot. It connects to the
// configured MCP servers, aggregates their tools, and drives an Anthropic
// model through a tool-augmented conversation loop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/paperchat-ai/paperchat/internal/chat"
	"github.com/paperchat-ai/paperchat/internal/config"
	apperrors "github.com/paperchat-ai/paperchat/internal/errors"
	"github.com/paperchat-ai/paperchat/internal/logging"
	"github.com/paperchat-ai/paperchat/internal/model"
	"github.com/paperchat-ai/paperchat/internal/registry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, apperrors.FormatUserMessage(err))
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("PAPERCHAT_CONFIG"))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New("client", cfg.Paths.LogConfig, cfg.Paths.LogsDir)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conns, err := cfg.LoadConnectors()
	if err != nil {
		return err
	}

	// Sorted for a deterministic tool registration order.
	names := make([]string, 0, len(conns.Servers))
	for name := range conns.Servers {
		names = append(names, name)
	}
	sort.Strings(names)

	providers := make([]registry.Provider, 0, len(names))
	for _, name := range names {
		provider, err := registry.Dial(ctx, name, conns.Servers[name])
		if err != nil {
			logger.Error("cannot connect to server", zap.String("server", name), zap.Error(err))
			return err
		}
		providers = append(providers, provider)
	}

	reg, err := registry.New(ctx, logger, providers...)
	if err != nil {
		return err
	}
	defer reg.Close()

	m := model.NewAnthropicModel(&model.AnthropicConfig{
		APIKey:    cfg.Model.APIKey,
		Model:     cfg.Model.Name,
		MaxTokens: cfg.Model.MaxTokens,
	})

	orchestrator := chat.NewOrchestrator(m, reg, cfg.Runtime.MaxTurns, logger)
	repl := chat.NewREPL(orchestrator, reg, os.Stdin, os.Stdout)
	return repl.Run(ctx)
}
