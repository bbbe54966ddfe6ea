// Command paperchat-server is the research MCP server. It exposes arXiv
// search tools, stored-paper resources, and a search prompt over stdio or
// streamable HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/paperchat-ai/paperchat/internal/config"
	apperrors "github.com/paperchat-ai/paperchat/internal/errors"
	"github.com/paperchat-ai/paperchat/internal/logging"
	"github.com/paperchat-ai/paperchat/internal/research"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, apperrors.FormatUserMessage(err))
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("PAPERCHAT_CONFIG"))
	if err != nil {
		return err
	}

	logger, err := logging.New("server", cfg.Paths.LogConfig, cfg.Paths.LogsDir)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := research.NewStore(cfg.Paths.PapersDir, logger)
	arxiv := research.NewArxivClient(os.Getenv("ARXIV_BASE_URL"))

	server := research.NewServer(cfg, store, arxiv, logger)
	return server.Run(ctx)
}
