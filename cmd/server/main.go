package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/insightflow/insightflow-go/config"
	"github.com/insightflow/insightflow-go/internal/agents"
	"github.com/insightflow/insightflow-go/internal/api"
	"github.com/insightflow/insightflow-go/internal/cache"
	"github.com/insightflow/insightflow-go/internal/dataflows"
	"github.com/insightflow/insightflow-go/internal/graph"
	"github.com/insightflow/insightflow-go/internal/market"
	"github.com/insightflow/insightflow-go/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "insightflow",
		Short: "InsightFlow - multi-agent stock debate engine",
		Long: `InsightFlow runs structured bull versus bear debates over Indian stocks,
moderated by an AI judge, and serves the results over REST, SSE and WebSocket.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("insightflow v1.0.0")
		},
	})

	return rootCmd
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	chatModel, err := agents.NewChatModel(ctx, cfg)
	if err != nil {
		return err
	}

	quotes := dataflows.NewYahooClient()
	news := dataflows.NewGoogleNewsClient()
	data := dataflows.NewService(quotes, news, log)
	indices := market.NewService(log)

	engine, err := graph.New(ctx,
		data,
		indices,
		agents.NewSummaryAgent(chatModel, log),
		agents.NewBullAgent(chatModel, log),
		agents.NewBearAgent(chatModel, log),
		agents.NewModeratorAgent(chatModel, log),
		cfg.Debate.NewsCount,
		log,
	)
	if err != nil {
		return err
	}

	tape := cache.NewTickerTape(quotes, cfg.Market.TapeTTL, cfg.Market.TapeWorkers, log)

	handler := api.NewHandler(engine, data, tape, indices, cfg.App.Name, cfg.App.Version, cfg.Debate.DefaultMaxRounds, log)
	wsHandler := api.NewWebSocketHandler(engine, cfg.Server.CORSOrigins, cfg.Debate.DefaultMaxRounds, log)
	server := api.NewServer(cfg, handler, wsHandler, log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Infow("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
