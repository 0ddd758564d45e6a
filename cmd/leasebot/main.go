package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/crestline/leasebot"
	"github.com/crestline/leasebot/ai"
	"github.com/crestline/leasebot/handler"
	"github.com/crestline/leasebot/ingest"
	"github.com/crestline/leasebot/query"
)

func main() {
	// Load .env if present; missing files are fine.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "leasebot",
		Usage: "Conversational search assistant for rental listings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP chat server",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "listen",
						Usage: "Address to listen on",
						Value: ":8080",
					},
					&cli.StringFlag{
						Name:  "completion-host",
						Usage: "Completion service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "completion-model",
						Usage:    "Completion model name for answer generation",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL (defaults to completion-host if not specified)",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name for listing and query embeddings",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "Provider API key",
						EnvVars: []string{"LEASEBOT_API_KEY", "OPENAI_API_KEY"},
					},
				},
			},
			{
				Name:   "ingest",
				Usage:  "Ingest a listing catalog file and embed every listing",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "catalog",
						Aliases:  []string{"c"},
						Usage:    "Path to the JSON catalog file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "Provider API key",
						EnvVars: []string{"LEASEBOT_API_KEY", "OPENAI_API_KEY"},
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of listings to embed in each batch",
						Value: 16,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent embedding workers",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 500 * time.Millisecond,
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Run a one-shot search against the catalog",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Search text, e.g. \"2 bed in Austin under $2000\"",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "Provider API key",
						EnvVars: []string{"LEASEBOT_API_KEY", "OPENAI_API_KEY"},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	embeddingHost := c.String("embedding-host")
	if embeddingHost == "" {
		embeddingHost = c.String("completion-host")
	}

	opts := []ai.ConfigOption{
		ai.WithEmbeddingHost(embeddingHost),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	}
	if c.String("completion-host") != "" {
		opts = append(opts, ai.WithCompletionHost(c.String("completion-host")))
	}
	if c.String("completion-model") != "" {
		opts = append(opts, ai.WithCompletionModel(c.String("completion-model")))
	}
	if c.String("api-key") != "" {
		opts = append(opts, ai.WithAPIKey(c.String("api-key")))
	}

	return ai.NewConfig(opts...)
}

func serveCommand(c *cli.Context) error {
	assistant, err := leasebot.NewAssistant(c.String("db"),
		leasebot.WithAIConfig(aiConfigFromFlags(c)),
	)
	if err != nil {
		return fmt.Errorf("failed to create assistant: %w", err)
	}
	defer assistant.Close()

	chatHandler := handler.NewChatHandler(assistant.Orchestrator(), assistant.Pipeline())
	router := handler.NewRouter(chatHandler)

	server := &http.Server{
		Addr:              c.String("listen"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	assistant, err := leasebot.NewAssistant(c.String("db"),
		leasebot.WithAIConfig(aiConfigFromFlags(c)),
	)
	if err != nil {
		return fmt.Errorf("failed to create assistant: %w", err)
	}
	defer assistant.Close()

	opts := []ingest.Option{
		ingest.WithBatchSize(c.Int("batch-size")),
		ingest.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
	}
	if c.Int("pool-size") > 0 {
		opts = append(opts, ingest.WithPoolSize(c.Int("pool-size")))
	}

	pipeline, err := assistant.NewIngestPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create ingest pipeline: %w", err)
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Catalog:  %s\n", c.String("catalog"))
	fmt.Fprintln(os.Stderr)

	stored, err := pipeline.IngestFile(ctx, c.String("catalog"))
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	assistant.Engine().InvalidateResults()

	fmt.Fprintf(os.Stderr, "Ingested %d listings\n", stored)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	assistant, err := leasebot.NewAssistant(c.String("db"),
		leasebot.WithAIConfig(aiConfigFromFlags(c)),
	)
	if err != nil {
		return fmt.Errorf("failed to create assistant: %w", err)
	}
	defer assistant.Close()

	searchQuery := query.Analyze(c.String("query"))
	result, err := assistant.Engine().Search(ctx, searchQuery)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(result.Properties) == 0 {
		fmt.Println("No matching listings.")
		return nil
	}

	fmt.Printf("Intent: %s, %d result(s)\n\n", searchQuery.Intent, len(result.Properties))
	for i, p := range result.Properties {
		fmt.Printf("%d. %s\n", i+1, p.Describe())
	}

	return nil
}
