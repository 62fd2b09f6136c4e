package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"gastobot/internal/amqp"
	"gastobot/internal/analytics"
	"gastobot/internal/backend"
	"gastobot/internal/bot"
	"gastobot/internal/cache"
	"gastobot/internal/cli"
	"gastobot/internal/core"
	"gastobot/internal/goals"
	"gastobot/internal/interpret"
	applog "gastobot/internal/log"
	"gastobot/internal/ledger"
	"gastobot/internal/taxonomy"
	"gastobot/internal/telegram"
	"gastobot/internal/worker"
)

const (
	memoSize = 256
	memoTTL  = 5 * time.Minute
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger.Logger)

	// Ledger backend
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize ledger backend", "error", err)
		os.Exit(1)
	}

	// Goal settings and taxonomy
	goalsStore := goals.NewStore(cfg.GoalsConfigPath)
	tax := taxonomy.Default()
	settings, err := goalsStore.Load()
	switch {
	case err == nil:
		tax = settings.Taxonomy()
		logger.Info("Loaded goal settings", "path", cfg.GoalsConfigPath, "profile", settings.Profile)
	case errors.Is(err, goals.ErrUnavailable):
		logger.Warn("No goal settings found, using default taxonomy", "path", cfg.GoalsConfigPath)
	default:
		logger.Error("Failed to load goal settings", "error", err)
		os.Exit(1)
	}

	// AMQP is optional; append events and snapshots go out when it is up.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			amqpClient = nil
		} else {
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	var store ledger.Ledger = result.Ledger
	if amqpClient != nil {
		store = amqp.NewNotifyingLedger(store, amqpClient)
	}

	// Interpreter chain: model first when configured, keyword fallback
	// always last.
	var strategies []interpret.Strategy
	if cfg.OpenAIAPIKey != "" {
		client := openai.NewClient(cfg.OpenAIAPIKey)
		memo := cache.NewLRU[core.ParsedExpense](memoSize, memoTTL)
		strategies = append(strategies,
			interpret.NewModelStrategy(client, cfg.OpenAIModel, cfg.OpenAITimeout, tax.Categories(), memo))
		logger.Info("Model interpreter enabled", "model", cfg.OpenAIModel)
	} else {
		logger.Warn("OPENAI_API_KEY empty, using keyword interpreter only")
	}
	strategies = append(strategies, interpret.NewFallbackStrategy(tax))

	router := bot.NewRouter(interpret.NewChain(strategies...), store)
	engine := analytics.NewEngine(store, goalsStore)

	cleanup := func() {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("Failed to close AMQP client", "error", err)
			}
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Failed to clean up backend", "error", err)
			}
		}
	}

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, cleanup)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.TelegramBotToken != "" {
		tgBot, err := telegram.New(cfg.TelegramBotToken, router)
		if err != nil {
			logger.Error("Failed to initialize Telegram bot", "error", err)
			os.Exit(1)
		}
		g.Go(func() error { return tgBot.Run(gctx) })
	} else {
		logger.Warn("TELEGRAM_BOT_TOKEN empty, chat transport disabled")
	}

	if amqpClient != nil {
		snapshotWorker := worker.NewSnapshotWorker(engine, amqpClient, cfg.SnapshotInterval)
		g.Go(func() error { return snapshotWorker.Run(gctx) })
	}

	logger.Info("gastobot started",
		"backend", cfg.LedgerBackend,
		"telegram_enabled", cfg.TelegramBotToken != "",
		"amqp_enabled", amqpClient != nil)

	if err := g.Wait(); err != nil {
		logger.Error("Runtime error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("gastobot stopped gracefully")
}
