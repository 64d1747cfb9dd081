package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"julianmorley.ca/con-plar/storefront/internal/router"
	"julianmorley.ca/con-plar/storefront/pkg/ai"
	"julianmorley.ca/con-plar/storefront/pkg/chat"
	"julianmorley.ca/con-plar/storefront/pkg/checkout"
	"julianmorley.ca/con-plar/storefront/pkg/clock"
	"julianmorley.ca/con-plar/storefront/pkg/config"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/logger"
	"julianmorley.ca/con-plar/storefront/pkg/orders"
	"julianmorley.ca/con-plar/storefront/pkg/query"
	"julianmorley.ca/con-plar/storefront/pkg/session"
	"julianmorley.ca/con-plar/storefront/pkg/shutdown"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.New(logger.Options{
		Service:   "storefront",
		Env:       cfg.Env,
		Level:     cfg.LogLevel,
		AddSource: !cfg.IsProduction(),
	})
	if envErr != nil {
		log.Info("no .env file loaded, using the process environment")
	}

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
	log.Info("bye")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	storage, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer storage.Close()

	cat, err := loadCatalog(ctx, cfg, log)
	if err != nil {
		return err
	}
	log.Info("catalog loaded", "source", cfg.CatalogSource, "products", cat.Len())

	var responder chat.Responder = chat.CannedResponder{Delay: cfg.ChatDelay, Clock: clock.System{}}
	if client := ai.NewClient(cfg.AI, log); client != nil {
		responder = ai.NewChatResponder(client, cat.Products())
	}

	history, err := orders.StaticHistory()
	if err != nil {
		return err
	}

	sessions := session.NewRegistry(session.Options{
		Storage:   storage,
		Processor: checkout.NewSimulatedProcessor(cfg.CheckoutDelay),
		Responder: responder,
		AuthDelay: cfg.AuthDelay,
		Logger:    log,
		History:   history,
		IdleTTL:   cfg.SessionIdleTTL,
	})

	engine := router.New(router.Deps{
		Config:   cfg,
		Catalog:  cat,
		Sessions: sessions,
		Suggest:  query.SuggestOptions{Threshold: cfg.SuggestThreshold, Limit: query.DefaultSuggestLimit},
		Logger:   log,
		Ping:     storage.Ping,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions.Run(gctx, sweepInterval(cfg.SessionIdleTTL))
		return nil
	})
	g.Go(func() error {
		log.Info("server is running", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to run server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), global.DefaultTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// sweepInterval checks for idle sessions a few times per TTL
func sweepInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, time.Second)
}
