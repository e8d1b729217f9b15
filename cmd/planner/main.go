package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/trip-planner/internal/config"
	httptransport "github.com/example/trip-planner/internal/http"
	"github.com/example/trip-planner/internal/logging"
	"github.com/example/trip-planner/internal/notify"
	"github.com/example/trip-planner/internal/persistence"
	"github.com/example/trip-planner/internal/persistence/postgres"
	"github.com/example/trip-planner/internal/persistence/sqlite"
	"github.com/example/trip-planner/internal/rabbitmq"
	"github.com/example/trip-planner/internal/session"
	"github.com/example/trip-planner/internal/ws"
)

func main() {
	logger := logging.New(os.Stdout, "info")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger = logging.New(os.Stdout, cfg.LogLevel)

	snapshots, err := newSnapshotStore(cfg)
	if err != nil {
		logger.Error("failed to open snapshot store", "backend", cfg.SnapshotBackend, "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := snapshots.Close(); cerr != nil {
			logger.Error("failed to close snapshot store", "error", cerr)
		}
	}()

	hub := ws.NewHubWithLogger(logger)

	broadcast := rabbitmq.Broadcaster(hub)
	if cfg.AMQPURL != "" {
		publisher, err := rabbitmq.NewAMQPPublisher(cfg.AMQPURL)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		broadcast = rabbitmq.NewLifecycleBridge(hub, publisher, cfg.AMQPExchange, logger)
		logger.Info("mirroring lifecycle events to rabbitmq", "exchange", cfg.AMQPExchange)
	}

	engine := session.NewStoreWithLogger(snapshots, broadcast, cfg.ShareBaseURL, uuid.NewString, time.Now, logger)
	defer engine.Close()

	if err := engine.Restore(ctx); err != nil {
		logger.Warn("failed to restore sessions, starting empty", "error", err)
	}

	var calendar session.CalendarConnector
	if cfg.CalendarWebhookURL != "" {
		calendar = notify.NewCalendarWebhook(cfg.CalendarWebhookURL)
	}
	var chat httptransport.ChatNotifier
	if cfg.ChatWebhookURL != "" {
		chat = notify.NewChatWebhook(cfg.ChatWebhookURL)
	}

	if cfg.DevMode {
		logger.Warn("development mode enabled, every caller is privileged")
	}

	sessionHandler := httptransport.NewSessionHandler(engine, calendar, chat, logger)
	wsHandler := ws.NewHandlerWithLogger(engine, hub, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Sessions: sessionHandler,
		WS:       wsHandler,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.WithPrincipal(httptransport.NewOperatorKeyVerifier(cfg.OperatorKeyHash), cfg.DevMode),
		},
	})

	// No global read or write timeouts: /ws connections stay open for the
	// life of the client.
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("planner API listening", "addr", server.Addr, "backend", cfg.SnapshotBackend)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// newSnapshotStore opens the durable backend selected by configuration.
func newSnapshotStore(cfg config.Config) (persistence.SnapshotStore, error) {
	switch cfg.SnapshotBackend {
	case config.BackendSQLite:
		return sqlite.Open(cfg.SQLitePath)
	case config.BackendPostgres:
		return postgres.Open(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported snapshot backend %q", cfg.SnapshotBackend)
	}
}
