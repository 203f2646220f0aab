package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"doceGestaoWs/internal/config"
	ordersport "doceGestaoWs/internal/modules/orders/application/port"
	ordersusecase "doceGestaoWs/internal/modules/orders/application/usecase"
	"doceGestaoWs/internal/modules/orders/infrastructure/cache"
	orderspg "doceGestaoWs/internal/modules/orders/infrastructure/postgres"
	orderstransport "doceGestaoWs/internal/modules/orders/interface"
	rtport "doceGestaoWs/internal/modules/realtime/application/port"
	rtusecase "doceGestaoWs/internal/modules/realtime/application/usecase"
	"doceGestaoWs/internal/modules/realtime/infrastructure"
	rttransport "doceGestaoWs/internal/modules/realtime/interface"
	"doceGestaoWs/internal/platform/broker"
	"doceGestaoWs/internal/shared/auth"
	"doceGestaoWs/internal/shared/logging"
)

func main() {
	// Load .env so local runs honour configuration tweaks.
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, logger, err := setupLogging(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := orderspg.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		slog.Error("database connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	registry := infrastructure.NewRegistry()
	hub := infrastructure.NewHub(registry)

	var publisher rtport.EventPublisher = rtport.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := broker.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrderCreatedTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		slog.Info("kafka publisher configured", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("topic", cfg.Kafka.OrderCreatedTopic))
	}
	notifier := rtusecase.NewNotifyUseCase(hub, publisher)

	clients := clientDirectory(cfg, orderspg.NewClientsRepo(pool))
	orderService := ordersusecase.NewCreateOrderUseCase(
		orderspg.NewUnitOfWork(pool),
		orderspg.NewOrdersRepo(pool),
		clients,
		notifier,
	)

	var validator auth.TokenValidator
	if cfg.Security.JWTSecret != "" {
		validator = auth.NewJWTValidator(cfg.Security.JWTSecret)
	} else {
		slog.Warn("JWT_SECRET not set, realtime endpoints run unauthenticated")
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/api/notifications/stream", rttransport.NewStreamHandler(hub, validator, cfg.Security.AllowAnonymousStream, cfg.Realtime.SendBuffer))
	e.GET("/ws/dashboard", rttransport.NewDashboardWebsocketHandler(hub, validator, cfg.Realtime.SendBuffer))
	e.GET("/ws/dashboard/:token", rttransport.NewDashboardWebsocketHandler(hub, validator, cfg.Realtime.SendBuffer))
	orderstransport.NewPedidosHandler(orderService).Register(e)

	if len(cfg.Kafka.Brokers) > 0 && len(cfg.Kafka.NotificationTopics) > 0 {
		broker.StartConsumers(ctx, hub, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationTopics)
	}

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", slog.Any("error", err))
		}
	}()
	slog.Info("server started", slog.String("port", cfg.Server.Port))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Warn("shutdown error", slog.Any("error", err))
	}
}

// clientDirectory wraps the Postgres directory with the Redis read-through
// cache when one is configured.
func clientDirectory(cfg *config.Config, repo ordersport.ClientDirectory) ordersport.ClientDirectory {
	if cfg.Redis.Addr == "" {
		return repo
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	slog.Info("redis client cache configured", slog.String("addr", cfg.Redis.Addr))
	return cache.NewClientCache(rdb, repo, cfg.Redis.ClientTTL)
}

func setupLogging(cfg config.LoggingConfig) (*os.File, *slog.Logger, error) {
	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	fileName := filepath.Join(cfg.Directory, time.Now().UTC().Format("2006-01-02")+".log")
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	writer := io.MultiWriter(os.Stdout, file)
	logger := logging.New(writer, logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: true,
	})
	log.SetOutput(writer)
	log.SetFlags(0)
	log.SetPrefix("")

	return file, logger, nil
}
