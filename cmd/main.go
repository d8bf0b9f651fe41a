package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drone-fire-monitor/internal/auth"
	"drone-fire-monitor/internal/config"
	"drone-fire-monitor/internal/delivery/http/handler"
	"drone-fire-monitor/internal/infrastructure/database/postgres"
	"drone-fire-monitor/internal/ingestion"
	"drone-fire-monitor/internal/logger"
	"drone-fire-monitor/internal/mediaproxy"
	"drone-fire-monitor/internal/middleware"
	"drone-fire-monitor/internal/notifier"
	"drone-fire-monitor/internal/routes"
	"drone-fire-monitor/internal/usecase/detection"
	"drone-fire-monitor/internal/usecase/drone"
	"drone-fire-monitor/internal/usecase/pushtoken"
	pkgmqtt "drone-fire-monitor/pkg/mqtt"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
	)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Configuration rejected", zap.Error(err))
	}
	location, _ := cfg.Location()

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	droneRepository := postgres.NewDroneRepository(db)
	detectionRepository := postgres.NewDetectionRepository(db)
	pushTokenRepository := postgres.NewPushTokenRepository(db)

	issuer := auth.NewTokenIssuer(cfg.Ingest.TokenSecret, time.Duration(cfg.Ingest.TokenTTLHours)*time.Hour, nil)
	if !issuer.Enabled() {
		logger.Warn("INGEST_TOKEN_SECRET is not set; POST /api/event accepts unauthenticated writes")
	}

	droneService := drone.NewService(droneRepository, issuer, cfg.Registry.IDPrefix, nil)
	detectionService := detection.NewService(
		detectionRepository,
		droneRepository,
		mediaproxy.NewRewriter(cfg.Proxy.TunnelMarkers),
		detection.Options{RecentLimit: cfg.Registry.RecentLimit, Location: location},
	)
	pushTokenService := pushtoken.NewService(pushTokenRepository, nil)

	var metrics handler.MetricsSource
	if cfg.MQTT.Broker != "" {
		processor := ingestion.NewProcessor(detectionService, cfg.MQTT.Workers, cfg.MQTT.BufferSize)
		processor.Start(ctx)
		defer processor.Stop()

		bridge, err := ingestion.NewMQTTIngestionClient(&ingestion.MQTTIngestionConfig{
			ClientConfig: pkgmqtt.DefaultConfig(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Username, cfg.MQTT.Password),
			Topic:        cfg.MQTT.Topic,
			QoS:          byte(cfg.MQTT.QoS),
		}, processor)
		if err != nil {
			logger.Fatal("Failed to configure MQTT ingestion", zap.Error(err))
		}
		if err := bridge.Start(); err != nil {
			logger.Fatal("Failed to start MQTT ingestion", zap.Error(err))
		}
		defer bridge.Stop()

		metrics = processor
	}

	if cfg.Notifier.Enabled {
		var dispatcher notifier.Dispatcher = notifier.NewLogDispatcher()
		if cfg.NATS.URL != "" {
			natsConn, err := nats.Connect(cfg.NATS.URL, nats.Name("drone-fire-monitor"))
			if err != nil {
				logger.Fatal("Failed to connect to NATS", zap.Error(err))
			}
			defer natsConn.Close()
			dispatcher = notifier.NewNATSDispatcher(natsConn, cfg.NATS.SubjectPrefix)
			logger.Info("Fire alerts published to NATS", zap.String("subject_prefix", cfg.NATS.SubjectPrefix))
		}

		var checkpoint notifier.CheckpointStore = notifier.NewMemoryCheckpoint()
		if cfg.Redis.Addr != "" {
			redisClient := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err := redisClient.Ping(ctx).Err(); err != nil {
				logger.Fatal("Failed to connect to Redis", zap.Error(err))
			}
			defer redisClient.Close()
			checkpoint = notifier.NewRedisCheckpoint(redisClient, "")
		}

		poller := notifier.NewPoller(detectionRepository, pushTokenService, dispatcher, checkpoint, notifier.PollerConfig{
			Interval:      cfg.Notifier.Interval,
			Settle:        cfg.Notifier.Settle,
			MinConfidence: cfg.Notifier.MinConfidence,
		})
		go poller.Run(ctx)
	}

	router := routes.SetupRoutes(cfg, routes.Dependencies{
		Health:     db,
		Metrics:    metrics,
		Drones:     droneService,
		Detections: detectionService,
		PushTokens: pushTokenService,
		Proxy:      mediaproxy.NewProxy(cfg.Proxy.ImageTimeout),
		Issuer:     issuer,
		Limiter:    middleware.NewRateLimiter(ctx, cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst),
	})

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", zap.Error(err))
	}
	cancel()

	logger.Info("Server exited properly")
}
