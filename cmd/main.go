package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jonboulle/clockwork"

	"github.com/antonD24/ELDI/internal/auth"
	"github.com/antonD24/ELDI/internal/config"
	"github.com/antonD24/ELDI/internal/device"
	"github.com/antonD24/ELDI/internal/emergency"
	v1 "github.com/antonD24/ELDI/internal/handler/http/v1"
	"github.com/antonD24/ELDI/internal/notify"
	"github.com/antonD24/ELDI/internal/realtime"
	"github.com/antonD24/ELDI/internal/repository"
	"github.com/antonD24/ELDI/internal/service"
	"github.com/antonD24/ELDI/internal/webhook"
	"github.com/antonD24/ELDI/pkg/logger"
	mqttclient "github.com/antonD24/ELDI/pkg/mqtt"
	"github.com/antonD24/ELDI/pkg/postgres"
	redisclient "github.com/antonD24/ELDI/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/antonD24/ELDI/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title ELDI Emergency API
// @version 1.0
// @description Emergency call backend: SOS hold gesture, duplicate protection and live status for devices, emergency management for responders.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log, err := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, MaxAge: cfg.LogMaxAge})
	if err != nil {
		logrus.Fatalf("Failed to init logger: %v", err)
	}

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Инициализация издателя вебхуков
	webhookPublisher := webhook.NewRedisWebhookPublisher(redisClient)

	// Инициализация и запуск воркера вебхуков
	webhookWorker := webhook.NewWebhookWorker(redisClient, log, cfg)
	webhookWorker.Start(ctx)

	// MQTT: тактильные импульсы устройств и рассылка диспетчерам
	var (
		mqttPublisher notify.Publisher
		broadcaster   service.Broadcaster
	)
	if cfg.MQTTBrokerURL != "" {
		mqttClient, err := mqttclient.NewClient(mqttclient.Options{
			BrokerURL: cfg.MQTTBrokerURL,
			ClientID:  cfg.MQTTClientID,
			Username:  cfg.MQTTUsername,
			Password:  cfg.MQTTPassword,
		}, log)
		if err != nil {
			log.Fatalf("Failed to connect to MQTT broker: %v", err)
		}
		defer mqttClient.Disconnect(250)
		mqttPublisher = mqttClient
		broadcaster = notify.NewBroadcaster(mqttClient, log)
		log.Info("Successfully connected to MQTT broker")
	} else {
		log.Warn("MQTT_BROKER_URL is empty, device haptics and responder broadcast are disabled")
	}

	// Генератор номеров инцидентов
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		log.Fatalf("Failed to create snowflake node: %v", err)
	}

	clock := clockwork.NewRealClock()

	// Инициализация репозиториев
	emergencyRepo := repository.NewEmergencyRepository(dbpool)
	profileRepo := repository.NewProfileRepository(dbpool, redisClient, cfg.ProfileCacheTTL)

	// Инициализация сервисов
	bus := realtime.NewRedisBus(redisClient, log)
	emergencyService := service.NewEmergencyService(emergencyRepo, bus, webhookPublisher, broadcaster, node, clock, log)
	profileService := service.NewProfileService(profileRepo, log)

	// Реестр устройств
	verifier := auth.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer, clock)
	registry := device.NewRegistry(ctx, device.Deps{
		Data:     emergencyService,
		Profiles: profileService,
		Verifier: verifier,
		MQTT:     mqttPublisher,
		Clock:    clock,
		HoldCfg: emergency.HoldConfig{
			Required:     cfg.HoldDuration,
			TickInterval: cfg.HoldTickInterval,
			Debounce:     cfg.HoldDebounce,
		},
		LocationMaxAge: cfg.LocationMaxAge,
		Logger:         log,
	})

	// Инициализация хэндлеров
	handler := v1.NewHandler(emergencyService, profileService, registry, verifier, log, cfg)
	handler.Limiter().StartCleanup(ctx)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Снимаем подписки устройств до закрытия Redis
	registry.CloseAll()

	log.Info("Server gracefully stopped")
}
