package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"pricing-service/internal/config"
	"pricing-service/internal/database/postgres"
	"pricing-service/internal/database/redis"
	"pricing-service/internal/event"
	"pricing-service/internal/handlers"
	"pricing-service/internal/repository"
	"pricing-service/internal/services"
	"pricing-service/internal/utils"
	"pricing-service/internal/worker"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/parking", "log", "pricing_service")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(file, nil)))
	return file, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	logFile, err := setupLogging()
	if err != nil {
		log.Printf("Failed to set up file logging, using stderr: %v", err)
	} else {
		defer logFile.Close()
	}

	cfg := config.New()

	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		slog.Error("error connecting to database, retrying in background", "error", err)
		go postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
	}

	var pricingCache *repository.PricingCache
	redisClient, err := redis.NewRedisClient(cfg.RedisCfg.Host, cfg.RedisCfg.Port, cfg.RedisCfg.Password, cfg.RedisCfg.DB)
	if err != nil {
		slog.Warn("Redis unavailable, serving resolutions uncached", "error", err)
	} else {
		defer redisClient.Close()
		pricingCache = repository.NewPricingCache(redisClient.GetClient())
	}

	var invalidationSink worker.InvalidationSink
	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		slog.Warn("RabbitMQ unavailable, invalidation events will be dropped", "error", err)
	} else {
		defer rabbitConn.Close()
		invalidationSink = event.NewInvalidationPublisher(rabbitConn)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := worker.NewWorkingPool(2, 256)
	var poolWg sync.WaitGroup
	poolWg.Add(1)
	go pool.Start(ctx, &poolWg)

	dispatcher := worker.NewInvalidationDispatcher(pool, invalidationSink)

	hierarchyRepo := repository.NewHierarchyRepository(db)
	discountRepo := repository.NewDiscountRepository(db)

	var cache services.ResolutionCache
	if pricingCache != nil {
		cache = pricingCache
	}

	pricingService := services.NewPricingService(hierarchyRepo, cache)
	propagator := services.NewPricingPropagator(hierarchyRepo, cache, dispatcher)
	catalog := services.NewDiscountCatalog(discountRepo, services.StackPlatformFirst)
	discountService := services.NewDiscountService(discountRepo)
	transactionService := services.NewTransactionService(pricingService, catalog, services.NewTransactionCalculator())

	app := fiber.New()
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		if !postgres.DBStatus {
			return c.Status(fiber.StatusServiceUnavailable).JSON(utils.CreateErrorResponse("DB_UNAVAILABLE", "database connection is down"))
		}
		return c.Status(fiber.StatusOK).SendString("Pricing service is healthy")
	})

	handlers.NewPricingHandler(pricingService, propagator).Register(app)
	handlers.NewDiscountHandler(discountService).Register(app)
	handlers.NewTransactionHandler(transactionService).Register(app)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()
	slog.Info("Pricing service started", "port", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down pricing service")
	if err := app.Shutdown(); err != nil {
		slog.Error("error during server shutdown", "error", err)
	}
	cancel()
	poolWg.Wait()
}
