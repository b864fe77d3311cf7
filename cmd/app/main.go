package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wara2_bot/internal/bot"
	"wara2_bot/internal/config"
	"wara2_bot/internal/db"
	"wara2_bot/internal/game"
	"wara2_bot/internal/hub"
	httpServer "wara2_bot/internal/http"
	"wara2_bot/internal/http/middleware"
	"wara2_bot/internal/logger"
	"wara2_bot/internal/metrics"
	"wara2_bot/internal/repository"
	"wara2_bot/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version устанавливается при сборке
var Version = "dev"

func main() {
	// Инициализация структурированного логгера
	jsonLogs := os.Getenv("LOG_FORMAT") == "json"
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init(logLevel, jsonLogs)
	log := logger.Get()

	cfg := config.Load()
	if cfg.BotToken == "" {
		logger.Fatal("BOT_TOKEN is not set")
	}

	// Статистика опциональна: без DATABASE_URL бот играет без нее
	var stats *repository.StatsRepository
	if cfg.DatabaseURL != "" {
		dbPool := db.Connect(cfg.DatabaseURL)
		defer dbPool.Close()
		stats = repository.NewStatsRepository(dbPool)
	} else {
		log.Warn("DATABASE_URL not set - player statistics disabled")
	}

	registry := hub.New(cfg.GameIdleAfter)
	svc := service.NewGameService(registry, stats)

	gameBot, err := bot.NewGameBot(cfg.BotToken, svc, stats,
		game.Difficulty(cfg.DefaultAIDifficulty), cfg.AIThinkDelay)
	if err != nil {
		logger.Fatal("failed to init game bot", "error", err)
	}

	// Вытеснение простаивающих столов: уведомляем чат и правим метрики
	registry.SetEvictCallback(func(chatID int64) {
		metrics.TablesEvicted.Inc()
		metrics.ActiveTables.Set(float64(registry.Count()))
		gameBot.NotifyGameEvicted(chatID)
	})
	registry.StartSweeper(cfg.SweepInterval)

	go gameBot.Start()
	log.Info("game bot started")

	r := gin.Default()

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, svc, stats, Version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		log.Info("server started", "port", cfg.AppPort, "version", Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Плавная остановка: сначала бот, потом реестр столов
	gameBot.Stop()
	registry.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
