package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"wara2_bot/internal/logger"
)

// Config - вся конфигурация процесса из окружения
type Config struct {
	AppPort     string
	BotToken    string
	DatabaseURL string // пусто - работаем без статистики

	RedisAddr     string // пусто - rate limiter выключен
	RedisPassword string
	RedisDB       int

	// порог простоя стола и период фоновой очистки
	GameIdleAfter time.Duration
	SweepInterval time.Duration

	// сложность ботов по умолчанию: easy / medium / hard
	DefaultAIDifficulty string

	// пауза "обдумывания" хода бота, чисто презентационная
	AIThinkDelay time.Duration
}

// Load читает .env (если есть) и собирает конфигурацию
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file, using environment")
	}

	return &Config{
		AppPort:             getEnv("APP_PORT", "8080"),
		BotToken:            os.Getenv("BOT_TOKEN"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getEnvInt("REDIS_DB", 0),
		GameIdleAfter:       getEnvDuration("GAME_IDLE_AFTER", 6*time.Hour),
		SweepInterval:       getEnvDuration("GAME_SWEEP_INTERVAL", time.Hour),
		DefaultAIDifficulty: getEnv("AI_DIFFICULTY", "medium"),
		AIThinkDelay:        getEnvDuration("AI_THINK_DELAY", 2*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn("bad int in env, using fallback", "key", key, "value", v)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn("bad duration in env, using fallback", "key", key, "value", v)
		return fallback
	}
	return d
}
