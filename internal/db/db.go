package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"wara2_bot/internal/logger"
)

// Connect открывает пул соединений и проверяет его пингом.
// Ошибка подключения фатальна - без явно запрошенной БД не стартуем.
func Connect(databaseURL string) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("failed to create db pool", "error", err)
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping db", "error", err)
	}

	logger.Info("database connected")
	return pool
}
