package http

import (
	"github.com/gin-gonic/gin"

	"wara2_bot/internal/http/handlers"
	"wara2_bot/internal/http/middleware"
	"wara2_bot/internal/repository"
	"wara2_bot/internal/service"
)

// RegisterRoutes вешает все HTTP-маршруты: health, read-only API
// статистики и live-трансляцию доски. Мутирующих игру маршрутов нет -
// игра управляется только через телеграм. stats может быть nil.
func RegisterRoutes(r *gin.Engine, svc *service.GameService, stats *repository.StatsRepository, version string) {
	h := handlers.New(svc, version)
	if stats != nil {
		h = h.WithStats(stats)
	}

	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(30))
	{
		api.GET("/stats/:user_id", h.PlayerStats)
		api.GET("/leaderboard", h.Leaderboard)
		api.GET("/board/:chat_id", h.BoardSnapshot)
	}

	r.GET("/ws/board/:chat_id", h.BoardStream)
}
