package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wara2_bot/internal/repository"
	"wara2_bot/internal/service"
)

// Handlers - read-only HTTP-обвязка над игровым сервисом
type Handlers struct {
	svc     *service.GameService
	stats   *repository.StatsRepository
	version string
}

func New(svc *service.GameService, version string) *Handlers {
	return &Handlers{svc: svc, version: version}
}

// WithStats подключает репозиторий статистики (может отсутствовать)
func (h *Handlers) WithStats(stats *repository.StatsRepository) *Handlers {
	h.stats = stats
	return h
}

// Health - проверка живости процесса
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}

// PlayerStats отдает накопленную статистику игрока
func (h *Handlers) PlayerStats(c *gin.Context) {
	if h.stats == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "statistics disabled"})
		return
	}
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	stats, err := h.stats.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	if stats == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no stats for player"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stats":    stats,
		"win_rate": stats.WinRate(),
	})
}

// Leaderboard отдает лучших игроков по победам
func (h *Handlers) Leaderboard(c *gin.Context) {
	if h.stats == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "statistics disabled"})
		return
	}
	limit := 10
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	top, err := h.stats.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leaderboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": top})
}

// BoardSnapshot отдает текущую проекцию стола одним документом
func (h *Handlers) BoardSnapshot(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}
	g, err := h.svc.Game(chatID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	c.JSON(http.StatusOK, g.Snapshot())
}
