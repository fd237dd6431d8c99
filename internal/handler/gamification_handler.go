package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
	"github.com/yourusername/beams-api/internal/service"
)

// GamificationHandler обрабатывает запросы к начислениям Beams,
// уровням, еженедельному лидерборду и достижениям
type GamificationHandler struct {
	pointsService      *service.PointsService
	leaderboardService *service.LeaderboardService
	achievementService *service.AchievementService
}

// NewGamificationHandler создает новый обработчик геймификации
func NewGamificationHandler(
	pointsService *service.PointsService,
	leaderboardService *service.LeaderboardService,
	achievementService *service.AchievementService,
) *GamificationHandler {
	return &GamificationHandler{
		pointsService:      pointsService,
		leaderboardService: leaderboardService,
		achievementService: achievementService,
	}
}

// GetBalance возвращает текущую сумму Beams пользователя (из леджера)
func (h *GamificationHandler) GetBalance(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	total, err := h.pointsService.GetTotal(userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"beams_points": total})
}

// GetHistory возвращает историю начислений с пагинацией
func (h *GamificationHandler) GetHistory(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	page, pageSize := paginationParams(c, 20, 100)

	entries, total, err := h.pointsService.GetHistory(userID, page, pageSize)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries":  entries,
		"total":    total,
		"page":     page,
		"per_page": pageSize,
	})
}

// GetLevelProgress возвращает текущий уровень и прогресс до следующего
func (h *GamificationHandler) GetLevelProgress(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	progress, err := h.pointsService.GetProgress(userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetLeaderboard возвращает рейтинг текущей недели
func (h *GamificationHandler) GetLeaderboard(c *gin.Context) {
	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	board, err := h.leaderboardService.GetLeaderboard(time.Now(), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

// GetUserRank возвращает позицию текущего пользователя в рейтинге недели
func (h *GamificationHandler) GetUserRank(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	entry, err := h.leaderboardService.GetUserRank(time.Now(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"ranked": false})
			return
		}
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ranked": true,
		"rank":   entry.Rank,
		"points": entry.Points,
	})
}

// RefreshLeaderboard материализует снапшот рейтинга текущей недели.
// Ответ — plain text: 200 при успехе, 500 при ошибке.
func (h *GamificationHandler) RefreshLeaderboard(c *gin.Context) {
	if err := h.leaderboardService.RefreshWindow(time.Now()); err != nil {
		log.Printf("[GamificationHandler] Ошибка обновления лидерборда: %v", err)
		c.String(http.StatusInternalServerError, "Failed to update leaderboard")
		return
	}

	c.String(http.StatusOK, "Leaderboard updated successfully")
}

// ListAchievements возвращает достижения пользователя.
// Перед чтением выдаёт всё, на что пользователь уже успел набрать.
func (h *GamificationHandler) ListAchievements(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	if err := h.achievementService.AwardEligible(userID); err != nil {
		log.Printf("[GamificationHandler] Ошибка проверки достижений для user=%d: %v", userID, err)
	}

	achievements, err := h.achievementService.ListUserAchievements(userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"achievements": achievements})
}

func (h *GamificationHandler) handleError(c *gin.Context, err error) {
	log.Printf("[GamificationHandler] Error: %v", err)

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Запрашиваемый ресурс не найден", "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation_error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера", "error_type": "internal_server_error"})
	}
}

// paginationParams читает page/page_size из query с ограничением сверху
func paginationParams(c *gin.Context, defaultSize, maxSize int) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultSize)))
	if err != nil || pageSize < 1 {
		pageSize = defaultSize
	} else if pageSize > maxSize {
		pageSize = maxSize
	}

	return page, pageSize
}
