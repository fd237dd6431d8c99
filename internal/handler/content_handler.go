package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
	"github.com/yourusername/beams-api/internal/service"
)

// ContentHandler обрабатывает запросы к контенту: Beams Today,
// каталог Theatre, опросы, игра "связь слов" и избранное
type ContentHandler struct {
	contentService *service.ContentService
}

// NewContentHandler создает новый обработчик контента
func NewContentHandler(contentService *service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// AnswerPollRequest представляет ответ на опрос дня
type AnswerPollRequest struct {
	OptionID uint `json:"option_id" binding:"required"`
}

// WordGuessRequest представляет попытку в игре "связь слов"
type WordGuessRequest struct {
	Guess string `json:"guess" binding:"required,max=100"`
}

// FavoriteRequest представляет добавление/удаление из избранного
type FavoriteRequest struct {
	ContentKind string `json:"content_kind" binding:"required,oneof=beams_today video"`
	ContentID   uint   `json:"content_id" binding:"required"`
}

// GetToday возвращает контент Beams Today на дату (по умолчанию сегодня)
func (h *ContentHandler) GetToday(c *gin.Context) {
	date := time.Now().UTC()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format", "error_type": "validation_error"})
			return
		}
		date = parsed
	}

	item, err := h.contentService.GetToday(date)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// ListBeamsToday возвращает ленту Beams Today с пагинацией
func (h *ContentHandler) ListBeamsToday(c *gin.Context) {
	page, pageSize := paginationParams(c, 20, 100)

	items, total, err := h.contentService.ListToday(page, pageSize)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":    items,
		"total":    total,
		"page":     page,
		"per_page": pageSize,
	})
}

// ListBeamsTodayRange возвращает контент за диапазон дат [from, to]
func (h *ContentHandler) ListBeamsTodayRange(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be in YYYY-MM-DD format", "error_type": "validation_error"})
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be in YYYY-MM-DD format", "error_type": "validation_error"})
		return
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not be before from", "error_type": "validation_error"})
		return
	}

	items, err := h.contentService.ListByDateRange(from, to)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetBeamsTodayByID возвращает элемент Beams Today по ID
func (h *ContentHandler) GetBeamsTodayByID(c *gin.Context) {
	itemID := c.MustGet("contentID").(uint)

	item, err := h.contentService.GetByID(itemID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// CompleteBeamsToday отмечает просмотр контента дня. Начисление
// однократно: повторный вызов возвращает points_won = 0.
func (h *ContentHandler) CompleteBeamsToday(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	itemID := c.MustGet("contentID").(uint)

	points, err := h.contentService.CompleteBeamsToday(userID, itemID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"points_won": points})
}

// GetPoll возвращает опрос контента дня с вариантами и счетчиками
func (h *ContentHandler) GetPoll(c *gin.Context) {
	itemID := c.MustGet("contentID").(uint)

	poll, err := h.contentService.GetPoll(itemID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, poll)
}

// AnswerPoll сохраняет ответ пользователя на опрос дня
func (h *ContentHandler) AnswerPoll(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	itemID := c.MustGet("contentID").(uint)

	var req AnswerPollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	points, err := h.contentService.AnswerPoll(userID, itemID, req.OptionID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"points_won": points})
}

// ListTheatre возвращает каталог видео с фильтрами по жанру и серии
func (h *ContentHandler) ListTheatre(c *gin.Context) {
	page, pageSize := paginationParams(c, 20, 100)

	videos, total, err := h.contentService.ListTheatre(c.Query("genre"), c.Query("series"), page, pageSize)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"videos":   videos,
		"total":    total,
		"page":     page,
		"per_page": pageSize,
	})
}

// ListTheatreSeries возвращает список серий каталога
func (h *ContentHandler) ListTheatreSeries(c *gin.Context) {
	series, err := h.contentService.ListTheatreSeries()
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"series": series})
}

// GetTheatreVideo возвращает видео каталога по ID
func (h *ContentHandler) GetTheatreVideo(c *gin.Context) {
	videoID := c.MustGet("videoID").(uint)

	video, err := h.contentService.GetTheatreVideo(videoID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, video)
}

// CompleteTheatreVideo отмечает просмотр видео. Начисление однократно.
func (h *ContentHandler) CompleteTheatreVideo(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	videoID := c.MustGet("videoID").(uint)

	points, err := h.contentService.CompleteTheatreVideo(userID, videoID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"points_won": points})
}

// GetDailyPuzzle возвращает головоломку дня без ответа
func (h *ContentHandler) GetDailyPuzzle(c *gin.Context) {
	date := time.Now().UTC()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format", "error_type": "validation_error"})
			return
		}
		date = parsed
	}

	puzzle, err := h.contentService.GetDailyPuzzle(date)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, puzzle)
}

// SubmitWordGuess принимает попытку решения головоломки.
// Чем меньше попыток, тем больше награда.
func (h *ContentHandler) SubmitWordGuess(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	puzzleID := c.MustGet("puzzleID").(uint)

	var req WordGuessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	result, err := h.contentService.SubmitWordGuess(userID, puzzleID, req.Guess)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AddFavorite добавляет контент в избранное
func (h *ContentHandler) AddFavorite(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	if err := h.contentService.AddFavorite(userID, req.ContentKind, req.ContentID); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Добавлено в избранное"})
}

// RemoveFavorite удаляет контент из избранного
func (h *ContentHandler) RemoveFavorite(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	if err := h.contentService.RemoveFavorite(userID, req.ContentKind, req.ContentID); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Удалено из избранного"})
}

// ListFavorites возвращает избранное пользователя, опционально по виду контента
func (h *ContentHandler) ListFavorites(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	favorites, err := h.contentService.ListFavorites(userID, c.Query("kind"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

func (h *ContentHandler) handleError(c *gin.Context, err error) {
	log.Printf("[ContentHandler] Error: %v", err)

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Контент не найден", "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "conflict"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation_error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера", "error_type": "internal_server_error"})
	}
}
