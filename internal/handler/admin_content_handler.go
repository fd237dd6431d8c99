package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/beams-api/internal/domain/entity"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
	"github.com/yourusername/beams-api/internal/service"
)

// AdminContentHandler обрабатывает административные операции над контентом
type AdminContentHandler struct {
	contentService *service.ContentService
}

// NewAdminContentHandler создает новый административный обработчик контента
func NewAdminContentHandler(contentService *service.ContentService) *AdminContentHandler {
	return &AdminContentHandler{contentService: contentService}
}

// BeamsTodayRequest представляет создание/обновление темы дня
type BeamsTodayRequest struct {
	Date          string `json:"date" binding:"required"` // YYYY-MM-DD
	Title         string `json:"title" binding:"required,max=255"`
	ShortDesc     string `json:"short_desc" binding:"omitempty,max=500"`
	Category      string `json:"category" binding:"omitempty,max=100"`
	VideoURL      string `json:"video_url" binding:"omitempty,max=255"`
	AudioURL      string `json:"audio_url" binding:"omitempty,max=255"`
	ArticleURL    string `json:"article_url" binding:"omitempty,max=255"`
	ThumbnailURL  string `json:"thumbnail_url" binding:"omitempty,max=255"`
	CompletionPts int    `json:"completion_pts" binding:"omitempty,min=1,max=100"`
}

// CreatePollRequest представляет создание опроса для темы дня
type CreatePollRequest struct {
	Question  string   `json:"question" binding:"required,max=500"`
	Options   []string `json:"options" binding:"required,min=2,max=10,dive,required,max=255"`
	RewardPts int      `json:"reward_pts" binding:"omitempty,min=1,max=100"`
}

// TheatreVideoRequest представляет создание/обновление видео каталога
type TheatreVideoRequest struct {
	Title         string `json:"title" binding:"required,max=255"`
	Description   string `json:"description" binding:"omitempty,max=1000"`
	Genre         string `json:"genre" binding:"omitempty,max=100"`
	SeriesName    string `json:"series_name" binding:"omitempty,max=255"`
	SeasonNumber  int    `json:"season_number" binding:"omitempty,min=0"`
	EpisodeNumber int    `json:"episode_number" binding:"omitempty,min=0"`
	VideoURL      string `json:"video_url" binding:"required,max=255"`
	ThumbnailURL  string `json:"thumbnail_url" binding:"omitempty,max=255"`
	DurationSec   int    `json:"duration_sec" binding:"omitempty,min=0"`
	CompletionPts int    `json:"completion_pts" binding:"omitempty,min=1,max=100"`
}

// WordPuzzleRequest представляет создание головоломки дня
type WordPuzzleRequest struct {
	Date   string `json:"date" binding:"required"` // YYYY-MM-DD
	Words  string `json:"words" binding:"required,max=500"`
	Answer string `json:"answer" binding:"required,max=100"`
	Hint   string `json:"hint" binding:"omitempty,max=255"`
	MaxPts int    `json:"max_pts" binding:"omitempty,min=1,max=100"`
}

// CreateBeamsToday публикует тему дня
func (h *AdminContentHandler) CreateBeamsToday(c *gin.Context) {
	var req BeamsTodayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	item, ok := h.beamsTodayFromRequest(c, &req)
	if !ok {
		return
	}

	if err := h.contentService.CreateBeamsToday(item); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// UpdateBeamsToday изменяет тему дня
func (h *AdminContentHandler) UpdateBeamsToday(c *gin.Context) {
	itemID := c.MustGet("contentID").(uint)

	var req BeamsTodayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	item, ok := h.beamsTodayFromRequest(c, &req)
	if !ok {
		return
	}
	item.ID = itemID

	if err := h.contentService.UpdateBeamsToday(item); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteBeamsToday удаляет тему дня
func (h *AdminContentHandler) DeleteBeamsToday(c *gin.Context) {
	itemID := c.MustGet("contentID").(uint)

	if err := h.contentService.DeleteBeamsToday(itemID); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Тема дня удалена"})
}

// CreatePoll прикрепляет опрос к теме дня
func (h *AdminContentHandler) CreatePoll(c *gin.Context) {
	itemID := c.MustGet("contentID").(uint)

	var req CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	poll := &entity.Poll{
		BeamsTodayID: itemID,
		Question:     req.Question,
		RewardPts:    req.RewardPts,
	}
	if poll.RewardPts == 0 {
		poll.RewardPts = 2
	}
	for _, text := range req.Options {
		poll.Options = append(poll.Options, entity.PollOption{OptionText: text})
	}

	if err := h.contentService.CreatePoll(poll); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, poll)
}

// CreateTheatreVideo добавляет видео в каталог
func (h *AdminContentHandler) CreateTheatreVideo(c *gin.Context) {
	var req TheatreVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	video := h.theatreVideoFromRequest(&req)

	if err := h.contentService.CreateTheatreVideo(video); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, video)
}

// UpdateTheatreVideo изменяет видео каталога
func (h *AdminContentHandler) UpdateTheatreVideo(c *gin.Context) {
	videoID := c.MustGet("videoID").(uint)

	var req TheatreVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	video := h.theatreVideoFromRequest(&req)
	video.ID = videoID

	if err := h.contentService.UpdateTheatreVideo(video); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, video)
}

// DeleteTheatreVideo удаляет видео из каталога
func (h *AdminContentHandler) DeleteTheatreVideo(c *gin.Context) {
	videoID := c.MustGet("videoID").(uint)

	if err := h.contentService.DeleteTheatreVideo(videoID); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Видео удалено"})
}

// CreateWordPuzzle публикует головоломку дня
func (h *AdminContentHandler) CreateWordPuzzle(c *gin.Context) {
	var req WordPuzzleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format", "error_type": "validation_error"})
		return
	}

	puzzle := &entity.WordPuzzle{
		Date:   date,
		Words:  req.Words,
		Answer: req.Answer,
		Hint:   req.Hint,
		MaxPts: req.MaxPts,
	}
	if puzzle.MaxPts == 0 {
		puzzle.MaxPts = 10
	}

	if err := h.contentService.CreateWordPuzzle(puzzle); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, puzzle)
}

func (h *AdminContentHandler) beamsTodayFromRequest(c *gin.Context, req *BeamsTodayRequest) (*entity.BeamsToday, bool) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format", "error_type": "validation_error"})
		return nil, false
	}

	item := &entity.BeamsToday{
		Date:          date,
		Title:         req.Title,
		ShortDesc:     req.ShortDesc,
		Category:      req.Category,
		VideoURL:      req.VideoURL,
		AudioURL:      req.AudioURL,
		ArticleURL:    req.ArticleURL,
		ThumbnailURL:  req.ThumbnailURL,
		CompletionPts: req.CompletionPts,
	}
	if item.CompletionPts == 0 {
		item.CompletionPts = 5
	}
	return item, true
}

func (h *AdminContentHandler) theatreVideoFromRequest(req *TheatreVideoRequest) *entity.TheatreVideo {
	video := &entity.TheatreVideo{
		Title:         req.Title,
		Description:   req.Description,
		Genre:         req.Genre,
		SeriesName:    req.SeriesName,
		SeasonNumber:  req.SeasonNumber,
		EpisodeNumber: req.EpisodeNumber,
		VideoURL:      req.VideoURL,
		ThumbnailURL:  req.ThumbnailURL,
		DurationSec:   req.DurationSec,
		CompletionPts: req.CompletionPts,
	}
	if video.CompletionPts == 0 {
		video.CompletionPts = 3
	}
	return video
}

func (h *AdminContentHandler) handleError(c *gin.Context, err error) {
	log.Printf("[AdminContentHandler] Error: %v", err)

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Контент не найден", "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Контент на эту дату уже существует", "error_type": "conflict"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation_error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера", "error_type": "internal_server_error"})
	}
}
