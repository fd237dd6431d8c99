package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
	"github.com/yourusername/beams-api/internal/service"
)

// ReferralHandler обрабатывает запросы реферальной программы
type ReferralHandler struct {
	referralService *service.ReferralService
}

// NewReferralHandler создает новый обработчик рефералов
func NewReferralHandler(referralService *service.ReferralService) *ReferralHandler {
	return &ReferralHandler{referralService: referralService}
}

// RedeemReferralRequest представляет запрос на применение чужого кода
type RedeemReferralRequest struct {
	Code string `json:"code" binding:"required,min=4,max=16"`
}

// GetCode возвращает (создавая при необходимости) реферальный код пользователя
func (h *ReferralHandler) GetCode(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	code, err := h.referralService.GetOrCreateCode(userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"referral_code": code})
}

// GetStats возвращает статистику приглашений пользователя
func (h *ReferralHandler) GetStats(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	stats, err := h.referralService.GetStats(userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Redeem привязывает текущего пользователя к пригласившему.
// Награда начисляется позже, после подтверждения почты.
func (h *ReferralHandler) Redeem(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req RedeemReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	if err := h.referralService.Redeem(userID, req.Code); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Реферальный код применён"})
}

func (h *ReferralHandler) handleError(c *gin.Context, err error) {
	log.Printf("[ReferralHandler] Error: %v", err)

	switch {
	case errors.Is(err, service.ErrReferralNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Реферальный код не найден", "error_type": "referral_code_not_found"})
	case errors.Is(err, service.ErrSelfReferral):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Нельзя применить собственный код", "error_type": "self_referral"})
	case errors.Is(err, service.ErrAlreadyReferred):
		c.JSON(http.StatusConflict, gin.H{"error": "Реферальный код уже был применён", "error_type": "already_referred"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Пользователь не найден", "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation_error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера", "error_type": "internal_server_error"})
	}
}
