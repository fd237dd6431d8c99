package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/beams-api/internal/handler/dto"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
	"github.com/yourusername/beams-api/internal/service"
)

// UserHandler обрабатывает запросы, связанные с профилем пользователя
type UserHandler struct {
	userService         *service.UserService
	verificationService *service.EmailVerificationService
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(userService *service.UserService, verificationService *service.EmailVerificationService) *UserHandler {
	return &UserHandler{
		userService:         userService,
		verificationService: verificationService,
	}
}

// UpdateProfileRequest представляет запрос на обновление профиля.
// Отсутствующее поле означает "не менять".
type UpdateProfileRequest struct {
	Username  *string `json:"username" binding:"omitempty,min=3,max=50"`
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	Grade     *string `json:"grade" binding:"omitempty,max=50"`
	BirthDate *string `json:"birth_date" binding:"omitempty"` // YYYY-MM-DD
}

// TwoFactorToggleRequest представляет запрос на включение/выключение 2FA
type TwoFactorToggleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// ConfirmVerificationRequest представляет код подтверждения почты
type ConfirmVerificationRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

// GetProfile возвращает профиль текущего пользователя
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewProfileResponse(user))
}

// UpdateProfile обновляет поля профиля текущего пользователя
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	input := service.ProfileUpdateInput{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Grade:     req.Grade,
	}
	if req.BirthDate != nil {
		birthDate, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "birth_date must be in YYYY-MM-DD format", "error_type": "validation_error"})
			return
		}
		input.BirthDate = &birthDate
	}

	user, err := h.userService.UpdateProfile(userID, input)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewProfileResponse(user))
}

// UploadAvatar принимает multipart-файл "avatar" (JPEG/PNG/GIF, до 200 КБ)
// и сохраняет его как аватар пользователя
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Файл avatar обязателен", "error_type": "validation_error"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Не удалось прочитать файл", "error_type": "validation_error"})
		return
	}
	defer file.Close()

	data, err := service.ReadAvatarUpload(file)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	avatarURL, err := h.userService.UpdateAvatar(c.Request.Context(), userID, data)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile_picture": avatarURL})
}

// SetTwoFactor включает или выключает двухфакторный вход.
// Требует подтвержденной почты.
func (h *UserHandler) SetTwoFactor(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req TwoFactorToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	if err := h.userService.SetTwoFactor(userID, *req.Enabled); err != nil {
		h.handleUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_two_factor_enabled": *req.Enabled})
}

// SendVerificationCode отправляет код подтверждения почты
func (h *UserHandler) SendVerificationCode(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	if err := h.verificationService.SendCode(c.Request.Context(), userID); err != nil {
		h.handleUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Код подтверждения отправлен"})
}

// ConfirmVerification подтверждает почту кодом из письма
func (h *UserHandler) ConfirmVerification(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req ConfirmVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	if err := h.verificationService.ConfirmCode(c.Request.Context(), userID, req.Code); err != nil {
		h.handleUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email подтвержден"})
}

// VerificationStatus возвращает состояние подтверждения почты
// (включая оставшееся время кулдауна повторной отправки)
func (h *UserHandler) VerificationStatus(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	status, err := h.verificationService.GetStatus(c.Request.Context(), userID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// handleUserError преобразует ошибки сервисов в HTTP-ответы
func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	log.Printf("[UserHandler] Error: %v", err)

	switch {
	case errors.Is(err, service.ErrEmailNotVerified):
		c.JSON(http.StatusForbidden, gin.H{"error": "Сначала подтвердите email", "error_type": "email_not_verified"})
	case errors.Is(err, service.ErrInvalidVerificationCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный код подтверждения", "error_type": "invalid_verification_code"})
	case errors.Is(err, service.ErrVerificationExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Код подтверждения истек, запросите новый", "error_type": "verification_expired"})
	case errors.Is(err, service.ErrVerificationAttemptsExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Превышено число попыток, запросите новый код", "error_type": "verification_attempts_exceeded"})
	case errors.Is(err, service.ErrVerificationResendCooldown):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Повторная отправка будет доступна позже", "error_type": "verification_resend_cooldown"})
	case errors.Is(err, service.ErrFeatureDisabled):
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Функция не настроена на сервере", "error_type": "feature_disabled"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Пользователь не найден", "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Имя пользователя уже занято", "error_type": "conflict"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation_error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера", "error_type": "internal_server_error"})
	}
}
