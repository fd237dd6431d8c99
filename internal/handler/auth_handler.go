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
	"github.com/yourusername/beams-api/pkg/auth"
)

// Имена куки для токенов авторизации
const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

// AuthHandler обрабатывает запросы, связанные с аутентификацией
type AuthHandler struct {
	authService   *service.AuthService
	googleService *service.GoogleOAuthService
	accessTTL     time.Duration
}

// NewAuthHandler создает новый обработчик аутентификации.
// googleService может быть nil, если вход через Google не настроен.
func NewAuthHandler(authService *service.AuthService, googleService *service.GoogleOAuthService, accessTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		googleService: googleService,
		accessTTL:     accessTTL,
	}
}

// Структуры запросов и ответов

// RegisterRequest представляет запрос на регистрацию
type RegisterRequest struct {
	Username     string `json:"username" binding:"required,min=3,max=50"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8,max=72"`
	FirstName    string `json:"first_name" binding:"omitempty,max=100"`
	LastName     string `json:"last_name" binding:"omitempty,max=100"`
	Grade        string `json:"grade" binding:"omitempty,max=50"`
	BirthDate    string `json:"birth_date" binding:"omitempty"` // YYYY-MM-DD
	ReferralCode string `json:"referral_code" binding:"omitempty,max=16"`
	DeviceID     string `json:"device_id" binding:"omitempty"`
}

// LoginRequest представляет запрос на вход
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	DeviceID string `json:"device_id" binding:"omitempty"`
}

// TwoFactorLoginRequest представляет подтверждение входа кодом из письма
type TwoFactorLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Code     string `json:"code" binding:"required,len=6"`
	DeviceID string `json:"device_id" binding:"omitempty"`
}

// RefreshTokenRequest представляет запрос на обновление токенов
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"omitempty"`
	DeviceID     string `json:"device_id" binding:"omitempty"`
}

// LogoutRequest представляет запрос на выход
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"omitempty"`
}

// ChangePasswordRequest представляет запрос на изменение пароля
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// GoogleAuthRequest представляет вход через Google: либо готовый id_token,
// либо authorization code с параметрами обмена.
type GoogleAuthRequest struct {
	IDToken      string `json:"id_token" binding:"omitempty"`
	Code         string `json:"code" binding:"omitempty"`
	RedirectURI  string `json:"redirect_uri" binding:"omitempty"`
	CodeVerifier string `json:"code_verifier" binding:"omitempty"`
	DeviceID     string `json:"device_id" binding:"omitempty"`
}

// Register обрабатывает запрос на регистрацию
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	input := service.RegisterInput{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Grade:        req.Grade,
		ReferralCode: req.ReferralCode,
		DeviceID:     req.DeviceID,
		IP:           c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
	}
	if req.BirthDate != "" {
		birthDate, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "birth_date must be in YYYY-MM-DD format", "error_type": "validation_error"})
			return
		}
		input.BirthDate = &birthDate
	}

	user, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	log.Printf("[AuthHandler] Пользователь ID=%d (%s) успешно зарегистрирован", user.ID, user.Email)

	c.JSON(http.StatusCreated, gin.H{
		"user":    dto.NewProfileResponse(user),
		"message": "Регистрация успешна. Подтвердите email кодом из письма.",
	})
}

// Login обрабатывает запрос на вход. При включённой двухфакторке токены
// не выдаются: клиент получает masked email и должен подтвердить код.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, req.DeviceID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	if result.TwoFactorRequired {
		c.JSON(http.StatusOK, gin.H{
			"two_factor_required": true,
			"masked_email":        result.MaskedEmail,
			"message":             "Код подтверждения отправлен на почту",
		})
		return
	}

	h.respondWithTokens(c, http.StatusOK, result)
}

// CompleteTwoFactorLogin завершает вход подтверждением кода из письма
func (h *AuthHandler) CompleteTwoFactorLogin(c *gin.Context) {
	var req TwoFactorLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	result, err := h.authService.CompleteTwoFactorLogin(c.Request.Context(), req.Email, req.Code, req.DeviceID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.respondWithTokens(c, http.StatusOK, result)
}

// Refresh обрабатывает запрос на обновление пары токенов.
// Refresh токен берётся из HttpOnly куки, тело запроса — запасной вариант.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	_ = c.ShouldBindJSON(&req)

	refreshToken := req.RefreshToken
	if cookieToken, err := c.Cookie(refreshTokenCookie); err == nil && cookieToken != "" {
		refreshToken = cookieToken
	}
	if refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh токен не предоставлен", "error_type": "token_invalid"})
		return
	}

	result, err := h.authService.RefreshTokens(refreshToken, req.DeviceID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.clearAuthCookies(c)
		h.handleAuthError(c, err)
		return
	}

	h.respondWithTokens(c, http.StatusOK, result)
}

// Logout отзывает текущую сессию и очищает куки
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)

	refreshToken := req.RefreshToken
	if cookieToken, err := c.Cookie(refreshTokenCookie); err == nil && cookieToken != "" {
		refreshToken = cookieToken
	}

	if refreshToken != "" {
		if err := h.authService.Logout(refreshToken); err != nil {
			// Сессию всё равно завершаем на клиенте
			log.Printf("[AuthHandler] Ошибка отзыва refresh токена при выходе: %v", err)
		}
	}

	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Выход выполнен"})
}

// LogoutAll отзывает все сессии пользователя
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	if err := h.authService.LogoutAll(userID); err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Все сессии завершены"})
}

// ChangePassword обрабатывает смену пароля. Все сессии отзываются.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	if err := h.authService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Пароль изменён. Войдите заново."})
}

// GoogleAuth обрабатывает вход через Google OAuth
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	if h.googleService == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Вход через Google не настроен", "error_type": "feature_disabled"})
		return
	}

	var req GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}
	if req.IDToken == "" && req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id_token или code обязателен", "error_type": "validation_error"})
		return
	}

	result, err := h.googleService.Exchange(c.Request.Context(), service.GoogleExchangeInput{
		IDToken:      req.IDToken,
		Code:         req.Code,
		RedirectURI:  req.RedirectURI,
		CodeVerifier: req.CodeVerifier,
		DeviceID:     req.DeviceID,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
	})
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.respondWithTokens(c, http.StatusOK, &service.LoginResult{
		User:         result.User,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

// respondWithTokens устанавливает куки и возвращает токены в JSON
func (h *AuthHandler) respondWithTokens(c *gin.Context, status int, result *service.LoginResult) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, result.AccessToken, int(h.accessTTL.Seconds()), "/", "", false, true)
	c.SetCookie(refreshTokenCookie, result.RefreshToken, int(auth.RefreshTokenLifetime.Seconds()), "/api/auth", "", false, true)

	c.JSON(status, gin.H{
		"user":         dto.NewProfileResponse(result.User),
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
		"tokenType":    "Bearer",
		"expiresIn":    int(h.accessTTL.Seconds()),
	})
}

func (h *AuthHandler) clearAuthCookies(c *gin.Context) {
	c.SetCookie(accessTokenCookie, "", -1, "/", "", false, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/api/auth", "", false, true)
}

// handleAuthError преобразует ошибки сервисов в HTTP-ответы
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	log.Printf("[AuthHandler] Auth Error: %v", err)

	switch {
	case errors.Is(err, service.ErrPasswordLoginDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": "Для этого аккаунта вход по паролю отключён. Используйте вход через Google.", "error_type": "password_login_disabled"})
	case errors.Is(err, service.ErrInvalidTwoFactorCode):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Неверный код подтверждения", "error_type": "invalid_2fa_code"})
	case errors.Is(err, service.ErrTwoFactorExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Код подтверждения истек, запросите новый", "error_type": "2fa_code_expired"})
	case errors.Is(err, service.ErrGoogleTokenVerificationFailed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Не удалось проверить токен Google", "error_type": "google_token_invalid"})
	case errors.Is(err, apperrors.ErrExpiredToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Сессия истекла", "error_type": "token_expired"})
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Ошибка аутентификации или неверные данные", "error_type": "unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Доступ запрещен", "error_type": "forbidden"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Запрашиваемый ресурс не найден", "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Пользователь с таким email или username уже существует", "error_type": "conflict"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation_error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера", "error_type": "internal_server_error"})
	}
}
