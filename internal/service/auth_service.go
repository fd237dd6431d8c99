package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yourusername/beams-api/internal/domain/entity"
	"github.com/yourusername/beams-api/internal/domain/repository"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
	"github.com/yourusername/beams-api/pkg/auth"
)

// AuthService предоставляет методы для работы с аутентификацией и пользователями
type AuthService struct {
	userRepo     repository.UserRepository
	jwtService   *auth.JWTService
	tokenManager *auth.RefreshTokenManager

	// Опциональные зависимости, настраиваются из main
	emailVerificationService *EmailVerificationService
	twoFactorService         *TwoFactorService
	referralService          *ReferralService
	emailVerificationEnabled bool
}

// RegisterInput содержит все данные для регистрации
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Grade     string
	BirthDate *time.Time

	// Реферальный код пригласившего (опционально)
	ReferralCode string

	// Метаданные сессии
	DeviceID  string
	IP        string
	UserAgent string
}

// LoginResult — результат входа. При включённой двухфакторке токены
// не выдаются до подтверждения кода.
type LoginResult struct {
	User              *entity.User
	AccessToken       string
	RefreshToken      string
	TwoFactorRequired bool
	MaskedEmail       string
}

// NewAuthService создает новый сервис аутентификации и возвращает ошибку при проблемах
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	tokenManager *auth.RefreshTokenManager,
) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("JWTService is required for AuthService")
	}
	if tokenManager == nil {
		return nil, fmt.Errorf("RefreshTokenManager is required for AuthService")
	}

	return &AuthService{
		userRepo:     userRepo,
		jwtService:   jwtService,
		tokenManager: tokenManager,
	}, nil
}

// ConfigureEmailVerification подключает подтверждение email
func (s *AuthService) ConfigureEmailVerification(svc *EmailVerificationService, enabled bool) {
	s.emailVerificationService = svc
	s.emailVerificationEnabled = enabled && svc != nil
}

// ConfigureTwoFactor подключает двухфакторный вход
func (s *AuthService) ConfigureTwoFactor(svc *TwoFactorService) {
	s.twoFactorService = svc
}

// ConfigureReferrals подключает реферальную программу
func (s *AuthService) ConfigureReferrals(svc *ReferralService) {
	s.referralService = svc
}

// Register создает нового пользователя. При наличии реферального кода
// пользователь привязывается к пригласившему со статусом pending.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", apperrors.ErrValidation)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}

	if _, err := s.userRepo.GetByEmail(input.Email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.GetByUsername(input.Username); err == nil {
		return nil, fmt.Errorf("%w: username already taken", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	user := &entity.User{
		Username:            input.Username,
		Email:               input.Email,
		Password:            input.Password, // хешируется в BeforeSave
		PasswordAuthEnabled: true,
		FirstName:           input.FirstName,
		LastName:            input.LastName,
		Grade:               input.Grade,
		BirthDate:           input.BirthDate,
		Role:                "user",
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	// Привязываем реферала: ошибки кода не валят регистрацию
	if input.ReferralCode != "" && s.referralService != nil {
		if err := s.referralService.Redeem(user.ID, input.ReferralCode); err != nil {
			log.Printf("[AuthService] Реферальный код %q не применён для пользователя %d: %v",
				input.ReferralCode, user.ID, err)
		}
	}

	// Отправляем код подтверждения email: тоже best effort
	if s.emailVerificationEnabled {
		if err := s.emailVerificationService.SendCode(ctx, user.ID); err != nil {
			log.Printf("[AuthService] Ошибка отправки кода подтверждения пользователю %d: %v", user.ID, err)
		}
	}

	log.Printf("[AuthService] Зарегистрирован пользователь %d (%s)", user.ID, user.Email)
	return user, nil
}

// Login выполняет вход по email и паролю. При включённой двухфакторке
// отправляет код на почту и возвращает TwoFactorRequired без токенов.
func (s *AuthService) Login(ctx context.Context, email, password, deviceID, ip, userAgent string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
		}
		return nil, err
	}

	if !user.PasswordAuthEnabled || user.Password == "" {
		return nil, ErrPasswordLoginDisabled
	}
	if !user.CheckPassword(password) {
		return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}

	if user.IsTwoFactorEnabled && s.twoFactorService != nil {
		if err := s.twoFactorService.SendCode(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("ошибка отправки кода двухфакторного входа: %w", err)
		}
		return &LoginResult{
			User:              user,
			TwoFactorRequired: true,
			MaskedEmail:       user.MaskedEmail(),
		}, nil
	}

	return s.issueTokens(user, deviceID, ip, userAgent)
}

// CompleteTwoFactorLogin завершает вход после проверки кода с почты
func (s *AuthService) CompleteTwoFactorLogin(ctx context.Context, email, code, deviceID, ip, userAgent string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid login", apperrors.ErrUnauthorized)
		}
		return nil, err
	}
	if s.twoFactorService == nil {
		return nil, ErrFeatureDisabled
	}

	if err := s.twoFactorService.VerifyCode(ctx, user.ID, code); err != nil {
		return nil, err
	}

	return s.issueTokens(user, deviceID, ip, userAgent)
}

// RefreshTokens ротирует refresh-токен и выдает новую пару токенов
func (s *AuthService) RefreshTokens(refreshToken, deviceID, ip, userAgent string) (*LoginResult, error) {
	newRefresh, userID, err := s.tokenManager.Rotate(refreshToken, deviceID, ip, userAgent)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
	}, nil
}

// Logout отзывает refresh-токен текущей сессии
func (s *AuthService) Logout(refreshToken string) error {
	return s.tokenManager.Revoke(refreshToken)
}

// LogoutAll отзывает все refresh-токены пользователя
func (s *AuthService) LogoutAll(userID uint) error {
	return s.tokenManager.RevokeAllForUser(userID)
}

// ChangePassword меняет пароль после проверки старого и отзывает
// все остальные сессии пользователя
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user.PasswordAuthEnabled && user.Password != "" && !user.CheckPassword(oldPassword) {
		return fmt.Errorf("%w: old password is incorrect", apperrors.ErrUnauthorized)
	}

	if err := s.userRepo.UpdatePassword(userID, newPassword); err != nil {
		return err
	}

	if err := s.tokenManager.RevokeAllForUser(userID); err != nil {
		log.Printf("[AuthService] Ошибка отзыва сессий после смены пароля пользователя %d: %v", userID, err)
	}
	return nil
}

func (s *AuthService) issueTokens(user *entity.User, deviceID, ip, userAgent string) (*LoginResult, error) {
	accessToken, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokenManager.Issue(user.ID, deviceID, ip, userAgent)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
