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
)

// UserService предоставляет методы для работы с профилем пользователя
type UserService struct {
	userRepo      repository.UserRepository
	mediaUploader MediaUploader
}

// ProfileUpdateInput — изменяемые поля профиля; nil означает "не менять"
type ProfileUpdateInput struct {
	Username  *string
	FirstName *string
	LastName  *string
	Grade     *string
	BirthDate *time.Time
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository, mediaUploader MediaUploader) (*UserService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for UserService")
	}
	if mediaUploader == nil {
		mediaUploader = &NoopMediaUploader{}
	}
	return &UserService{
		userRepo:      userRepo,
		mediaUploader: mediaUploader,
	}, nil
}

// GetProfile возвращает пользователя по ID
func (s *UserService) GetProfile(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateProfile обновляет указанные поля профиля.
// Смена username проверяется на уникальность.
func (s *UserService) UpdateProfile(userID uint, input ProfileUpdateInput) (*entity.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, fmt.Errorf("%w: username cannot be empty", apperrors.ErrValidation)
		}
		if username != user.Username {
			existing, err := s.userRepo.GetByUsername(username)
			if err == nil && existing.ID != userID {
				return nil, fmt.Errorf("%w: username already taken", apperrors.ErrConflict)
			}
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return nil, err
			}
			updates["username"] = username
		}
	}
	if input.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.Grade != nil {
		updates["grade"] = strings.TrimSpace(*input.Grade)
	}
	if input.BirthDate != nil {
		updates["birth_date"] = input.BirthDate
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.userRepo.UpdateProfile(userID, updates); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(userID)
}

// UpdateAvatar загружает аватар в хранилище изображений и сохраняет URL
func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, data []byte) (string, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return "", err
	}

	url, err := s.mediaUploader.UploadAvatar(ctx, userID, data)
	if err != nil {
		return "", err
	}

	if err := s.userRepo.UpdateProfile(userID, map[string]interface{}{"profile_picture": url}); err != nil {
		return "", fmt.Errorf("ошибка сохранения URL аватара: %w", err)
	}

	log.Printf("[UserService] Обновлён аватар пользователя %d", userID)
	return url, nil
}

// SetTwoFactor включает или выключает двухфакторный вход.
// Включение требует подтверждённого email — иначе коды некуда отправлять.
func (s *UserService) SetTwoFactor(userID uint, enabled bool) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if enabled && user.EmailVerifiedAt == nil {
		return ErrEmailNotVerified
	}

	return s.userRepo.UpdateProfile(userID, map[string]interface{}{"is_two_factor_enabled": enabled})
}
