package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/beams-api/internal/domain/entity"
	"github.com/yourusername/beams-api/internal/domain/repository"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// Константы для настройки refresh-токенов
const (
	// Время жизни refresh-токена (30 дней)
	RefreshTokenLifetime = 30 * 24 * time.Hour
	// Максимальное количество активных refresh-токенов на пользователя
	MaxRefreshTokensPerUser = 10
)

// RefreshTokenManager выпускает, ротирует и отзывает refresh-токены.
// В базе хранится только SHA-256 хеш значения токена.
type RefreshTokenManager struct {
	repo repository.RefreshTokenRepository
}

// NewRefreshTokenManager создает менеджер refresh-токенов
func NewRefreshTokenManager(repo repository.RefreshTokenRepository) (*RefreshTokenManager, error) {
	if repo == nil {
		return nil, fmt.Errorf("RefreshTokenRepository is required for RefreshTokenManager")
	}
	return &RefreshTokenManager{repo: repo}, nil
}

// HashToken возвращает hex-представление SHA-256 хеша значения токена
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Issue выпускает новый refresh-токен для пользователя.
// Возвращает сырое значение токена; в базу попадает только хеш.
func (m *RefreshTokenManager) Issue(userID uint, deviceID, ipAddress, userAgent string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("ошибка генерации refresh-токена: %w", err)
	}
	tokenValue := hex.EncodeToString(raw)

	// Клиенты без собственного идентификатора устройства получают случайный
	if deviceID == "" {
		deviceID = uuid.NewString()
	}

	token := entity.NewRefreshToken(
		userID,
		HashToken(tokenValue),
		deviceID,
		ipAddress,
		userAgent,
		time.Now().Add(RefreshTokenLifetime),
	)

	if _, err := m.repo.CreateToken(token); err != nil {
		return "", err
	}

	// Ограничиваем количество активных сессий пользователя
	count, err := m.repo.CountTokensForUser(userID)
	if err != nil {
		log.Printf("[RefreshTokenManager] Ошибка подсчета токенов пользователя %d: %v", userID, err)
	} else if count > MaxRefreshTokensPerUser {
		if err := m.repo.MarkOldestAsExpiredForUser(userID, MaxRefreshTokensPerUser); err != nil {
			log.Printf("[RefreshTokenManager] Ошибка ограничения сессий пользователя %d: %v", userID, err)
		}
	}

	return tokenValue, nil
}

// Rotate проверяет refresh-токен, отзывает его и выпускает новый.
// Старый токен становится недействительным сразу после ротации.
func (m *RefreshTokenManager) Rotate(tokenValue, deviceID, ipAddress, userAgent string) (string, uint, error) {
	stored, err := m.repo.GetTokenByValue(HashToken(tokenValue))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrExpiredToken) {
			return "", 0, apperrors.ErrUnauthorized
		}
		return "", 0, err
	}
	if !stored.IsValid() {
		return "", 0, apperrors.ErrUnauthorized
	}

	if err := m.repo.MarkTokenAsExpired(stored.TokenHash); err != nil {
		return "", 0, fmt.Errorf("ошибка отзыва старого refresh-токена: %w", err)
	}

	newValue, err := m.Issue(stored.UserID, deviceID, ipAddress, userAgent)
	if err != nil {
		return "", 0, err
	}
	return newValue, stored.UserID, nil
}

// Revoke отзывает конкретный refresh-токен (logout)
func (m *RefreshTokenManager) Revoke(tokenValue string) error {
	err := m.repo.MarkTokenAsExpired(HashToken(tokenValue))
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return nil
}

// RevokeAllForUser отзывает все refresh-токены пользователя (logout на всех устройствах)
func (m *RefreshTokenManager) RevokeAllForUser(userID uint) error {
	return m.repo.MarkAllAsExpiredForUser(userID)
}

// Cleanup удаляет просроченные токены и возвращает количество удаленных
func (m *RefreshTokenManager) Cleanup() (int64, error) {
	return m.repo.CleanupExpiredTokens()
}
