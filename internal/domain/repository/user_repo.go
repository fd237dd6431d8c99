package repository

import (
	"github.com/yourusername/beams-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	Update(user *entity.User) error
	UpdateProfile(userID uint, updates map[string]interface{}) error
	UpdatePassword(userID uint, newPassword string) error
	// IncrementBeamsPoints атомарно увеличивает суммарные очки пользователя
	IncrementBeamsPoints(userID uint, delta int) error
	// MarkEmailVerified фиксирует момент подтверждения email
	MarkEmailVerified(userID uint) error
	// SetReferralStatus обновляет статус реферала у приглашённого пользователя
	SetReferralStatus(userID uint, status string) error
	List(limit, offset int) ([]entity.User, error)
}
