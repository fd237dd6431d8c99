package repository

import "github.com/yourusername/beams-api/internal/domain/entity"

// TwoFactorRepository persists one-time login codes.
type TwoFactorRepository interface {
	Create(code *entity.TwoFactorCode) error
	GetLatestActiveByUserID(userID uint) (*entity.TwoFactorCode, error)
	MarkConsumed(id uint) error
	DeleteByUserID(userID uint) error
}
