package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/beams-api/internal/domain/entity"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

type TwoFactorRepo struct {
	db *gorm.DB
}

func NewTwoFactorRepo(db *gorm.DB) *TwoFactorRepo {
	return &TwoFactorRepo{db: db}
}

func (r *TwoFactorRepo) Create(code *entity.TwoFactorCode) error {
	return r.db.Create(code).Error
}

func (r *TwoFactorRepo) GetLatestActiveByUserID(userID uint) (*entity.TwoFactorCode, error) {
	var code entity.TwoFactorCode
	err := r.db.
		Where("user_id = ? AND consumed_at IS NULL", userID).
		Order("created_at DESC").
		First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest active two-factor code: %w", err)
	}
	return &code, nil
}

func (r *TwoFactorRepo) MarkConsumed(id uint) error {
	now := time.Now()
	return r.db.Model(&entity.TwoFactorCode{}).
		Where("id = ?", id).
		Update("consumed_at", now).Error
}

func (r *TwoFactorRepo) DeleteByUserID(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&entity.TwoFactorCode{}).Error
}
