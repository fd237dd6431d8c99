package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/beams-api/internal/domain/entity"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// ReferralRepo реализует repository.ReferralRepository
type ReferralRepo struct {
	db *gorm.DB
}

// NewReferralRepo создает новый репозиторий реферальных кодов
func NewReferralRepo(db *gorm.DB) *ReferralRepo {
	return &ReferralRepo{db: db}
}

// Create сохраняет реферальный код. При коллизии уникального индекса
// по коду возвращает apperrors.ErrConflict, чтобы сервис повторил генерацию.
func (r *ReferralRepo) Create(referral *entity.Referral) error {
	err := r.db.Create(referral).Error
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return err
	}
	return nil
}

// GetByUserID возвращает реферальный код пользователя
func (r *ReferralRepo) GetByUserID(userID uint) (*entity.Referral, error) {
	var referral entity.Referral
	err := r.db.Where("user_id = ?", userID).First(&referral).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &referral, nil
}

// GetByCode возвращает запись по реферальному коду
func (r *ReferralRepo) GetByCode(code string) (*entity.Referral, error) {
	var referral entity.Referral
	err := r.db.Where("referral_code = ?", code).First(&referral).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &referral, nil
}

// CountVerifiedReferrals подсчитывает подтверждённых приглашённых пользователя
func (r *ReferralRepo) CountVerifiedReferrals(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.User{}).
		Where("referred_by_id = ? AND referral_status = ?", userID, entity.ReferralStatusVerified).
		Count(&count).Error
	return count, err
}

// ListReferredUsers возвращает пользователей, приглашённых данным пользователем
func (r *ReferralRepo) ListReferredUsers(userID uint) ([]entity.User, error) {
	var users []entity.User
	err := r.db.Where("referred_by_id = ?", userID).
		Order("created_at DESC").
		Find(&users).Error
	return users, err
}
