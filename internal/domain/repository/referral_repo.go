package repository

import "github.com/yourusername/beams-api/internal/domain/entity"

// ReferralRepository определяет методы для работы с реферальными кодами
type ReferralRepository interface {
	Create(referral *entity.Referral) error
	GetByUserID(userID uint) (*entity.Referral, error)
	GetByCode(code string) (*entity.Referral, error)
	// CountVerifiedReferrals подсчитывает подтверждённых приглашённых пользователя
	CountVerifiedReferrals(userID uint) (int64, error)
	// ListReferredUsers возвращает пользователей, приглашённых данным пользователем
	ListReferredUsers(userID uint) ([]entity.User, error)
}
