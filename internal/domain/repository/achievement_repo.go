package repository

import "github.com/yourusername/beams-api/internal/domain/entity"

// AchievementRepository определяет методы для работы с достижениями
type AchievementRepository interface {
	ListAll() ([]entity.Achievement, error)
	ListByKind(kind string) ([]entity.Achievement, error)
	GetUserAchievement(userID, achievementID uint) (*entity.UserAchievement, error)
	CreateUserAchievement(award *entity.UserAchievement) error
	ListUserAchievements(userID uint) ([]entity.UserAchievement, error)
}
