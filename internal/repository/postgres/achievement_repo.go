package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/beams-api/internal/domain/entity"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// AchievementRepo реализует repository.AchievementRepository
type AchievementRepo struct {
	db *gorm.DB
}

// NewAchievementRepo создает новый репозиторий достижений
func NewAchievementRepo(db *gorm.DB) *AchievementRepo {
	return &AchievementRepo{db: db}
}

// ListAll возвращает все определения достижений
func (r *AchievementRepo) ListAll() ([]entity.Achievement, error) {
	var achievements []entity.Achievement
	err := r.db.Order("id ASC").Find(&achievements).Error
	return achievements, err
}

// ListByKind возвращает достижения данного вида
func (r *AchievementRepo) ListByKind(kind string) ([]entity.Achievement, error) {
	var achievements []entity.Achievement
	err := r.db.Where("kind = ?", kind).Order("threshold ASC").Find(&achievements).Error
	return achievements, err
}

// GetUserAchievement возвращает выданный пользователю значок
func (r *AchievementRepo) GetUserAchievement(userID, achievementID uint) (*entity.UserAchievement, error) {
	var award entity.UserAchievement
	err := r.db.
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		First(&award).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &award, nil
}

// CreateUserAchievement выдает значок. Повторная выдача нарушает
// уникальный индекс и возвращает apperrors.ErrConflict.
func (r *AchievementRepo) CreateUserAchievement(award *entity.UserAchievement) error {
	err := r.db.Create(award).Error
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return err
	}
	return nil
}

// ListUserAchievements возвращает значки пользователя
func (r *AchievementRepo) ListUserAchievements(userID uint) ([]entity.UserAchievement, error) {
	var awards []entity.UserAchievement
	err := r.db.Where("user_id = ?", userID).Order("awarded_at DESC").Find(&awards).Error
	return awards, err
}
