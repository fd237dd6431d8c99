package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/beams-api/internal/domain/entity"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// LevelRepo реализует repository.LevelRepository
type LevelRepo struct {
	db *gorm.DB
}

// NewLevelRepo создает новый репозиторий уровней
func NewLevelRepo(db *gorm.DB) *LevelRepo {
	return &LevelRepo{db: db}
}

// ListOrdered возвращает все уровни по возрастанию LevelNumber
func (r *LevelRepo) ListOrdered() ([]entity.Level, error) {
	var levels []entity.Level
	err := r.db.Order("level_number ASC").Find(&levels).Error
	return levels, err
}

// GetByNumber возвращает уровень по его номеру
func (r *LevelRepo) GetByNumber(levelNumber int) (*entity.Level, error) {
	var level entity.Level
	err := r.db.Where("level_number = ?", levelNumber).First(&level).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}
