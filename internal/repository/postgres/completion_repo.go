package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/beams-api/internal/domain/entity"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// CompletionRepo реализует repository.CompletionRepository
type CompletionRepo struct {
	db *gorm.DB
}

// NewCompletionRepo создает новый репозиторий прохождений и закладок
func NewCompletionRepo(db *gorm.DB) *CompletionRepo {
	return &CompletionRepo{db: db}
}

// CreateCompletion фиксирует прохождение. Повторное прохождение
// нарушает уникальный индекс и возвращает apperrors.ErrConflict —
// на этом держится однократность начисления Beams за контент.
func (r *CompletionRepo) CreateCompletion(completion *entity.ContentCompletion) error {
	err := r.db.Create(completion).Error
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return err
	}
	return nil
}

// GetCompletion возвращает запись о прохождении контента пользователем
func (r *CompletionRepo) GetCompletion(userID uint, contentKind string, contentID uint) (*entity.ContentCompletion, error) {
	var completion entity.ContentCompletion
	err := r.db.
		Where("user_id = ? AND content_kind = ? AND content_id = ?", userID, contentKind, contentID).
		First(&completion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &completion, nil
}

// CountCompletions подсчитывает все прохождения пользователя
func (r *CompletionRepo) CountCompletions(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.ContentCompletion{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// AddFavorite добавляет закладку. Повторное добавление возвращает
// apperrors.ErrConflict.
func (r *CompletionRepo) AddFavorite(favorite *entity.Favorite) error {
	err := r.db.Create(favorite).Error
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return err
	}
	return nil
}

// RemoveFavorite удаляет закладку
func (r *CompletionRepo) RemoveFavorite(userID uint, contentKind string, contentID uint) error {
	result := r.db.
		Where("user_id = ? AND content_kind = ? AND content_id = ?", userID, contentKind, contentID).
		Delete(&entity.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListFavorites возвращает закладки пользователя, при непустом kind — только данного вида
func (r *CompletionRepo) ListFavorites(userID uint, contentKind string) ([]entity.Favorite, error) {
	var favorites []entity.Favorite
	q := r.db.Where("user_id = ?", userID)
	if contentKind != "" {
		q = q.Where("content_kind = ?", contentKind)
	}
	err := q.Order("created_at DESC").Find(&favorites).Error
	return favorites, err
}
