package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/beams-api/internal/domain/entity"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// BeamsTodayRepo реализует repository.BeamsTodayRepository
type BeamsTodayRepo struct {
	db *gorm.DB
}

// NewBeamsTodayRepo создает новый репозиторий тем дня
func NewBeamsTodayRepo(db *gorm.DB) *BeamsTodayRepo {
	return &BeamsTodayRepo{db: db}
}

// Create создает новую тему дня
func (r *BeamsTodayRepo) Create(item *entity.BeamsToday) error {
	return r.db.Create(item).Error
}

// GetByID возвращает тему дня по ID
func (r *BeamsTodayRepo) GetByID(id uint) (*entity.BeamsToday, error) {
	var item entity.BeamsToday
	err := r.db.First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetByDate возвращает тему за календарную дату
func (r *BeamsTodayRepo) GetByDate(date time.Time) (*entity.BeamsToday, error) {
	var item entity.BeamsToday
	err := r.db.Where("date = ?", date.Format("2006-01-02")).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// ListByDateRange возвращает темы в интервале [from, to], новые первыми
func (r *BeamsTodayRepo) ListByDateRange(from, to time.Time) ([]entity.BeamsToday, error) {
	var items []entity.BeamsToday
	err := r.db.
		Where("date >= ? AND date <= ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("date DESC").
		Find(&items).Error
	return items, err
}

// List возвращает темы с пагинацией, новые первыми
func (r *BeamsTodayRepo) List(limit, offset int) ([]entity.BeamsToday, int64, error) {
	var items []entity.BeamsToday
	var total int64

	if err := r.db.Model(&entity.BeamsToday{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("date DESC").Limit(limit).Offset(offset).Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update обновляет тему дня
func (r *BeamsTodayRepo) Update(item *entity.BeamsToday) error {
	return r.db.Save(item).Error
}

// Delete удаляет тему дня
func (r *BeamsTodayRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.BeamsToday{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
