package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/beams-api/internal/domain/entity"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// TheatreRepo реализует repository.TheatreRepository
type TheatreRepo struct {
	db *gorm.DB
}

// NewTheatreRepo создает новый репозиторий каталога видео
func NewTheatreRepo(db *gorm.DB) *TheatreRepo {
	return &TheatreRepo{db: db}
}

// Create добавляет видео в каталог
func (r *TheatreRepo) Create(video *entity.TheatreVideo) error {
	return r.db.Create(video).Error
}

// GetByID возвращает видео по ID
func (r *TheatreRepo) GetByID(id uint) (*entity.TheatreVideo, error) {
	var video entity.TheatreVideo
	err := r.db.First(&video, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

// List возвращает видео каталога с фильтрами по жанру и сериалу.
// Пустые значения фильтров игнорируются.
func (r *TheatreRepo) List(genre, series string, limit, offset int) ([]entity.TheatreVideo, int64, error) {
	var videos []entity.TheatreVideo
	var total int64

	q := r.db.Model(&entity.TheatreVideo{})
	if genre != "" {
		q = q.Where("genre = ?", genre)
	}
	if series != "" {
		q = q.Where("series_name = ?", series)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("series_name ASC, season_number ASC, episode_number ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&videos).Error
	if err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

// ListSeries возвращает имена сериалов каталога
func (r *TheatreRepo) ListSeries() ([]string, error) {
	var series []string
	err := r.db.Model(&entity.TheatreVideo{}).
		Where("series_name <> ''").
		Distinct("series_name").
		Order("series_name ASC").
		Pluck("series_name", &series).Error
	return series, err
}

// Update обновляет видео каталога
func (r *TheatreRepo) Update(video *entity.TheatreVideo) error {
	return r.db.Save(video).Error
}

// Delete удаляет видео из каталога
func (r *TheatreRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.TheatreVideo{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
