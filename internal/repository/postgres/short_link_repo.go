package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/beams-api/internal/domain/entity"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

type ShortLinkRepo struct {
	db *gorm.DB
}

func NewShortLinkRepo(db *gorm.DB) *ShortLinkRepo {
	return &ShortLinkRepo{db: db}
}

// Create stores a new short link. A unique index collision on the
// short path surfaces as apperrors.ErrConflict so the caller can retry
// with a different path.
func (r *ShortLinkRepo) Create(link *entity.ShortLink) error {
	err := r.db.Create(link).Error
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return err
	}
	return nil
}

func (r *ShortLinkRepo) GetByShortPath(shortPath string) (*entity.ShortLink, error) {
	var link entity.ShortLink
	err := r.db.Where("short_path = ?", shortPath).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get short link: %w", err)
	}
	return &link, nil
}

// IncrementClicks bumps the click counter in a single UPDATE so
// concurrent resolves never lose counts.
func (r *ShortLinkRepo) IncrementClicks(shortPath string) error {
	return r.db.Model(&entity.ShortLink{}).
		Where("short_path = ?", shortPath).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1)).
		Error
}

func (r *ShortLinkRepo) List(limit, offset int) ([]entity.ShortLink, int64, error) {
	var links []entity.ShortLink
	var total int64

	if err := r.db.Model(&entity.ShortLink{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&links).Error
	if err != nil {
		return nil, 0, err
	}
	return links, total, nil
}
