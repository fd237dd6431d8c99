package repository

import "github.com/yourusername/beams-api/internal/domain/entity"

// ShortLinkRepository stores shareable short links.
type ShortLinkRepository interface {
	Create(link *entity.ShortLink) error
	GetByShortPath(shortPath string) (*entity.ShortLink, error)
	// IncrementClicks atomically bumps the click counter.
	IncrementClicks(shortPath string) error
	List(limit, offset int) ([]entity.ShortLink, int64, error)
}
