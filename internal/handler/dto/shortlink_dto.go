package dto

import (
	"time"

	"github.com/yourusername/beams-api/internal/domain/entity"
)

// ShortLinkResponse describes a created short link.
type ShortLinkResponse struct {
	ID          uint      `json:"id"`
	ShortPath   string    `json:"short_path"`
	ShortURL    string    `json:"short_url"`
	FullURL     string    `json:"full_url"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewShortLinkResponse builds the API representation of a short link.
// shortURL is the full public URL including the configured base.
func NewShortLinkResponse(link *entity.ShortLink, shortURL string) *ShortLinkResponse {
	if link == nil {
		return nil
	}
	return &ShortLinkResponse{
		ID:          link.ID,
		ShortPath:   link.ShortPath,
		ShortURL:    shortURL,
		FullURL:     link.FullURL,
		Title:       link.Title,
		Description: link.Description,
		ImageURL:    link.ImageURL,
		Clicks:      link.Clicks,
		CreatedAt:   link.CreatedAt,
	}
}
