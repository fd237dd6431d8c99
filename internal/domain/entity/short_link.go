package entity

import "time"

// ShortLink — короткая ссылка с метаданными для Open Graph превью.
// Clicks увеличивается атомарно при каждом переходе.
type ShortLink struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ShortPath   string    `gorm:"size:16;not null;uniqueIndex" json:"short_path"`
	FullURL     string    `gorm:"type:text;not null" json:"full_url"`
	Title       string    `gorm:"size:255;not null;default:''" json:"title"`
	Description string    `gorm:"size:500;not null;default:''" json:"description"`
	ImageURL    string    `gorm:"size:255;not null;default:''" json:"image_url"`
	Clicks      int64     `gorm:"not null;default:0" json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (ShortLink) TableName() string {
	return "short_links"
}
