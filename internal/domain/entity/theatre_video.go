package entity

import "time"

// TheatreVideo — видео из каталога Beams Theatre.
type TheatreVideo struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   string    `gorm:"size:1000;not null;default:''" json:"description"`
	Genre         string    `gorm:"size:100;not null;default:'';index" json:"genre"`
	SeriesName    string    `gorm:"size:255;not null;default:'';index" json:"series_name"`
	SeasonNumber  int       `gorm:"not null;default:0" json:"season_number"`
	EpisodeNumber int       `gorm:"not null;default:0" json:"episode_number"`
	VideoURL      string    `gorm:"size:255;not null" json:"video_url"`
	ThumbnailURL  string    `gorm:"size:255;not null;default:''" json:"thumbnail_url"`
	DurationSec   int       `gorm:"not null;default:0" json:"duration_sec"`
	CompletionPts int       `gorm:"not null;default:3" json:"completion_pts"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (TheatreVideo) TableName() string {
	return "theatre_videos"
}
