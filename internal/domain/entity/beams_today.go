package entity

import "time"

// BeamsToday — тема дня: одна запись на календарную дату.
type BeamsToday struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Date          time.Time `gorm:"type:date;not null;uniqueIndex" json:"date"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	ShortDesc     string    `gorm:"size:500;not null;default:''" json:"short_desc"`
	Category      string    `gorm:"size:100;not null;default:'';index" json:"category"`
	VideoURL      string    `gorm:"size:255;not null;default:''" json:"video_url"`
	AudioURL      string    `gorm:"size:255;not null;default:''" json:"audio_url"`
	ArticleURL    string    `gorm:"size:255;not null;default:''" json:"article_url"`
	ThumbnailURL  string    `gorm:"size:255;not null;default:''" json:"thumbnail_url"`
	CompletionPts int       `gorm:"not null;default:5" json:"completion_pts"` // Beams за просмотр
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (BeamsToday) TableName() string {
	return "beams_today_items"
}

// ContentCompletion фиксирует факт прохождения контента пользователем.
// Уникальность (user, kind, content) гарантирует однократное начисление Beams.
type ContentCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_completion_user_content" json:"user_id"`
	ContentKind string    `gorm:"size:20;not null;uniqueIndex:idx_completion_user_content" json:"content_kind"` // beams_today | video
	ContentID   uint      `gorm:"not null;uniqueIndex:idx_completion_user_content" json:"content_id"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
}

// TableName определяет имя таблицы для GORM
func (ContentCompletion) TableName() string {
	return "content_completions"
}

// Favorite — закладка пользователя на контент.
type Favorite struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_favorite_user_content" json:"user_id"`
	ContentKind string    `gorm:"size:20;not null;uniqueIndex:idx_favorite_user_content" json:"content_kind"`
	ContentID   uint      `gorm:"not null;uniqueIndex:idx_favorite_user_content" json:"content_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Favorite) TableName() string {
	return "favorites"
}
