package entity

import "time"

// LeaderboardEntry — материализованная строка еженедельного рейтинга.
// Инвариант: ровно одна строка на пользователя в рамках одного окна
// [WeekStart, WeekEnd); строки пересчитываются целиком, не редактируются.
type LeaderboardEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_leaderboard_user_week" json:"user_id"`
	Points    int64     `gorm:"not null" json:"points"`
	Rank      int       `gorm:"not null" json:"rank"` // 1-based, по points DESC
	WeekStart time.Time `gorm:"not null;uniqueIndex:idx_leaderboard_user_week;index:idx_leaderboard_week" json:"week_start"`
	WeekEnd   time.Time `gorm:"not null" json:"week_end"`

	// FirstEarnedAt — время самой ранней записи леджера пользователя в окне.
	// Вторичный ключ сортировки при равенстве очков.
	FirstEarnedAt time.Time `gorm:"not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (LeaderboardEntry) TableName() string {
	return "leaderboard_entries"
}
