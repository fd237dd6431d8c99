package entity

import "time"

// Виды условий достижений
const (
	AchievementKindTotalPoints = "total_points" // суммарные Beams >= Threshold
	AchievementKindStreak      = "streak"       // дней подряд с активностью >= Threshold
)

// Achievement — статическое определение значка.
type Achievement struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Caption   string `gorm:"size:255;not null;default:''" json:"caption"`
	Kind      string `gorm:"size:20;not null" json:"kind"`
	Threshold int64  `gorm:"not null" json:"threshold"`
	RewardPts int    `gorm:"not null;default:0" json:"reward_pts"` // разовое начисление Beams
	IconURL   string `gorm:"size:255;not null;default:''" json:"icon_url"`
}

// TableName определяет имя таблицы для GORM
func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement — выданный пользователю значок. Выдается однократно.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	AwardedAt     time.Time `gorm:"not null" json:"awarded_at"`
}

// TableName определяет имя таблицы для GORM
func (UserAchievement) TableName() string {
	return "user_achievements"
}
