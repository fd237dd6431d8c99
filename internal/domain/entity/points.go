package entity

import "time"

// Источники начисления Beams. Свободный текст в описании, источник — из этого набора.
const (
	PointsSourceBeamsToday  = "beams_today"
	PointsSourcePoll        = "poll"
	PointsSourceWordGame    = "word_game"
	PointsSourceReferral    = "referral"
	PointsSourceAchievement = "achievement"
	PointsSourceVideo       = "video"
)

// PointsLedgerEntry — неизменяемая запись о начислении (или списании) Beams.
// Записи никогда не редактируются и не удаляются; сумма по пользователю
// дублируется в users.beams_points атомарным инкрементом.
type PointsLedgerEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:idx_ledger_user_created" json:"user_id"`
	Points      int       `gorm:"not null" json:"points"` // отрицательные значения допустимы
	Source      string    `gorm:"size:50;not null;index" json:"source"`
	Description string    `gorm:"size:255;not null;default:''" json:"description"`
	CreatedAt   time.Time `gorm:"not null;index:idx_ledger_user_created" json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (PointsLedgerEntry) TableName() string {
	return "points_ledger_entries"
}

// WindowTotal — агрегат очков пользователя за недельное окно.
// FirstEarnedAt — момент первого начисления в окне, используется
// как тай-брейк при равенстве очков.
type WindowTotal struct {
	UserID        uint      `json:"user_id"`
	Points        int64     `json:"points"`
	FirstEarnedAt time.Time `json:"first_earned_at"`
}
