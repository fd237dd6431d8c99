package entity

import "time"

// Referral — реферальный код пользователя. Одна запись на пользователя,
// создаётся лениво при первом запросе кода.
type Referral struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	ReferralCode string    `gorm:"size:16;not null;uniqueIndex" json:"referral_code"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Referral) TableName() string {
	return "referrals"
}
