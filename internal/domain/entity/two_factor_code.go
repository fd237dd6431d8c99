package entity

import "time"

// TwoFactorCode stores hashed one-time codes for the second login factor.
// A code is bound to a single login attempt and consumed on first use.
type TwoFactorCode struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	CodeHash   string     `gorm:"size:64;not null" json:"-"`
	CodeSalt   string     `gorm:"size:64;not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"not null;index" json:"expires_at"`
	ConsumedAt *time.Time `gorm:"index" json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (TwoFactorCode) TableName() string {
	return "two_factor_codes"
}

func (c *TwoFactorCode) IsConsumed() bool {
	return c.ConsumedAt != nil
}

func (c *TwoFactorCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
