package entity

import "time"

// Poll — опрос, привязанный к теме дня. Один опрос на тему.
type Poll struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	BeamsTodayID uint         `gorm:"not null;uniqueIndex" json:"beams_today_id"`
	Question     string       `gorm:"size:500;not null" json:"question"`
	RewardPts    int          `gorm:"not null;default:2" json:"reward_pts"` // Beams за ответ
	Options      []PollOption `gorm:"foreignKey:PollID" json:"options,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Poll) TableName() string {
	return "polls"
}

// PollOption — вариант ответа опроса.
type PollOption struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	PollID     uint   `gorm:"not null;index" json:"poll_id"`
	OptionText string `gorm:"size:255;not null" json:"option_text"`
	Votes      int64  `gorm:"not null;default:0" json:"votes"` // атомарный инкремент при ответе
}

// TableName определяет имя таблицы для GORM
func (PollOption) TableName() string {
	return "poll_options"
}

// PollResponse — ответ пользователя. Один ответ на опрос на пользователя.
type PollResponse struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PollID    uint      `gorm:"not null;uniqueIndex:idx_poll_response_user" json:"poll_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_poll_response_user" json:"user_id"`
	OptionID  uint      `gorm:"not null" json:"option_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (PollResponse) TableName() string {
	return "poll_responses"
}
