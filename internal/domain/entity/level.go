package entity

// Level — статический уровень (tier) по сумме Beams.
// MaxPoints < 0 означает открытый верхний уровень.
type Level struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	LevelNumber int    `gorm:"not null;uniqueIndex" json:"level_number"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Caption     string `gorm:"size:255;not null;default:''" json:"caption"`
	MinPoints   int64  `gorm:"not null" json:"min_points"`
	MaxPoints   int64  `gorm:"not null;default:-1" json:"max_points"`
	IconURL     string `gorm:"size:255;not null;default:''" json:"icon_url"`
}

// TableName определяет имя таблицы для GORM
func (Level) TableName() string {
	return "levels"
}

// Contains возвращает true, если сумма Beams попадает в границы уровня
func (l *Level) Contains(totalPoints int64) bool {
	if totalPoints < l.MinPoints {
		return false
	}
	if l.MaxPoints < 0 {
		return true
	}
	return totalPoints <= l.MaxPoints
}
