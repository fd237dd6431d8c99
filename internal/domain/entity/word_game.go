package entity

import "time"

// WordPuzzle — ежедневная головоломка "связь слов": набор слов и общий ответ.
type WordPuzzle struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex" json:"date"`
	Words     string    `gorm:"size:500;not null" json:"words"`  // слова через запятую
	Answer    string    `gorm:"size:100;not null" json:"-"`      // связующее слово, не отдается клиенту
	Hint      string    `gorm:"size:255;not null;default:''" json:"hint"`
	MaxPts    int       `gorm:"not null;default:10" json:"max_pts"` // награда за ответ с первой попытки
	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (WordPuzzle) TableName() string {
	return "word_puzzles"
}

// WordAttempt — состояние попыток пользователя по головоломке.
// Одна запись на пользователя и головоломку; Tries растет до первого успеха.
type WordAttempt struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	PuzzleID  uint       `gorm:"not null;uniqueIndex:idx_word_attempt_user" json:"puzzle_id"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_word_attempt_user" json:"user_id"`
	Tries     int        `gorm:"not null;default:0" json:"tries"`
	SolvedAt  *time.Time `json:"solved_at,omitempty"`
	PointsWon int        `gorm:"not null;default:0" json:"points_won"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (WordAttempt) TableName() string {
	return "word_attempts"
}
