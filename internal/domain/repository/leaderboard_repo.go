package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/beams-api/internal/domain/entity"
)

// LeaderboardRepository определяет методы для работы со снимками лидерборда
type LeaderboardRepository interface {
	// ReplaceWindowTx заменяет снимок окна: удаляет старые записи окна
	// и вставляет новые внутри переданной транзакции
	ReplaceWindowTx(tx *gorm.DB, weekStart time.Time, entries []entity.LeaderboardEntry) error
	// GetWindow возвращает записи снимка окна по возрастанию ранга
	GetWindow(weekStart time.Time, limit int) ([]entity.LeaderboardEntry, error)
	// CountWindow возвращает число записей в снимке окна
	CountWindow(weekStart time.Time) (int64, error)
	// GetUserEntry возвращает запись пользователя в окне
	GetUserEntry(weekStart time.Time, userID uint) (*entity.LeaderboardEntry, error)
}
