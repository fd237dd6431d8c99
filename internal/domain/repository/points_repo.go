package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/beams-api/internal/domain/entity"
)

// PointsRepository определяет методы для работы с журналом начислений очков
type PointsRepository interface {
	// CreateTx добавляет запись журнала внутри переданной транзакции
	CreateTx(tx *gorm.DB, entry *entity.PointsLedgerEntry) error
	// SumByUserID возвращает сумму всех начислений пользователя
	SumByUserID(userID uint) (int64, error)
	// SumByUserIDInWindow возвращает сумму начислений пользователя в интервале [from, to)
	SumByUserIDInWindow(userID uint, from, to time.Time) (int64, error)
	// GetHistory возвращает записи журнала пользователя, новые первыми
	GetHistory(userID uint, limit, offset int) ([]entity.PointsLedgerEntry, int64, error)
	// SumAllInWindow агрегирует очки всех пользователей в интервале [from, to),
	// вместе с моментом первого начисления каждого пользователя в окне
	SumAllInWindow(from, to time.Time) ([]entity.WindowTotal, error)
	// CountBySource подсчитывает записи пользователя с данным источником
	CountBySource(userID uint, source string) (int64, error)
}
