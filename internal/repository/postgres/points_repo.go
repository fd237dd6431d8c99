package postgres

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/beams-api/internal/domain/entity"
)

// PointsRepo реализует repository.PointsRepository
type PointsRepo struct {
	db *gorm.DB
}

// NewPointsRepo создает новый репозиторий журнала начислений
func NewPointsRepo(db *gorm.DB) *PointsRepo {
	return &PointsRepo{db: db}
}

// CreateTx добавляет запись журнала внутри переданной транзакции
func (r *PointsRepo) CreateTx(tx *gorm.DB, entry *entity.PointsLedgerEntry) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(entry).Error
}

// SumByUserID возвращает сумму всех начислений пользователя
func (r *PointsRepo) SumByUserID(userID uint) (int64, error) {
	var total int64
	err := r.db.Model(&entity.PointsLedgerEntry{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета суммы начислений: %w", err)
	}
	return total, nil
}

// SumByUserIDInWindow возвращает сумму начислений пользователя в интервале [from, to)
func (r *PointsRepo) SumByUserIDInWindow(userID uint, from, to time.Time) (int64, error) {
	var total int64
	err := r.db.Model(&entity.PointsLedgerEntry{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета суммы начислений в окне: %w", err)
	}
	return total, nil
}

// GetHistory возвращает записи журнала пользователя, новые первыми
func (r *PointsRepo) GetHistory(userID uint, limit, offset int) ([]entity.PointsLedgerEntry, int64, error) {
	var entries []entity.PointsLedgerEntry
	var total int64

	err := r.db.Model(&entity.PointsLedgerEntry{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// SumAllInWindow агрегирует очки всех пользователей в интервале [from, to).
// Пользователи без начислений в окне в выборку не попадают.
func (r *PointsRepo) SumAllInWindow(from, to time.Time) ([]entity.WindowTotal, error) {
	var totals []entity.WindowTotal
	err := r.db.Model(&entity.PointsLedgerEntry{}).
		Select("user_id, COALESCE(SUM(points), 0) AS points, MIN(created_at) AS first_earned_at").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("user_id").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка агрегации очков за окно: %w", err)
	}
	return totals, nil
}

// CountBySource подсчитывает записи пользователя с данным источником
func (r *PointsRepo) CountBySource(userID uint, source string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.PointsLedgerEntry{}).
		Where("user_id = ? AND source = ?", userID, source).
		Count(&count).Error
	return count, err
}
