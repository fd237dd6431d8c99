package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/beams-api/internal/domain/entity"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// LeaderboardRepo реализует repository.LeaderboardRepository
type LeaderboardRepo struct {
	db *gorm.DB
}

// NewLeaderboardRepo создает новый репозиторий снимков лидерборда
func NewLeaderboardRepo(db *gorm.DB) *LeaderboardRepo {
	return &LeaderboardRepo{db: db}
}

// ReplaceWindowTx заменяет снимок окна внутри переданной транзакции:
// старые записи окна удаляются и вставляются новые. Повторный вызов
// с теми же данными дает тот же результат.
func (r *LeaderboardRepo) ReplaceWindowTx(tx *gorm.DB, weekStart time.Time, entries []entity.LeaderboardEntry) error {
	if tx == nil {
		tx = r.db
	}

	if err := tx.Where("week_start = ?", weekStart).Delete(&entity.LeaderboardEntry{}).Error; err != nil {
		return fmt.Errorf("ошибка удаления старого снимка лидерборда: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}
	if err := tx.Create(&entries).Error; err != nil {
		return fmt.Errorf("ошибка вставки снимка лидерборда: %w", err)
	}
	return nil
}

// GetWindow возвращает записи снимка окна по возрастанию ранга
func (r *LeaderboardRepo) GetWindow(weekStart time.Time, limit int) ([]entity.LeaderboardEntry, error) {
	var entries []entity.LeaderboardEntry
	q := r.db.Where("week_start = ?", weekStart).Order("rank ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}

// CountWindow возвращает число записей в снимке окна
func (r *LeaderboardRepo) CountWindow(weekStart time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&entity.LeaderboardEntry{}).
		Where("week_start = ?", weekStart).
		Count(&count).Error
	return count, err
}

// GetUserEntry возвращает запись пользователя в окне
func (r *LeaderboardRepo) GetUserEntry(weekStart time.Time, userID uint) (*entity.LeaderboardEntry, error) {
	var entry entity.LeaderboardEntry
	err := r.db.Where("week_start = ? AND user_id = ?", weekStart, userID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}
