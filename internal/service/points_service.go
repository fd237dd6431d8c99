package service

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/beams-api/internal/domain/entity"
	"github.com/yourusername/beams-api/internal/domain/repository"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// PointsService управляет журналом начислений Beams и уровнями.
// Источник истины — журнал; суммарное значение в users.beams_points
// дублируется атомарным инкрементом в той же транзакции.
type PointsService struct {
	db         *gorm.DB
	pointsRepo repository.PointsRepository
	userRepo   repository.UserRepository
	levelRepo  repository.LevelRepository
}

// LevelProgress описывает положение пользователя внутри текущего уровня
type LevelProgress struct {
	TotalPoints   int64         `json:"total_points"`
	Level         *entity.Level `json:"level"`
	NextLevel     *entity.Level `json:"next_level,omitempty"`
	PointsToNext  int64         `json:"points_to_next"`
	ProgressRatio float64       `json:"progress_ratio"` // 0..1 внутри текущего уровня
}

// NewPointsService создает новый сервис начислений и возвращает ошибку при проблемах
func NewPointsService(
	db *gorm.DB,
	pointsRepo repository.PointsRepository,
	userRepo repository.UserRepository,
	levelRepo repository.LevelRepository,
) (*PointsService, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm DB is required for PointsService")
	}
	if pointsRepo == nil {
		return nil, fmt.Errorf("PointsRepository is required for PointsService")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for PointsService")
	}
	if levelRepo == nil {
		return nil, fmt.Errorf("LevelRepository is required for PointsService")
	}
	return &PointsService{
		db:         db,
		pointsRepo: pointsRepo,
		userRepo:   userRepo,
		levelRepo:  levelRepo,
	}, nil
}

// RecordPoints записывает начисление в журнал и атомарно обновляет
// суммарные очки пользователя. Обе записи выполняются в одной транзакции:
// либо журнал и сумма меняются вместе, либо не меняется ничего.
func (s *PointsService) RecordPoints(userID uint, points int, source, description string) error {
	if points == 0 {
		return fmt.Errorf("%w: points must be non-zero", apperrors.ErrValidation)
	}
	if source == "" {
		return fmt.Errorf("%w: source is required", apperrors.ErrValidation)
	}

	// Проверяем существование пользователя до открытия транзакции
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if tx.Error != nil {
		return tx.Error
	}

	entry := &entity.PointsLedgerEntry{
		UserID:      userID,
		Points:      points,
		Source:      source,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := s.pointsRepo.CreateTx(tx, entry); err != nil {
		tx.Rollback()
		return fmt.Errorf("ошибка записи в журнал начислений: %w", err)
	}

	// Инкремент на стороне базы, а не read-modify-write: параллельные
	// начисления не затирают друг друга
	if err := tx.Model(&entity.User{}).
		Where("id = ?", userID).
		UpdateColumn("beams_points", gorm.Expr("beams_points + ?", points)).
		Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("ошибка обновления суммы очков: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("ошибка коммита транзакции начисления: %w", err)
	}

	log.Printf("[PointsService] Начислено %d Beams пользователю %d (источник: %s)", points, userID, source)
	return nil
}

// GetTotal возвращает суммарные очки пользователя по журналу
func (s *PointsService) GetTotal(userID uint) (int64, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return 0, err
	}
	return s.pointsRepo.SumByUserID(userID)
}

// GetHistory возвращает страницу журнала начислений пользователя
func (s *PointsService) GetHistory(userID uint, page, pageSize int) ([]entity.PointsLedgerEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	} else if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize
	return s.pointsRepo.GetHistory(userID, pageSize, offset)
}

// ResolveLevel определяет уровень по сумме очков. Если сумма не попадает
// ни в один диапазон, возвращается первый уровень.
func (s *PointsService) ResolveLevel(totalPoints int64) (*entity.Level, error) {
	levels, err := s.levelRepo.ListOrdered()
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: levels are not configured", apperrors.ErrNotFound)
	}

	for i := range levels {
		if levels[i].Contains(totalPoints) {
			return &levels[i], nil
		}
	}
	// Сумма ниже минимума первого уровня (или разрывы в конфигурации)
	return &levels[0], nil
}

// GetProgress возвращает текущий уровень пользователя и прогресс до следующего
func (s *PointsService) GetProgress(userID uint) (*LevelProgress, error) {
	total, err := s.GetTotal(userID)
	if err != nil {
		return nil, err
	}

	level, err := s.ResolveLevel(total)
	if err != nil {
		return nil, err
	}

	progress := &LevelProgress{
		TotalPoints: total,
		Level:       level,
	}

	next, err := s.levelRepo.GetByNumber(level.LevelNumber + 1)
	if err != nil {
		if err == apperrors.ErrNotFound {
			// Верхний уровень: прогресс считаем завершенным
			progress.ProgressRatio = 1
			return progress, nil
		}
		return nil, err
	}

	progress.NextLevel = next
	progress.PointsToNext = next.MinPoints - total
	if progress.PointsToNext < 0 {
		progress.PointsToNext = 0
	}

	span := next.MinPoints - level.MinPoints
	if span > 0 {
		progress.ProgressRatio = float64(total-level.MinPoints) / float64(span)
		if progress.ProgressRatio > 1 {
			progress.ProgressRatio = 1
		}
		if progress.ProgressRatio < 0 {
			progress.ProgressRatio = 0
		}
	}

	return progress, nil
}
