package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/beams-api/internal/domain/entity"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// WordGameRepo реализует repository.WordGameRepository
type WordGameRepo struct {
	db *gorm.DB
}

// NewWordGameRepo создает новый репозиторий головоломок
func NewWordGameRepo(db *gorm.DB) *WordGameRepo {
	return &WordGameRepo{db: db}
}

// CreatePuzzle создает головоломку
func (r *WordGameRepo) CreatePuzzle(puzzle *entity.WordPuzzle) error {
	return r.db.Create(puzzle).Error
}

// GetPuzzleByDate возвращает головоломку за календарную дату
func (r *WordGameRepo) GetPuzzleByDate(date time.Time) (*entity.WordPuzzle, error) {
	var puzzle entity.WordPuzzle
	err := r.db.Where("date = ?", date.Format("2006-01-02")).First(&puzzle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &puzzle, nil
}

// GetPuzzleByID возвращает головоломку по ID
func (r *WordGameRepo) GetPuzzleByID(id uint) (*entity.WordPuzzle, error) {
	var puzzle entity.WordPuzzle
	err := r.db.First(&puzzle, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &puzzle, nil
}

// GetAttempt возвращает состояние попыток пользователя по головоломке
func (r *WordGameRepo) GetAttempt(puzzleID, userID uint) (*entity.WordAttempt, error) {
	var attempt entity.WordAttempt
	err := r.db.Where("puzzle_id = ? AND user_id = ?", puzzleID, userID).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// CreateAttempt создает запись попыток. Повторное создание нарушает
// уникальный индекс и возвращает apperrors.ErrConflict.
func (r *WordGameRepo) CreateAttempt(attempt *entity.WordAttempt) error {
	err := r.db.Create(attempt).Error
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return err
	}
	return nil
}

// UpdateAttempt обновляет состояние попыток
func (r *WordGameRepo) UpdateAttempt(attempt *entity.WordAttempt) error {
	return r.db.Save(attempt).Error
}
