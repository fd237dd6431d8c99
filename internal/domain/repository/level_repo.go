package repository

import "github.com/yourusername/beams-api/internal/domain/entity"

// LevelRepository определяет методы для работы с уровнями
type LevelRepository interface {
	// ListOrdered возвращает все уровни по возрастанию LevelNumber
	ListOrdered() ([]entity.Level, error)
	GetByNumber(levelNumber int) (*entity.Level, error)
}
