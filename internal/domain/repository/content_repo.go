package repository

import (
	"time"

	"github.com/yourusername/beams-api/internal/domain/entity"
)

// BeamsTodayRepository определяет методы для работы с темами дня
type BeamsTodayRepository interface {
	Create(item *entity.BeamsToday) error
	GetByID(id uint) (*entity.BeamsToday, error)
	GetByDate(date time.Time) (*entity.BeamsToday, error)
	// ListByDateRange возвращает темы в интервале [from, to], новые первыми
	ListByDateRange(from, to time.Time) ([]entity.BeamsToday, error)
	List(limit, offset int) ([]entity.BeamsToday, int64, error)
	Update(item *entity.BeamsToday) error
	Delete(id uint) error
}

// PollRepository определяет методы для работы с опросами тем дня
type PollRepository interface {
	Create(poll *entity.Poll) error
	// GetByBeamsTodayID возвращает опрос темы вместе с вариантами ответов
	GetByBeamsTodayID(beamsTodayID uint) (*entity.Poll, error)
	GetOptionByID(optionID uint) (*entity.PollOption, error)
	CreateResponse(response *entity.PollResponse) error
	GetResponse(pollID, userID uint) (*entity.PollResponse, error)
	// IncrementVotes атомарно увеличивает счетчик голосов варианта
	IncrementVotes(optionID uint) error
}

// TheatreRepository определяет методы для работы с каталогом Beams Theatre
type TheatreRepository interface {
	Create(video *entity.TheatreVideo) error
	GetByID(id uint) (*entity.TheatreVideo, error)
	List(genre, series string, limit, offset int) ([]entity.TheatreVideo, int64, error)
	// ListSeries возвращает имена сериалов каталога
	ListSeries() ([]string, error)
	Update(video *entity.TheatreVideo) error
	Delete(id uint) error
}

// WordGameRepository определяет методы для работы с головоломками "связь слов"
type WordGameRepository interface {
	CreatePuzzle(puzzle *entity.WordPuzzle) error
	GetPuzzleByDate(date time.Time) (*entity.WordPuzzle, error)
	GetPuzzleByID(id uint) (*entity.WordPuzzle, error)
	GetAttempt(puzzleID, userID uint) (*entity.WordAttempt, error)
	CreateAttempt(attempt *entity.WordAttempt) error
	UpdateAttempt(attempt *entity.WordAttempt) error
}

// CompletionRepository фиксирует прохождения контента и закладки
type CompletionRepository interface {
	CreateCompletion(completion *entity.ContentCompletion) error
	GetCompletion(userID uint, contentKind string, contentID uint) (*entity.ContentCompletion, error)
	CountCompletions(userID uint) (int64, error)
	AddFavorite(favorite *entity.Favorite) error
	RemoveFavorite(userID uint, contentKind string, contentID uint) error
	ListFavorites(userID uint, contentKind string) ([]entity.Favorite, error)
}
