package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/beams-api/internal/domain/entity"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// PollRepo реализует repository.PollRepository
type PollRepo struct {
	db *gorm.DB
}

// NewPollRepo создает новый репозиторий опросов
func NewPollRepo(db *gorm.DB) *PollRepo {
	return &PollRepo{db: db}
}

// Create создает опрос вместе с вариантами ответов
func (r *PollRepo) Create(poll *entity.Poll) error {
	return r.db.Create(poll).Error
}

// GetByBeamsTodayID возвращает опрос темы вместе с вариантами ответов
func (r *PollRepo) GetByBeamsTodayID(beamsTodayID uint) (*entity.Poll, error) {
	var poll entity.Poll
	err := r.db.Preload("Options").
		Where("beams_today_id = ?", beamsTodayID).
		First(&poll).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &poll, nil
}

// GetOptionByID возвращает вариант ответа по ID
func (r *PollRepo) GetOptionByID(optionID uint) (*entity.PollOption, error) {
	var option entity.PollOption
	err := r.db.First(&option, optionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &option, nil
}

// CreateResponse сохраняет ответ пользователя. Повторный ответ
// нарушает уникальный индекс и возвращает apperrors.ErrConflict.
func (r *PollRepo) CreateResponse(response *entity.PollResponse) error {
	err := r.db.Create(response).Error
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return err
	}
	return nil
}

// GetResponse возвращает ответ пользователя на опрос
func (r *PollRepo) GetResponse(pollID, userID uint) (*entity.PollResponse, error) {
	var response entity.PollResponse
	err := r.db.Where("poll_id = ? AND user_id = ?", pollID, userID).First(&response).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &response, nil
}

// IncrementVotes атомарно увеличивает счетчик голосов варианта
func (r *PollRepo) IncrementVotes(optionID uint) error {
	return r.db.Model(&entity.PollOption{}).
		Where("id = ?", optionID).
		UpdateColumn("votes", gorm.Expr("votes + ?", 1)).
		Error
}
