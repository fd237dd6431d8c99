package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yourusername/beams-api/internal/domain/entity"
	"github.com/yourusername/beams-api/internal/domain/repository"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// Виды контента для прохождений и закладок
const (
	ContentKindBeamsToday = "beams_today"
	ContentKindVideo      = "video"
)

// WordGuessResult — итог попытки в игре "связь слов"
type WordGuessResult struct {
	Correct   bool `json:"correct"`
	Tries     int  `json:"tries"`
	PointsWon int  `json:"points_won"`
	Solved    bool `json:"solved"`
}

// ContentService управляет контентом Beams Today, каталогом Theatre,
// опросами и игрой "связь слов". Все начисления за контент однократны:
// однократность гарантируют уникальные индексы прохождений и ответов.
type ContentService struct {
	beamsTodayRepo repository.BeamsTodayRepository
	pollRepo       repository.PollRepository
	theatreRepo    repository.TheatreRepository
	wordGameRepo   repository.WordGameRepository
	completionRepo repository.CompletionRepository
	pointsService  *PointsService
	achievements   *AchievementService
}

// NewContentService создает новый сервис контента и возвращает ошибку при проблемах
func NewContentService(
	beamsTodayRepo repository.BeamsTodayRepository,
	pollRepo repository.PollRepository,
	theatreRepo repository.TheatreRepository,
	wordGameRepo repository.WordGameRepository,
	completionRepo repository.CompletionRepository,
	pointsService *PointsService,
	achievements *AchievementService,
) (*ContentService, error) {
	if beamsTodayRepo == nil {
		return nil, fmt.Errorf("BeamsTodayRepository is required for ContentService")
	}
	if pollRepo == nil {
		return nil, fmt.Errorf("PollRepository is required for ContentService")
	}
	if theatreRepo == nil {
		return nil, fmt.Errorf("TheatreRepository is required for ContentService")
	}
	if wordGameRepo == nil {
		return nil, fmt.Errorf("WordGameRepository is required for ContentService")
	}
	if completionRepo == nil {
		return nil, fmt.Errorf("CompletionRepository is required for ContentService")
	}
	if pointsService == nil {
		return nil, fmt.Errorf("PointsService is required for ContentService")
	}
	// achievements может быть nil: выдача значков опциональна
	return &ContentService{
		beamsTodayRepo: beamsTodayRepo,
		pollRepo:       pollRepo,
		theatreRepo:    theatreRepo,
		wordGameRepo:   wordGameRepo,
		completionRepo: completionRepo,
		pointsService:  pointsService,
		achievements:   achievements,
	}, nil
}

// GetToday возвращает тему за указанную дату
func (s *ContentService) GetToday(date time.Time) (*entity.BeamsToday, error) {
	return s.beamsTodayRepo.GetByDate(date)
}

// GetByID возвращает тему дня по ID
func (s *ContentService) GetByID(id uint) (*entity.BeamsToday, error) {
	return s.beamsTodayRepo.GetByID(id)
}

// ListByDateRange возвращает темы за интервал дат
func (s *ContentService) ListByDateRange(from, to time.Time) ([]entity.BeamsToday, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: invalid date range", apperrors.ErrValidation)
	}
	return s.beamsTodayRepo.ListByDateRange(from, to)
}

// ListToday возвращает темы дня с пагинацией
func (s *ContentService) ListToday(page, pageSize int) ([]entity.BeamsToday, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	} else if pageSize > 100 {
		pageSize = 100
	}
	return s.beamsTodayRepo.List(pageSize, (page-1)*pageSize)
}

// CompleteBeamsToday фиксирует просмотр темы дня и начисляет Beams.
// Повторное прохождение не начисляет очков.
func (s *ContentService) CompleteBeamsToday(userID, beamsTodayID uint) (int, error) {
	item, err := s.beamsTodayRepo.GetByID(beamsTodayID)
	if err != nil {
		return 0, err
	}

	completion := &entity.ContentCompletion{
		UserID:      userID,
		ContentKind: ContentKindBeamsToday,
		ContentID:   beamsTodayID,
		CompletedAt: time.Now(),
	}
	if err := s.completionRepo.CreateCompletion(completion); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return 0, nil // уже пройдено, без начисления
		}
		return 0, err
	}

	description := fmt.Sprintf("Beams Today: %s", item.Title)
	if err := s.pointsService.RecordPoints(userID, item.CompletionPts, entity.PointsSourceBeamsToday, description); err != nil {
		return 0, err
	}

	s.checkAchievements(userID)
	return item.CompletionPts, nil
}

// GetPoll возвращает опрос темы дня вместе с вариантами
func (s *ContentService) GetPoll(beamsTodayID uint) (*entity.Poll, error) {
	return s.pollRepo.GetByBeamsTodayID(beamsTodayID)
}

// AnswerPoll сохраняет ответ пользователя, увеличивает счетчик голосов
// и начисляет Beams. Один ответ на опрос на пользователя.
func (s *ContentService) AnswerPoll(userID, beamsTodayID, optionID uint) (int, error) {
	poll, err := s.pollRepo.GetByBeamsTodayID(beamsTodayID)
	if err != nil {
		return 0, err
	}

	option, err := s.pollRepo.GetOptionByID(optionID)
	if err != nil {
		return 0, err
	}
	if option.PollID != poll.ID {
		return 0, fmt.Errorf("%w: option does not belong to this poll", apperrors.ErrValidation)
	}

	response := &entity.PollResponse{
		PollID:   poll.ID,
		UserID:   userID,
		OptionID: optionID,
	}
	if err := s.pollRepo.CreateResponse(response); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return 0, fmt.Errorf("%w: poll already answered", apperrors.ErrConflict)
		}
		return 0, err
	}

	if err := s.pollRepo.IncrementVotes(optionID); err != nil {
		log.Printf("[ContentService] Ошибка инкремента голосов варианта %d: %v", optionID, err)
	}

	description := fmt.Sprintf("Опрос: %s", poll.Question)
	if err := s.pointsService.RecordPoints(userID, poll.RewardPts, entity.PointsSourcePoll, description); err != nil {
		return 0, err
	}

	s.checkAchievements(userID)
	return poll.RewardPts, nil
}

// ListTheatre возвращает каталог видео с фильтрами
func (s *ContentService) ListTheatre(genre, series string, page, pageSize int) ([]entity.TheatreVideo, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	} else if pageSize > 100 {
		pageSize = 100
	}
	return s.theatreRepo.List(genre, series, pageSize, (page-1)*pageSize)
}

// GetTheatreVideo возвращает видео каталога по ID
func (s *ContentService) GetTheatreVideo(id uint) (*entity.TheatreVideo, error) {
	return s.theatreRepo.GetByID(id)
}

// ListTheatreSeries возвращает имена сериалов каталога
func (s *ContentService) ListTheatreSeries() ([]string, error) {
	return s.theatreRepo.ListSeries()
}

// CompleteTheatreVideo фиксирует просмотр видео и начисляет Beams однократно
func (s *ContentService) CompleteTheatreVideo(userID, videoID uint) (int, error) {
	video, err := s.theatreRepo.GetByID(videoID)
	if err != nil {
		return 0, err
	}

	completion := &entity.ContentCompletion{
		UserID:      userID,
		ContentKind: ContentKindVideo,
		ContentID:   videoID,
		CompletedAt: time.Now(),
	}
	if err := s.completionRepo.CreateCompletion(completion); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return 0, nil
		}
		return 0, err
	}

	description := fmt.Sprintf("Theatre: %s", video.Title)
	if err := s.pointsService.RecordPoints(userID, video.CompletionPts, entity.PointsSourceVideo, description); err != nil {
		return 0, err
	}

	s.checkAchievements(userID)
	return video.CompletionPts, nil
}

// wordGuessPoints считает награду: каждая неудачная попытка снимает
// 2 Beams от максимума, но награда не опускается ниже 1.
func wordGuessPoints(maxPts, tries int) int {
	points := maxPts - (tries-1)*2
	if points < 1 {
		points = 1
	}
	return points
}

// GetDailyPuzzle возвращает головоломку за дату (ответ наружу не отдается)
func (s *ContentService) GetDailyPuzzle(date time.Time) (*entity.WordPuzzle, error) {
	return s.wordGameRepo.GetPuzzleByDate(date)
}

// SubmitWordGuess принимает догадку. Награда убывает с каждой
// неудачной попыткой, но не опускается ниже 1 Beam.
func (s *ContentService) SubmitWordGuess(userID, puzzleID uint, guess string) (*WordGuessResult, error) {
	guess = strings.TrimSpace(guess)
	if guess == "" {
		return nil, fmt.Errorf("%w: guess is required", apperrors.ErrValidation)
	}

	puzzle, err := s.wordGameRepo.GetPuzzleByID(puzzleID)
	if err != nil {
		return nil, err
	}

	attempt, err := s.wordGameRepo.GetAttempt(puzzleID, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		attempt = &entity.WordAttempt{
			PuzzleID: puzzleID,
			UserID:   userID,
		}
		if err := s.wordGameRepo.CreateAttempt(attempt); err != nil && !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
	}

	if attempt.SolvedAt != nil {
		return &WordGuessResult{
			Correct:   false,
			Tries:     attempt.Tries,
			PointsWon: attempt.PointsWon,
			Solved:    true,
		}, nil
	}

	attempt.Tries++
	correct := strings.EqualFold(guess, strings.TrimSpace(puzzle.Answer))

	result := &WordGuessResult{
		Correct: correct,
		Tries:   attempt.Tries,
	}

	if correct {
		now := time.Now()
		attempt.SolvedAt = &now

		points := wordGuessPoints(puzzle.MaxPts, attempt.Tries)
		attempt.PointsWon = points
		result.PointsWon = points
		result.Solved = true
	}

	if err := s.wordGameRepo.UpdateAttempt(attempt); err != nil {
		return nil, err
	}

	if correct && attempt.PointsWon > 0 {
		description := fmt.Sprintf("Связь слов за %s", puzzle.Date.Format("2006-01-02"))
		if err := s.pointsService.RecordPoints(userID, attempt.PointsWon, entity.PointsSourceWordGame, description); err != nil {
			return nil, err
		}
		s.checkAchievements(userID)
	}

	return result, nil
}

// AddFavorite добавляет контент в закладки
func (s *ContentService) AddFavorite(userID uint, contentKind string, contentID uint) error {
	if err := s.validateContentRef(contentKind, contentID); err != nil {
		return err
	}

	favorite := &entity.Favorite{
		UserID:      userID,
		ContentKind: contentKind,
		ContentID:   contentID,
	}
	err := s.completionRepo.AddFavorite(favorite)
	if errors.Is(err, apperrors.ErrConflict) {
		return nil // уже в закладках
	}
	return err
}

// RemoveFavorite убирает контент из закладок
func (s *ContentService) RemoveFavorite(userID uint, contentKind string, contentID uint) error {
	return s.completionRepo.RemoveFavorite(userID, contentKind, contentID)
}

// ListFavorites возвращает закладки пользователя
func (s *ContentService) ListFavorites(userID uint, contentKind string) ([]entity.Favorite, error) {
	return s.completionRepo.ListFavorites(userID, contentKind)
}

func (s *ContentService) validateContentRef(contentKind string, contentID uint) error {
	switch contentKind {
	case ContentKindBeamsToday:
		_, err := s.beamsTodayRepo.GetByID(contentID)
		return err
	case ContentKindVideo:
		_, err := s.theatreRepo.GetByID(contentID)
		return err
	default:
		return fmt.Errorf("%w: unknown content kind %q", apperrors.ErrValidation, contentKind)
	}
}

func (s *ContentService) checkAchievements(userID uint) {
	if s.achievements == nil {
		return
	}
	if err := s.achievements.AwardEligible(userID); err != nil {
		log.Printf("[ContentService] Ошибка проверки достижений пользователя %d: %v", userID, err)
	}
}

// Административные операции над контентом

// CreateBeamsToday публикует новую тему дня
func (s *ContentService) CreateBeamsToday(item *entity.BeamsToday) error {
	if item == nil || strings.TrimSpace(item.Title) == "" {
		return fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if item.Date.IsZero() {
		return fmt.Errorf("%w: date is required", apperrors.ErrValidation)
	}
	if item.CompletionPts <= 0 {
		return fmt.Errorf("%w: completion_pts must be positive", apperrors.ErrValidation)
	}
	return s.beamsTodayRepo.Create(item)
}

// UpdateBeamsToday изменяет существующую тему дня
func (s *ContentService) UpdateBeamsToday(item *entity.BeamsToday) error {
	if item == nil || item.ID == 0 {
		return fmt.Errorf("%w: item id is required", apperrors.ErrValidation)
	}
	if _, err := s.beamsTodayRepo.GetByID(item.ID); err != nil {
		return err
	}
	return s.beamsTodayRepo.Update(item)
}

// DeleteBeamsToday удаляет тему дня
func (s *ContentService) DeleteBeamsToday(id uint) error {
	if _, err := s.beamsTodayRepo.GetByID(id); err != nil {
		return err
	}
	return s.beamsTodayRepo.Delete(id)
}

// CreatePoll прикрепляет опрос к теме дня. Не меньше двух вариантов;
// второй опрос на ту же тему отклоняется уникальным индексом.
func (s *ContentService) CreatePoll(poll *entity.Poll) error {
	if poll == nil || strings.TrimSpace(poll.Question) == "" {
		return fmt.Errorf("%w: question is required", apperrors.ErrValidation)
	}
	if len(poll.Options) < 2 {
		return fmt.Errorf("%w: poll needs at least 2 options", apperrors.ErrValidation)
	}
	if _, err := s.beamsTodayRepo.GetByID(poll.BeamsTodayID); err != nil {
		return err
	}
	return s.pollRepo.Create(poll)
}

// CreateTheatreVideo добавляет видео в каталог
func (s *ContentService) CreateTheatreVideo(video *entity.TheatreVideo) error {
	if video == nil || strings.TrimSpace(video.Title) == "" {
		return fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(video.VideoURL) == "" {
		return fmt.Errorf("%w: video_url is required", apperrors.ErrValidation)
	}
	return s.theatreRepo.Create(video)
}

// UpdateTheatreVideo изменяет видео каталога
func (s *ContentService) UpdateTheatreVideo(video *entity.TheatreVideo) error {
	if video == nil || video.ID == 0 {
		return fmt.Errorf("%w: video id is required", apperrors.ErrValidation)
	}
	if _, err := s.theatreRepo.GetByID(video.ID); err != nil {
		return err
	}
	return s.theatreRepo.Update(video)
}

// DeleteTheatreVideo удаляет видео из каталога
func (s *ContentService) DeleteTheatreVideo(id uint) error {
	if _, err := s.theatreRepo.GetByID(id); err != nil {
		return err
	}
	return s.theatreRepo.Delete(id)
}

// CreateWordPuzzle публикует головоломку дня
func (s *ContentService) CreateWordPuzzle(puzzle *entity.WordPuzzle) error {
	if puzzle == nil || puzzle.Date.IsZero() {
		return fmt.Errorf("%w: date is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(puzzle.Words) == "" || strings.TrimSpace(puzzle.Answer) == "" {
		return fmt.Errorf("%w: words and answer are required", apperrors.ErrValidation)
	}
	if puzzle.MaxPts <= 0 {
		return fmt.Errorf("%w: max_pts must be positive", apperrors.ErrValidation)
	}
	return s.wordGameRepo.CreatePuzzle(puzzle)
}
