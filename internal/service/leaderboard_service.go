package service

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/beams-api/internal/domain/entity"
	"github.com/yourusername/beams-api/internal/domain/repository"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// Верхняя граница размера страницы рейтинга: столько строк хранится в кеше окна
const maxLeaderboardLimit = 100

// LeaderboardRow — строка рейтинга, обогащенная данными пользователя
type LeaderboardRow struct {
	Rank           int    `json:"rank"`
	UserID         uint   `json:"user_id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture"`
	Points         int64  `json:"points"`
}

// LeaderboardResponse — ответ с рейтингом за недельное окно
type LeaderboardResponse struct {
	WeekStart time.Time        `json:"week_start"`
	WeekEnd   time.Time        `json:"week_end"`
	Rows      []LeaderboardRow `json:"rows"`
	Message   string           `json:"message,omitempty"`
}

// LeaderboardService материализует еженедельный рейтинг по журналу начислений.
// Окно недели: [понедельник 00:00 UTC, следующий понедельник 00:00 UTC).
type LeaderboardService struct {
	db              *gorm.DB
	pointsRepo      repository.PointsRepository
	leaderboardRepo repository.LeaderboardRepository
	userRepo        repository.UserRepository
	cacheRepo       repository.CacheRepository
	minEntries      int
	cacheTTL        time.Duration
}

// NewLeaderboardService создает новый сервис лидерборда и возвращает ошибку при проблемах
func NewLeaderboardService(
	db *gorm.DB,
	pointsRepo repository.PointsRepository,
	leaderboardRepo repository.LeaderboardRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
	minEntries int,
	cacheTTL time.Duration,
) (*LeaderboardService, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm DB is required for LeaderboardService")
	}
	if pointsRepo == nil {
		return nil, fmt.Errorf("PointsRepository is required for LeaderboardService")
	}
	if leaderboardRepo == nil {
		return nil, fmt.Errorf("LeaderboardRepository is required for LeaderboardService")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for LeaderboardService")
	}
	if minEntries <= 0 {
		minEntries = 3
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	// cacheRepo может быть nil: сервис работает и без кеша
	return &LeaderboardService{
		db:              db,
		pointsRepo:      pointsRepo,
		leaderboardRepo: leaderboardRepo,
		userRepo:        userRepo,
		cacheRepo:       cacheRepo,
		minEntries:      minEntries,
		cacheTTL:        cacheTTL,
	}, nil
}

// WeekWindow возвращает границы недельного окна [понедельник 00:00 UTC,
// следующий понедельник 00:00 UTC) для произвольного момента времени.
func WeekWindow(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	// time.Weekday: воскресенье = 0, понедельник = 1
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -daysSinceMonday)
	return monday, monday.AddDate(0, 0, 7)
}

// RefreshWindow пересчитывает снимок рейтинга для окна, содержащего момент now.
// Операция идемпотентна: снимок окна целиком заменяется в одной транзакции,
// повторный вызов с теми же данными дает тот же результат.
func (s *LeaderboardService) RefreshWindow(now time.Time) error {
	weekStart, weekEnd := WeekWindow(now)

	totals, err := s.pointsRepo.SumAllInWindow(weekStart, weekEnd)
	if err != nil {
		return fmt.Errorf("ошибка агрегации очков за окно: %w", err)
	}

	entries := rankWindowEntries(totals, weekStart, weekEnd)

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if tx.Error != nil {
		return tx.Error
	}

	if err := s.leaderboardRepo.ReplaceWindowTx(tx, weekStart, entries); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("ошибка коммита снимка лидерборда: %w", err)
	}

	s.invalidateCache(weekStart)

	log.Printf("[LeaderboardService] Снимок лидерборда обновлён: окно %s, участников %d",
		weekStart.Format("2006-01-02"), len(entries))
	return nil
}

// rankWindowEntries сортирует агрегаты окна и присваивает ранги.
// Порядок: очки по убыванию, затем кто раньше начал набирать очки в окне,
// затем ID для полной детерминированности.
func rankWindowEntries(totals []entity.WindowTotal, weekStart, weekEnd time.Time) []entity.LeaderboardEntry {
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Points != totals[j].Points {
			return totals[i].Points > totals[j].Points
		}
		if !totals[i].FirstEarnedAt.Equal(totals[j].FirstEarnedAt) {
			return totals[i].FirstEarnedAt.Before(totals[j].FirstEarnedAt)
		}
		return totals[i].UserID < totals[j].UserID
	})

	entries := make([]entity.LeaderboardEntry, len(totals))
	for i, t := range totals {
		entries[i] = entity.LeaderboardEntry{
			UserID:        t.UserID,
			Points:        t.Points,
			Rank:          i + 1,
			WeekStart:     weekStart,
			WeekEnd:       weekEnd,
			FirstEarnedAt: t.FirstEarnedAt,
		}
	}
	return entries
}

// GetLeaderboard возвращает рейтинг текущего окна. Если участников меньше
// минимума, возвращается пустой список с пояснением. Минимум проверяется
// по числу записей всего окна, а не запрошенной страницы: limit
// применяется усечением уже после проверки.
func (s *LeaderboardService) GetLeaderboard(now time.Time, limit int) (*LeaderboardResponse, error) {
	weekStart, weekEnd := WeekWindow(now)
	if limit <= 0 || limit > maxLeaderboardLimit {
		limit = 50
	}

	// Кеш ключуется только окном: хранится полная верхушка доски,
	// запрошенный limit применяется усечением
	cacheKey := fmt.Sprintf("leaderboard:%s", weekStart.Format("2006-01-02"))
	if s.cacheRepo != nil {
		var cached LeaderboardResponse
		if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil {
			return truncateLeaderboard(&cached, limit), nil
		}
	}

	total, err := s.leaderboardRepo.CountWindow(weekStart)
	if err != nil {
		return nil, err
	}

	response := &LeaderboardResponse{
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Rows:      []LeaderboardRow{},
	}

	if total < int64(s.minEntries) {
		response.Message = "Недостаточно участников для рейтинга на этой неделе"
		s.cacheResponse(cacheKey, response)
		return response, nil
	}

	entries, err := s.leaderboardRepo.GetWindow(weekStart, maxLeaderboardLimit)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		row := LeaderboardRow{
			Rank:   entry.Rank,
			UserID: entry.UserID,
			Points: entry.Points,
		}
		user, err := s.userRepo.GetByID(entry.UserID)
		if err == nil {
			row.Username = user.Username
			row.ProfilePicture = user.ProfilePicture
		}
		response.Rows = append(response.Rows, row)
	}

	s.cacheResponse(cacheKey, response)

	return truncateLeaderboard(response, limit), nil
}

func (s *LeaderboardService) cacheResponse(cacheKey string, response *LeaderboardResponse) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.SetJSON(cacheKey, response, s.cacheTTL); err != nil {
		log.Printf("[LeaderboardService] Ошибка записи кеша лидерборда: %v", err)
	}
}

// truncateLeaderboard усекает строки до запрошенного лимита, не трогая
// закешированный оригинал
func truncateLeaderboard(response *LeaderboardResponse, limit int) *LeaderboardResponse {
	if len(response.Rows) <= limit {
		return response
	}
	truncated := *response
	truncated.Rows = response.Rows[:limit]
	return &truncated
}

// GetUserRank возвращает позицию пользователя в текущем окне
func (s *LeaderboardService) GetUserRank(now time.Time, userID uint) (*entity.LeaderboardEntry, error) {
	weekStart, _ := WeekWindow(now)
	entry, err := s.leaderboardRepo.GetUserEntry(weekStart, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *LeaderboardService) invalidateCache(weekStart time.Time) {
	if s.cacheRepo == nil {
		return
	}
	key := fmt.Sprintf("leaderboard:%s", weekStart.Format("2006-01-02"))
	if err := s.cacheRepo.Delete(key); err != nil {
		log.Printf("[LeaderboardService] Ошибка сброса кеша %s: %v", key, err)
	}
}
