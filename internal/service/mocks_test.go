package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/yourusername/beams-api/internal/domain/entity"
)

// ============================================================================
// Общие моки репозиториев для тестов сервисов
// ============================================================================

// MockUserRepository реализует repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*entity.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(userID uint, updates map[string]interface{}) error {
	args := m.Called(userID, updates)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(userID uint, newPassword string) error {
	args := m.Called(userID, newPassword)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementBeamsPoints(userID uint, delta int) error {
	args := m.Called(userID, delta)
	return args.Error(0)
}

func (m *MockUserRepository) MarkEmailVerified(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) SetReferralStatus(userID uint, status string) error {
	args := m.Called(userID, status)
	return args.Error(0)
}

func (m *MockUserRepository) List(limit, offset int) ([]entity.User, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

// MockPointsRepository реализует repository.PointsRepository
type MockPointsRepository struct {
	mock.Mock
}

func (m *MockPointsRepository) CreateTx(tx *gorm.DB, entry *entity.PointsLedgerEntry) error {
	args := m.Called(tx, entry)
	return args.Error(0)
}

func (m *MockPointsRepository) SumByUserID(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPointsRepository) SumByUserIDInWindow(userID uint, from, to time.Time) (int64, error) {
	args := m.Called(userID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPointsRepository) GetHistory(userID uint, limit, offset int) ([]entity.PointsLedgerEntry, int64, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.PointsLedgerEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockPointsRepository) SumAllInWindow(from, to time.Time) ([]entity.WindowTotal, error) {
	args := m.Called(from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.WindowTotal), args.Error(1)
}

func (m *MockPointsRepository) CountBySource(userID uint, source string) (int64, error) {
	args := m.Called(userID, source)
	return args.Get(0).(int64), args.Error(1)
}

// MockLevelRepository реализует repository.LevelRepository
type MockLevelRepository struct {
	mock.Mock
}

func (m *MockLevelRepository) ListOrdered() ([]entity.Level, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Level), args.Error(1)
}

func (m *MockLevelRepository) GetByNumber(levelNumber int) (*entity.Level, error) {
	args := m.Called(levelNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Level), args.Error(1)
}

// MockLeaderboardRepository реализует repository.LeaderboardRepository
type MockLeaderboardRepository struct {
	mock.Mock
}

func (m *MockLeaderboardRepository) ReplaceWindowTx(tx *gorm.DB, weekStart time.Time, entries []entity.LeaderboardEntry) error {
	args := m.Called(tx, weekStart, entries)
	return args.Error(0)
}

func (m *MockLeaderboardRepository) GetWindow(weekStart time.Time, limit int) ([]entity.LeaderboardEntry, error) {
	args := m.Called(weekStart, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.LeaderboardEntry), args.Error(1)
}

func (m *MockLeaderboardRepository) CountWindow(weekStart time.Time) (int64, error) {
	args := m.Called(weekStart)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeaderboardRepository) GetUserEntry(weekStart time.Time, userID uint) (*entity.LeaderboardEntry, error) {
	args := m.Called(weekStart, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LeaderboardEntry), args.Error(1)
}

// MockReferralRepository реализует repository.ReferralRepository
type MockReferralRepository struct {
	mock.Mock
}

func (m *MockReferralRepository) Create(referral *entity.Referral) error {
	args := m.Called(referral)
	return args.Error(0)
}

func (m *MockReferralRepository) GetByUserID(userID uint) (*entity.Referral, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Referral), args.Error(1)
}

func (m *MockReferralRepository) GetByCode(code string) (*entity.Referral, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Referral), args.Error(1)
}

func (m *MockReferralRepository) CountVerifiedReferrals(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReferralRepository) ListReferredUsers(userID uint) ([]entity.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

// MockShortLinkRepository реализует repository.ShortLinkRepository
type MockShortLinkRepository struct {
	mock.Mock
}

func (m *MockShortLinkRepository) Create(link *entity.ShortLink) error {
	args := m.Called(link)
	return args.Error(0)
}

func (m *MockShortLinkRepository) GetByShortPath(shortPath string) (*entity.ShortLink, error) {
	args := m.Called(shortPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ShortLink), args.Error(1)
}

func (m *MockShortLinkRepository) IncrementClicks(shortPath string) error {
	args := m.Called(shortPath)
	return args.Error(0)
}

func (m *MockShortLinkRepository) List(limit, offset int) ([]entity.ShortLink, int64, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.ShortLink), args.Get(1).(int64), args.Error(2)
}

// MockBeamsTodayRepository реализует repository.BeamsTodayRepository
type MockBeamsTodayRepository struct {
	mock.Mock
}

func (m *MockBeamsTodayRepository) Create(item *entity.BeamsToday) error {
	args := m.Called(item)
	return args.Error(0)
}

func (m *MockBeamsTodayRepository) GetByID(id uint) (*entity.BeamsToday, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.BeamsToday), args.Error(1)
}

func (m *MockBeamsTodayRepository) GetByDate(date time.Time) (*entity.BeamsToday, error) {
	args := m.Called(date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.BeamsToday), args.Error(1)
}

func (m *MockBeamsTodayRepository) ListByDateRange(from, to time.Time) ([]entity.BeamsToday, error) {
	args := m.Called(from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.BeamsToday), args.Error(1)
}

func (m *MockBeamsTodayRepository) List(limit, offset int) ([]entity.BeamsToday, int64, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.BeamsToday), args.Get(1).(int64), args.Error(2)
}

func (m *MockBeamsTodayRepository) Update(item *entity.BeamsToday) error {
	args := m.Called(item)
	return args.Error(0)
}

func (m *MockBeamsTodayRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockPollRepository реализует repository.PollRepository
type MockPollRepository struct {
	mock.Mock
}

func (m *MockPollRepository) Create(poll *entity.Poll) error {
	args := m.Called(poll)
	return args.Error(0)
}

func (m *MockPollRepository) GetByBeamsTodayID(beamsTodayID uint) (*entity.Poll, error) {
	args := m.Called(beamsTodayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Poll), args.Error(1)
}

func (m *MockPollRepository) GetOptionByID(optionID uint) (*entity.PollOption, error) {
	args := m.Called(optionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PollOption), args.Error(1)
}

func (m *MockPollRepository) CreateResponse(response *entity.PollResponse) error {
	args := m.Called(response)
	return args.Error(0)
}

func (m *MockPollRepository) GetResponse(pollID, userID uint) (*entity.PollResponse, error) {
	args := m.Called(pollID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PollResponse), args.Error(1)
}

func (m *MockPollRepository) IncrementVotes(optionID uint) error {
	args := m.Called(optionID)
	return args.Error(0)
}

// MockTheatreRepository реализует repository.TheatreRepository
type MockTheatreRepository struct {
	mock.Mock
}

func (m *MockTheatreRepository) Create(video *entity.TheatreVideo) error {
	args := m.Called(video)
	return args.Error(0)
}

func (m *MockTheatreRepository) GetByID(id uint) (*entity.TheatreVideo, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TheatreVideo), args.Error(1)
}

func (m *MockTheatreRepository) List(genre, series string, limit, offset int) ([]entity.TheatreVideo, int64, error) {
	args := m.Called(genre, series, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.TheatreVideo), args.Get(1).(int64), args.Error(2)
}

func (m *MockTheatreRepository) ListSeries() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTheatreRepository) Update(video *entity.TheatreVideo) error {
	args := m.Called(video)
	return args.Error(0)
}

func (m *MockTheatreRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockWordGameRepository реализует repository.WordGameRepository
type MockWordGameRepository struct {
	mock.Mock
}

func (m *MockWordGameRepository) CreatePuzzle(puzzle *entity.WordPuzzle) error {
	args := m.Called(puzzle)
	return args.Error(0)
}

func (m *MockWordGameRepository) GetPuzzleByDate(date time.Time) (*entity.WordPuzzle, error) {
	args := m.Called(date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.WordPuzzle), args.Error(1)
}

func (m *MockWordGameRepository) GetPuzzleByID(id uint) (*entity.WordPuzzle, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.WordPuzzle), args.Error(1)
}

func (m *MockWordGameRepository) GetAttempt(puzzleID, userID uint) (*entity.WordAttempt, error) {
	args := m.Called(puzzleID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.WordAttempt), args.Error(1)
}

func (m *MockWordGameRepository) CreateAttempt(attempt *entity.WordAttempt) error {
	args := m.Called(attempt)
	return args.Error(0)
}

func (m *MockWordGameRepository) UpdateAttempt(attempt *entity.WordAttempt) error {
	args := m.Called(attempt)
	return args.Error(0)
}

// MockCompletionRepository реализует repository.CompletionRepository
type MockCompletionRepository struct {
	mock.Mock
}

func (m *MockCompletionRepository) CreateCompletion(completion *entity.ContentCompletion) error {
	args := m.Called(completion)
	return args.Error(0)
}

func (m *MockCompletionRepository) GetCompletion(userID uint, contentKind string, contentID uint) (*entity.ContentCompletion, error) {
	args := m.Called(userID, contentKind, contentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ContentCompletion), args.Error(1)
}

func (m *MockCompletionRepository) CountCompletions(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCompletionRepository) AddFavorite(favorite *entity.Favorite) error {
	args := m.Called(favorite)
	return args.Error(0)
}

func (m *MockCompletionRepository) RemoveFavorite(userID uint, contentKind string, contentID uint) error {
	args := m.Called(userID, contentKind, contentID)
	return args.Error(0)
}

func (m *MockCompletionRepository) ListFavorites(userID uint, contentKind string) ([]entity.Favorite, error) {
	args := m.Called(userID, contentKind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Favorite), args.Error(1)
}

// MockEmailService реализует EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendVerificationCode(ctx context.Context, toEmail, code, idempotencyKey string) error {
	args := m.Called(ctx, toEmail, code, idempotencyKey)
	return args.Error(0)
}

func (m *MockEmailService) SendTwoFactorCode(ctx context.Context, toEmail, code, idempotencyKey string) error {
	args := m.Called(ctx, toEmail, code, idempotencyKey)
	return args.Error(0)
}

func (m *MockEmailService) SendReferralReward(ctx context.Context, to, referredUsername string, points int) error {
	args := m.Called(ctx, to, referredUsername, points)
	return args.Error(0)
}

// MockCacheRepository реализует repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepository) Increment(key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepository) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) ExpireAt(key string, expiration time.Time) error {
	args := m.Called(key, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(key, value, expiration)
	return args.Bool(0), args.Error(1)
}

// MockPointsRecorder реализует pointsRecorder
type MockPointsRecorder struct {
	mock.Mock
}

func (m *MockPointsRecorder) RecordPoints(userID uint, points int, source, description string) error {
	args := m.Called(userID, points, source, description)
	return args.Error(0)
}
