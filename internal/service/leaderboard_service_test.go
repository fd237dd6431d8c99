package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/beams-api/internal/domain/entity"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

func TestWeekWindow(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
	}{
		{
			name:      "середина недели",
			now:       time.Date(2025, 9, 17, 14, 30, 0, 0, time.UTC), // среда
			wantStart: time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "ровно понедельник 00:00",
			now:       time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "воскресенье поздно вечером — еще та же неделя",
			now:       time.Date(2025, 9, 21, 23, 59, 59, 0, time.UTC),
			wantStart: time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "окно через границу месяца",
			now:       time.Date(2025, 10, 1, 10, 0, 0, 0, time.UTC), // среда
			wantStart: time.Date(2025, 9, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "не-UTC время приводится к UTC",
			now:       time.Date(2025, 9, 15, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*3600)), // 14 сент 22:00 UTC, воскресенье
			wantStart: time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekWindow(tt.now)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantStart.AddDate(0, 0, 7), end)
			assert.Equal(t, time.Monday, start.Weekday())
		})
	}
}

func TestGetLeaderboard_InsufficientEntries(t *testing.T) {
	now := time.Date(2025, 9, 17, 12, 0, 0, 0, time.UTC)
	weekStart, _ := WeekWindow(now)

	leaderboardRepo := new(MockLeaderboardRepository)
	leaderboardRepo.On("CountWindow", weekStart).Return(int64(2), nil)

	svc := &LeaderboardService{
		leaderboardRepo: leaderboardRepo,
		minEntries:      3,
	}

	resp, err := svc.GetLeaderboard(now, 50)
	require.NoError(t, err)

	assert.Empty(t, resp.Rows)
	assert.NotEmpty(t, resp.Message)
	assert.Equal(t, weekStart, resp.WeekStart)
	leaderboardRepo.AssertNotCalled(t, "GetWindow", mock.Anything, mock.Anything)
}

func TestGetLeaderboard_SmallLimitDoesNotTriggerInsufficiency(t *testing.T) {
	// Минимум участников проверяется по всему окну: запрос с limit=2
	// при пяти участниках возвращает две строки, а не пустой список
	now := time.Date(2025, 9, 17, 12, 0, 0, 0, time.UTC)
	weekStart, _ := WeekWindow(now)

	entries := make([]entity.LeaderboardEntry, 5)
	for i := range entries {
		entries[i] = entity.LeaderboardEntry{UserID: uint(i + 1), Points: int64(50 - i*10), Rank: i + 1}
	}

	leaderboardRepo := new(MockLeaderboardRepository)
	leaderboardRepo.On("CountWindow", weekStart).Return(int64(5), nil)
	leaderboardRepo.On("GetWindow", weekStart, maxLeaderboardLimit).Return(entries, nil)

	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", mock.Anything).Return(nil, apperrors.ErrNotFound)

	svc := &LeaderboardService{
		leaderboardRepo: leaderboardRepo,
		userRepo:        userRepo,
		minEntries:      3,
	}

	resp, err := svc.GetLeaderboard(now, 2)
	require.NoError(t, err)

	require.Len(t, resp.Rows, 2)
	assert.Empty(t, resp.Message)
	assert.Equal(t, 1, resp.Rows[0].Rank)
	assert.Equal(t, 2, resp.Rows[1].Rank)
}

func TestGetLeaderboard_RowsEnrichedWithProfiles(t *testing.T) {
	now := time.Date(2025, 9, 17, 12, 0, 0, 0, time.UTC)
	weekStart, _ := WeekWindow(now)

	leaderboardRepo := new(MockLeaderboardRepository)
	leaderboardRepo.On("CountWindow", weekStart).Return(int64(3), nil)
	leaderboardRepo.On("GetWindow", weekStart, maxLeaderboardLimit).Return([]entity.LeaderboardEntry{
		{UserID: 1, Points: 40, Rank: 1},
		{UserID: 2, Points: 25, Rank: 2},
		{UserID: 3, Points: 10, Rank: 3},
	}, nil)

	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", uint(1)).Return(&entity.User{ID: 1, Username: "alice", ProfilePicture: "a.png"}, nil)
	userRepo.On("GetByID", uint(2)).Return(&entity.User{ID: 2, Username: "bob"}, nil)
	// Удаленный пользователь: строка остается, профиль пустой
	userRepo.On("GetByID", uint(3)).Return(nil, apperrors.ErrNotFound)

	svc := &LeaderboardService{
		leaderboardRepo: leaderboardRepo,
		userRepo:        userRepo,
		minEntries:      3,
	}

	resp, err := svc.GetLeaderboard(now, 50)
	require.NoError(t, err)
	require.Len(t, resp.Rows, 3)

	assert.Equal(t, "alice", resp.Rows[0].Username)
	assert.Equal(t, "a.png", resp.Rows[0].ProfilePicture)
	assert.Equal(t, 1, resp.Rows[0].Rank)
	assert.Equal(t, int64(40), resp.Rows[0].Points)
	assert.Equal(t, "bob", resp.Rows[1].Username)
	assert.Equal(t, "", resp.Rows[2].Username)
	assert.Empty(t, resp.Message)
}

func TestGetLeaderboard_LimitNormalized(t *testing.T) {
	now := time.Date(2025, 9, 17, 12, 0, 0, 0, time.UTC)
	weekStart, _ := WeekWindow(now)

	entries := make([]entity.LeaderboardEntry, 60)
	for i := range entries {
		entries[i] = entity.LeaderboardEntry{UserID: uint(i + 1), Points: int64(100 - i), Rank: i + 1}
	}

	leaderboardRepo := new(MockLeaderboardRepository)
	leaderboardRepo.On("CountWindow", weekStart).Return(int64(60), nil)
	leaderboardRepo.On("GetWindow", weekStart, maxLeaderboardLimit).Return(entries, nil)

	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", mock.Anything).Return(nil, apperrors.ErrNotFound)

	svc := &LeaderboardService{
		leaderboardRepo: leaderboardRepo,
		userRepo:        userRepo,
		minEntries:      3,
	}

	// limit=0 и limit=500 превращаются в 50
	resp, err := svc.GetLeaderboard(now, 0)
	require.NoError(t, err)
	assert.Len(t, resp.Rows, 50)

	resp, err = svc.GetLeaderboard(now, 500)
	require.NoError(t, err)
	assert.Len(t, resp.Rows, 50)
}

func TestGetLeaderboard_CachedBoardTruncatedPerRequest(t *testing.T) {
	// Кеш хранит полную доску окна под одним ключом;
	// запрошенный limit применяется усечением при чтении
	now := time.Date(2025, 9, 17, 12, 0, 0, 0, time.UTC)

	cached := LeaderboardResponse{
		Rows: []LeaderboardRow{
			{Rank: 1, UserID: 1, Points: 50},
			{Rank: 2, UserID: 2, Points: 40},
			{Rank: 3, UserID: 3, Points: 30},
			{Rank: 4, UserID: 4, Points: 20},
		},
	}

	cacheRepo := new(MockCacheRepository)
	cacheRepo.On("GetJSON", "leaderboard:2025-09-15", mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(1).(*LeaderboardResponse) = cached
		}).
		Return(nil)

	leaderboardRepo := new(MockLeaderboardRepository)

	svc := &LeaderboardService{
		leaderboardRepo: leaderboardRepo,
		cacheRepo:       cacheRepo,
		minEntries:      3,
	}

	resp, err := svc.GetLeaderboard(now, 2)
	require.NoError(t, err)

	require.Len(t, resp.Rows, 2)
	assert.Equal(t, uint(1), resp.Rows[0].UserID)
	leaderboardRepo.AssertNotCalled(t, "CountWindow", mock.Anything)
	leaderboardRepo.AssertNotCalled(t, "GetWindow", mock.Anything, mock.Anything)
}

func TestInvalidateCache_DropsWindowKey(t *testing.T) {
	weekStart := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)

	cacheRepo := new(MockCacheRepository)
	cacheRepo.On("Delete", "leaderboard:2025-09-15").Return(nil)

	svc := &LeaderboardService{cacheRepo: cacheRepo}
	svc.invalidateCache(weekStart)

	cacheRepo.AssertExpectations(t)
}

func TestRankWindowEntries_TieBreakOrdering(t *testing.T) {
	weekStart := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	weekEnd := weekStart.AddDate(0, 0, 7)

	early := time.Date(2025, 9, 15, 8, 0, 0, 0, time.UTC)
	late := time.Date(2025, 9, 16, 8, 0, 0, 0, time.UTC)

	totals := []entity.WindowTotal{
		{UserID: 4, Points: 30, FirstEarnedAt: late},
		{UserID: 9, Points: 50, FirstEarnedAt: late},
		{UserID: 2, Points: 50, FirstEarnedAt: early},
		{UserID: 7, Points: 30, FirstEarnedAt: late},
	}

	entries := rankWindowEntries(totals, weekStart, weekEnd)
	require.Len(t, entries, 4)

	// Очки по убыванию; при равенстве — кто раньше начал; затем меньший ID
	wantOrder := []uint{2, 9, 4, 7}
	for i, want := range wantOrder {
		assert.Equal(t, want, entries[i].UserID, "позиция %d", i+1)
		assert.Equal(t, i+1, entries[i].Rank)
		assert.Equal(t, weekStart, entries[i].WeekStart)
		assert.Equal(t, weekEnd, entries[i].WeekEnd)
	}
}

func TestGetUserRank(t *testing.T) {
	now := time.Date(2025, 9, 17, 12, 0, 0, 0, time.UTC)
	weekStart, _ := WeekWindow(now)

	leaderboardRepo := new(MockLeaderboardRepository)
	leaderboardRepo.On("GetUserEntry", weekStart, uint(5)).Return(&entity.LeaderboardEntry{UserID: 5, Rank: 2, Points: 30}, nil)
	leaderboardRepo.On("GetUserEntry", weekStart, uint(6)).Return(nil, apperrors.ErrNotFound)

	svc := &LeaderboardService{leaderboardRepo: leaderboardRepo}

	entry, err := svc.GetUserRank(now, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, entry.Rank)

	_, err = svc.GetUserRank(now, 6)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
