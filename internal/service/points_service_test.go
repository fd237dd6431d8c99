package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/beams-api/internal/domain/entity"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// testLevels — типовая конфигурация уровней: верхний открыт сверху
func testLevels() []entity.Level {
	return []entity.Level{
		{ID: 1, LevelNumber: 1, Name: "Newcomer", MinPoints: 0, MaxPoints: 99},
		{ID: 2, LevelNumber: 2, Name: "Explorer", MinPoints: 100, MaxPoints: 299},
		{ID: 3, LevelNumber: 3, Name: "Achiever", MinPoints: 300, MaxPoints: -1},
	}
}

func TestResolveLevel(t *testing.T) {
	tests := []struct {
		name        string
		totalPoints int64
		wantLevel   int
	}{
		{"ноль очков — первый уровень", 0, 1},
		{"верхняя граница первого уровня", 99, 1},
		{"нижняя граница второго уровня", 100, 2},
		{"внутри второго уровня", 250, 2},
		{"нижняя граница открытого уровня", 300, 3},
		{"далеко за пределами — открытый уровень", 1_000_000, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			levelRepo := new(MockLevelRepository)
			levelRepo.On("ListOrdered").Return(testLevels(), nil)

			svc := &PointsService{levelRepo: levelRepo}

			level, err := svc.ResolveLevel(tt.totalPoints)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, level.LevelNumber)
		})
	}
}

func TestResolveLevel_NoLevelsConfigured(t *testing.T) {
	levelRepo := new(MockLevelRepository)
	levelRepo.On("ListOrdered").Return([]entity.Level{}, nil)

	svc := &PointsService{levelRepo: levelRepo}

	_, err := svc.ResolveLevel(50)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResolveLevel_GapFallsBackToFirst(t *testing.T) {
	// Разрыв в конфигурации: очки не попадают ни в один диапазон
	levels := []entity.Level{
		{LevelNumber: 1, MinPoints: 100, MaxPoints: 199},
	}
	levelRepo := new(MockLevelRepository)
	levelRepo.On("ListOrdered").Return(levels, nil)

	svc := &PointsService{levelRepo: levelRepo}

	level, err := svc.ResolveLevel(5)
	require.NoError(t, err)
	assert.Equal(t, 1, level.LevelNumber)
}

func TestGetProgress_MidLevel(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", uint(7)).Return(&entity.User{ID: 7}, nil)

	pointsRepo := new(MockPointsRepository)
	pointsRepo.On("SumByUserID", uint(7)).Return(int64(150), nil)

	levelRepo := new(MockLevelRepository)
	levelRepo.On("ListOrdered").Return(testLevels(), nil)
	levelRepo.On("GetByNumber", 3).Return(&testLevels()[2], nil)

	svc := &PointsService{
		pointsRepo: pointsRepo,
		userRepo:   userRepo,
		levelRepo:  levelRepo,
	}

	progress, err := svc.GetProgress(7)
	require.NoError(t, err)

	assert.Equal(t, int64(150), progress.TotalPoints)
	assert.Equal(t, 2, progress.Level.LevelNumber)
	require.NotNil(t, progress.NextLevel)
	assert.Equal(t, 3, progress.NextLevel.LevelNumber)
	assert.Equal(t, int64(150), progress.PointsToNext)
	// 150 из диапазона [100, 300): пройдена четверть
	assert.InDelta(t, 0.25, progress.ProgressRatio, 0.001)
}

func TestGetProgress_TopLevel(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", uint(7)).Return(&entity.User{ID: 7}, nil)

	pointsRepo := new(MockPointsRepository)
	pointsRepo.On("SumByUserID", uint(7)).Return(int64(5000), nil)

	levelRepo := new(MockLevelRepository)
	levelRepo.On("ListOrdered").Return(testLevels(), nil)
	levelRepo.On("GetByNumber", 4).Return(nil, apperrors.ErrNotFound)

	svc := &PointsService{
		pointsRepo: pointsRepo,
		userRepo:   userRepo,
		levelRepo:  levelRepo,
	}

	progress, err := svc.GetProgress(7)
	require.NoError(t, err)

	assert.Equal(t, 3, progress.Level.LevelNumber)
	assert.Nil(t, progress.NextLevel)
	assert.Equal(t, float64(1), progress.ProgressRatio)
}

func TestGetTotal_UnknownUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", uint(99)).Return(nil, apperrors.ErrNotFound)

	svc := &PointsService{userRepo: userRepo}

	_, err := svc.GetTotal(99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetHistory_ClampsPagination(t *testing.T) {
	pointsRepo := new(MockPointsRepository)
	// page=0 нормализуется в 1, pageSize=1000 режется до 100
	pointsRepo.On("GetHistory", uint(7), 100, 0).Return([]entity.PointsLedgerEntry{}, int64(0), nil)

	svc := &PointsService{pointsRepo: pointsRepo}

	_, _, err := svc.GetHistory(7, 0, 1000)
	require.NoError(t, err)
	pointsRepo.AssertExpectations(t)
}
