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

func TestWordGuessPoints(t *testing.T) {
	tests := []struct {
		name   string
		maxPts int
		tries  int
		want   int
	}{
		{"первая попытка — полная награда", 10, 1, 10},
		{"вторая попытка", 10, 2, 8},
		{"третья попытка", 10, 3, 6},
		{"награда не опускается ниже 1", 10, 20, 1},
		{"маленький максимум быстро доходит до пола", 3, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wordGuessPoints(tt.maxPts, tt.tries))
		})
	}
}

func TestSubmitWordGuess_WrongGuessIncrementsTries(t *testing.T) {
	puzzle := &entity.WordPuzzle{ID: 1, Answer: "bridge", MaxPts: 10, Date: time.Date(2025, 9, 17, 0, 0, 0, 0, time.UTC)}

	wordGameRepo := new(MockWordGameRepository)
	wordGameRepo.On("GetPuzzleByID", uint(1)).Return(puzzle, nil)
	wordGameRepo.On("GetAttempt", uint(1), uint(7)).Return(&entity.WordAttempt{PuzzleID: 1, UserID: 7, Tries: 2}, nil)
	wordGameRepo.On("UpdateAttempt", mock.MatchedBy(func(a *entity.WordAttempt) bool {
		return a.Tries == 3 && a.SolvedAt == nil
	})).Return(nil)

	svc := &ContentService{wordGameRepo: wordGameRepo}

	result, err := svc.SubmitWordGuess(7, 1, "tunnel")
	require.NoError(t, err)

	assert.False(t, result.Correct)
	assert.False(t, result.Solved)
	assert.Equal(t, 3, result.Tries)
	assert.Equal(t, 0, result.PointsWon)
	wordGameRepo.AssertExpectations(t)
}

func TestSubmitWordGuess_AlreadySolved(t *testing.T) {
	solvedAt := time.Now()
	puzzle := &entity.WordPuzzle{ID: 1, Answer: "bridge", MaxPts: 10}

	wordGameRepo := new(MockWordGameRepository)
	wordGameRepo.On("GetPuzzleByID", uint(1)).Return(puzzle, nil)
	wordGameRepo.On("GetAttempt", uint(1), uint(7)).Return(&entity.WordAttempt{
		PuzzleID: 1, UserID: 7, Tries: 2, SolvedAt: &solvedAt, PointsWon: 8,
	}, nil)

	svc := &ContentService{wordGameRepo: wordGameRepo}

	result, err := svc.SubmitWordGuess(7, 1, "bridge")
	require.NoError(t, err)

	assert.True(t, result.Solved)
	assert.False(t, result.Correct)
	assert.Equal(t, 8, result.PointsWon)
	// Решенная головоломка не принимает новых попыток
	wordGameRepo.AssertNotCalled(t, "UpdateAttempt", mock.Anything)
}

func TestSubmitWordGuess_EmptyGuess(t *testing.T) {
	svc := &ContentService{}

	_, err := svc.SubmitWordGuess(7, 1, "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCompleteBeamsToday_SecondCompletionAwardsNothing(t *testing.T) {
	beamsTodayRepo := new(MockBeamsTodayRepository)
	beamsTodayRepo.On("GetByID", uint(3)).Return(&entity.BeamsToday{ID: 3, Title: "Oceans", CompletionPts: 5}, nil)

	completionRepo := new(MockCompletionRepository)
	completionRepo.On("CreateCompletion", mock.Anything).Return(apperrors.ErrConflict)

	svc := &ContentService{
		beamsTodayRepo: beamsTodayRepo,
		completionRepo: completionRepo,
	}

	points, err := svc.CompleteBeamsToday(7, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, points)
}

func TestAnswerPoll_OptionFromAnotherPoll(t *testing.T) {
	pollRepo := new(MockPollRepository)
	pollRepo.On("GetByBeamsTodayID", uint(3)).Return(&entity.Poll{ID: 10, BeamsTodayID: 3, RewardPts: 2}, nil)
	pollRepo.On("GetOptionByID", uint(55)).Return(&entity.PollOption{ID: 55, PollID: 99}, nil)

	svc := &ContentService{pollRepo: pollRepo}

	_, err := svc.AnswerPoll(7, 3, 55)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	pollRepo.AssertNotCalled(t, "CreateResponse", mock.Anything)
}

func TestAnswerPoll_DoubleAnswerRejected(t *testing.T) {
	pollRepo := new(MockPollRepository)
	pollRepo.On("GetByBeamsTodayID", uint(3)).Return(&entity.Poll{ID: 10, BeamsTodayID: 3, RewardPts: 2}, nil)
	pollRepo.On("GetOptionByID", uint(55)).Return(&entity.PollOption{ID: 55, PollID: 10}, nil)
	pollRepo.On("CreateResponse", mock.Anything).Return(apperrors.ErrConflict)

	svc := &ContentService{pollRepo: pollRepo}

	_, err := svc.AnswerPoll(7, 3, 55)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	pollRepo.AssertNotCalled(t, "IncrementVotes", mock.Anything)
}

func TestValidateContentRef_UnknownKind(t *testing.T) {
	svc := &ContentService{}

	err := svc.validateContentRef("podcast", 1)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateWordPuzzle_Validation(t *testing.T) {
	svc := &ContentService{}

	err := svc.CreateWordPuzzle(&entity.WordPuzzle{Words: "a,b,c", Answer: "x", MaxPts: 10})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "пустая дата должна отклоняться")

	err = svc.CreateWordPuzzle(&entity.WordPuzzle{
		Date: time.Date(2025, 9, 17, 0, 0, 0, 0, time.UTC), Words: "a,b,c", Answer: "", MaxPts: 10,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "пустой ответ должен отклоняться")
}
