package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/beams-api/internal/domain/entity"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

func TestGetOrCreateCode_ReturnsExisting(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", uint(1)).Return(&entity.User{ID: 1}, nil)

	referralRepo := new(MockReferralRepository)
	referralRepo.On("GetByUserID", uint(1)).Return(&entity.Referral{UserID: 1, ReferralCode: "ABCD2345"}, nil)

	svc := &ReferralService{referralRepo: referralRepo, userRepo: userRepo}

	code, err := svc.GetOrCreateCode(1)
	require.NoError(t, err)
	assert.Equal(t, "ABCD2345", code)
	referralRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestGetOrCreateCode_MintsNewCode(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", uint(1)).Return(&entity.User{ID: 1}, nil)

	referralRepo := new(MockReferralRepository)
	referralRepo.On("GetByUserID", uint(1)).Return(nil, apperrors.ErrNotFound)
	referralRepo.On("Create", mock.AnythingOfType("*entity.Referral")).Return(nil)

	svc := &ReferralService{referralRepo: referralRepo, userRepo: userRepo}

	code, err := svc.GetOrCreateCode(1)
	require.NoError(t, err)

	assert.Len(t, code, referralCodeLength)
	for _, r := range code {
		assert.Contains(t, referralCodeAlphabet, string(r), "код содержит символ вне алфавита")
	}
}

func TestGetOrCreateCode_RetriesOnCollision(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", uint(1)).Return(&entity.User{ID: 1}, nil)

	referralRepo := new(MockReferralRepository)
	referralRepo.On("GetByUserID", uint(1)).Return(nil, apperrors.ErrNotFound)
	// Первая попытка упирается в коллизию кода, вторая проходит
	referralRepo.On("Create", mock.AnythingOfType("*entity.Referral")).Return(apperrors.ErrConflict).Once()
	referralRepo.On("Create", mock.AnythingOfType("*entity.Referral")).Return(nil).Once()

	svc := &ReferralService{referralRepo: referralRepo, userRepo: userRepo}

	code, err := svc.GetOrCreateCode(1)
	require.NoError(t, err)
	assert.Len(t, code, referralCodeLength)
	referralRepo.AssertExpectations(t)
}

func TestRedeem_UnknownCode(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", uint(2)).Return(&entity.User{ID: 2}, nil)

	referralRepo := new(MockReferralRepository)
	referralRepo.On("GetByCode", "NOPE1234").Return(nil, apperrors.ErrNotFound)

	svc := &ReferralService{referralRepo: referralRepo, userRepo: userRepo}

	err := svc.Redeem(2, "NOPE1234")
	assert.ErrorIs(t, err, ErrReferralNotFound)
}

func TestRedeem_OwnCode(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", uint(2)).Return(&entity.User{ID: 2}, nil)

	referralRepo := new(MockReferralRepository)
	referralRepo.On("GetByCode", "SELF2345").Return(&entity.Referral{UserID: 2, ReferralCode: "SELF2345"}, nil)

	svc := &ReferralService{referralRepo: referralRepo, userRepo: userRepo}

	err := svc.Redeem(2, "SELF2345")
	assert.ErrorIs(t, err, ErrSelfReferral)
}

func TestRedeem_AlreadyReferred(t *testing.T) {
	referrerID := uint(9)
	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", uint(2)).Return(&entity.User{ID: 2, ReferredByID: &referrerID}, nil)

	svc := &ReferralService{userRepo: userRepo, referralRepo: new(MockReferralRepository)}

	err := svc.Redeem(2, "OTHER234")
	assert.ErrorIs(t, err, ErrAlreadyReferred)
}

func TestRedeem_LinksPending(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", uint(2)).Return(&entity.User{ID: 2}, nil)
	userRepo.On("UpdateProfile", uint(2), map[string]interface{}{
		"referred_by_id":  uint(9),
		"referral_status": entity.ReferralStatusPending,
	}).Return(nil)

	referralRepo := new(MockReferralRepository)
	referralRepo.On("GetByCode", "GOOD2345").Return(&entity.Referral{UserID: 9, ReferralCode: "GOOD2345"}, nil)

	svc := &ReferralService{referralRepo: referralRepo, userRepo: userRepo}

	err := svc.Redeem(2, "GOOD2345")
	require.NoError(t, err)
	userRepo.AssertExpectations(t)
}

func TestOnEmailVerified_AwardsReferrerOnce(t *testing.T) {
	// Переход pending → verified: статус обновляется и рефереру
	// начисляется награда в леджер с источником referral
	referrerID := uint(9)
	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", uint(2)).Return(&entity.User{
		ID:             2,
		Username:       "newbie",
		ReferredByID:   &referrerID,
		ReferralStatus: entity.ReferralStatusPending,
	}, nil)
	userRepo.On("SetReferralStatus", uint(2), entity.ReferralStatusVerified).Return(nil)
	userRepo.On("GetByID", uint(9)).Return(&entity.User{ID: 9, Email: "referrer@example.com"}, nil)

	recorder := new(MockPointsRecorder)
	recorder.On("RecordPoints", uint(9), 20, entity.PointsSourceReferral, mock.AnythingOfType("string")).Return(nil)

	emailService := new(MockEmailService)
	emailService.On("SendReferralReward", mock.Anything, "referrer@example.com", "newbie", 20).Return(nil)

	svc := &ReferralService{
		userRepo:      userRepo,
		pointsService: recorder,
		emailService:  emailService,
		rewardPoints:  20,
	}

	err := svc.OnEmailVerified(context.Background(), 2)
	require.NoError(t, err)

	userRepo.AssertExpectations(t)
	recorder.AssertExpectations(t)
	emailService.AssertExpectations(t)
}

func TestOnEmailVerified_EmailFailureDoesNotFailAward(t *testing.T) {
	referrerID := uint(9)
	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", uint(2)).Return(&entity.User{
		ID:             2,
		Username:       "newbie",
		ReferredByID:   &referrerID,
		ReferralStatus: entity.ReferralStatusPending,
	}, nil)
	userRepo.On("SetReferralStatus", uint(2), entity.ReferralStatusVerified).Return(nil)
	userRepo.On("GetByID", uint(9)).Return(&entity.User{ID: 9, Email: "referrer@example.com"}, nil)

	recorder := new(MockPointsRecorder)
	recorder.On("RecordPoints", uint(9), 20, entity.PointsSourceReferral, mock.AnythingOfType("string")).Return(nil)

	emailService := new(MockEmailService)
	emailService.On("SendReferralReward", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError)

	svc := &ReferralService{
		userRepo:      userRepo,
		pointsService: recorder,
		emailService:  emailService,
		rewardPoints:  20,
	}

	// Письмо — best effort: его сбой не откатывает начисление
	err := svc.OnEmailVerified(context.Background(), 2)
	require.NoError(t, err)
	recorder.AssertExpectations(t)
}

func TestOnEmailVerified_NoReferrerIsNoop(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", uint(2)).Return(&entity.User{ID: 2}, nil)

	svc := &ReferralService{userRepo: userRepo}

	err := svc.OnEmailVerified(context.Background(), 2)
	require.NoError(t, err)
	userRepo.AssertNotCalled(t, "SetReferralStatus", mock.Anything, mock.Anything)
}

func TestOnEmailVerified_AlreadyVerifiedIsNoop(t *testing.T) {
	// Повторное подтверждение не должно начислять награду второй раз
	referrerID := uint(9)
	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", uint(2)).Return(&entity.User{
		ID:             2,
		ReferredByID:   &referrerID,
		ReferralStatus: entity.ReferralStatusVerified,
	}, nil)

	svc := &ReferralService{userRepo: userRepo}

	err := svc.OnEmailVerified(context.Background(), 2)
	require.NoError(t, err)
	userRepo.AssertNotCalled(t, "SetReferralStatus", mock.Anything, mock.Anything)
}

func TestGenerateReferralCode_AvoidsAmbiguousChars(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateReferralCode()
		require.NoError(t, err)
		assert.Len(t, code, referralCodeLength)
		for _, ambiguous := range []string{"O", "0", "I", "L", "1"} {
			assert.False(t, strings.Contains(code, ambiguous),
				"код %q содержит неоднозначный символ %s", code, ambiguous)
		}
	}
}
