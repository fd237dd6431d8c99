package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"

	"github.com/yourusername/beams-api/internal/domain/entity"
	"github.com/yourusername/beams-api/internal/domain/repository"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// Алфавит реферальных кодов: без похожих символов (0/O, 1/I/L)
const referralCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const referralCodeLength = 8

// ReferralStats — сводка реферальной программы пользователя
type ReferralStats struct {
	ReferralCode     string `json:"referral_code"`
	TotalReferred    int    `json:"total_referred"`
	VerifiedReferred int    `json:"verified_referred"`
	PointsEarned     int64  `json:"points_earned"`
}

// pointsRecorder — запись начислений в леджер; реализуется PointsService
type pointsRecorder interface {
	RecordPoints(userID uint, points int, source, description string) error
}

// ReferralService управляет реферальными кодами и наградами.
// Награда пригласившему начисляется ровно один раз — в момент перехода
// приглашённого из статуса pending в verified.
type ReferralService struct {
	referralRepo  repository.ReferralRepository
	userRepo      repository.UserRepository
	pointsRepo    repository.PointsRepository
	pointsService pointsRecorder
	emailService  EmailService
	rewardPoints  int
}

// NewReferralService создает новый сервис рефералов и возвращает ошибку при проблемах
func NewReferralService(
	referralRepo repository.ReferralRepository,
	userRepo repository.UserRepository,
	pointsRepo repository.PointsRepository,
	pointsService *PointsService,
	emailService EmailService,
	rewardPoints int,
) (*ReferralService, error) {
	if referralRepo == nil {
		return nil, fmt.Errorf("ReferralRepository is required for ReferralService")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for ReferralService")
	}
	if pointsRepo == nil {
		return nil, fmt.Errorf("PointsRepository is required for ReferralService")
	}
	if pointsService == nil {
		return nil, fmt.Errorf("PointsService is required for ReferralService")
	}
	if emailService == nil {
		return nil, fmt.Errorf("EmailService is required for ReferralService")
	}
	if rewardPoints <= 0 {
		rewardPoints = 20
	}
	return &ReferralService{
		referralRepo:  referralRepo,
		userRepo:      userRepo,
		pointsRepo:    pointsRepo,
		pointsService: pointsService,
		emailService:  emailService,
		rewardPoints:  rewardPoints,
	}, nil
}

// GetOrCreateCode возвращает реферальный код пользователя, создавая его
// при первом обращении. Повторные вызовы возвращают тот же код.
func (s *ReferralService) GetOrCreateCode(userID uint) (string, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return "", err
	}

	existing, err := s.referralRepo.GetByUserID(userID)
	if err == nil {
		return existing.ReferralCode, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return "", err
	}

	// Коллизия кода крайне маловероятна, но уникальный индекс её поймает —
	// тогда просто генерируем заново
	for attempt := 0; attempt < 5; attempt++ {
		code, err := generateReferralCode()
		if err != nil {
			return "", fmt.Errorf("ошибка генерации реферального кода: %w", err)
		}

		referral := &entity.Referral{
			UserID:       userID,
			ReferralCode: code,
		}
		err = s.referralRepo.Create(referral)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return "", err
		}
		// Конфликт мог быть и по user_id: параллельный запрос уже создал код
		if existing, getErr := s.referralRepo.GetByUserID(userID); getErr == nil {
			return existing.ReferralCode, nil
		}
	}

	return "", fmt.Errorf("не удалось сгенерировать уникальный реферальный код")
}

// Redeem связывает нового пользователя с владельцем кода.
// Отклоняет собственный код и повторную привязку; статус реферала
// остаётся pending до подтверждения email.
func (s *ReferralService) Redeem(userID uint, code string) error {
	if code == "" {
		return fmt.Errorf("%w: referral code is required", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user.ReferredByID != nil {
		return ErrAlreadyReferred
	}

	referral, err := s.referralRepo.GetByCode(code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrReferralNotFound
		}
		return err
	}
	if referral.UserID == userID {
		return ErrSelfReferral
	}

	updates := map[string]interface{}{
		"referred_by_id":  referral.UserID,
		"referral_status": entity.ReferralStatusPending,
	}
	if err := s.userRepo.UpdateProfile(userID, updates); err != nil {
		return fmt.Errorf("ошибка привязки реферала: %w", err)
	}

	log.Printf("[ReferralService] Пользователь %d привязан к рефереру %d (код %s)", userID, referral.UserID, code)
	return nil
}

// OnEmailVerified переводит реферала в статус verified и начисляет награду
// пригласившему. Вызывается при подтверждении email; повторные вызовы
// безопасны — награда привязана к однократному переходу статуса.
func (s *ReferralService) OnEmailVerified(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user.ReferredByID == nil {
		return nil
	}
	if user.ReferralStatus != entity.ReferralStatusPending {
		// Уже verified: награда начислена ранее
		return nil
	}

	referrerID := *user.ReferredByID

	if err := s.userRepo.SetReferralStatus(userID, entity.ReferralStatusVerified); err != nil {
		return fmt.Errorf("ошибка обновления статуса реферала: %w", err)
	}

	description := fmt.Sprintf("Приглашённый пользователь %s подтвердил аккаунт", user.Username)
	if err := s.pointsService.RecordPoints(referrerID, s.rewardPoints, entity.PointsSourceReferral, description); err != nil {
		return fmt.Errorf("ошибка начисления реферальной награды: %w", err)
	}

	referrer, err := s.userRepo.GetByID(referrerID)
	if err == nil {
		if sendErr := s.emailService.SendReferralReward(ctx, referrer.Email, user.Username, s.rewardPoints); sendErr != nil {
			// Письмо — best effort: награда уже начислена
			log.Printf("[ReferralService] Ошибка отправки письма о награде: %v", sendErr)
		}
	}

	log.Printf("[ReferralService] Реферальная награда %d Beams начислена пользователю %d за реферала %d",
		s.rewardPoints, referrerID, userID)
	return nil
}

// GetStats возвращает сводку реферальной программы пользователя
func (s *ReferralService) GetStats(userID uint) (*ReferralStats, error) {
	code, err := s.GetOrCreateCode(userID)
	if err != nil {
		return nil, err
	}

	referred, err := s.referralRepo.ListReferredUsers(userID)
	if err != nil {
		return nil, err
	}
	verified, err := s.referralRepo.CountVerifiedReferrals(userID)
	if err != nil {
		return nil, err
	}

	stats := &ReferralStats{
		ReferralCode:     code,
		TotalReferred:    len(referred),
		VerifiedReferred: int(verified),
		PointsEarned:     verified * int64(s.rewardPoints),
	}
	return stats, nil
}

func generateReferralCode() (string, error) {
	buf := make([]byte, referralCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := make([]byte, referralCodeLength)
	for i, b := range buf {
		code[i] = referralCodeAlphabet[int(b)%len(referralCodeAlphabet)]
	}
	return string(code), nil
}
