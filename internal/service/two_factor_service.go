package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/beams-api/internal/domain/entity"
	"github.com/yourusername/beams-api/internal/domain/repository"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// TwoFactorService issues and checks one-time login codes delivered by email.
// Codes are stored hashed with a per-code salt plus a server-side pepper.
type TwoFactorService struct {
	userRepo      repository.UserRepository
	twoFactorRepo repository.TwoFactorRepository
	emailService  EmailService
	codeTTL       time.Duration
	codePepper    string
}

func NewTwoFactorService(
	userRepo repository.UserRepository,
	twoFactorRepo repository.TwoFactorRepository,
	emailService EmailService,
	codeTTL time.Duration,
	codePepper string,
) (*TwoFactorService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if twoFactorRepo == nil {
		return nil, fmt.Errorf("two-factor repository is required")
	}
	if emailService == nil {
		return nil, fmt.Errorf("email service is required")
	}
	if codeTTL <= 0 {
		codeTTL = 5 * time.Minute
	}

	return &TwoFactorService{
		userRepo:      userRepo,
		twoFactorRepo: twoFactorRepo,
		emailService:  emailService,
		codeTTL:       codeTTL,
		codePepper:    codePepper,
	}, nil
}

// SendCode emails a fresh one-time code for the pending login.
// Previous unconsumed codes are discarded so only the latest one works.
func (s *TwoFactorService) SendCode(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	if err := s.twoFactorRepo.DeleteByUserID(userID); err != nil {
		return fmt.Errorf("failed to discard previous two-factor codes: %w", err)
	}

	code, err := generateNumericCode()
	if err != nil {
		return fmt.Errorf("failed to generate two-factor code: %w", err)
	}
	salt, err := generateCodeSalt()
	if err != nil {
		return fmt.Errorf("failed to generate two-factor salt: %w", err)
	}

	record := &entity.TwoFactorCode{
		UserID:    user.ID,
		CodeHash:  hashCode(code, salt, s.codePepper),
		CodeSalt:  salt,
		ExpiresAt: time.Now().Add(s.codeTTL),
	}
	if err := s.twoFactorRepo.Create(record); err != nil {
		return fmt.Errorf("failed to create two-factor record: %w", err)
	}

	idempotencyKey := fmt.Sprintf("two-factor:%d:%d", user.ID, record.ID)
	if err := s.emailService.SendTwoFactorCode(ctx, user.Email, code, idempotencyKey); err != nil {
		return fmt.Errorf("failed to send two-factor email: %w", err)
	}

	return nil
}

// VerifyCode checks the submitted code and consumes it on success.
func (s *TwoFactorService) VerifyCode(ctx context.Context, userID uint, code string) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("%w: empty two-factor code", apperrors.ErrValidation)
	}

	record, err := s.twoFactorRepo.GetLatestActiveByUserID(userID)
	if err != nil {
		if err == apperrors.ErrNotFound {
			return ErrInvalidTwoFactorCode
		}
		return err
	}

	now := time.Now()
	if record.IsConsumed() {
		return ErrInvalidTwoFactorCode
	}
	if record.IsExpired(now) {
		return ErrTwoFactorExpired
	}

	expectedHash := hashCode(code, record.CodeSalt, s.codePepper)
	if subtle.ConstantTimeCompare([]byte(expectedHash), []byte(record.CodeHash)) != 1 {
		return ErrInvalidTwoFactorCode
	}

	if err := s.twoFactorRepo.MarkConsumed(record.ID); err != nil {
		return fmt.Errorf("failed to mark two-factor code consumed: %w", err)
	}
	return nil
}
