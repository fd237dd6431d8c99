package service

import "errors"

// Определяем кастомные ошибки для сервисов
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Реферальная программа
	ErrSelfReferral     = errors.New("self_referral")
	ErrAlreadyReferred  = errors.New("already_referred")
	ErrReferralNotFound = errors.New("referral_code_not_found")

	// Лидерборд
	ErrLeaderboardInsufficient = errors.New("leaderboard_insufficient_entries")
)

// Auth flow specific errors used by handlers for stable error_type mapping.
var (
	ErrFeatureDisabled               = errors.New("feature_disabled")
	ErrEmailNotVerified              = errors.New("email_not_verified")
	ErrInvalidVerificationCode       = errors.New("invalid_verification_code")
	ErrVerificationExpired           = errors.New("verification_expired")
	ErrVerificationAttemptsExceeded  = errors.New("verification_attempts_exceeded")
	ErrVerificationResendCooldown    = errors.New("verification_resend_cooldown")
	ErrTwoFactorRequired             = errors.New("two_factor_required")
	ErrInvalidTwoFactorCode          = errors.New("invalid_two_factor_code")
	ErrTwoFactorExpired              = errors.New("two_factor_expired")
	ErrGoogleTokenVerificationFailed = errors.New("google_token_verification_failed")
	ErrPasswordLoginDisabled         = errors.New("password_login_disabled")
)
