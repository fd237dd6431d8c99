package dto

import (
	"time"

	"github.com/yourusername/beams-api/internal/domain/entity"
)

// ProfileResponse представляет профиль пользователя в ответах API.
// Email всегда возвращается в замаскированном виде.
type ProfileResponse struct {
	ID                 uint       `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"` // замаскированный
	ProfilePicture     string     `json:"profile_picture"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	Grade              string     `json:"grade"`
	BirthDate          *time.Time `json:"birth_date,omitempty"`
	BeamsPoints        int64      `json:"beams_points"`
	IsTwoFactorEnabled bool       `json:"is_two_factor_enabled"`
	EmailVerified      bool       `json:"email_verified"`
	ReferralStatus     string     `json:"referral_status,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// NewProfileResponse строит ответ профиля из сущности пользователя
func NewProfileResponse(u *entity.User) *ProfileResponse {
	if u == nil {
		return nil
	}
	return &ProfileResponse{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.MaskedEmail(),
		ProfilePicture:     u.ProfilePicture,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Grade:              u.Grade,
		BirthDate:          u.BirthDate,
		BeamsPoints:        u.BeamsPoints,
		IsTwoFactorEnabled: u.IsTwoFactorEnabled,
		EmailVerified:      u.EmailVerifiedAt != nil,
		ReferralStatus:     u.ReferralStatus,
		CreatedAt:          u.CreatedAt,
	}
}
