package entity

import (
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Статусы реферальной связи. Переход только PENDING → VERIFIED.
const (
	ReferralStatusPending  = "pending"
	ReferralStatusVerified = "verified"
)

// User представляет пользователя в системе
type User struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Username            string     `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email               string     `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password            string     `gorm:"size:100" json:"-"` // пустой для OAuth-only аккаунтов
	PasswordAuthEnabled bool       `gorm:"not null;default:true" json:"-"`
	ProfilePicture      string     `gorm:"size:255;not null;default:''" json:"profile_picture"`
	FirstName           string     `gorm:"size:100;not null;default:''" json:"first_name"`
	LastName            string     `gorm:"size:100;not null;default:''" json:"last_name"`
	Grade               string     `gorm:"size:50;not null;default:''" json:"grade"`
	BirthDate           *time.Time `gorm:"type:date" json:"birth_date,omitempty"`

	// Beams — денормализованная сумма всех записей леджера.
	// Обновляется ТОЛЬКО атомарным инкрементом (gorm.Expr), не read-modify-write.
	BeamsPoints int64 `gorm:"not null;default:0;index" json:"beams_points"`

	IsTwoFactorEnabled bool   `gorm:"not null;default:false" json:"is_two_factor_enabled"`
	Role               string `gorm:"size:20;not null;default:'user'" json:"-"` // "user" или "admin"

	// Реферальная связь: кто пригласил этого пользователя и статус приглашения
	ReferredByID   *uint  `gorm:"index" json:"referred_by_id,omitempty"`
	ReferralStatus string `gorm:"size:20;not null;default:''" json:"referral_status,omitempty"` // "", pending, verified

	EmailVerifiedAt *time.Time `gorm:"type:timestamp" json:"email_verified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// BeforeSave хеширует пароль перед сохранением, только если он не является bcrypt-хешем
func (u *User) BeforeSave(tx *gorm.DB) error {
	// Хешируем пароль только если он:
	// 1. Не пустой
	// 2. Не является уже bcrypt-хешем (начинается с "$2a$", "$2b$" или "$2y$")
	if len(u.Password) > 0 && !strings.HasPrefix(u.Password, "$2a$") &&
		!strings.HasPrefix(u.Password, "$2b$") && !strings.HasPrefix(u.Password, "$2y$") {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[User.BeforeSave] Ошибка при хешировании пароля для email=%s: %v", u.Email, err)
			return err
		}
		u.Password = string(hashedPassword)
	}
	return nil
}

// CheckPassword проверяет, соответствует ли переданный пароль хешу
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// MaskedEmail возвращает email с замаскированной локальной частью:
// первые два символа сохраняются, остальное до '@' заменяется на '*'.
// Используется в ответах 2FA и подтверждения почты.
func (u *User) MaskedEmail() string {
	return MaskEmail(u.Email)
}

// MaskEmail маскирует произвольный email по тем же правилам, что и MaskedEmail.
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return email
	}
	local := email[:at]
	domain := email[at:]
	if len(local) <= 2 {
		return local + domain
	}
	return local[:2] + strings.Repeat("*", len(local)-2) + domain
}
