package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Auth        AuthConfig
	Email       EmailConfig
	GoogleOAuth GoogleOAuthConfig
	Cloudinary  CloudinaryConfig
	Referral    ReferralConfig
	Leaderboard LeaderboardConfig
	ShortLink   ShortLinkConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
	BaseURL      string `mapstructure:"base_url"` // Публичный URL (используется для коротких ссылок)
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	// Для 'single', если не пуст, используется первый адрес из списка.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single' (для обратной совместимости).
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	// MaxRetries: Максимальное количество попыток переподключения (-1 - бесконечно).
	MaxRetries int `mapstructure:"max_retries"`

	// MinRetryBackoff: Минимальный интервал между попытками (в миллисекундах).
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`

	// MaxRetryBackoff: Максимальный интервал между попытками (в миллисекундах).
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// JWTConfig содержит настройки JWT
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationHrs int    `mapstructure:"expirationHrs"`
}

// AuthConfig содержит настройки аутентификации
type AuthConfig struct {
	SessionLimit         int
	RefreshTokenLifetime int // в часах

	// Email verification
	EmailVerificationEnabled bool   `mapstructure:"email_verification_enabled"`
	VerificationTTLMin       int    `mapstructure:"verification_ttl_min"`
	ResendCooldownSec        int    `mapstructure:"resend_cooldown_sec"`
	MaxVerifyAttempts        int    `mapstructure:"max_verify_attempts"`
	CodePepper               string `mapstructure:"code_pepper"`

	// Two-factor login codes
	TwoFactorTTLMin int `mapstructure:"two_factor_ttl_min"`
}

// EmailConfig содержит настройки исходящей почты (Resend)
type EmailConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	From    string `mapstructure:"from"`
}

// GoogleOAuthConfig содержит настройки Google OAuth
type GoogleOAuthConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

// CloudinaryConfig содержит настройки хостинга изображений
type CloudinaryConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

// ReferralConfig содержит настройки реферальной программы
type ReferralConfig struct {
	// RewardPoints — сколько Beams получает пригласивший после верификации приглашённого
	RewardPoints int `mapstructure:"reward_points"`
}

// LeaderboardConfig содержит настройки еженедельного лидерборда
type LeaderboardConfig struct {
	// MinEntries — минимум участников, ниже которого рейтинг не показывается
	MinEntries int `mapstructure:"min_entries"`
	// CacheTTLSec — TTL кеша ответа лидерборда в Redis
	CacheTTLSec int `mapstructure:"cache_ttl_sec"`
	// RefreshIntervalMin — период фоновой материализации снапшота
	RefreshIntervalMin int `mapstructure:"refresh_interval_min"`
}

// ShortLinkConfig содержит настройки коротких ссылок
type ShortLinkConfig struct {
	// NotFoundURL — куда перенаправлять при неизвестном коротком пути
	NotFoundURL string `mapstructure:"not_found_url"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из файла
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// Значения по умолчанию
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("auth.verification_ttl_min", 15)
	vip.SetDefault("auth.resend_cooldown_sec", 60)
	vip.SetDefault("auth.max_verify_attempts", 5)
	vip.SetDefault("auth.two_factor_ttl_min", 5)
	vip.SetDefault("referral.reward_points", 20)
	vip.SetDefault("leaderboard.min_entries", 3)
	vip.SetDefault("leaderboard.cache_ttl_sec", 60)
	vip.SetDefault("leaderboard.refresh_interval_min", 60)
	vip.SetDefault("shortlink.not_found_url", "/not-found")

	// Привязываем переменные окружения ЯВНО
	// Привязка для секции Database
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	// Привязка для секции Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Привязка для секции JWT
	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expirationHrs", "JWT_EXPIRATIONHRS")

	// Привязка для секции Auth
	vip.BindEnv("auth.sessionLimit", "AUTH_SESSIONLIMIT")
	vip.BindEnv("auth.refreshTokenLifetime", "AUTH_REFRESHTOKENLIFETIME")
	vip.BindEnv("auth.email_verification_enabled", "AUTH_EMAIL_VERIFICATION_ENABLED")
	vip.BindEnv("auth.code_pepper", "AUTH_CODE_PEPPER")

	// Привязка для почты и внешних сервисов
	vip.BindEnv("email.enabled", "EMAIL_ENABLED")
	vip.BindEnv("email.api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from", "EMAIL_FROM")
	vip.BindEnv("googleoauth.enabled", "GOOGLE_OAUTH_ENABLED")
	vip.BindEnv("googleoauth.client_id", "GOOGLE_CLIENT_ID")
	vip.BindEnv("googleoauth.client_secret", "GOOGLE_CLIENT_SECRET")
	vip.BindEnv("googleoauth.redirect_uri", "GOOGLE_REDIRECT_URI")
	vip.BindEnv("cloudinary.enabled", "CLOUDINARY_ENABLED")
	vip.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	vip.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	vip.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	// Привязка для Server
	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.base_url", "SERVER_BASE_URL")

	// Устанавливаем путь к файлу конфигурации
	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Пытаемся прочитать файл конфигурации (не страшно, если его нет, т.к. есть BindEnv)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// Анмаршалим конфигурацию (Viper объединит значения из файла и привязанных env vars)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Логирование конфигурации (только в debug режиме)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s", cfg.Redis.Addr)
		log.Printf("JWT Expiration Hours: %d", cfg.JWT.ExpirationHrs)
		log.Printf("Email Enabled: %t", cfg.Email.Enabled)
		log.Printf("Google OAuth Enabled: %t", cfg.GoogleOAuth.Enabled)
		log.Printf("Cloudinary Enabled: %t", cfg.Cloudinary.Enabled)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	// Проверка обязательных параметров
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT secret is required in config (check JWT_SECRET env var)")
	}
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if cfg.Email.Enabled && (cfg.Email.APIKey == "" || cfg.Email.From == "") {
		return nil, fmt.Errorf("email is enabled but RESEND_API_KEY or EMAIL_FROM is missing")
	}
	if cfg.Cloudinary.Enabled && (cfg.Cloudinary.CloudName == "" || cfg.Cloudinary.APIKey == "" || cfg.Cloudinary.APISecret == "") {
		return nil, fmt.Errorf("cloudinary is enabled but credentials are incomplete")
	}

	return &cfg, nil
}

// VerificationTTL возвращает TTL кода подтверждения email
func (a *AuthConfig) VerificationTTL() time.Duration {
	return time.Duration(a.VerificationTTLMin) * time.Minute
}

// ResendCooldown возвращает паузу между повторными отправками кода
func (a *AuthConfig) ResendCooldown() time.Duration {
	return time.Duration(a.ResendCooldownSec) * time.Second
}

// TwoFactorTTL возвращает TTL кода двухфакторного входа
func (a *AuthConfig) TwoFactorTTL() time.Duration {
	return time.Duration(a.TwoFactorTTLMin) * time.Minute
}
