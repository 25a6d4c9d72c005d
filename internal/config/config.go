// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
// Для локального запуска переменные можно положить в .env (см. cmd/bot).
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Драйверы хранилищ.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	StateDriverMemory = "memory"
	StateDriverRedis  = "redis"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// Единственный суперадмин: только он назначает и снимает админов
	SuperAdminID int64 `envconfig:"SUPER_ADMIN_ID" required:"true"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"postgres"`
	DBHost        string `envconfig:"DB_HOST" default:"postgres"`
	DBPort        int    `envconfig:"DB_PORT" default:"5432"`
	DBUser        string `envconfig:"DB_USER" default:"botuser"`
	DBPassword    string `envconfig:"DB_PASSWORD"`
	DBName        string `envconfig:"DB_NAME" default:"school_hub"`
	DBSSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns    int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns    int32  `envconfig:"DB_MIN_CONNS" default:"5"`
	// Сколько раз пробовать достучаться до БД при старте
	DBConnectRetries uint64 `envconfig:"DB_CONNECT_RETRIES" default:"5"`

	// --- Conversation state ---
	StateDriver   string        `envconfig:"STATE_DRIVER" default:"memory"`
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"redis:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	// 0 — незавершённые диалоги живут, пока их не отменят
	StateTTL time.Duration `envconfig:"STATE_TTL" default:"0"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Число воркеров. Апдейты одного пользователя всегда попадают в один воркер.
	BotWorkers int `envconfig:"BOT_WORKERS" default:"16"`
	// Глубина очереди каждого воркера
	BotQueueSize int `envconfig:"BOT_QUEUE_SIZE" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Admin ---
	// Пусто — админ-команды работают без пароля
	AdminPasswordHash string        `envconfig:"ADMIN_PASSWORD_HASH"`
	AdminSessionTTL   time.Duration `envconfig:"ADMIN_SESSION_TTL" default:"24h"`

	// --- Reputation ---
	ReputationSolutionBonus int `envconfig:"REPUTATION_SOLUTION_BONUS" default:"5"`
	TopUsersLimit           int `envconfig:"TOP_USERS_LIMIT" default:"5"`

	// --- Jobs ---
	PurgeSchedule string `envconfig:"PURGE_SCHEDULE" default:"5 0 * * *"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"30"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Validate проверяет согласованность значений.
func (c *Config) Validate() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN не задан")
	}
	if c.SuperAdminID == 0 {
		return fmt.Errorf("SUPER_ADMIN_ID не задан или равен 0")
	}
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD обязателен для STORAGE_DRIVER=postgres")
		}
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("неизвестный STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.StateDriver {
	case StateDriverMemory, StateDriverRedis:
	default:
		return fmt.Errorf("неизвестный STATE_DRIVER %q", c.StateDriver)
	}
	if c.StateTTL < 0 {
		return fmt.Errorf("STATE_TTL не может быть отрицательным")
	}
	if c.BotWorkers <= 0 {
		return fmt.Errorf("BOT_WORKERS должен быть > 0")
	}
	if c.BotQueueSize <= 0 {
		return fmt.Errorf("BOT_QUEUE_SIZE должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS и RATE_LIMIT_WINDOW должны быть > 0")
	}
	if c.TopUsersLimit <= 0 {
		return fmt.Errorf("TOP_USERS_LIMIT должен быть > 0")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
