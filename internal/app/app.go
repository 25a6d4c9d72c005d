// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: открывает хранилище выбранного драйвера, создаёт
// сервисы, транспорт, роутер и диспетчер и собирает всё в один объект.
package app

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/rueidis"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/alisher2011ali-netizen/School-Hub/internal/bot"
	"github.com/alisher2011ali-netizen/School-Hub/internal/bot/filters"
	"github.com/alisher2011ali-netizen/School-Hub/internal/bot/middleware"
	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
	"github.com/alisher2011ali-netizen/School-Hub/internal/config"
	"github.com/alisher2011ali-netizen/School-Hub/internal/conversation"
	"github.com/alisher2011ali-netizen/School-Hub/internal/db/memory"
	"github.com/alisher2011ali-netizen/School-Hub/internal/db/postgres"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/admin"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/homework"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/members"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/moderation"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/reports"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/votes"
	"github.com/alisher2011ali-netizen/School-Hub/internal/jobs"
)

// Storage — хранилища выбранного драйвера (STORAGE_DRIVER).
type Storage struct {
	Members  members.Store
	Homework homework.Store
	Votes    votes.Store
	Reports  reports.Store
	Sessions admin.SessionStore

	pool *pgxpool.Pool
}

// OpenStorage подключает хранилище. Для PostgreSQL сразу применяет миграции.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		log.Warn("STORAGE_DRIVER=memory: данные пропадут при перезапуске")
		store := memory.New()
		return &Storage{
			Members:  store,
			Homework: store,
			Votes:    store,
			Reports:  store,
			Sessions: store,
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}
	if err := postgres.RunMigrations(ctx, pool, migrations); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	return &Storage{
		Members:  members.NewRepository(pool),
		Homework: homework.NewRepository(pool),
		Votes:    votes.NewRepository(pool),
		Reports:  reports.NewRepository(pool),
		Sessions: admin.NewRepository(pool),
		pool:     pool,
	}, nil
}

// Close закрывает пул соединений, если он есть.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// NewServices создаёт сервисы поверх хранилища.
func NewServices(st *Storage, cfg *config.Config, clock common.Clock) bot.Services {
	membersService := members.NewService(st.Members)
	homeworkService := homework.NewService(st.Homework, clock, cfg.ReputationSolutionBonus)

	return bot.Services{
		Members:  membersService,
		Homework: homeworkService,
		Votes:    votes.NewResolver(st.Votes, homeworkService),
		Reports:  reports.NewService(st.Reports, homeworkService),
		Admin: admin.NewService(
			st.Sessions, membersService,
			cfg.AdminPasswordHash, cfg.AdminSessionTTL, cfg.SuperAdminID, clock,
		),
		Gate: moderation.NewGate(membersService, cfg.SuperAdminID),
	}
}

// App содержит все компоненты запущенного бота.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	Services  bot.Services

	storage     *Storage
	redis       rueidis.Client
	rateLimiter *middleware.RateLimiter
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc := common.LoadLocation(cfg.AppTimezone)
	clock := common.NewClock(loc)

	// === 1. Хранилище и сервисы ===
	storage, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	services := NewServices(storage, cfg, clock)

	if err := services.Homework.Seed(ctx); err != nil {
		storage.Close()
		return nil, fmt.Errorf("ошибка заполнения предметов: %w", err)
	}

	// === 2. Состояния диалогов ===
	states, redisClient, err := openStates(cfg)
	if err != nil {
		storage.Close()
		return nil, err
	}

	// === 3. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		storage.Close()
		if redisClient != nil {
			redisClient.Close()
		}
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development" && cfg.AppLogLevel == "trace"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 4. Роутер, диспетчер, бот ===
	router := bot.NewRouter(bot.NewTelegramTransport(botAPI), states, services, clock, bot.Options{
		SuperAdminID:  cfg.SuperAdminID,
		TopLimit:      cfg.TopUsersLimit,
		SolutionBonus: cfg.ReputationSolutionBonus,
	})
	dispatcher := bot.NewDispatcher(cfg.BotWorkers, cfg.BotQueueSize, router.Handle)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	b := bot.New(botAPI, cfg.BotUpdateTimeoutSeconds, filters.NewChatFilter(), rateLimiter, dispatcher)

	// === 5. Планировщик задач ===
	scheduler := jobs.NewScheduler(services.Homework, cfg.PurgeSchedule, loc)

	return &App{
		Bot:         b,
		Scheduler:   scheduler,
		Services:    services,
		storage:     storage,
		redis:       redisClient,
		rateLimiter: rateLimiter,
	}, nil
}

// openStates выбирает хранилище диалогов (STATE_DRIVER).
func openStates(cfg *config.Config) (conversation.Store, rueidis.Client, error) {
	if cfg.StateDriver != config.StateDriverRedis {
		return conversation.NewMemoryStore(), nil, nil
	}

	client, err := conversation.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
	}
	log.WithField("addr", cfg.RedisAddr).Info("Состояния диалогов хранятся в Redis")
	return conversation.NewRedisStore(client, cfg.StateTTL), client, nil
}

// Run чистит устаревшие задания, запускает планировщик и polling
// и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.Services.Homework.Purge(ctx); err != nil {
		log.WithError(err).Error("Стартовая очистка не удалась")
	}

	if err := a.Scheduler.Start(ctx); err != nil {
		return err
	}
	defer a.Scheduler.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.rateLimiter.Run(ctx)
		return nil
	})
	g.Go(func() error {
		a.Bot.Start(ctx)
		return nil
	})

	log.Info("=== Бот готов к работе ===")
	return g.Wait()
}

// Close освобождает соединения. Вызывать после Run.
func (a *App) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	a.storage.Close()
}

// Purge выполняет одну очистку без запуска бота.
func Purge(ctx context.Context, cfg *config.Config) (homework.PurgeStats, error) {
	storage, err := OpenStorage(ctx, cfg)
	if err != nil {
		return homework.PurgeStats{}, err
	}
	defer storage.Close()

	clock := common.NewClock(common.LoadLocation(cfg.AppTimezone))
	return NewServices(storage, cfg, clock).Homework.Purge(ctx)
}

// Migrate применяет миграции и заполняет каталог предметов.
func Migrate(ctx context.Context, cfg *config.Config) error {
	started := time.Now()

	storage, err := OpenStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	clock := common.NewClock(common.LoadLocation(cfg.AppTimezone))
	if err := NewServices(storage, cfg, clock).Homework.Seed(ctx); err != nil {
		return fmt.Errorf("ошибка заполнения предметов: %w", err)
	}

	log.WithField("took", time.Since(started).Round(time.Millisecond)).Info("Миграции применены")
	return nil
}
