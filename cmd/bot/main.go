// Package main — точка входа School Hub.
// Загружает конфигурацию, инициализирует приложение и запускает.
// Поддерживает graceful shutdown по SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/alisher2011ali-netizen/School-Hub/internal/app"
	"github.com/alisher2011ali-netizen/School-Hub/internal/config"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/admin"
)

func main() {
	// Настраиваем логирование
	setupLogging()

	// Контекст отменяется по Ctrl+C и docker stop
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:   "school-hub",
		Usage:  "Telegram-бот для обмена домашними заданиями",
		Action: runBot,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Запустить бота (по умолчанию)",
				Action: runBot,
			},
			{
				Name:  "migrate",
				Usage: "Применить миграции и заполнить каталог предметов",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					return app.Migrate(ctx, cfg)
				},
			},
			{
				Name:  "purge",
				Usage: "Удалить устаревшие задания один раз",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					stats, err := app.Purge(ctx, cfg)
					if err != nil {
						return err
					}
					log.WithFields(log.Fields{
						"homework":  stats.Homework,
						"solutions": stats.Solutions,
						"media":     stats.Media,
					}).Info("Очистка завершена")
					return nil
				},
			},
			{
				Name:      "hash-password",
				Usage:     "Сгенерировать Argon2id хеш для ADMIN_PASSWORD_HASH",
				ArgsUsage: "<пароль>",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return fmt.Errorf("использование: school-hub hash-password <пароль>")
					}
					hash, err := admin.HashPassword(c.Args().First())
					if err != nil {
						return err
					}
					fmt.Println("Хеш пароля (вставьте в .env как ADMIN_PASSWORD_HASH):")
					fmt.Println(hash)
					return nil
				},
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.WithError(err).Fatal("Бот завершился с ошибкой")
	}
}

// runBot запускает бота и ждёт сигнала остановки.
func runBot(ctx context.Context, _ *cli.Command) error {
	log.Info("=== Бот запускается ===")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Инициализируем приложение (БД, бот, сервисы, обработчики)
	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("не удалось инициализировать приложение: %w", err)
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		return err
	}

	log.Info("=== Бот остановлен ===")
	return nil
}

// loadConfig читает .env (если есть) и переменные окружения.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Warn("Не удалось прочитать .env")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// Устанавливаем уровень логирования из конфига
	if level, err := log.ParseLevel(cfg.AppLogLevel); err == nil {
		log.SetLevel(level)
	}
	if cfg.AppEnv == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	return cfg, nil
}

// setupLogging настраивает формат логов.
func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
}
