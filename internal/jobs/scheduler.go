// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежедневную очистку заданий
// с прошедшим сроком вместе с решениями, фото и голосами.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/alisher2011ali-netizen/School-Hub/internal/features/homework"
)

// Purger удаляет устаревшие задания.
type Purger interface {
	Purge(ctx context.Context) (homework.PurgeStats, error)
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron     *cron.Cron
	purger   Purger
	schedule string
	loc      *time.Location
}

// NewScheduler создаёт планировщик в часовом поясе школы.
// schedule — cron-выражение из пяти полей, например "5 0 * * *".
func NewScheduler(purger Purger, schedule string, loc *time.Location) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		purger:   purger,
		schedule: schedule,
		loc:      loc,
	}
}

// Start регистрирует задачи и запускает cron. ctx передаётся в задачи.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		log.Info("[CRON] Очистка устаревших заданий")
		if _, err := s.purger.Purge(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка очистки")
		}
	})
	if err != nil {
		return fmt.Errorf("некорректное расписание очистки %q: %w", s.schedule, err)
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"schedule": s.schedule,
		"location": s.loc.String(),
	}).Info("Планировщик задач запущен")
	return nil
}

// Stop останавливает планировщик и ждёт завершения текущей задачи.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
