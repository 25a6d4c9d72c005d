// Package bot — dispatcher.go: распределение событий по воркерам.
// События одного пользователя всегда попадают в один воркер и
// обрабатываются по очереди. Разные пользователи обрабатываются параллельно.
package bot

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"github.com/alisher2011ali-netizen/School-Hub/internal/bot/middleware"
	"github.com/alisher2011ali-netizen/School-Hub/internal/conversation"
)

// HandlerFunc обрабатывает одно событие.
type HandlerFunc func(ctx context.Context, ev conversation.Event)

// Dispatcher — фиксированный набор воркеров с очередью у каждого.
type Dispatcher struct {
	queues []chan conversation.Event
	handle HandlerFunc

	workers   *pool.Pool
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewDispatcher создаёт диспетчер на workers воркеров с очередью queueSize.
func NewDispatcher(workers, queueSize int, handle HandlerFunc) *Dispatcher {
	queues := make([]chan conversation.Event, workers)
	for i := range queues {
		queues[i] = make(chan conversation.Event, queueSize)
	}
	return &Dispatcher{
		queues:  queues,
		handle:  handle,
		workers: pool.New().WithMaxGoroutines(workers),
	}
}

// Start запускает воркеры. Каждый читает свою очередь до Stop.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		for i, queue := range d.queues {
			d.workers.Go(func() {
				for ev := range queue {
					d.run(ctx, ev)
				}
				log.WithField("worker", i).Debug("Воркер остановлен")
			})
		}
		log.WithField("workers", len(d.queues)).Info("Диспетчер запущен")
	})
}

// run обрабатывает событие, паника одного события не роняет воркер.
func (d *Dispatcher) run(ctx context.Context, ev conversation.Event) {
	defer middleware.RecoverFromPanic(ev)
	d.handle(ctx, ev)
}

// Dispatch ставит событие в очередь воркера пользователя.
// Блокируется, если очередь полна, и выходит по отмене ctx.
func (d *Dispatcher) Dispatch(ctx context.Context, ev conversation.Event) error {
	select {
	case d.queues[d.shard(ev.UserID)] <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop закрывает очереди и ждёт, пока воркеры доделают принятое.
// После Stop вызывать Dispatch нельзя.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		for _, queue := range d.queues {
			close(queue)
		}
		d.workers.Wait()
		log.Info("Диспетчер остановлен")
	})
}

func (d *Dispatcher) shard(userID int64) int {
	return int(uint64(userID) % uint64(len(d.queues)))
}
