package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alisher2011ali-netizen/School-Hub/internal/features/homework"
)

type countingPurger struct {
	calls chan struct{}
}

func (p *countingPurger) Purge(context.Context) (homework.PurgeStats, error) {
	p.calls <- struct{}{}
	return homework.PurgeStats{}, nil
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&countingPurger{calls: make(chan struct{}, 1)}, "every day", time.UTC)
	assert.Error(t, s.Start(context.Background()))
}

func TestSchedulerRunsPurge(t *testing.T) {
	p := &countingPurger{calls: make(chan struct{}, 4)}
	s := NewScheduler(p, "@every 1s", time.UTC)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	select {
	case <-p.calls:
	case <-time.After(3 * time.Second):
		t.Fatal("очистка не запустилась")
	}
}
