package votes_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
	"github.com/alisher2011ali-netizen/School-Hub/internal/db/memory"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/homework"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/members"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/votes"
)

const (
	authorID = int64(1)
	voterID  = int64(2)
	otherID  = int64(3)
)

type fixture struct {
	store    *memory.Store
	resolver *votes.Resolver
	solID    int64
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.New()
	for _, id := range []int64{authorID, voterID, otherID} {
		require.NoError(t, store.CreateUser(ctx, &members.User{UserID: id, FirstName: "U", Grade: 9, Letter: "А"}))
	}

	f := &fixture{store: store, now: time.Date(2026, 1, 17, 12, 0, 0, 0, time.UTC)}
	clock := common.Clock(func() time.Time { return f.now })
	hwSvc := homework.NewService(store, clock, 5)
	require.NoError(t, hwSvc.Seed(ctx))

	hw := &homework.Homework{SubjectName: "Физика", Text: "задачи", TargetDate: f.now.AddDate(0, 0, 1)}
	require.NoError(t, hwSvc.AddHomework(ctx, &members.User{UserID: authorID, Grade: 9, Letter: "А"}, hw))

	sol := &homework.Solution{HomeworkID: hw.ID, AuthorID: authorID, Text: "ответ"}
	_, err := store.CreateSolution(ctx, sol, 0)
	require.NoError(t, err)

	f.resolver = votes.NewResolver(store, hwSvc)
	f.solID = sol.ID
	return f
}

func setup(t *testing.T) (*memory.Store, *votes.Resolver, int64) {
	t.Helper()
	f := newFixture(t)
	return f.store, f.resolver, f.solID
}

func reputationOf(t *testing.T, store *memory.Store, id int64) int {
	t.Helper()
	u, err := store.UserByID(context.Background(), id)
	require.NoError(t, err)
	return u.Reputation
}

func TestCastVoteAccepted(t *testing.T) {
	store, resolver, solID := setup(t)
	ctx := context.Background()

	tally, err := resolver.CastVote(ctx, voterID, solID, votes.Up)
	require.NoError(t, err)
	assert.Equal(t, votes.Tally{Ups: 1}, tally)
	assert.Equal(t, 1, reputationOf(t, store, authorID))

	tally, err = resolver.CastVote(ctx, otherID, solID, votes.Down)
	require.NoError(t, err)
	assert.Equal(t, votes.Tally{Ups: 1, Downs: 1}, tally)
	assert.Equal(t, 0, reputationOf(t, store, authorID))
}

func TestCastVoteDuplicate(t *testing.T) {
	store, resolver, solID := setup(t)
	ctx := context.Background()

	_, err := resolver.CastVote(ctx, voterID, solID, votes.Up)
	require.NoError(t, err)

	for _, value := range []int{votes.Up, votes.Down} {
		_, err = resolver.CastVote(ctx, voterID, solID, value)
		assert.ErrorIs(t, err, common.ErrDuplicateVote)
	}

	assert.Equal(t, 1, reputationOf(t, store, authorID))
	tally, err := resolver.Counts(ctx, solID)
	require.NoError(t, err)
	assert.Equal(t, votes.Tally{Ups: 1}, tally, "повторный голос не перезаписывает первый")
}

func TestCastVoteSelf(t *testing.T) {
	store, resolver, solID := setup(t)
	ctx := context.Background()

	for _, value := range []int{votes.Up, votes.Down} {
		_, err := resolver.CastVote(ctx, authorID, solID, value)
		assert.ErrorIs(t, err, common.ErrSelfVote)
	}

	assert.Equal(t, 0, reputationOf(t, store, authorID))
	tally, err := resolver.Counts(ctx, solID)
	require.NoError(t, err)
	assert.Zero(t, tally)

	// Отклонённый голос за себя не мешает голосовать другим
	_, err = resolver.CastVote(ctx, voterID, solID, votes.Up)
	assert.NoError(t, err)
}

func TestCastVoteRejectsBadInput(t *testing.T) {
	_, resolver, solID := setup(t)
	ctx := context.Background()

	_, err := resolver.CastVote(ctx, voterID, solID, 2)
	assert.ErrorIs(t, err, common.ErrInvalidVote)

	_, err = resolver.CastVote(ctx, voterID, solID+100, votes.Up)
	assert.ErrorIs(t, err, common.ErrSolutionNotFound)
}

func TestCastVoteExpiredHomework(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Срок задания (18.01) прошёл, очистка ещё не запускалась
	f.now = time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)

	_, err := f.resolver.CastVote(ctx, voterID, f.solID, votes.Up)
	assert.ErrorIs(t, err, common.ErrHomeworkNotFound)

	assert.Equal(t, 0, reputationOf(t, f.store, authorID))
	tally, err := f.resolver.Counts(ctx, f.solID)
	require.NoError(t, err)
	assert.Zero(t, tally)
}

func TestCastVoteConcurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const voters = 50
	for id := int64(10); id < 10+voters; id++ {
		require.NoError(t, f.store.CreateUser(ctx, &members.User{UserID: id, FirstName: "U", Grade: 9, Letter: "А"}))
	}

	var wg sync.WaitGroup
	for id := int64(10); id < 10+voters; id++ {
		wg.Add(1)
		go func(voter int64) {
			defer wg.Done()
			// Каждый голосует дважды: второй голос должен отклониться
			_, err := f.resolver.CastVote(ctx, voter, f.solID, votes.Up)
			assert.NoError(t, err)
			_, err = f.resolver.CastVote(ctx, voter, f.solID, votes.Up)
			assert.ErrorIs(t, err, common.ErrDuplicateVote)
		}(id)
	}
	wg.Wait()

	assert.Equal(t, voters, reputationOf(t, f.store, authorID))
	tally, err := f.resolver.Counts(ctx, f.solID)
	require.NoError(t, err)
	assert.Equal(t, votes.Tally{Ups: voters}, tally)
}
