package members_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
	"github.com/alisher2011ali-netizen/School-Hub/internal/db/memory"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/members"
)

func TestRegisterAndGet(t *testing.T) {
	ctx := context.Background()
	svc := members.NewService(memory.New())

	u := &members.User{UserID: 10, FirstName: "Иван", LastName: "Петров", Grade: 9, Letter: "А"}
	require.NoError(t, svc.Register(ctx, u))

	got, err := svc.Get(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "Иван Петров", got.DisplayName())
	assert.Equal(t, "9-А", got.ClassName())
	assert.Zero(t, got.Reputation)

	err = svc.Register(ctx, &members.User{UserID: 10, FirstName: "Другой", Grade: 11, Letter: "Б"})
	assert.ErrorIs(t, err, common.ErrAlreadyRegistered)

	got, err = svc.Get(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Grade, "класс после регистрации не меняется")

	_, err = svc.Get(ctx, 11)
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestTopAndClassmates(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := members.NewService(store)

	for _, u := range []*members.User{
		{UserID: 1, FirstName: "А", Grade: 9, Letter: "А"},
		{UserID: 2, FirstName: "Б", Grade: 9, Letter: "А"},
		{UserID: 3, FirstName: "В", Grade: 10, Letter: "Т"},
	} {
		require.NoError(t, svc.Register(ctx, u))
	}
	_, err := store.AdjustReputation(ctx, 2, 10)
	require.NoError(t, err)
	_, err = store.AdjustReputation(ctx, 3, 20)
	require.NoError(t, err)

	top, err := svc.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(3), top[0].UserID)
	assert.Equal(t, int64(2), top[1].UserID)

	me, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	class, err := svc.Classmates(ctx, me)
	require.NoError(t, err)
	require.Len(t, class, 2)
	assert.Equal(t, int64(2), class[0].UserID)
}

func TestFlags(t *testing.T) {
	ctx := context.Background()
	svc := members.NewService(memory.New())
	require.NoError(t, svc.Register(ctx, &members.User{UserID: 1, FirstName: "А", Grade: 9, Letter: "А"}))

	require.NoError(t, svc.SetBanned(ctx, 1, true))
	require.NoError(t, svc.SetAdmin(ctx, 1, true))

	u, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, u.IsBanned)
	assert.True(t, u.IsAdmin)

	assert.ErrorIs(t, svc.SetBanned(ctx, 2, true), common.ErrUserNotFound)
}
