package admin_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
	"github.com/alisher2011ali-netizen/School-Hub/internal/db/memory"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/admin"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/members"
)

const superAdminID = 100

func newService(t *testing.T, hash string, clock *time.Time) (*admin.Service, *members.Service) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	m := members.NewService(store)
	require.NoError(t, m.Register(ctx, &members.User{UserID: 1, FirstName: "Ученик", Grade: 9, Letter: "А"}))
	require.NoError(t, m.Register(ctx, &members.User{UserID: 2, FirstName: "Админ", Grade: 9, Letter: "А", IsAdmin: true}))

	now := func() time.Time { return *clock }
	return admin.NewService(store, m, hash, time.Hour, superAdminID, now), m
}

func TestBanUnban(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, m := newService(t, "", &now)

	target, err := svc.Ban(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, target.IsBanned)

	u, err := m.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, u.IsBanned)

	_, err = svc.Ban(ctx, 2, 2)
	assert.ErrorIs(t, err, common.ErrCannotBanAdmin)

	_, err = svc.Ban(ctx, 2, 55)
	assert.ErrorIs(t, err, common.ErrUserNotFound)

	_, err = svc.Unban(ctx, 2, 1)
	require.NoError(t, err)
	u, err = m.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, u.IsBanned)
}

func TestPromote(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, m := newService(t, "", &now)

	_, err := svc.Promote(ctx, 2, 1, true)
	assert.ErrorIs(t, err, common.ErrUnauthorized, "только суперадмин меняет права")

	_, err = svc.Promote(ctx, superAdminID, 1, true)
	require.NoError(t, err)
	u, err := m.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)

	_, err = svc.Promote(ctx, superAdminID, 1, false)
	require.NoError(t, err)
	u, err = m.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, u.IsAdmin)
}

func TestPasswordSessions(t *testing.T) {
	ctx := context.Background()
	hash, err := admin.HashPassword("s3cret")
	require.NoError(t, err)

	now := time.Date(2026, 1, 17, 12, 0, 0, 0, time.UTC)
	svc, _ := newService(t, hash, &now)
	require.True(t, svc.PasswordRequired())

	assert.ErrorIs(t, svc.RequireSession(ctx, 2), common.ErrNoSession)

	require.NoError(t, svc.VerifyPassword(ctx, 2, "s3cret"))
	assert.NoError(t, svc.RequireSession(ctx, 2))

	now = now.Add(2 * time.Hour)
	assert.ErrorIs(t, svc.RequireSession(ctx, 2), common.ErrNoSession, "сессия истекла")

	require.NoError(t, svc.VerifyPassword(ctx, 2, "s3cret"))
	require.NoError(t, svc.Logout(ctx, 2))
	assert.ErrorIs(t, svc.RequireSession(ctx, 2), common.ErrNoSession)
}

func TestPasswordLockout(t *testing.T) {
	ctx := context.Background()
	hash, err := admin.HashPassword("s3cret")
	require.NoError(t, err)

	now := time.Date(2026, 1, 17, 12, 0, 0, 0, time.UTC)
	svc, _ := newService(t, hash, &now)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, svc.VerifyPassword(ctx, 2, "wrong"), common.ErrWrongPassword)
	}
	assert.ErrorIs(t, svc.VerifyPassword(ctx, 2, "s3cret"), common.ErrTooManyAttempts)

	now = now.Add(61 * time.Minute)
	assert.NoError(t, svc.VerifyPassword(ctx, 2, "s3cret"))
}

func TestNoPasswordConfigured(t *testing.T) {
	now := time.Now()
	svc, _ := newService(t, "", &now)
	assert.False(t, svc.PasswordRequired())
	assert.NoError(t, svc.RequireSession(context.Background(), 2))
}
