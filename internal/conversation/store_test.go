package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got, "нет диалога — nil")

	st, err := Start(FlowAddSolution, now)
	require.NoError(t, err)
	st.Put("homework_id", "7")
	st.AddPhoto("a")
	st.AddPhoto("b")
	require.NoError(t, store.Save(ctx, 1, st))

	got, err = store.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, FlowAddSolution, got.Flow)
	assert.Equal(t, StepContent, got.Step)
	assert.Equal(t, "7", got.Get("homework_id"))
	assert.Equal(t, []string{"a", "b"}, got.Photos)

	other, err := store.Get(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, other, "состояния пользователей не пересекаются")

	require.NoError(t, store.Clear(ctx, 1))
	got, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	st, err := Start(FlowRegistration, now)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, 1, st))

	st.Put("grade", "9")
	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, got.Get("grade"), "изменения после Save не попадают в хранилище")
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewRedisClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	defer client.Close()

	testStore(t, NewRedisStore(client, 0))
}

func TestRedisStoreTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewRedisClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	defer client.Close()

	store := NewRedisStore(client, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	st, err := Start(FlowReport, now)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, 5, st))
	assert.Equal(t, time.Hour, mr.TTL(stateKey(5)))

	mr.FastForward(2 * time.Hour)
	got, err := store.Get(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, got, "просроченный диалог исчезает")

	persistent := NewRedisStore(client, 0)
	require.NoError(t, persistent.Save(ctx, 6, st))
	assert.Zero(t, mr.TTL(stateKey(6)))
}
