// Package conversation — redis.go: хранилище состояний в Redis (STATE_DRIVER=redis).
// Диалоги переживают перезапуск бота.
package conversation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
)

const stateKeyPrefix = "school-hub:state:"

// RedisStore хранит состояния как JSON.
type RedisStore struct {
	client rueidis.Client
	// 0 — без срока жизни
	ttl time.Duration
}

// NewRedisClient подключается к Redis.
func NewRedisClient(addr, password string, db int) (rueidis.Client, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{addr},
		Password:     password,
		SelectDB:     db,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
	}
	return client, nil
}

// NewRedisStore создаёт хранилище поверх готового клиента.
func NewRedisStore(client rueidis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func stateKey(userID int64) string {
	return stateKeyPrefix + strconv.FormatInt(userID, 10)
}

func (r *RedisStore) Get(ctx context.Context, userID int64) (*State, error) {
	data, err := r.client.Do(ctx, r.client.B().Get().Key(stateKey(userID)).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения состояния: %w", err)
	}

	var st State
	if err := sonic.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("ошибка разбора состояния: %w", err)
	}
	if st.Fields == nil {
		st.Fields = make(map[string]string)
	}
	return &st, nil
}

func (r *RedisStore) Save(ctx context.Context, userID int64, st *State) error {
	data, err := sonic.MarshalString(st)
	if err != nil {
		return fmt.Errorf("ошибка сериализации состояния: %w", err)
	}

	key := stateKey(userID)
	if r.ttl > 0 {
		err = r.client.Do(ctx, r.client.B().Set().Key(key).Value(data).Ex(r.ttl).Build()).Error()
	} else {
		err = r.client.Do(ctx, r.client.B().Set().Key(key).Value(data).Build()).Error()
	}
	if err != nil {
		return fmt.Errorf("ошибка сохранения состояния: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, userID int64) error {
	if err := r.client.Do(ctx, r.client.B().Del().Key(stateKey(userID)).Build()).Error(); err != nil {
		return fmt.Errorf("ошибка удаления состояния: %w", err)
	}
	return nil
}
