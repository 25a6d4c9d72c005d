// Package reputation — repository.go обновляет колонку users.reputation.
package reputation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
)

// Querier — пул или транзакция pgx.
// Репозитории решений и голосов передают сюда свою транзакцию,
// чтобы запись и изменение репутации применялись вместе.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Adjust меняет репутацию на delta одним UPDATE и возвращает новое значение.
// Чтение и запись не разделены, поэтому параллельные голоса не теряются.
// Пола и потолка нет.
func Adjust(ctx context.Context, q Querier, userID int64, delta int) (int, error) {
	query := `
		UPDATE users
		SET reputation = reputation + $2
		WHERE user_id = $1
		RETURNING reputation
	`
	var reputation int
	err := q.QueryRow(ctx, query, userID, delta).Scan(&reputation)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("user_id=%d: %w", userID, common.ErrUserNotFound)
		}
		return 0, fmt.Errorf("ошибка изменения репутации: %w", err)
	}
	return reputation, nil
}
