// Package votes — repository.go работает с таблицей votes.
package votes

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alisher2011ali-netizen/School-Hub/internal/features/reputation"
)

// Repository — реализация Store поверх PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий голосов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// InsertVote записывает голос и меняет репутацию автора в одной транзакции.
// false — пара уже голосовала, существующий голос не перезаписывается.
func (r *Repository) InsertVote(ctx context.Context, v Vote, authorID int64) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO votes (user_id, solution_id, vote_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, solution_id) DO NOTHING
	`
	tag, err := tx.Exec(ctx, query, v.UserID, v.SolutionID, v.Value)
	if err != nil {
		return false, fmt.Errorf("ошибка записи голоса: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := reputation.Adjust(ctx, tx, authorID, v.Value); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("ошибка коммита: %w", err)
	}
	return true, nil
}

// Tally пересчитывает голоса решения по строкам таблицы.
func (r *Repository) Tally(ctx context.Context, solutionID int64) (Tally, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE vote_value = 1),
			COUNT(*) FILTER (WHERE vote_value = -1)
		FROM votes
		WHERE solution_id = $1
	`
	var t Tally
	if err := r.db.QueryRow(ctx, query, solutionID).Scan(&t.Ups, &t.Downs); err != nil {
		return Tally{}, fmt.Errorf("ошибка подсчёта голосов: %w", err)
	}
	return t, nil
}
