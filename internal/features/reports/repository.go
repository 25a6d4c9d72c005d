// Package reports — repository.go работает с таблицей reports.
package reports

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository — реализация Store поверх PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий жалоб.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateReport сохраняет жалобу и проставляет ID, статус и время.
func (r *Repository) CreateReport(ctx context.Context, rep *Report) error {
	query := `
		INSERT INTO reports (reporter_id, target_id, type, content_id, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, status, created_at
	`
	err := r.db.QueryRow(ctx, query, rep.ReporterID, rep.TargetID, string(rep.Type), rep.ContentID, rep.Reason).
		Scan(&rep.ID, &rep.Status, &rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания жалобы: %w", err)
	}
	return nil
}
