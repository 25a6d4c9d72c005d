// Package homework — repository.go работает с таблицами subjects, homework,
// solutions и media.
package homework

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/reputation"
)

// Repository — реализация Store поверх PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий заданий.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// --- Предметы ---

// SeedSubjects добавляет недостающие предметы. Повторный вызов ничего не меняет.
func (r *Repository) SeedSubjects(ctx context.Context, names []string) error {
	batch := &pgx.Batch{}
	for _, name := range names {
		batch.Queue(`INSERT INTO subjects (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("ошибка заполнения предметов: %w", err)
	}
	return nil
}

// Subjects возвращает все предметы в порядке добавления.
func (r *Repository) Subjects(ctx context.Context) ([]*Subject, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM subjects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса предметов: %w", err)
	}
	defer rows.Close()

	var out []*Subject
	for rows.Next() {
		var s Subject
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// SubjectByName: если нет — common.ErrSubjectNotFound.
func (r *Repository) SubjectByName(ctx context.Context, name string) (*Subject, error) {
	var s Subject
	err := r.db.QueryRow(ctx, `SELECT id, name FROM subjects WHERE name = $1`, name).Scan(&s.ID, &s.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%q: %w", name, common.ErrSubjectNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения предмета: %w", err)
	}
	return &s, nil
}

// --- Задания ---

const homeworkColumns = `
	h.id, h.subject_id, s.name, h.grade, h.letter, h.text, COALESCE(h.photo_id, ''),
	h.author_id, h.target_date, h.is_anonymous, h.created_at`

// CreateHomework сохраняет задание и проставляет hw.ID.
func (r *Repository) CreateHomework(ctx context.Context, hw *Homework) error {
	query := `
		INSERT INTO homework (subject_id, grade, letter, text, photo_id, author_id, target_date, is_anonymous)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		hw.SubjectID, hw.Grade, hw.Letter, hw.Text, hw.PhotoID,
		hw.AuthorID, hw.TargetDate, hw.IsAnonymous,
	).Scan(&hw.ID, &hw.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания задания: %w", err)
	}
	return nil
}

// HomeworkByID: если нет — common.ErrHomeworkNotFound.
func (r *Repository) HomeworkByID(ctx context.Context, id int64) (*Homework, error) {
	query := `SELECT ` + homeworkColumns + `
		FROM homework h JOIN subjects s ON s.id = h.subject_id
		WHERE h.id = $1`
	hw, err := scanHomework(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("homework_id=%d: %w", id, common.ErrHomeworkNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения задания: %w", err)
	}
	return hw, nil
}

// HomeworkByClass возвращает актуальные задания класса: ближайшие сроки первыми,
// в пределах одного дня — свежие первыми. Задания с прошедшим сроком не попадают.
func (r *Repository) HomeworkByClass(ctx context.Context, grade int, letter string, today time.Time) ([]*Homework, error) {
	query := `SELECT ` + homeworkColumns + `
		FROM homework h JOIN subjects s ON s.id = h.subject_id
		WHERE h.grade = $1 AND h.letter = $2 AND h.target_date >= $3
		ORDER BY h.target_date ASC, h.created_at DESC, h.id DESC`
	rows, err := r.db.Query(ctx, query, grade, letter, today)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса заданий: %w", err)
	}
	defer rows.Close()

	var out []*Homework
	for rows.Next() {
		hw, err := scanHomework(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, hw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// --- Решения ---

// CreateSolution сохраняет решение, его фото и бонус автору
// в одной транзакции. Возвращает новую репутацию автора.
func (r *Repository) CreateSolution(ctx context.Context, sol *Solution, bonus int) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO solutions (homework_id, author_id, text, is_anonymous)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, query, sol.HomeworkID, sol.AuthorID, sol.Text, sol.IsAnonymous).
		Scan(&sol.ID, &sol.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания решения: %w", err)
	}

	for i, fileID := range sol.Photos {
		_, err := tx.Exec(ctx,
			`INSERT INTO media (solution_id, file_id, position) VALUES ($1, $2, $3)`,
			sol.ID, fileID, i,
		)
		if err != nil {
			return 0, fmt.Errorf("ошибка сохранения фото: %w", err)
		}
	}

	rep, err := reputation.Adjust(ctx, tx, sol.AuthorID, bonus)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка коммита: %w", err)
	}
	return rep, nil
}

// SolutionByID возвращает решение вместе с фото.
func (r *Repository) SolutionByID(ctx context.Context, id int64) (*Solution, error) {
	query := `
		SELECT id, homework_id, author_id, text, is_anonymous, created_at
		FROM solutions WHERE id = $1
	`
	var s Solution
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.HomeworkID, &s.AuthorID, &s.Text, &s.IsAnonymous, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("solution_id=%d: %w", id, common.ErrSolutionNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения решения: %w", err)
	}

	s.Photos, err = r.photos(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SolutionsByHomework возвращает решения задания в порядке добавления.
func (r *Repository) SolutionsByHomework(ctx context.Context, homeworkID int64) ([]*Solution, error) {
	query := `
		SELECT id, homework_id, author_id, text, is_anonymous, created_at
		FROM solutions WHERE homework_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, homeworkID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса решений: %w", err)
	}

	var out []*Solution
	for rows.Next() {
		var s Solution
		if err := rows.Scan(&s.ID, &s.HomeworkID, &s.AuthorID, &s.Text, &s.IsAnonymous, &s.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, &s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}

	for _, s := range out {
		if s.Photos, err = r.photos(ctx, s.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CountSolutions возвращает число решений задания.
func (r *Repository) CountSolutions(ctx context.Context, homeworkID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM solutions WHERE homework_id = $1`, homeworkID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта решений: %w", err)
	}
	return count, nil
}

func (r *Repository) photos(ctx context.Context, solutionID int64) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT file_id FROM media WHERE solution_id = $1 ORDER BY position`, solutionID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса фото: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var fileID string
		if err := rows.Scan(&fileID); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, fileID)
	}
	return out, rows.Err()
}

// --- Очистка ---

// PurgeExpired удаляет задания со сроком раньше today вместе с решениями,
// их фото и голосами. Всё в одной транзакции.
func (r *Repository) PurgeExpired(ctx context.Context, today time.Time) (PurgeStats, error) {
	var stats PurgeStats

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return stats, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		DELETE FROM media WHERE solution_id IN (
			SELECT s.id FROM solutions s
			JOIN homework h ON h.id = s.homework_id
			WHERE h.target_date < $1
		)`, today)
	if err != nil {
		return stats, fmt.Errorf("ошибка удаления фото: %w", err)
	}
	stats.Media = tag.RowsAffected()

	tag, err = tx.Exec(ctx, `
		DELETE FROM solutions WHERE homework_id IN (
			SELECT id FROM homework WHERE target_date < $1
		)`, today)
	if err != nil {
		return stats, fmt.Errorf("ошибка удаления решений: %w", err)
	}
	stats.Solutions = tag.RowsAffected()

	tag, err = tx.Exec(ctx, `DELETE FROM homework WHERE target_date < $1`, today)
	if err != nil {
		return stats, fmt.Errorf("ошибка удаления заданий: %w", err)
	}
	stats.Homework = tag.RowsAffected()

	if err := tx.Commit(ctx); err != nil {
		return stats, fmt.Errorf("ошибка коммита: %w", err)
	}
	return stats, nil
}

func scanHomework(row pgx.Row) (*Homework, error) {
	var hw Homework
	err := row.Scan(
		&hw.ID, &hw.SubjectID, &hw.SubjectName, &hw.Grade, &hw.Letter, &hw.Text, &hw.PhotoID,
		&hw.AuthorID, &hw.TargetDate, &hw.IsAnonymous, &hw.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &hw, nil
}
