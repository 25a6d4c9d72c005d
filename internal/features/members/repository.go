// Package members — repository.go отвечает за все операции с таблицей users в БД.
// Каждая функция выполняет один SQL-запрос и возвращает результат или ошибку.
package members

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
)

// Repository — реализация Store поверх PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const userColumns = `user_id, first_name, last_name, grade, letter, reputation, is_admin, is_banned, created_at`

// CreateUser добавляет ученика. Повторная регистрация не перезаписывает
// класс и репутацию: вернётся common.ErrAlreadyRegistered.
func (r *Repository) CreateUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (user_id, first_name, last_name, grade, letter, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, u.UserID, u.FirstName, u.LastName, u.Grade, u.Letter, u.IsAdmin)
	if err != nil {
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user_id=%d: %w", u.UserID, common.ErrAlreadyRegistered)
	}
	return nil
}

// UserByID: если не найден — ошибка с common.ErrUserNotFound.
func (r *Repository) UserByID(ctx context.Context, userID int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user_id=%d: %w", userID, common.ErrUserNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения пользователя (user_id=%d): %w", userID, err)
	}
	return u, nil
}

// TopUsers возвращает лучших учеников по репутации.
func (r *Repository) TopUsers(ctx context.Context, limit int) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY reputation DESC, user_id LIMIT $1`
	return r.queryUsers(ctx, query, limit)
}

// ClassUsers возвращает одноклассников, отсортированных по репутации.
func (r *Repository) ClassUsers(ctx context.Context, grade int, letter string) ([]*User, error) {
	query := `
		SELECT ` + userColumns + ` FROM users
		WHERE grade = $1 AND letter = $2
		ORDER BY reputation DESC, user_id
	`
	return r.queryUsers(ctx, query, grade, letter)
}

// SetBanned выставляет флаг бана (абсолютное значение).
func (r *Repository) SetBanned(ctx context.Context, userID int64, banned bool) error {
	return r.setFlag(ctx, `UPDATE users SET is_banned = $2 WHERE user_id = $1`, userID, banned)
}

// SetAdmin выставляет флаг администратора (абсолютное значение).
func (r *Repository) SetAdmin(ctx context.Context, userID int64, admin bool) error {
	return r.setFlag(ctx, `UPDATE users SET is_admin = $2 WHERE user_id = $1`, userID, admin)
}

func (r *Repository) setFlag(ctx context.Context, query string, userID int64, value bool) error {
	tag, err := r.db.Exec(ctx, query, userID, value)
	if err != nil {
		return fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user_id=%d: %w", userID, common.ErrUserNotFound)
	}
	return nil
}

func (r *Repository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]*User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса пользователей: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}

	return out, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.UserID, &u.FirstName, &u.LastName, &u.Grade, &u.Letter,
		&u.Reputation, &u.IsAdmin, &u.IsBanned, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
