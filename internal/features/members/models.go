// Package members управляет учениками: регистрацией, профилем, флагами бана и админки.
// models.go описывает структуру записи в таблице users.
package members

import (
	"fmt"
	"time"
)

// User — зарегистрированный ученик.
// Запись создаётся при завершении регистрации и никогда не удаляется.
type User struct {
	UserID     int64     `db:"user_id"`    // Telegram user ID
	FirstName  string    `db:"first_name"` // Имя (до 20 символов)
	LastName   string    `db:"last_name"`  // Фамилия (до 20 символов)
	Grade      int       `db:"grade"`      // Номер класса
	Letter     string    `db:"letter"`     // Буква класса, один символ
	Reputation int       `db:"reputation"` // Репутация, может быть отрицательной
	IsAdmin    bool      `db:"is_admin"`
	IsBanned   bool      `db:"is_banned"`
	CreatedAt  time.Time `db:"created_at"`
}

// DisplayName возвращает «Имя Фамилия».
func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ClassName возвращает класс в виде "9-А".
func (u *User) ClassName() string {
	return FormatClass(u.Grade, u.Letter)
}

// FormatClass форматирует класс как "9-А".
func FormatClass(grade int, letter string) string {
	return fmt.Sprintf("%d-%s", grade, letter)
}
