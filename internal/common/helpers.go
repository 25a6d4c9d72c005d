// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: часовой пояс и даты, русская плюрализация, форматирование.
package common

import (
	"time"
	"unicode"
)

// DateLayout — формат даты в callback-данных и в БД.
const DateLayout = "2006-01-02"

// Clock отдаёт текущее время в часовом поясе школы.
// В тестах подменяется фиксированным временем.
type Clock func() time.Time

// LoadLocation загружает часовой пояс по имени.
// Если не удалось (нет tzdata в контейнере) — используем UTC+3 вручную.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

// NewClock возвращает часы в указанном часовом поясе.
func NewClock(loc *time.Location) Clock {
	return func() time.Time {
		return time.Now().In(loc)
	}
}

// FixedClock возвращает часы, которые всегда показывают t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// Today возвращает только дату (без времени) в поясе часов.
func (c Clock) Today() time.Time {
	return DateOf(c())
}

// DateOf отбрасывает время, оставляя полночь того же дня.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FormatDate форматирует дату как "18.01.2026".
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// Truncate обрезает строку до max символов (рун, не байт).
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func toUpperRune(r rune) rune {
	return unicode.ToUpper(r)
}
