// Package assembler проверяет и нормализует ответы пользователя в диалогах
// и собирает из них записи для сохранения.
package assembler

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
)

// Ограничения ввода.
const (
	maxClassInputLength = 8
	maxNameLength       = 20
	minGrade            = 1
	maxGrade            = 11
)

// Класс целиком («9А», «9 а», «10-Б») или только номер («9»).
var classPattern = regexp.MustCompile(`^(\d{1,2})\s*-?\s*(\p{L})?$`)

// День и месяц через точку: «18.01», «5.9».
var dayMonthPattern = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})$`)

// toUpper переводит букву класса в верхний регистр.
// cases.Caser хранит состояние, поэтому создаётся на каждый вызов.
func toUpper(s string) string {
	return cases.Upper(language.Russian).String(s)
}

// normalize приводит строку к NFC и обрезает пробелы.
func normalize(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// ParseGradeLetter разбирает класс. letter пустой, если прислали только номер.
func ParseGradeLetter(input string) (grade int, letter string, err error) {
	input = normalize(input)
	if input == "" || utf8.RuneCountInString(input) > maxClassInputLength {
		return 0, "", common.ErrInvalidGrade
	}

	m := classPattern.FindStringSubmatch(input)
	if m == nil {
		return 0, "", common.ErrInvalidGrade
	}

	grade, err = strconv.Atoi(m[1])
	if err != nil || grade < minGrade || grade > maxGrade {
		return 0, "", common.ErrInvalidGrade
	}

	if m[2] != "" {
		letter = toUpper(m[2])
	}
	return grade, letter, nil
}

// ParseLetter берёт первый символ ответа в верхнем регистре.
// Подходит любой непустой текст.
func ParseLetter(input string) (string, error) {
	r, _ := utf8.DecodeRuneInString(normalize(input))
	if r == utf8.RuneError {
		return "", common.ErrInvalidLetter
	}
	return toUpper(string(r)), nil
}

// ParseName берёт первые два слова как имя и фамилию,
// каждое обрезается до 20 символов.
func ParseName(input string) (first, last string, err error) {
	tokens := strings.Fields(normalize(input))
	if len(tokens) < 2 {
		return "", "", common.ErrNameTooShort
	}
	return common.Truncate(tokens[0], maxNameLength), common.Truncate(tokens[1], maxNameLength), nil
}

// ParseDayMonth разбирает «ДД.ММ» в указанном году. Несуществующие даты
// (32.13, 31.02) отклоняются. Результат — полночь UTC.
func ParseDayMonth(input string, year int) (time.Time, error) {
	m := dayMonthPattern.FindStringSubmatch(normalize(input))
	if m == nil {
		return time.Time{}, common.ErrInvalidDate
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

	// time.Date нормализует 31.02 в 03.03: такие даты не принимаем
	if date.Day() != day || int(date.Month()) != month {
		return time.Time{}, common.ErrInvalidDate
	}
	return date, nil
}

// DateOption — готовый вариант срока для кнопки.
type DateOption struct {
	Label string
	Date  time.Time
}

// DateOptions возвращает варианты «на завтра» и «на послезавтра».
func DateOptions(today time.Time) []DateOption {
	return []DateOption{
		{Label: "На завтра", Date: today.AddDate(0, 0, 1)},
		{Label: "На послезавтра", Date: today.AddDate(0, 0, 2)},
	}
}
