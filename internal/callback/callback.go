// Package callback кодирует и разбирает данные inline-кнопок.
// Формат плоский: глагол-префикс и числовой суффикс, например
// solve_12, vote_up_7, report_sol_3, date_2026-01-18, date_manual.
package callback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
)

// Verb — действие кнопки.
type Verb string

const (
	VerbSolve          Verb = "solve"
	VerbView           Verb = "view"
	VerbVoteUp         Verb = "vote_up"
	VerbVoteDown       Verb = "vote_down"
	VerbReportHomework Verb = "report_hw"
	VerbReportSolution Verb = "report_sol"
	VerbDate           Verb = "date"
)

// manualDate — суффикс кнопки «ввести дату вручную».
const manualDate = "manual"

// ErrMalformed — данные кнопки не распознаны.
var ErrMalformed = errors.New("некорректные данные кнопки")

// Порядок важен: более длинные префиксы проверяются раньше.
var verbs = []Verb{
	VerbVoteUp, VerbVoteDown, VerbReportHomework, VerbReportSolution,
	VerbSolve, VerbView, VerbDate,
}

// Payload — разобранные данные кнопки.
type Payload struct {
	Verb Verb
	// ID задания или решения (для всех глаголов, кроме date)
	ID int64
	// Date — выбранная дата (для date_<YYYY-MM-DD>)
	Date time.Time
	// Manual — пользователь хочет ввести дату сам (date_manual)
	Manual bool
}

// Parse разбирает строку callback-данных.
func Parse(data string) (Payload, error) {
	for _, verb := range verbs {
		prefix := string(verb) + "_"
		if !strings.HasPrefix(data, prefix) {
			continue
		}
		rest := strings.TrimPrefix(data, prefix)

		if verb == VerbDate {
			if rest == manualDate {
				return Payload{Verb: verb, Manual: true}, nil
			}
			date, err := time.Parse(common.DateLayout, rest)
			if err != nil {
				return Payload{}, fmt.Errorf("%w: %q", ErrMalformed, data)
			}
			return Payload{Verb: verb, Date: date}, nil
		}

		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || id <= 0 {
			return Payload{}, fmt.Errorf("%w: %q", ErrMalformed, data)
		}
		return Payload{Verb: verb, ID: id}, nil
	}
	return Payload{}, fmt.Errorf("%w: %q", ErrMalformed, data)
}

// Encode собирает callback-данные для глагола с ID.
func Encode(verb Verb, id int64) string {
	return fmt.Sprintf("%s_%d", verb, id)
}

// Date собирает данные кнопки выбора даты.
func Date(t time.Time) string {
	return string(VerbDate) + "_" + t.Format(common.DateLayout)
}

// ManualDate — данные кнопки ручного ввода даты.
func ManualDate() string {
	return string(VerbDate) + "_" + manualDate
}
