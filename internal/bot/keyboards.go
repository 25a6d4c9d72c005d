// Package bot — keyboards.go: клавиатуры бота.
package bot

import (
	"fmt"
	"time"

	"github.com/alisher2011ali-netizen/School-Hub/internal/assembler"
	"github.com/alisher2011ali-netizen/School-Hub/internal/callback"
	"github.com/alisher2011ali-netizen/School-Hub/internal/conversation"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/homework"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/votes"
)

// Кнопки главного меню.
const (
	MenuHomework    = "📚 Узнать ДЗ"
	MenuAddHomework = "➕ Добавить ДЗ"
	MenuClass       = "👥 Мой класс"
	MenuProfile     = "👤 Профиль"
	MenuTop         = "🏆 Топ учеников"
)

// Быстрый выбор класса при регистрации.
var (
	gradeButtons  = []string{"8", "9", "10", "11"}
	letterButtons = []string{"Т", "М", "Э", "А", "Я"}
)

func mainMenu() *Markup {
	return &Markup{Reply: [][]string{
		{MenuHomework, MenuAddHomework},
		{MenuClass, MenuProfile},
		{MenuTop},
	}}
}

func removeKeyboard() *Markup {
	return &Markup{Remove: true}
}

func cancelKeyboard() *Markup {
	return &Markup{Reply: [][]string{{conversation.TokenCancel}}}
}

func gradeKeyboard() *Markup {
	return &Markup{Reply: [][]string{gradeButtons, {conversation.TokenCancel}}}
}

func letterKeyboard() *Markup {
	return &Markup{Reply: [][]string{letterButtons, {conversation.TokenCancel}}}
}

func confirmKeyboard() *Markup {
	return &Markup{Reply: [][]string{{conversation.TokenYes, conversation.TokenNo}}}
}

// subjectKeyboard — предметы по два в ряд.
func subjectKeyboard(subjects []*homework.Subject) *Markup {
	rows := make([][]string, 0, len(subjects)/2+2)
	for i := 0; i < len(subjects); i += 2 {
		row := []string{subjects[i].Name}
		if i+1 < len(subjects) {
			row = append(row, subjects[i+1].Name)
		}
		rows = append(rows, row)
	}
	rows = append(rows, []string{conversation.TokenCancel})
	return &Markup{Reply: rows}
}

func skipPhotoKeyboard() *Markup {
	return &Markup{Reply: [][]string{{conversation.TokenSkipPhoto}, {conversation.TokenCancel}}}
}

// dateKeyboard — варианты срока от сегодняшнего дня и ручной ввод.
func dateKeyboard(today time.Time) *Markup {
	var rows [][]Button
	for _, opt := range assembler.DateOptions(today) {
		label := fmt.Sprintf("%s (%s)", opt.Label, opt.Date.Format("02.01"))
		rows = append(rows, []Button{{Text: label, Data: callback.Date(opt.Date)}})
	}
	rows = append(rows, []Button{{Text: "Другой день (внести вручную)", Data: callback.ManualDate()}})
	return &Markup{Inline: rows}
}

func anonKeyboard() *Markup {
	return &Markup{Reply: [][]string{
		{conversation.TokenAnonymous, conversation.TokenNamed},
		{conversation.TokenCancel},
	}}
}

func finishKeyboard() *Markup {
	return &Markup{Reply: [][]string{{conversation.TokenDone}, {conversation.TokenCancel}}}
}

func statusKeyboard() *Markup {
	return &Markup{Reply: [][]string{
		{conversation.StatusAdmin, conversation.StatusStudent},
		{conversation.TokenCancel},
	}}
}

// homeworkButtons — кнопки под карточкой задания.
// «Посмотреть решения» показывается, только если решения есть.
func homeworkButtons(hwID int64, solutions int) *Markup {
	rows := [][]Button{{{Text: "➕ Добавить решение", Data: callback.Encode(callback.VerbSolve, hwID)}}}
	if solutions > 0 {
		rows = append(rows, []Button{{
			Text: fmt.Sprintf("📖 Посмотреть решения (%d)", solutions),
			Data: callback.Encode(callback.VerbView, hwID),
		}})
	}
	rows = append(rows, []Button{{Text: "🚩 Пожаловаться", Data: callback.Encode(callback.VerbReportHomework, hwID)}})
	return &Markup{Inline: rows}
}

// voteButtons — кнопки голосования с текущим счётом.
func voteButtons(solID int64, t votes.Tally) *Markup {
	return &Markup{Inline: [][]Button{
		{
			{Text: fmt.Sprintf("👍 %d", t.Ups), Data: callback.Encode(callback.VerbVoteUp, solID)},
			{Text: fmt.Sprintf("👎 %d", t.Downs), Data: callback.Encode(callback.VerbVoteDown, solID)},
		},
		{{Text: "🚩 Пожаловаться", Data: callback.Encode(callback.VerbReportSolution, solID)}},
	}}
}
