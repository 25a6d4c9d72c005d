// Package conversation — machine.go: переходы между шагами.
// Машина не ходит в хранилища и не отправляет сообщения: она получает
// состояние и событие и возвращает, что произошло.
package conversation

import (
	"errors"
	"strings"

	"github.com/alisher2011ali-netizen/School-Hub/internal/assembler"
	"github.com/alisher2011ali-netizen/School-Hub/internal/callback"
	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
)

// Ответы с клавиатур.
const (
	TokenYes       = "✅ Да, верно"
	TokenNo        = "❌ Нет"
	TokenSkipPhoto = "Пропустить фото"
	TokenDone      = "Готово ✅"
	TokenAnonymous = "Анонимно"
	TokenNamed     = "От своего имени"
	TokenCancel    = "❌ Отмена"
)

// Статусы для назначения админа.
const (
	StatusAdmin   = "1"
	StatusStudent = "0"
)

// ErrUnknownStep — состояние не соответствует ни одному шагу.
// Такое состояние нужно сбросить.
var ErrUnknownStep = errors.New("неизвестный шаг диалога")

// Outcome — итог обработки события.
type Outcome int

const (
	// Reprompt — ответ не подошёл, шаг тот же, данные сохранены.
	Reprompt Outcome = iota
	// Advanced — переход на следующий шаг.
	Advanced
	// Collected — данные добавлены, шаг тот же (фото к решению).
	Collected
	// Completed — все данные собраны, запись можно сохранять.
	Completed
	// Restarted — диалог начат заново с первого шага, поля стёрты.
	Restarted
)

func (o Outcome) String() string {
	switch o {
	case Reprompt:
		return "reprompt"
	case Advanced:
		return "advanced"
	case Collected:
		return "collected"
	case Completed:
		return "completed"
	case Restarted:
		return "restarted"
	default:
		return "unknown"
	}
}

// Result — итог перехода. State — состояние после перехода.
// Err заполнен только при Reprompt и объясняет, что не так.
type Result struct {
	Outcome Outcome
	State   *State
	Err     error
}

// IsCancel сообщает, что пользователь хочет отменить диалог.
func IsCancel(ev Event) bool {
	if ev.Kind != KindText {
		return false
	}
	text := strings.TrimSpace(ev.Text)
	return text == TokenCancel || text == "/cancel"
}

// Machine переводит диалоги между шагами.
type Machine struct {
	Now common.Clock
}

// NewMachine создаёт машину с часами в поясе школы.
func NewMachine(now common.Clock) *Machine {
	return &Machine{Now: now}
}

// Handle применяет событие к состоянию. Исходное состояние не меняется.
func (m *Machine) Handle(st *State, ev Event) Result {
	if st == nil || !Valid(st.Flow, st.Step) {
		return Result{Outcome: Reprompt, State: st, Err: ErrUnknownStep}
	}

	next := st.Clone()
	next.UpdatedAt = m.Now()

	switch st.Flow {
	case FlowRegistration:
		return m.registration(next, ev)
	case FlowAddHomework:
		return m.addHomework(next, ev)
	case FlowAddSolution:
		return m.addSolution(next, ev)
	case FlowBan, FlowUnban:
		return m.targetID(next, ev)
	case FlowPromote:
		return m.promote(next, ev)
	case FlowReport:
		return m.report(next, ev)
	case FlowAdminLogin:
		return m.adminLogin(next, ev)
	}
	return Result{Outcome: Reprompt, State: st, Err: ErrUnknownStep}
}

func reprompt(st *State, err error) Result {
	return Result{Outcome: Reprompt, State: st, Err: err}
}

func advance(st *State, step Step) Result {
	st.Step = step
	return Result{Outcome: Advanced, State: st}
}

func complete(st *State) Result {
	return Result{Outcome: Completed, State: st}
}

// text возвращает текст события или ошибку, если пришёл не текст.
func text(ev Event) (string, error) {
	if ev.Kind != KindText {
		return "", common.ErrEmptyText
	}
	t := strings.TrimSpace(ev.Text)
	if t == "" {
		return "", common.ErrEmptyText
	}
	return t, nil
}

// --- Регистрация ---

func (m *Machine) registration(st *State, ev Event) Result {
	input, err := text(ev)
	if err != nil {
		return reprompt(st, err)
	}

	switch st.Step {
	case StepGrade:
		grade, letter, err := assembler.ParseGradeLetter(input)
		if err != nil {
			return reprompt(st, err)
		}
		st.Put(assembler.FieldGrade, itoa(grade))
		if letter == "" {
			return advance(st, StepLetter)
		}
		st.Put(assembler.FieldLetter, letter)
		return advance(st, StepConfirm)

	case StepConfirm:
		switch input {
		case TokenYes:
			return advance(st, StepName)
		case TokenNo:
			st.Fields = make(map[string]string)
			st.Photos = nil
			st.Step = StepGrade
			return Result{Outcome: Restarted, State: st}
		}
		return reprompt(st, common.ErrUnexpectedInput)

	case StepLetter:
		letter, err := assembler.ParseLetter(input)
		if err != nil {
			return reprompt(st, err)
		}
		st.Put(assembler.FieldLetter, letter)
		return advance(st, StepName)

	case StepName:
		first, last, err := assembler.ParseName(input)
		if err != nil {
			return reprompt(st, err)
		}
		st.Put(assembler.FieldFirstName, first)
		st.Put(assembler.FieldLastName, last)
		return complete(st)
	}
	return reprompt(st, ErrUnknownStep)
}

// --- Домашнее задание ---

func (m *Machine) addHomework(st *State, ev Event) Result {
	switch st.Step {
	case StepSubject:
		input, err := text(ev)
		if err != nil {
			return reprompt(st, err)
		}
		st.Put(assembler.FieldSubject, input)
		return advance(st, StepText)

	case StepText:
		input, err := text(ev)
		if err != nil {
			return reprompt(st, err)
		}
		st.Put(assembler.FieldText, input)
		return advance(st, StepPhoto)

	case StepPhoto:
		if ev.Kind == KindPhoto && ev.PhotoID != "" {
			st.Put(assembler.FieldPhoto, ev.PhotoID)
			return advance(st, StepDate)
		}
		if ev.Kind == KindText && strings.TrimSpace(ev.Text) == TokenSkipPhoto {
			return advance(st, StepDate)
		}
		return reprompt(st, common.ErrPhotoExpected)

	case StepDate:
		if ev.Kind != KindCallback || ev.Payload.Verb != callback.VerbDate {
			return reprompt(st, common.ErrUnexpectedInput)
		}
		if ev.Payload.Manual {
			return advance(st, StepManualDate)
		}
		if err := m.putDate(st, ev.Payload.Date.Format(common.DateLayout)); err != nil {
			return reprompt(st, err)
		}
		return advance(st, StepAnon)

	case StepManualDate:
		input, err := text(ev)
		if err != nil {
			return reprompt(st, common.ErrInvalidDate)
		}
		date, err := assembler.ParseDayMonth(input, m.Now.Today().Year())
		if err != nil {
			return reprompt(st, err)
		}
		if err := m.putDate(st, date.Format(common.DateLayout)); err != nil {
			return reprompt(st, err)
		}
		return advance(st, StepAnon)

	case StepAnon:
		return anon(st, ev)
	}
	return reprompt(st, ErrUnknownStep)
}

// putDate сохраняет срок, если он не в прошлом.
func (m *Machine) putDate(st *State, date string) error {
	if date < m.Now.Today().Format(common.DateLayout) {
		return common.ErrDateInPast
	}
	st.Put(assembler.FieldDate, date)
	return nil
}

func anon(st *State, ev Event) Result {
	input, _ := text(ev)
	switch input {
	case TokenAnonymous:
		st.Put(assembler.FieldAnonymous, assembler.True)
	case TokenNamed:
		st.Put(assembler.FieldAnonymous, assembler.False)
	default:
		return reprompt(st, common.ErrUnexpectedInput)
	}
	return complete(st)
}

// --- Решение ---

func (m *Machine) addSolution(st *State, ev Event) Result {
	switch st.Step {
	case StepContent:
		switch ev.Kind {
		case KindPhoto:
			if ev.PhotoID == "" {
				return reprompt(st, common.ErrPhotoExpected)
			}
			st.AddPhoto(ev.PhotoID)
			appendText(st, ev.Text)
			return Result{Outcome: Collected, State: st}

		case KindText:
			input := strings.TrimSpace(ev.Text)
			if input == TokenDone {
				if st.Get(assembler.FieldText) == "" && len(st.Photos) == 0 {
					return reprompt(st, common.ErrEmptySolution)
				}
				return advance(st, StepAnon)
			}
			if input == "" {
				return reprompt(st, common.ErrEmptyText)
			}
			appendText(st, input)
			return Result{Outcome: Collected, State: st}
		}
		return reprompt(st, common.ErrEmptySolution)

	case StepAnon:
		return anon(st, ev)
	}
	return reprompt(st, ErrUnknownStep)
}

// appendText дописывает текст решения новой строкой.
func appendText(st *State, s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if prev := st.Get(assembler.FieldText); prev != "" {
		s = prev + "\n" + s
	}
	st.Put(assembler.FieldText, s)
}

// --- Админка ---

func (m *Machine) targetID(st *State, ev Event) Result {
	input, err := text(ev)
	if err != nil {
		return reprompt(st, common.ErrNotNumeric)
	}
	if _, err := assembler.ID(input); err != nil {
		return reprompt(st, err)
	}
	st.Put(assembler.FieldTargetID, input)
	return complete(st)
}

func (m *Machine) promote(st *State, ev Event) Result {
	switch st.Step {
	case StepPromoteID:
		input, err := text(ev)
		if err != nil {
			return reprompt(st, common.ErrNotNumeric)
		}
		if _, err := assembler.ID(input); err != nil {
			return reprompt(st, err)
		}
		st.Put(assembler.FieldTargetID, input)
		return advance(st, StepPromoteStatus)

	case StepPromoteStatus:
		input, _ := text(ev)
		if input != StatusAdmin && input != StatusStudent {
			return reprompt(st, common.ErrInvalidStatus)
		}
		st.Put(assembler.FieldStatus, input)
		return complete(st)
	}
	return reprompt(st, ErrUnknownStep)
}

// --- Жалоба и вход ---

func (m *Machine) report(st *State, ev Event) Result {
	input, err := text(ev)
	if err != nil {
		return reprompt(st, err)
	}
	st.Put(assembler.FieldReason, input)
	return complete(st)
}

func (m *Machine) adminLogin(st *State, ev Event) Result {
	input, err := text(ev)
	if err != nil {
		return reprompt(st, err)
	}
	st.Put(assembler.FieldPassword, input)
	return complete(st)
}
