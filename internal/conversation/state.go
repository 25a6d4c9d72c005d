// Package conversation ведёт пошаговые диалоги с пользователями:
// регистрацию, добавление заданий и решений, админ-действия и жалобы.
// У каждого пользователя не больше одного активного диалога.
package conversation

import (
	"fmt"
	"strconv"
	"time"
)

// Flow — диалог.
type Flow string

const (
	FlowRegistration Flow = "registration"
	FlowAddHomework  Flow = "add_homework"
	FlowAddSolution  Flow = "add_solution"
	FlowBan          Flow = "ban"
	FlowUnban        Flow = "unban"
	FlowPromote      Flow = "promote"
	FlowReport       Flow = "report"
	FlowAdminLogin   Flow = "admin_login"
)

// Step — шаг диалога, на котором ждём ответ.
type Step string

const (
	// Регистрация
	StepGrade   Step = "grade"
	StepLetter  Step = "letter"
	StepConfirm Step = "confirm"
	StepName    Step = "name"

	// Домашнее задание
	StepSubject    Step = "subject"
	StepText       Step = "text"
	StepPhoto      Step = "photo"
	StepDate       Step = "date"
	StepManualDate Step = "manual"
	StepAnon       Step = "anon"

	// Решение (StepAnon общий)
	StepContent Step = "content"

	// Админка
	StepBanID         Step = "waiting_for_ban_id"
	StepUnbanID       Step = "waiting_for_unban_id"
	StepPromoteID     Step = "waiting_for_promote_id"
	StepPromoteStatus Step = "waiting_for_promote_status"

	// Жалоба и вход в админку
	StepReason   Step = "reason"
	StepPassword Step = "password"
)

// steps — допустимые шаги каждого диалога, первый шаг — начальный.
var steps = map[Flow][]Step{
	FlowRegistration: {StepGrade, StepLetter, StepConfirm, StepName},
	FlowAddHomework:  {StepSubject, StepText, StepPhoto, StepDate, StepManualDate, StepAnon},
	FlowAddSolution:  {StepContent, StepAnon},
	FlowBan:          {StepBanID},
	FlowUnban:        {StepUnbanID},
	FlowPromote:      {StepPromoteID, StepPromoteStatus},
	FlowReport:       {StepReason},
	FlowAdminLogin:   {StepPassword},
}

// Valid сообщает, что шаг принадлежит диалогу.
func Valid(flow Flow, step Step) bool {
	for _, s := range steps[flow] {
		if s == step {
			return true
		}
	}
	return false
}

// State — состояние диалога одного пользователя.
type State struct {
	Flow      Flow              `json:"flow"`
	Step      Step              `json:"step"`
	Fields    map[string]string `json:"fields,omitempty"`
	Photos    []string          `json:"photos,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Start начинает диалог с первого шага.
func Start(flow Flow, now time.Time) (*State, error) {
	list, ok := steps[flow]
	if !ok {
		return nil, fmt.Errorf("неизвестный диалог %q", flow)
	}
	return &State{
		Flow:      flow,
		Step:      list[0],
		Fields:    make(map[string]string),
		UpdatedAt: now,
	}, nil
}

// Put добавляет или обновляет поле.
func (s *State) Put(key, value string) {
	if s.Fields == nil {
		s.Fields = make(map[string]string)
	}
	s.Fields[key] = value
}

// Get возвращает поле или пустую строку.
func (s *State) Get(key string) string {
	return s.Fields[key]
}

// AddPhoto добавляет фото в конец списка.
func (s *State) AddPhoto(fileID string) {
	s.Photos = append(s.Photos, fileID)
}

// Clone возвращает независимую копию.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Fields = make(map[string]string, len(s.Fields))
	for k, v := range s.Fields {
		out.Fields[k] = v
	}
	out.Photos = append([]string(nil), s.Photos...)
	return &out
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
