// Package bot — router.go: единая точка обработки событий.
// Порядок: отмена → команды → активный диалог → кнопки меню.
// Нажатия inline-кнопок разбираются отдельно по глаголу callback.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/alisher2011ali-netizen/School-Hub/internal/assembler"
	"github.com/alisher2011ali-netizen/School-Hub/internal/callback"
	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
	"github.com/alisher2011ali-netizen/School-Hub/internal/conversation"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/admin"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/homework"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/members"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/moderation"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/reports"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/votes"
)

const helpText = `📖 School Hub — домашние задания твоего класса.

📚 Узнать ДЗ — актуальные задания класса
➕ Добавить ДЗ — выложить задание
👥 Мой класс — одноклассники и их репутация
👤 Профиль — класс, репутация и ранг
🏆 Топ учеников — лучшие по репутации

Под заданием можно добавить решение или посмотреть чужие.
За каждое решение начисляются баллы, за голоса 👍/👎 — ±1.

/start — регистрация
/cancel — отменить текущее действие
/profile — профиль
/top — топ учеников`

const adminHelpText = `🔐 Команды администратора:
/ban — заблокировать ученика
/unban — разблокировать
/promote — выдать или снять права (только суперадмин)
/logout — выйти из админ-панели`

// Services — сервисы, с которыми работает роутер.
type Services struct {
	Members  *members.Service
	Homework *homework.Service
	Votes    *votes.Resolver
	Reports  *reports.Service
	Admin    *admin.Service
	Gate     *moderation.Gate
}

// Options — настройки роутера.
type Options struct {
	// SuperAdminID получает уведомления о жалобах
	SuperAdminID int64
	// TopLimit — сколько учеников в «Топ учеников»
	TopLimit int
	// SolutionBonus — баллы за решение, только для текста ответа
	SolutionBonus int
}

// Router обрабатывает события пользователей.
type Router struct {
	tr      Transport
	states  conversation.Store
	machine *conversation.Machine
	svc     Services
	clock   common.Clock
	parser  *CommandParser
	opts    Options
}

// NewRouter создаёт роутер.
func NewRouter(tr Transport, states conversation.Store, svc Services, clock common.Clock, opts Options) *Router {
	return &Router{
		tr:      tr,
		states:  states,
		machine: conversation.NewMachine(clock),
		svc:     svc,
		clock:   clock,
		parser:  NewCommandParser(),
		opts:    opts,
	}
}

// Handle обрабатывает одно событие. Ошибки превращаются в ответ пользователю.
func (r *Router) Handle(ctx context.Context, ev conversation.Event) {
	var err error
	if ev.Kind == conversation.KindCallback {
		err = r.handleCallback(ctx, ev)
	} else {
		err = r.handleMessage(ctx, ev)
	}
	if err != nil {
		r.fail(ctx, ev, err)
	}
}

// fail сообщает пользователю об ошибке. Неожиданные ошибки логируются.
func (r *Router) fail(ctx context.Context, ev conversation.Event, err error) {
	if !common.IsUserFacing(err) {
		log.WithError(err).WithFields(log.Fields{
			"user_id": ev.UserID,
			"kind":    ev.Kind.String(),
		}).Error("Ошибка обработки события")
	}

	text := common.UserMessage(err)
	if ev.Kind == conversation.KindCallback {
		r.answer(ctx, ev, text)
		return
	}
	r.send(ctx, ev.ChatID, text, nil)
}

// send отправляет текст. Ошибка транспорта только логируется.
func (r *Router) send(ctx context.Context, chatID int64, text string, markup *Markup) {
	if _, err := r.tr.SendText(ctx, chatID, text, markup); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// answer закрывает «часики» на кнопке.
func (r *Router) answer(ctx context.Context, ev conversation.Event, text string) {
	if err := r.tr.AnswerCallback(ctx, ev.CallbackID, text); err != nil {
		log.WithError(err).WithField("user_id", ev.UserID).Debug("Не удалось ответить на кнопку")
	}
}

// --- Сообщения ---

func (r *Router) handleMessage(ctx context.Context, ev conversation.Event) error {
	if conversation.IsCancel(ev) {
		return r.cancel(ctx, ev)
	}

	if ev.Kind == conversation.KindText {
		if cmd, args, ok := r.parser.ParseCommand(ev.Text); ok {
			return r.command(ctx, ev, cmd, args)
		}
	}

	st, err := r.states.Get(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if st != nil {
		return r.step(ctx, ev, st)
	}

	if ev.Kind == conversation.KindText {
		if handled, err := r.menu(ctx, ev); handled {
			return err
		}
	}

	r.send(ctx, ev.ChatID, "Не понял 🤔 Выбери действие в меню или напиши /help", mainMenu())
	return nil
}

func (r *Router) cancel(ctx context.Context, ev conversation.Event) error {
	st, err := r.states.Get(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if st == nil {
		r.send(ctx, ev.ChatID, "Нечего отменять", mainMenu())
		return nil
	}
	if err := r.states.Clear(ctx, ev.UserID); err != nil {
		return err
	}
	r.send(ctx, ev.ChatID, "Действие отменено", mainMenu())
	return nil
}

func (r *Router) command(ctx context.Context, ev conversation.Event, cmd string, args []string) error {
	log.WithFields(log.Fields{
		"cmd":     cmd,
		"args":    len(args),
		"user_id": ev.UserID,
	}).Debug("routing command")

	switch cmd {
	case "start":
		return r.start(ctx, ev)
	case "help":
		text := helpText
		if _, err := r.svc.Gate.Authorize(ctx, ev.UserID, moderation.Admin); err == nil {
			text += "\n\n" + adminHelpText
		}
		r.send(ctx, ev.ChatID, text, nil)
		return nil
	case "profile":
		return r.profile(ctx, ev)
	case "top":
		return r.top(ctx, ev)
	case "login":
		return r.login(ctx, ev, args)
	case "logout":
		return r.logout(ctx, ev)
	case "ban":
		return r.beginAdmin(ctx, ev, conversation.FlowBan, moderation.Admin)
	case "unban":
		return r.beginAdmin(ctx, ev, conversation.FlowUnban, moderation.Admin)
	case "promote":
		return r.beginAdmin(ctx, ev, conversation.FlowPromote, moderation.SuperAdmin)
	}

	r.send(ctx, ev.ChatID, "Неизвестная команда. Список команд: /help", nil)
	return nil
}

// start сбрасывает любой диалог и начинает регистрацию, если профиля нет.
func (r *Router) start(ctx context.Context, ev conversation.Event) error {
	if err := r.states.Clear(ctx, ev.UserID); err != nil {
		return err
	}

	u, err := r.svc.Members.Get(ctx, ev.UserID)
	switch {
	case err == nil:
		r.send(ctx, ev.ChatID, fmt.Sprintf("Ты уже зарегистрирован. Твой класс: %s", u.ClassName()), mainMenu())
		return nil
	case !errors.Is(err, common.ErrUserNotFound):
		return err
	}

	r.send(ctx, ev.ChatID, "Добро пожаловать в School Hub! 👋", nil)
	return r.begin(ctx, ev, conversation.FlowRegistration, nil)
}

func (r *Router) menu(ctx context.Context, ev conversation.Event) (bool, error) {
	switch ev.Text {
	case MenuHomework:
		return true, r.listHomework(ctx, ev)
	case MenuAddHomework:
		if _, err := r.svc.Gate.Authorize(ctx, ev.UserID, moderation.NotBanned); err != nil {
			return true, err
		}
		return true, r.begin(ctx, ev, conversation.FlowAddHomework, nil)
	case MenuClass:
		return true, r.classmates(ctx, ev)
	case MenuProfile:
		return true, r.profile(ctx, ev)
	case MenuTop:
		return true, r.top(ctx, ev)
	}
	return false, nil
}

// --- Админ-команды ---

func (r *Router) login(ctx context.Context, ev conversation.Event, args []string) error {
	if !r.svc.Admin.PasswordRequired() {
		r.send(ctx, ev.ChatID, "Пароль для админ-панели не настроен, команды доступны без входа", nil)
		return nil
	}
	if _, err := r.svc.Gate.Authorize(ctx, ev.UserID, moderation.Admin); err != nil {
		return err
	}

	// /login <пароль> — вход одной командой
	if len(args) > 0 {
		return r.verifyPassword(ctx, ev, strings.Join(args, " "))
	}
	return r.begin(ctx, ev, conversation.FlowAdminLogin, nil)
}

func (r *Router) verifyPassword(ctx context.Context, ev conversation.Event, password string) error {
	if err := r.svc.Admin.VerifyPassword(ctx, ev.UserID, password); err != nil {
		return err
	}
	r.send(ctx, ev.ChatID, "✅ Аутентификация успешна!\n\n"+adminHelpText, mainMenu())
	return nil
}

func (r *Router) logout(ctx context.Context, ev conversation.Event) error {
	if _, err := r.svc.Gate.Authorize(ctx, ev.UserID, moderation.Admin); err != nil {
		return err
	}
	if err := r.svc.Admin.Logout(ctx, ev.UserID); err != nil {
		return err
	}
	r.send(ctx, ev.ChatID, "👋 Вы вышли из админ-панели", mainMenu())
	return nil
}

// authorizeAdmin проверяет права и сессию админки.
func (r *Router) authorizeAdmin(ctx context.Context, userID int64, capability moderation.Capability) error {
	if _, err := r.svc.Gate.Authorize(ctx, userID, capability); err != nil {
		return err
	}
	return r.svc.Admin.RequireSession(ctx, userID)
}

func (r *Router) beginAdmin(ctx context.Context, ev conversation.Event, flow conversation.Flow, capability moderation.Capability) error {
	if err := r.authorizeAdmin(ctx, ev.UserID, capability); err != nil {
		return err
	}
	return r.begin(ctx, ev, flow, nil)
}

// --- Inline-кнопки ---

func (r *Router) handleCallback(ctx context.Context, ev conversation.Event) error {
	p := ev.Payload

	switch p.Verb {
	case callback.VerbDate:
		return r.dateChosen(ctx, ev)

	case callback.VerbSolve:
		if _, err := r.svc.Gate.Authorize(ctx, ev.UserID, moderation.NotBanned); err != nil {
			return err
		}
		if _, err := r.svc.Homework.Homework(ctx, p.ID); err != nil {
			return err
		}
		r.answer(ctx, ev, "")
		return r.begin(ctx, ev, conversation.FlowAddSolution, map[string]string{
			assembler.FieldHomeworkID: strconv.FormatInt(p.ID, 10),
		})

	case callback.VerbView:
		if _, err := r.svc.Gate.Authorize(ctx, ev.UserID, moderation.Registered); err != nil {
			return err
		}
		r.answer(ctx, ev, "")
		return r.showSolutions(ctx, ev, p.ID)

	case callback.VerbVoteUp, callback.VerbVoteDown:
		return r.vote(ctx, ev)

	case callback.VerbReportHomework, callback.VerbReportSolution:
		return r.beginReport(ctx, ev)
	}

	log.WithFields(log.Fields{
		"user_id": ev.UserID,
		"data":    ev.Data,
	}).Debug("Неизвестные данные кнопки")
	r.answer(ctx, ev, "Кнопка устарела")
	return nil
}

// dateChosen передаёт выбор срока в диалог добавления задания.
func (r *Router) dateChosen(ctx context.Context, ev conversation.Event) error {
	st, err := r.states.Get(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if st == nil || st.Flow != conversation.FlowAddHomework || st.Step != conversation.StepDate {
		r.answer(ctx, ev, "Кнопка устарела")
		return nil
	}
	r.answer(ctx, ev, "")
	return r.step(ctx, ev, st)
}

func (r *Router) vote(ctx context.Context, ev conversation.Event) error {
	if _, err := r.svc.Gate.Authorize(ctx, ev.UserID, moderation.NotBanned); err != nil {
		return err
	}

	value, ack := votes.Up, "👍 Голос учтён"
	if ev.Payload.Verb == callback.VerbVoteDown {
		value, ack = votes.Down, "👎 Голос учтён"
	}

	tally, err := r.svc.Votes.CastVote(ctx, ev.UserID, ev.Payload.ID, value)
	if err != nil {
		return err
	}
	r.answer(ctx, ev, ack)

	// Счёт на кнопках обновляется по возможности: голос уже записан
	if err := r.tr.EditButtons(ctx, ev.ChatID, ev.MessageID, voteButtons(ev.Payload.ID, tally)); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id":     ev.UserID,
			"solution_id": ev.Payload.ID,
		}).Warn("Не удалось обновить кнопки голосования")
	}
	return nil
}

func (r *Router) beginReport(ctx context.Context, ev conversation.Event) error {
	if _, err := r.svc.Gate.Authorize(ctx, ev.UserID, moderation.NotBanned); err != nil {
		return err
	}

	typ := reports.TypeHomework
	if ev.Payload.Verb == callback.VerbReportSolution {
		typ = reports.TypeSolution
	}
	if _, err := r.svc.Reports.Author(ctx, typ, ev.Payload.ID); err != nil {
		return err
	}

	r.answer(ctx, ev, "")
	return r.begin(ctx, ev, conversation.FlowReport, map[string]string{
		assembler.FieldReportType: string(typ),
		assembler.FieldContentID:  strconv.FormatInt(ev.Payload.ID, 10),
	})
}
