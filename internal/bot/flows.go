// Package bot — flows.go: запуск диалогов, подсказки шагов и сохранение
// собранных записей.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/alisher2011ali-netizen/School-Hub/internal/assembler"
	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
	"github.com/alisher2011ali-netizen/School-Hub/internal/conversation"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/members"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/moderation"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/reports"
)

// begin начинает диалог. Предыдущий диалог пользователя, если был, теряется.
func (r *Router) begin(ctx context.Context, ev conversation.Event, flow conversation.Flow, fields map[string]string) error {
	st, err := conversation.Start(flow, r.clock())
	if err != nil {
		return err
	}
	for k, v := range fields {
		st.Put(k, v)
	}
	if err := r.states.Save(ctx, ev.UserID, st); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"user_id": ev.UserID,
		"flow":    flow,
	}).Debug("Диалог начат")

	return r.prompt(ctx, ev.ChatID, st)
}

// step применяет событие к активному диалогу.
func (r *Router) step(ctx context.Context, ev conversation.Event, st *conversation.State) error {
	res := r.machine.Handle(st, ev)

	switch res.Outcome {
	case conversation.Reprompt:
		if errors.Is(res.Err, conversation.ErrUnknownStep) {
			log.WithFields(log.Fields{
				"user_id": ev.UserID,
				"flow":    st.Flow,
				"step":    st.Step,
			}).Warn("Сброс диалога в неизвестном шаге")
			if err := r.states.Clear(ctx, ev.UserID); err != nil {
				return err
			}
			r.send(ctx, ev.ChatID, "Что-то пошло не так, начни заново", mainMenu())
			return nil
		}
		r.send(ctx, ev.ChatID, common.UserMessage(res.Err), nil)
		return r.prompt(ctx, ev.ChatID, res.State)

	case conversation.Advanced, conversation.Restarted:
		if err := r.states.Save(ctx, ev.UserID, res.State); err != nil {
			return err
		}
		return r.prompt(ctx, ev.ChatID, res.State)

	case conversation.Collected:
		if err := r.states.Save(ctx, ev.UserID, res.State); err != nil {
			return err
		}
		r.acknowledge(ctx, ev, res.State)
		return nil

	case conversation.Completed:
		// Диалог закрывается до сохранения: повторное «Готово» не создаст дубль
		if err := r.states.Clear(ctx, ev.UserID); err != nil {
			return err
		}
		return r.complete(ctx, ev, res.State)
	}

	return fmt.Errorf("неизвестный итог шага %s", res.Outcome)
}

// acknowledge подтверждает очередную часть решения.
func (r *Router) acknowledge(ctx context.Context, ev conversation.Event, st *conversation.State) {
	text := "📝 Текст добавлен. Отправь ещё или нажми «Готово ✅»"
	if ev.Kind == conversation.KindPhoto {
		text = fmt.Sprintf("📸 Фото добавлено (всего: %d). Отправь ещё или нажми «Готово ✅»", len(st.Photos))
	}
	r.send(ctx, ev.ChatID, text, finishKeyboard())
}

// prompt задаёт вопрос текущего шага.
func (r *Router) prompt(ctx context.Context, chatID int64, st *conversation.State) error {
	var (
		text   string
		markup *Markup
	)

	switch st.Step {
	case conversation.StepGrade:
		text, markup = "Из какого ты класса? Напиши номер и букву, например 9А, или выбери номер", gradeKeyboard()
	case conversation.StepLetter:
		text, markup = "Теперь выбери или напиши букву класса", letterKeyboard()
	case conversation.StepConfirm:
		grade, _ := strconv.Atoi(st.Get(assembler.FieldGrade))
		class := members.FormatClass(grade, st.Get(assembler.FieldLetter))
		text, markup = fmt.Sprintf("Твой класс — %s, верно?", class), confirmKeyboard()
	case conversation.StepName:
		text, markup = "Как тебя зовут? Напиши имя и фамилию, например: Иван Петров", cancelKeyboard()

	case conversation.StepSubject:
		subjects, err := r.svc.Homework.Subjects(ctx)
		if err != nil {
			return err
		}
		text, markup = "Выбери предмет", subjectKeyboard(subjects)
	case conversation.StepText:
		text, markup = "Напиши текст задания", cancelKeyboard()
	case conversation.StepPhoto:
		text, markup = "Прикрепи фото задания или нажми «Пропустить фото»", skipPhotoKeyboard()
	case conversation.StepDate:
		text, markup = "На какой день задание?", dateKeyboard(r.clock.Today())
	case conversation.StepManualDate:
		text, markup = "Напиши дату в формате ДД.ММ, например 18.01", cancelKeyboard()
	case conversation.StepAnon:
		text, markup = "Опубликовать анонимно или от своего имени?", anonKeyboard()

	case conversation.StepContent:
		text = "Отправь решение: текст и/или фото, можно несколькими сообщениями.\nКогда закончишь, нажми «Готово ✅»"
		markup = finishKeyboard()

	case conversation.StepBanID:
		text, markup = "Введи ID пользователя, которого нужно заблокировать", cancelKeyboard()
	case conversation.StepUnbanID:
		text, markup = "Введи ID пользователя, которого нужно разблокировать", cancelKeyboard()
	case conversation.StepPromoteID:
		text, markup = "Введи ID пользователя", cancelKeyboard()
	case conversation.StepPromoteStatus:
		text, markup = "Отправь 1, чтобы сделать админом, или 0, чтобы снять права", statusKeyboard()

	case conversation.StepReason:
		text, markup = "Опиши причину жалобы одним сообщением", cancelKeyboard()
	case conversation.StepPassword:
		text, markup = "🔐 Введи пароль администратора", cancelKeyboard()

	default:
		return fmt.Errorf("%w: %s/%s", conversation.ErrUnknownStep, st.Flow, st.Step)
	}

	r.send(ctx, chatID, text, markup)
	return nil
}

// complete сохраняет то, что собрал диалог.
func (r *Router) complete(ctx context.Context, ev conversation.Event, st *conversation.State) error {
	switch st.Flow {
	case conversation.FlowRegistration:
		return r.completeRegistration(ctx, ev, st)
	case conversation.FlowAddHomework:
		return r.completeHomework(ctx, ev, st)
	case conversation.FlowAddSolution:
		return r.completeSolution(ctx, ev, st)
	case conversation.FlowBan, conversation.FlowUnban:
		return r.completeBan(ctx, ev, st)
	case conversation.FlowPromote:
		return r.completePromote(ctx, ev, st)
	case conversation.FlowReport:
		return r.completeReport(ctx, ev, st)
	case conversation.FlowAdminLogin:
		return r.verifyPassword(ctx, ev, st.Get(assembler.FieldPassword))
	}
	return fmt.Errorf("%w: %s", conversation.ErrUnknownStep, st.Flow)
}

func (r *Router) completeRegistration(ctx context.Context, ev conversation.Event, st *conversation.State) error {
	u, err := assembler.User(ev.UserID, st.Fields)
	if err != nil {
		return err
	}
	if err := r.svc.Members.Register(ctx, u); err != nil {
		return err
	}

	r.send(ctx, ev.ChatID, fmt.Sprintf(
		"🎉 Регистрация завершена!\n\nИмя: %s\nКласс: %s\n\nТеперь можно смотреть и добавлять задания 👇",
		u.DisplayName(), u.ClassName(),
	), mainMenu())
	return nil
}

func (r *Router) completeHomework(ctx context.Context, ev conversation.Event, st *conversation.State) error {
	author, err := r.svc.Gate.Authorize(ctx, ev.UserID, moderation.NotBanned)
	if err != nil {
		return err
	}
	hw, err := assembler.Homework(st.Fields)
	if err != nil {
		return err
	}
	if err := r.svc.Homework.AddHomework(ctx, author, hw); err != nil {
		return err
	}

	r.send(ctx, ev.ChatID, fmt.Sprintf(
		"✅ Задание по предмету «%s» добавлено на %s",
		hw.SubjectName, common.FormatDate(hw.TargetDate),
	), mainMenu())
	return nil
}

func (r *Router) completeSolution(ctx context.Context, ev conversation.Event, st *conversation.State) error {
	if _, err := r.svc.Gate.Authorize(ctx, ev.UserID, moderation.NotBanned); err != nil {
		return err
	}
	sol, err := assembler.Solution(ev.UserID, st.Fields, st.Photos)
	if err != nil {
		return err
	}
	reputation, err := r.svc.Homework.AddSolution(ctx, sol)
	if err != nil {
		return err
	}

	r.send(ctx, ev.ChatID, fmt.Sprintf(
		"✅ Решение опубликовано! %s к репутации, теперь у тебя %d %s",
		common.FormatPoints(r.opts.SolutionBonus), reputation, common.PluralizePoints(reputation),
	), mainMenu())
	return nil
}

func (r *Router) completeBan(ctx context.Context, ev conversation.Event, st *conversation.State) error {
	if err := r.authorizeAdmin(ctx, ev.UserID, moderation.Admin); err != nil {
		return err
	}
	targetID, err := assembler.ID(st.Get(assembler.FieldTargetID))
	if err != nil {
		return err
	}

	var (
		target *members.User
		format string
	)
	if st.Flow == conversation.FlowBan {
		target, err = r.svc.Admin.Ban(ctx, ev.UserID, targetID)
		format = "🚫 %s (ID %d) заблокирован"
	} else {
		target, err = r.svc.Admin.Unban(ctx, ev.UserID, targetID)
		format = "✅ %s (ID %d) разблокирован"
	}
	if err != nil {
		return err
	}

	r.send(ctx, ev.ChatID, fmt.Sprintf(format, target.DisplayName(), target.UserID), mainMenu())
	return nil
}

func (r *Router) completePromote(ctx context.Context, ev conversation.Event, st *conversation.State) error {
	if err := r.authorizeAdmin(ctx, ev.UserID, moderation.SuperAdmin); err != nil {
		return err
	}
	targetID, err := assembler.ID(st.Get(assembler.FieldTargetID))
	if err != nil {
		return err
	}
	makeAdmin := st.Get(assembler.FieldStatus) == conversation.StatusAdmin

	target, err := r.svc.Admin.Promote(ctx, ev.UserID, targetID, makeAdmin)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("✅ %s теперь администратор", target.DisplayName())
	if !makeAdmin {
		text = fmt.Sprintf("✅ %s больше не администратор", target.DisplayName())
	}
	r.send(ctx, ev.ChatID, text, mainMenu())
	return nil
}

func (r *Router) completeReport(ctx context.Context, ev conversation.Event, st *conversation.State) error {
	if _, err := r.svc.Gate.Authorize(ctx, ev.UserID, moderation.NotBanned); err != nil {
		return err
	}
	contentID, err := assembler.ID(st.Get(assembler.FieldContentID))
	if err != nil {
		return err
	}
	typ := reports.Type(st.Get(assembler.FieldReportType))

	rep, err := r.svc.Reports.File(ctx, ev.UserID, typ, contentID, st.Get(assembler.FieldReason))
	if err != nil {
		return err
	}

	r.send(ctx, ev.ChatID, "✅ Жалоба отправлена. Спасибо, что помогаешь!", mainMenu())
	r.notifyReport(ctx, rep)
	return nil
}

// notifyReport сообщает суперадмину о жалобе. Сбой отправки не мешает жалобе.
func (r *Router) notifyReport(ctx context.Context, rep *reports.Report) {
	if r.opts.SuperAdminID == 0 {
		return
	}

	what := "задание"
	if rep.Type == reports.TypeSolution {
		what = "решение"
	}
	text := fmt.Sprintf(
		"🚩 Жалоба #%d на %s #%d\nАвтор контента: %d\nОт: %d\nПричина: %s",
		rep.ID, what, rep.ContentID, rep.TargetID, rep.ReporterID, rep.Reason,
	)
	if _, err := r.tr.SendText(ctx, r.opts.SuperAdminID, text, nil); err != nil {
		log.WithError(err).WithField("report_id", rep.ID).Warn("Не удалось уведомить суперадмина о жалобе")
	}
}
