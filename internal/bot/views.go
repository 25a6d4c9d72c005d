// Package bot — views.go: списки заданий и решений, профиль и рейтинги.
package bot

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
	"github.com/alisher2011ali-netizen/School-Hub/internal/conversation"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/homework"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/members"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/moderation"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/reputation"
)

// Ограничение Telegram на подпись к фото.
const maxCaptionLength = 1024

const anonymousAuthor = "Аноним"

var medals = []string{"🥇", "🥈", "🥉"}

// listHomework показывает актуальные задания класса. Бан чтение не ограничивает.
func (r *Router) listHomework(ctx context.Context, ev conversation.Event) error {
	u, err := r.svc.Gate.Authorize(ctx, ev.UserID, moderation.Registered)
	if err != nil {
		return err
	}

	list, err := r.svc.Homework.ClassHomework(ctx, u)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		r.send(ctx, ev.ChatID, "🎉 На ближайшие дни заданий нет", mainMenu())
		return nil
	}

	r.send(ctx, ev.ChatID, fmt.Sprintf("📚 Задания для %s:", u.ClassName()), mainMenu())
	for _, hw := range list {
		if err := r.sendHomework(ctx, ev.ChatID, hw); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) sendHomework(ctx context.Context, chatID int64, hw *homework.Homework) error {
	count, err := r.svc.Homework.CountSolutions(ctx, hw.ID)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(
		"📚 %s\n📅 Срок: %s\n\n%s\n\n👤 Автор: %s",
		hw.SubjectName, common.FormatDate(hw.TargetDate), hw.Text,
		r.authorName(ctx, hw.AuthorID, hw.IsAnonymous),
	)
	if count > 0 {
		text += fmt.Sprintf("\n✍️ %d %s", count, common.PluralizeSolutions(count))
	}
	markup := homeworkButtons(hw.ID, count)

	if hw.PhotoID != "" {
		_, err = r.tr.SendPhoto(ctx, chatID, hw.PhotoID, common.Truncate(text, maxCaptionLength), markup)
	} else {
		_, err = r.tr.SendText(ctx, chatID, text, markup)
	}
	if err != nil {
		log.WithError(err).WithField("homework_id", hw.ID).Error("Ошибка отправки задания")
	}
	return nil
}

// showSolutions показывает решения задания с кнопками голосования.
func (r *Router) showSolutions(ctx context.Context, ev conversation.Event, homeworkID int64) error {
	solutions, err := r.svc.Homework.Solutions(ctx, homeworkID)
	if err != nil {
		return err
	}
	if len(solutions) == 0 {
		r.send(ctx, ev.ChatID, "Решений пока нет. Будь первым!", nil)
		return nil
	}

	for _, sol := range solutions {
		if err := r.sendSolution(ctx, ev.ChatID, sol); err != nil {
			return err
		}
	}
	return nil
}

// sendSolution: одно фото — с подписью и кнопками, несколько — альбомом
// и отдельным сообщением с кнопками.
func (r *Router) sendSolution(ctx context.Context, chatID int64, sol *homework.Solution) error {
	tally, err := r.svc.Votes.Counts(ctx, sol.ID)
	if err != nil {
		return err
	}

	caption := fmt.Sprintf("✍️ Решение от %s", r.authorName(ctx, sol.AuthorID, sol.IsAnonymous))
	if sol.Text != "" {
		caption += "\n\n" + sol.Text
	}
	buttons := voteButtons(sol.ID, tally)

	switch len(sol.Photos) {
	case 0:
		_, err = r.tr.SendText(ctx, chatID, caption, buttons)
	case 1:
		_, err = r.tr.SendPhoto(ctx, chatID, sol.Photos[0], common.Truncate(caption, maxCaptionLength), buttons)
	default:
		// Кнопки голосования отправляются, даже если альбом не дошёл
		if albumErr := r.tr.SendAlbum(ctx, chatID, sol.Photos, common.Truncate(caption, maxCaptionLength)); albumErr != nil {
			log.WithError(albumErr).WithField("solution_id", sol.ID).Error("Ошибка отправки альбома")
		}
		_, err = r.tr.SendText(ctx, chatID, "Оцени решение 👇", buttons)
	}
	if err != nil {
		log.WithError(err).WithField("solution_id", sol.ID).Error("Ошибка отправки решения")
	}
	return nil
}

// authorName возвращает подпись автора. Для подписи профиль не обязателен.
func (r *Router) authorName(ctx context.Context, userID int64, anonymous bool) string {
	if anonymous {
		return anonymousAuthor
	}
	u, err := r.svc.Members.Get(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Автор не найден")
		return "Ученик"
	}
	return u.DisplayName()
}

func (r *Router) profile(ctx context.Context, ev conversation.Event) error {
	u, err := r.svc.Gate.Authorize(ctx, ev.UserID, moderation.Registered)
	if err != nil {
		return err
	}

	status := "Ученик"
	if u.IsAdmin || r.svc.Gate.IsSuperAdmin(u.UserID) {
		status = "Администратор"
	}

	var b strings.Builder
	b.WriteString("👤 Профиль\n\n")
	fmt.Fprintf(&b, "Имя: %s\n", u.DisplayName())
	fmt.Fprintf(&b, "Класс: %s\n", u.ClassName())
	fmt.Fprintf(&b, "Репутация: %d %s\n", u.Reputation, common.PluralizePoints(u.Reputation))
	fmt.Fprintf(&b, "Ранг: %s\n", reputation.RankOf(u.Reputation).Title())
	fmt.Fprintf(&b, "ID: %d\n", u.UserID)
	fmt.Fprintf(&b, "Статус: %s", status)
	if u.IsBanned {
		b.WriteString("\n🚫 Заблокирован: можно только смотреть задания")
	}

	r.send(ctx, ev.ChatID, b.String(), mainMenu())
	return nil
}

func (r *Router) top(ctx context.Context, ev conversation.Event) error {
	list, err := r.svc.Members.Top(ctx, r.opts.TopLimit)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		r.send(ctx, ev.ChatID, "Пока никто не зарегистрирован", mainMenu())
		return nil
	}

	r.send(ctx, ev.ChatID, "🏆 Топ учеников\n\n"+ranking(list, true), mainMenu())
	return nil
}

func (r *Router) classmates(ctx context.Context, ev conversation.Event) error {
	u, err := r.svc.Gate.Authorize(ctx, ev.UserID, moderation.Registered)
	if err != nil {
		return err
	}
	list, err := r.svc.Members.Classmates(ctx, u)
	if err != nil {
		return err
	}

	r.send(ctx, ev.ChatID, fmt.Sprintf("👥 Класс %s (%d)\n\n%s", u.ClassName(), len(list), ranking(list, false)), mainMenu())
	return nil
}

// ranking — нумерованный список учеников с репутацией.
func ranking(list []*members.User, withClass bool) string {
	var b strings.Builder
	for i, u := range list {
		place := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			place = medals[i]
		}
		name := u.DisplayName()
		if withClass {
			name += " (" + u.ClassName() + ")"
		}
		fmt.Fprintf(&b, "%s %s — %d %s\n", place, name, u.Reputation, common.PluralizePoints(u.Reputation))
	}
	return strings.TrimRight(b.String(), "\n")
}
