package bot_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alisher2011ali-netizen/School-Hub/internal/bot"
	"github.com/alisher2011ali-netizen/School-Hub/internal/callback"
	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
	"github.com/alisher2011ali-netizen/School-Hub/internal/conversation"
	"github.com/alisher2011ali-netizen/School-Hub/internal/db/memory"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/admin"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/homework"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/members"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/moderation"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/reports"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/reputation"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/votes"
)

const superAdminID = 100

var msk = time.FixedZone("MSK", 3*60*60)

type harness struct {
	t      *testing.T
	store  *memory.Store
	states *conversation.MemoryStore
	tr     *fakeTransport
	router *bot.Router
	today  time.Time
	calls  int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	now := time.Date(2026, 1, 17, 10, 0, 0, 0, msk)
	clock := common.FixedClock(now)

	store := memory.New()
	membersSvc := members.NewService(store)
	homeworkSvc := homework.NewService(store, clock, 5)
	require.NoError(t, homeworkSvc.Seed(ctx))

	svc := bot.Services{
		Members:  membersSvc,
		Homework: homeworkSvc,
		Votes:    votes.NewResolver(store, homeworkSvc),
		Reports:  reports.NewService(store, homeworkSvc),
		Admin:    admin.NewService(store, membersSvc, "", time.Hour, superAdminID, clock),
		Gate:     moderation.NewGate(membersSvc, superAdminID),
	}

	states := conversation.NewMemoryStore()
	tr := newFakeTransport()
	router := bot.NewRouter(tr, states, svc, clock, bot.Options{
		SuperAdminID:  superAdminID,
		TopLimit:      5,
		SolutionBonus: 5,
	})

	return &harness{
		t:      t,
		store:  store,
		states: states,
		tr:     tr,
		router: router,
		today:  clock.Today(),
	}
}

func (h *harness) text(userID int64, text string) {
	h.router.Handle(context.Background(), conversation.Event{
		Kind:    conversation.KindText,
		UserID:  userID,
		ChatID:  userID,
		Private: true,
		Text:    text,
	})
}

func (h *harness) photo(userID int64, fileID, caption string) {
	h.router.Handle(context.Background(), conversation.Event{
		Kind:    conversation.KindPhoto,
		UserID:  userID,
		ChatID:  userID,
		Private: true,
		PhotoID: fileID,
		Text:    caption,
	})
}

// press нажимает inline-кнопку и возвращает ответ бота на нажатие.
func (h *harness) press(userID int64, data string, messageID int) string {
	h.calls++
	id := fmt.Sprintf("cb%d", h.calls)
	payload, _ := callback.Parse(data)

	h.router.Handle(context.Background(), conversation.Event{
		Kind:       conversation.KindCallback,
		UserID:     userID,
		ChatID:     userID,
		Private:    true,
		MessageID:  messageID,
		CallbackID: id,
		Data:       data,
		Payload:    payload,
	})

	answer, ok := h.tr.answer(id)
	require.True(h.t, ok, "нажатие %q осталось без ответа", data)
	return answer
}

func (h *harness) register(userID int64, class, name string) {
	h.t.Helper()
	h.text(userID, "/start")
	h.text(userID, class)
	h.text(userID, conversation.TokenYes)
	h.text(userID, name)
	require.Contains(h.t, h.tr.last(userID).Text, "Регистрация завершена")
}

func (h *harness) user(userID int64) *members.User {
	h.t.Helper()
	u, err := h.store.UserByID(context.Background(), userID)
	require.NoError(h.t, err)
	return u
}

func (h *harness) state(userID int64) *conversation.State {
	h.t.Helper()
	st, err := h.states.Get(context.Background(), userID)
	require.NoError(h.t, err)
	return st
}

// postHomework проходит диалог добавления задания на завтра.
func (h *harness) postHomework(userID int64, subject, text string) {
	h.t.Helper()
	h.text(userID, bot.MenuAddHomework)
	h.text(userID, subject)
	h.text(userID, text)
	h.text(userID, conversation.TokenSkipPhoto)

	tomorrow := callback.Date(h.today.AddDate(0, 0, 1))
	data, msgID, ok := h.tr.button(userID, tomorrow)
	require.True(h.t, ok, "нет кнопки «На завтра»")
	h.press(userID, data, msgID)

	h.text(userID, conversation.TokenNamed)
	require.Contains(h.t, h.tr.last(userID).Text, "добавлено")
}

// postSolution открывает задание из списка и отправляет решение из фото.
func (h *harness) postSolution(userID int64, photos ...string) int64 {
	h.t.Helper()
	h.text(userID, bot.MenuHomework)
	data, msgID, ok := h.tr.button(userID, "solve_")
	require.True(h.t, ok, "нет кнопки «Добавить решение»")
	h.press(userID, data, msgID)

	for i, p := range photos {
		caption := ""
		if i == 0 {
			caption = "Ответ: 42"
		}
		h.photo(userID, p, caption)
	}
	h.text(userID, conversation.TokenDone)
	h.text(userID, conversation.TokenNamed)
	require.Contains(h.t, h.tr.last(userID).Text, "Решение опубликовано")

	payload, err := callback.Parse(data)
	require.NoError(h.t, err)
	solutions, err := h.store.SolutionsByHomework(context.Background(), payload.ID)
	require.NoError(h.t, err)
	require.NotEmpty(h.t, solutions)
	return solutions[len(solutions)-1].ID
}

func TestRegistration(t *testing.T) {
	h := newHarness(t)

	h.text(1, "/start")
	assert.Equal(t, conversation.StepGrade, h.state(1).Step)

	h.text(1, "9А")
	assert.Equal(t, conversation.StepConfirm, h.state(1).Step)
	assert.Contains(t, h.tr.last(1).Text, "9-А")

	h.text(1, conversation.TokenYes)
	h.text(1, "Иван Петров")

	assert.Nil(t, h.state(1))
	u := h.user(1)
	assert.Equal(t, 9, u.Grade)
	assert.Equal(t, "А", u.Letter)
	assert.Equal(t, "Иван", u.FirstName)
	assert.Equal(t, "Петров", u.LastName)

	h.text(1, "/start")
	assert.Equal(t, "Ты уже зарегистрирован. Твой класс: 9-А", h.tr.last(1).Text)
}

func TestRegistrationLetterStep(t *testing.T) {
	h := newHarness(t)

	h.text(2, "/start")
	h.text(2, "9")
	assert.Equal(t, conversation.StepLetter, h.state(2).Step)

	h.text(2, "а")
	assert.Equal(t, conversation.StepName, h.state(2).Step)

	h.text(2, "Пётр Сидоров")
	assert.Equal(t, "А", h.user(2).Letter)
}

func TestRegistrationRestartOnNo(t *testing.T) {
	h := newHarness(t)

	h.text(1, "/start")
	h.text(1, "10Б")
	h.text(1, conversation.TokenNo)

	st := h.state(1)
	assert.Equal(t, conversation.StepGrade, st.Step)
	assert.Empty(t, st.Fields)
}

func TestRepromptKeepsState(t *testing.T) {
	h := newHarness(t)

	h.text(4, "/start")
	h.text(4, "abc")

	assert.Equal(t, conversation.StepGrade, h.state(4).Step)
	texts := h.tr.texts(4, 2)
	assert.Equal(t, common.UserMessage(common.ErrInvalidGrade), texts[0])

	h.text(4, "/cancel")
	assert.Nil(t, h.state(4))
	assert.Equal(t, "Действие отменено", h.tr.last(4).Text)

	h.text(4, conversation.TokenCancel)
	assert.Equal(t, "Нечего отменять", h.tr.last(4).Text)
}

func TestManualDateInPastIsRejected(t *testing.T) {
	h := newHarness(t)
	h.register(1, "9А", "Иван Петров")

	h.text(1, bot.MenuAddHomework)
	h.text(1, "Алгебра")
	h.text(1, "№ 101")
	h.text(1, conversation.TokenSkipPhoto)
	h.press(1, callback.ManualDate(), 0)
	assert.Equal(t, conversation.StepManualDate, h.state(1).Step)

	h.text(1, "10.01")
	assert.Equal(t, conversation.StepManualDate, h.state(1).Step)
	assert.Contains(t, h.tr.texts(1, 2), common.UserMessage(common.ErrDateInPast))

	h.text(1, "32.13")
	assert.Contains(t, h.tr.texts(1, 2), common.UserMessage(common.ErrInvalidDate))

	h.text(1, "20.01")
	assert.Equal(t, conversation.StepAnon, h.state(1).Step)
	assert.Equal(t, "2026-01-20", h.state(1).Get("target_date"))
}

func TestStaleDateButton(t *testing.T) {
	h := newHarness(t)
	h.register(1, "9А", "Иван Петров")

	answer := h.press(1, callback.Date(h.today.AddDate(0, 0, 1)), 0)
	assert.Equal(t, "Кнопка устарела", answer)

	answer = h.press(1, "garbage", 0)
	assert.Equal(t, "Кнопка устарела", answer)
}

// Полный сценарий: задание, решение из двух фото, голоса и бан.
func TestHomeworkSolutionVoteScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.register(1, "9А", "Иван Петров")
	h.register(2, "9А", "Пётр Сидоров")
	h.register(3, "9А", "Анна Смирнова")

	h.postHomework(1, "Физика", "Параграф 12, задачи 1-3")

	list, err := h.store.HomeworkByClass(ctx, 9, "А", h.today)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Физика", list[0].SubjectName)
	assert.Equal(t, "2026-01-18", list[0].TargetDate.Format(common.DateLayout))
	assert.Equal(t, int64(1), list[0].AuthorID)

	h.postSolution(2, "photo-1", "photo-2")
	assert.Equal(t, 5, h.user(2).Reputation)
	assert.Equal(t, 2, h.store.MediaCount())

	// Третий ученик открывает решения: альбом и сообщение с кнопками
	h.text(3, bot.MenuHomework)
	hwButton, hwMsg, ok := h.tr.button(3, "view_")
	require.True(t, ok, "нет кнопки «Посмотреть решения»")
	h.press(3, hwButton, hwMsg)

	msgs := h.tr.to(3)
	album := msgs[len(msgs)-2]
	assert.Equal(t, []string{"photo-1", "photo-2"}, album.Album)
	assert.Contains(t, album.Text, "Пётр Сидоров")
	assert.Contains(t, album.Text, "Ответ: 42")

	voteData, voteMsg, ok := h.tr.button(3, "vote_up_")
	require.True(t, ok)

	answer := h.press(3, voteData, voteMsg)
	assert.Equal(t, "👍 Голос учтён", answer)
	assert.Equal(t, 6, h.user(2).Reputation)

	require.Len(t, h.tr.edits, 1)
	edit := h.tr.edits[0]
	assert.Equal(t, voteMsg, edit.MessageID)
	assert.Equal(t, "👍 1", edit.Markup.Inline[0][0].Text)
	assert.Equal(t, "👎 0", edit.Markup.Inline[0][1].Text)

	// Повторный голос отклоняется и ничего не меняет
	answer = h.press(3, voteData, voteMsg)
	assert.Equal(t, common.UserMessage(common.ErrDuplicateVote), answer)
	assert.Equal(t, 6, h.user(2).Reputation)

	downData, _, ok := h.tr.button(3, "vote_down_")
	require.True(t, ok)
	answer = h.press(3, downData, voteMsg)
	assert.Equal(t, common.UserMessage(common.ErrDuplicateVote), answer)

	// Свой голос автору недоступен
	answer = h.press(2, voteData, 0)
	assert.Equal(t, common.UserMessage(common.ErrSelfVote), answer)
	assert.Equal(t, 6, h.user(2).Reputation)

	// Суперадмин банит третьего ученика
	h.text(superAdminID, "/ban")
	assert.Equal(t, conversation.StepBanID, h.state(superAdminID).Step)
	h.text(superAdminID, "3")
	assert.Contains(t, h.tr.last(superAdminID).Text, "заблокирован")
	assert.True(t, h.user(3).IsBanned)

	// Забаненный не может добавлять и голосовать
	h.text(3, bot.MenuAddHomework)
	assert.Equal(t, common.UserMessage(common.ErrBanned), h.tr.last(3).Text)
	assert.Nil(t, h.state(3))

	answer = h.press(3, downData, voteMsg)
	assert.Equal(t, common.UserMessage(common.ErrBanned), answer)

	solveData, _, _ := h.tr.button(2, "solve_")
	answer = h.press(3, solveData, 0)
	assert.Equal(t, common.UserMessage(common.ErrBanned), answer)

	// но по-прежнему видит задания
	before := len(h.tr.to(3))
	h.text(3, bot.MenuHomework)
	cards := h.tr.to(3)[before:]
	require.Len(t, cards, 2)
	assert.Contains(t, cards[1].Text, "Параграф 12")
}

func TestReportNotifiesSuperAdmin(t *testing.T) {
	h := newHarness(t)

	h.register(1, "9А", "Иван Петров")
	h.register(2, "9А", "Пётр Сидоров")
	h.postHomework(1, "История", "Прочитать главу 4")

	h.text(2, bot.MenuHomework)
	data, msgID, ok := h.tr.button(2, "report_hw_")
	require.True(t, ok)
	h.press(2, data, msgID)
	assert.Equal(t, conversation.StepReason, h.state(2).Step)

	h.text(2, "Задание не нашего класса")
	assert.Contains(t, h.tr.last(2).Text, "Жалоба отправлена")

	saved := h.store.Reports()
	require.Len(t, saved, 1)
	assert.Equal(t, reports.TypeHomework, saved[0].Type)
	assert.Equal(t, int64(1), saved[0].TargetID)
	assert.Equal(t, int64(2), saved[0].ReporterID)
	assert.Equal(t, reports.StatusOpen, saved[0].Status)

	notice := h.tr.last(superAdminID)
	assert.Contains(t, notice.Text, "Жалоба")
	assert.Contains(t, notice.Text, "Задание не нашего класса")
}

func TestUnregisteredUserIsAskedToRegister(t *testing.T) {
	h := newHarness(t)

	h.text(9, bot.MenuHomework)
	assert.Equal(t, common.UserMessage(common.ErrNotRegistered), h.tr.last(9).Text)

	h.text(9, bot.MenuProfile)
	assert.Equal(t, common.UserMessage(common.ErrNotRegistered), h.tr.last(9).Text)
}

func TestProfileAndTop(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.register(1, "9А", "Иван Петров")
	h.register(2, "10Б", "Пётр Сидоров")
	_, err := h.store.AdjustReputation(ctx, 2, 160)
	require.NoError(t, err)

	h.text(2, bot.MenuProfile)
	profile := h.tr.last(2).Text
	assert.Contains(t, profile, "Класс: 10-Б")
	assert.Contains(t, profile, "Репутация: 160 баллов")
	assert.Contains(t, profile, reputation.RankExpert.Title())
	assert.Contains(t, profile, "Статус: Ученик")

	h.text(1, bot.MenuTop)
	top := h.tr.last(1).Text
	assert.Contains(t, top, "🥇 Пётр Сидоров (10-Б) — 160 баллов")
	assert.Contains(t, top, "🥈 Иван Петров (9-А) — 0 баллов")

	h.text(1, bot.MenuClass)
	assert.Contains(t, h.tr.last(1).Text, "Класс 9-А (1)")
}

func TestAdminCommandsRequireRights(t *testing.T) {
	h := newHarness(t)
	h.register(1, "9А", "Иван Петров")

	h.text(1, "/ban")
	assert.Equal(t, common.UserMessage(common.ErrUnauthorized), h.tr.last(1).Text)
	assert.Nil(t, h.state(1))

	h.text(superAdminID, "/promote")
	h.text(superAdminID, "1")
	h.text(superAdminID, conversation.StatusAdmin)
	assert.True(t, h.user(1).IsAdmin)

	// Администратора заблокировать нельзя
	h.text(1, "/ban")
	h.text(1, "1")
	assert.Equal(t, common.UserMessage(common.ErrCannotBanAdmin), h.tr.last(1).Text)

	// Назначать админов может только суперадмин
	h.text(1, "/promote")
	assert.Equal(t, common.UserMessage(common.ErrUnauthorized), h.tr.last(1).Text)
}

func TestVoteButtonsEditFailureIsSwallowed(t *testing.T) {
	h := newHarness(t)

	h.register(1, "9А", "Иван Петров")
	h.register(2, "9А", "Пётр Сидоров")
	h.postHomework(1, "Химия", "Задачи 5-7")
	solutionID := h.postSolution(2, "photo-1")

	h.tr.editErr = errors.New("message is not modified")
	answer := h.press(1, callback.Encode(callback.VerbVoteUp, solutionID), 0)
	assert.Equal(t, "👍 Голос учтён", answer)
	assert.Equal(t, 6, h.user(2).Reputation)
}

func TestLargeSolutionStillGetsVoteButtons(t *testing.T) {
	h := newHarness(t)

	h.register(1, "9А", "Иван Петров")
	h.register(2, "9А", "Пётр Сидоров")
	h.postHomework(1, "Геометрия", "Задачи 1-11")

	photos := make([]string, 11)
	for i := range photos {
		photos[i] = fmt.Sprintf("photo-%d", i+1)
	}
	solutionID := h.postSolution(2, photos...)
	assert.Equal(t, 11, h.store.MediaCount())

	// Альбом не доставлен, но голосовать всё равно можно
	h.tr.albumErr = errors.New("Bad Request: wrong number of media")

	h.text(1, bot.MenuHomework)
	viewData, viewMsg, ok := h.tr.button(1, "view_")
	require.True(t, ok)
	h.press(1, viewData, viewMsg)

	last := h.tr.last(1)
	assert.Equal(t, "Оцени решение 👇", last.Text)
	voteData, _, ok := h.tr.button(1, "vote_up_")
	require.True(t, ok)
	assert.Equal(t, callback.Encode(callback.VerbVoteUp, solutionID), voteData)
}
