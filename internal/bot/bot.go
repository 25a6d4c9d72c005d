// Package bot содержит главный модуль бота — polling, маршрутизацию и ответы.
// bot.go получает апдейты Telegram, превращает их в события и раздаёт
// по воркерам диспетчера.
package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/alisher2011ali-netizen/School-Hub/internal/bot/filters"
	"github.com/alisher2011ali-netizen/School-Hub/internal/bot/middleware"
	"github.com/alisher2011ali-netizen/School-Hub/internal/callback"
	"github.com/alisher2011ali-netizen/School-Hub/internal/conversation"
)

// Bot — приём апдейтов от Telegram.
type Bot struct {
	api           *tgbotapi.BotAPI
	updateTimeout int

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter
	dispatcher  *Dispatcher
}

// New создаёт бота. События обрабатывает dispatcher.
func New(
	api *tgbotapi.BotAPI,
	updateTimeout int,
	chatFilter *filters.ChatFilter,
	rateLimiter *middleware.RateLimiter,
	dispatcher *Dispatcher,
) *Bot {
	return &Bot{
		api:           api,
		updateTimeout: updateTimeout,
		chatFilter:    chatFilter,
		rateLimiter:   rateLimiter,
		dispatcher:    dispatcher,
	}
}

// Start запускает polling обновлений от Telegram и блокируется до отмены ctx.
// Перед выходом дожидается обработки уже принятых событий.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.updateTimeout

	updates := b.api.GetUpdatesChan(u)

	b.dispatcher.Start(ctx)
	defer b.dispatcher.Stop()

	log.WithFields(log.Fields{
		"bot":         b.api.Self.UserName,
		"timeout_sec": b.updateTimeout,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate фильтрует апдейт и отдаёт его диспетчеру.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	ev, ok := EventFromUpdate(update)
	if !ok {
		return
	}

	middleware.LogEvent(ev)

	if !b.chatFilter.CheckAccess(ev) {
		return
	}

	if !b.rateLimiter.Allow(ev.UserID) {
		log.WithField("user_id", ev.UserID).Debug("rate limited")
		return
	}

	if err := b.dispatcher.Dispatch(ctx, ev); err != nil {
		log.WithError(err).WithField("user_id", ev.UserID).Debug("Событие не поставлено в очередь")
	}
}

// EventFromUpdate превращает апдейт в событие. Апдейты, которые бот
// не обрабатывает (стикеры, редактирования, вступления в чат), отбрасываются.
func EventFromUpdate(update tgbotapi.Update) (conversation.Event, bool) {
	if q := update.CallbackQuery; q != nil {
		if q.From == nil || q.Message == nil || q.Message.Chat == nil {
			return conversation.Event{}, false
		}
		ev := conversation.Event{
			Kind:       conversation.KindCallback,
			UserID:     q.From.ID,
			ChatID:     q.Message.Chat.ID,
			Private:    q.Message.Chat.IsPrivate(),
			MessageID:  q.Message.MessageID,
			FirstName:  q.From.FirstName,
			LastName:   q.From.LastName,
			Username:   q.From.UserName,
			CallbackID: q.ID,
			Data:       q.Data,
		}
		// Нераспознанные данные оставляют Payload пустым, роутер ответит сам
		if payload, err := callback.Parse(q.Data); err == nil {
			ev.Payload = payload
		}
		return ev, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return conversation.Event{}, false
	}

	ev := conversation.Event{
		UserID:    msg.From.ID,
		ChatID:    msg.Chat.ID,
		Private:   msg.Chat.IsPrivate(),
		MessageID: msg.MessageID,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
		Username:  msg.From.UserName,
	}

	switch {
	case len(msg.Photo) > 0:
		// Размеры идут по возрастанию, берём самый крупный
		ev.Kind = conversation.KindPhoto
		ev.PhotoID = msg.Photo[len(msg.Photo)-1].FileID
		ev.Text = msg.Caption
	case msg.Text != "":
		ev.Kind = conversation.KindText
		ev.Text = msg.Text
	default:
		return conversation.Event{}, false
	}

	return ev, true
}
