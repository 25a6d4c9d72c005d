// Package bot — telegram.go: Transport поверх Telegram Bot API.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram принимает альбом из 2..10 фото.
const (
	minAlbumSize = 2
	maxAlbumSize = 10
)

// TelegramTransport отправляет сообщения через tgbotapi.
type TelegramTransport struct {
	api *tgbotapi.BotAPI
}

// NewTelegramTransport создаёт транспорт.
func NewTelegramTransport(api *tgbotapi.BotAPI) *TelegramTransport {
	return &TelegramTransport{api: api}
}

func (t *TelegramTransport) SendText(_ context.Context, chatID int64, text string, markup *Markup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = toTelegramMarkup(markup)
	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("ошибка отправки сообщения: %w", err)
	}
	return sent.MessageID, nil
}

func (t *TelegramTransport) SendPhoto(_ context.Context, chatID int64, fileID, caption string, markup *Markup) (int, error) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	photo.Caption = caption
	photo.ReplyMarkup = toTelegramMarkup(markup)
	sent, err := t.api.Send(photo)
	if err != nil {
		return 0, fmt.Errorf("ошибка отправки фото: %w", err)
	}
	return sent.MessageID, nil
}

func (t *TelegramTransport) SendAlbum(ctx context.Context, chatID int64, fileIDs []string, caption string) error {
	if len(fileIDs) < minAlbumSize {
		for _, id := range fileIDs {
			if _, err := t.SendPhoto(ctx, chatID, id, caption, nil); err != nil {
				return err
			}
		}
		return nil
	}

	for n, group := range albumGroups(fileIDs) {
		media := make([]interface{}, 0, len(group))
		for i, id := range group {
			photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(id))
			if n == 0 && i == 0 {
				photo.Caption = caption
			}
			media = append(media, photo)
		}

		if _, err := t.api.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, media)); err != nil {
			return fmt.Errorf("ошибка отправки альбома: %w", err)
		}
	}
	return nil
}

// albumGroups делит фото на альбомы поровну, чтобы в каждом было
// от 2 до 10 фото: 11 фото уходят как 6+5, а не 10+1.
func albumGroups(fileIDs []string) [][]string {
	count := (len(fileIDs) + maxAlbumSize - 1) / maxAlbumSize
	if count == 0 {
		return nil
	}
	size, extra := len(fileIDs)/count, len(fileIDs)%count

	groups := make([][]string, 0, count)
	start := 0
	for i := 0; i < count; i++ {
		end := start + size
		if i < extra {
			end++
		}
		groups = append(groups, fileIDs[start:end])
		start = end
	}
	return groups
}

func (t *TelegramTransport) EditButtons(_ context.Context, chatID int64, messageID int, markup *Markup) error {
	kb, ok := toTelegramMarkup(markup).(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		return fmt.Errorf("редактировать можно только inline-кнопки")
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, kb)
	if _, err := t.api.Request(edit); err != nil {
		return fmt.Errorf("ошибка обновления кнопок: %w", err)
	}
	return nil
}

func (t *TelegramTransport) AnswerCallback(_ context.Context, callbackID, text string) error {
	if _, err := t.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("ошибка ответа на кнопку: %w", err)
	}
	return nil
}

// toTelegramMarkup переводит Markup в тип клавиатуры Telegram.
func toTelegramMarkup(m *Markup) interface{} {
	switch {
	case m == nil:
		return nil
	case m.Remove:
		return tgbotapi.NewRemoveKeyboard(true)
	case len(m.Inline) > 0:
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(m.Inline))
		for _, row := range m.Inline {
			buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
		}
		return tgbotapi.NewInlineKeyboardMarkup(rows...)
	case len(m.Reply) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(m.Reply))
		for _, row := range m.Reply {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, text := range row {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(text))
			}
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
		}
		kb := tgbotapi.NewReplyKeyboard(rows...)
		kb.ResizeKeyboard = true
		return kb
	}
	return nil
}
