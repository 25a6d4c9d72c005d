package bot_test

import (
	"context"
	"strings"
	"sync"

	"github.com/alisher2011ali-netizen/School-Hub/internal/bot"
)

// sentMessage — то, что бот отправил в чат.
type sentMessage struct {
	ID     int
	ChatID int64
	Text   string // текст или подпись
	Photo  string
	Album  []string
	Markup *bot.Markup
}

type editedButtons struct {
	ChatID    int64
	MessageID int
	Markup    *bot.Markup
}

// fakeTransport записывает исходящие сообщения вместо отправки в Telegram.
type fakeTransport struct {
	mu       sync.Mutex
	nextID   int
	messages []sentMessage
	edits    []editedButtons
	answers  map[string]string
	editErr  error
	albumErr error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{answers: make(map[string]string)}
}

func (f *fakeTransport) record(m sentMessage) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = f.nextID
	f.messages = append(f.messages, m)
	return m.ID
}

func (f *fakeTransport) SendText(_ context.Context, chatID int64, text string, markup *bot.Markup) (int, error) {
	return f.record(sentMessage{ChatID: chatID, Text: text, Markup: markup}), nil
}

func (f *fakeTransport) SendPhoto(_ context.Context, chatID int64, fileID, caption string, markup *bot.Markup) (int, error) {
	return f.record(sentMessage{ChatID: chatID, Text: caption, Photo: fileID, Markup: markup}), nil
}

func (f *fakeTransport) SendAlbum(_ context.Context, chatID int64, fileIDs []string, caption string) error {
	f.mu.Lock()
	err := f.albumErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.record(sentMessage{ChatID: chatID, Text: caption, Album: append([]string(nil), fileIDs...)})
	return nil
}

func (f *fakeTransport) EditButtons(_ context.Context, chatID int64, messageID int, markup *bot.Markup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, editedButtons{ChatID: chatID, MessageID: messageID, Markup: markup})
	return nil
}

func (f *fakeTransport) AnswerCallback(_ context.Context, callbackID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers[callbackID] = text
	return nil
}

// to возвращает сообщения в чат по порядку.
func (f *fakeTransport) to(chatID int64) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

// last возвращает последнее сообщение в чат.
func (f *fakeTransport) last(chatID int64) sentMessage {
	list := f.to(chatID)
	if len(list) == 0 {
		return sentMessage{}
	}
	return list[len(list)-1]
}

// texts возвращает тексты последних n сообщений в чат.
func (f *fakeTransport) texts(chatID int64, n int) []string {
	list := f.to(chatID)
	if len(list) > n {
		list = list[len(list)-n:]
	}
	out := make([]string, 0, len(list))
	for _, m := range list {
		out = append(out, m.Text)
	}
	return out
}

// button ищет последнюю inline-кнопку с данными, начинающимися с prefix.
// Возвращает данные кнопки и ID сообщения, к которому она прикреплена.
func (f *fakeTransport) button(chatID int64, prefix string) (string, int, bool) {
	list := f.to(chatID)
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Markup == nil {
			continue
		}
		for _, row := range list[i].Markup.Inline {
			for _, b := range row {
				if strings.HasPrefix(b.Data, prefix) {
					return b.Data, list[i].ID, true
				}
			}
		}
	}
	return "", 0, false
}

func (f *fakeTransport) answer(callbackID string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	text, ok := f.answers[callbackID]
	return text, ok
}
