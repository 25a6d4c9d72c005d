// Package bot — transport.go: исходящие сообщения.
// Обработчики работают с Transport, а не с Telegram API напрямую,
// поэтому в тестах его заменяет запись отправленного.
package bot

import "context"

// Button — inline-кнопка с callback-данными.
type Button struct {
	Text string
	Data string
}

// Markup — клавиатура сообщения. Заполняется не больше одного поля.
type Markup struct {
	// Reply — обычная клавиатура: строки кнопок с текстом
	Reply [][]string
	// Inline — кнопки под сообщением
	Inline [][]Button
	// Remove — убрать обычную клавиатуру
	Remove bool
}

// Transport отправляет ответы пользователю.
type Transport interface {
	// SendText отправляет текст и возвращает ID сообщения.
	SendText(ctx context.Context, chatID int64, text string, markup *Markup) (int, error)
	// SendPhoto отправляет фото с подписью и возвращает ID сообщения.
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, markup *Markup) (int, error)
	// SendAlbum отправляет несколько фото одним альбомом, подпись — у первого.
	SendAlbum(ctx context.Context, chatID int64, fileIDs []string, caption string) error
	// EditButtons заменяет inline-кнопки у отправленного сообщения.
	EditButtons(ctx context.Context, chatID int64, messageID int, markup *Markup) error
	// AnswerCallback отвечает на нажатие кнопки всплывающим текстом.
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
