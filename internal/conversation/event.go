// Package conversation — event.go: входящее событие от пользователя.
package conversation

import "github.com/alisher2011ali-netizen/School-Hub/internal/callback"

// Kind — вид события.
type Kind int

const (
	KindText Kind = iota + 1
	KindPhoto
	KindCallback
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPhoto:
		return "photo"
	case KindCallback:
		return "callback"
	default:
		return "unknown"
	}
}

// Event — одно входящее событие: текст, фото или нажатие кнопки.
type Event struct {
	Kind Kind

	UserID    int64
	ChatID    int64
	Private   bool // личный чат
	MessageID int

	FirstName string
	LastName  string
	Username  string

	// Text — текст сообщения или подпись к фото
	Text string
	// PhotoID — file_id самого крупного размера фото
	PhotoID string

	// CallbackID нужен для ответа на нажатие
	CallbackID string
	// Data — сырые данные кнопки, Payload — разобранные
	Data    string
	Payload callback.Payload
}
