// Package middleware содержит промежуточные обработчики для логирования,
// восстановления после паники и rate-limiting.
package middleware

import (
	log "github.com/sirupsen/logrus"

	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
	"github.com/alisher2011ali-netizen/School-Hub/internal/conversation"
)

// Сколько символов текста попадает в лог.
const logTextLimit = 50

// LogEvent логирует входящее событие.
// Записывает: вид события, user_id, chat_id, username и начало текста.
func LogEvent(ev conversation.Event) {
	fields := log.Fields{
		"kind":     ev.Kind.String(),
		"user_id":  ev.UserID,
		"chat_id":  ev.ChatID,
		"username": ev.Username,
	}

	switch ev.Kind {
	case conversation.KindCallback:
		fields["data"] = ev.Data
	case conversation.KindPhoto:
		fields["caption"] = common.Truncate(ev.Text, logTextLimit)
	default:
		fields["text"] = common.Truncate(ev.Text, logTextLimit)
	}

	log.WithFields(fields).Debug("Входящее событие")
}
