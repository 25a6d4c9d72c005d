// Package filters отсекает события, которые бот не обрабатывает.
package filters

import (
	log "github.com/sirupsen/logrus"

	"github.com/alisher2011ali-netizen/School-Hub/internal/conversation"
)

// ChatFilter пропускает только личные чаты с живыми пользователями.
// Группы и каналы игнорируются молча.
type ChatFilter struct{}

func NewChatFilter() *ChatFilter {
	return &ChatFilter{}
}

func (f *ChatFilter) CheckAccess(ev conversation.Event) bool {
	logger := log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   ev.ChatID,
		"user_id":   ev.UserID,
		"kind":      ev.Kind.String(),
	})

	if ev.UserID == 0 {
		logger.Warn("deny: событие без отправителя")
		return false
	}
	if !ev.Private {
		logger.Debug("deny: не личный чат")
		return false
	}
	return true
}
