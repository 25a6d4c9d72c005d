package middleware

import (
	"fmt"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/alisher2011ali-netizen/School-Hub/internal/conversation"
)

// RecoverFromPanic вызывается через defer в обработчике события.
func RecoverFromPanic(ev conversation.Event) {
	if r := recover(); r != nil {
		log.WithFields(log.Fields{
			"component": "panic_recovery",
			"user_id":   ev.UserID,
			"kind":      ev.Kind.String(),
			"panic":     fmt.Sprintf("%v", r),
			"stack":     string(debug.Stack()),
		}).Error("ПАНИКА в обработчике — восстановлено")
	}
}
