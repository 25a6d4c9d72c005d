package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alisher2011ali-netizen/School-Hub/internal/conversation"
)

func TestCheckAccess(t *testing.T) {
	f := NewChatFilter()

	tests := []struct {
		name string
		ev   conversation.Event
		want bool
	}{
		{"private", conversation.Event{UserID: 1, ChatID: 1, Private: true}, true},
		{"group", conversation.Event{UserID: 1, ChatID: -100, Private: false}, false},
		{"no sender", conversation.Event{ChatID: 1, Private: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.CheckAccess(tt.ev))
		})
	}
}
