package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	tests := []struct {
		text      string
		cmd       string
		args      []string
		isCommand bool
	}{
		{"/start", "start", nil, true},
		{"  /Profile  ", "profile", nil, true},
		{"/start@SchoolHubBot", "start", nil, true},
		{"/login secret pass", "login", []string{"secret", "pass"}, true},
		{"!help", "help", nil, true},
		{"/", "", nil, false},
		{"/@bot", "", nil, false},
		{"📚 Узнать ДЗ", "", nil, false},
		{"9А", "", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, args, ok := p.ParseCommand(tt.text)
			assert.Equal(t, tt.isCommand, ok)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.args, args)
		})
	}
}
