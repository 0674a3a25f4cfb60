package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	tests := []struct {
		text    string
		cmd     string
		args    []string
		command bool
	}{
		{"!буст sleep-101", cmdBoost, []string{"sleep-101"}, true},
		{"/boost@HealthRocketBot sleep-101", cmdBoost, []string{"sleep-101"}, true},
		{".Сегодня", cmdToday, nil, true},
		{"  !огонёк  ", cmdStreak, nil, true},
		{"!огонек", cmdStreak, nil, true},
		{"/start", cmdHelp, nil, true},
		{"!бусты сон", cmdBoosts, []string{"сон"}, true},
		{"!give @ann 50 за марафон", cmdGive, []string{"@ann", "50", "за", "марафон"}, true},
		{"!слоты", "", nil, false},
		{"привет", "", nil, false},
		{"!", "", nil, false},
		{"", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, args, ok := p.ParseCommand(tt.text)
			assert.Equal(t, tt.command, ok)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestAdminCommandsAreKnownAliases(t *testing.T) {
	for cmd := range adminCommands {
		assert.Equal(t, cmd, commandAliases[cmd])
	}
}
