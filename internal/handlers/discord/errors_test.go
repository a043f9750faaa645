package discord_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
	"github.com/KirkDiggler/dune-bot-discord/internal/handlers/discord"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name: "validation with field",
			err: dnderr.Validation("momentum pool too small").
				WithField("amount", 2, 5),
			expected: "❌ Momentum pool too small\n**amount**: expected 2, got 5",
		},
		{
			name:     "state",
			err:      dnderr.State("complete the skills step first"),
			expected: "⚠️ Complete the skills step first",
		},
		{
			name:     "wrapped not found keeps chain",
			err:      dnderr.Wrap(dnderr.NotFound("character 'c1' not found"), "failed to get character"),
			expected: "🔍 Failed to get character: character 'c1' not found",
		},
		{
			name:     "infrastructure errors stay generic",
			err:      errors.New("dial tcp: connection refused"),
			expected: "❌ Something went wrong. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, discord.ErrorMessage(tt.err))
		})
	}

	assert.Empty(t, discord.ErrorMessage(nil))
}
