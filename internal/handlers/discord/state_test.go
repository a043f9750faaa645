package discord_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/dune-bot-discord/internal/handlers/discord"
)

func TestComponentAction_RoundTrip(t *testing.T) {
	action := &discord.ComponentAction{
		Action:  discord.ActionFinalize,
		UserID:  "123456789012345678",
		GuildID: "876543210987654321",
	}

	id := action.Encode()
	assert.LessOrEqual(t, len(id), 100)

	decoded, err := discord.DecodeComponentAction(id)
	require.NoError(t, err)
	assert.Equal(t, action, decoded)
}

func TestDecodeComponentAction_Rejects(t *testing.T) {
	for _, id := range []string{
		"character_manage:confirm_delete:abc",
		"dune_create:explode:user:guild",
		"dune_create:cancel::guild",
		"dune_create:cancel:user",
	} {
		_, err := discord.DecodeComponentAction(id)
		assert.Error(t, err, id)
	}
}
