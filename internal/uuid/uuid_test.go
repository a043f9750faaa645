package uuid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/dune-bot-discord/internal/uuid"
)

func TestGoogleUUIDGenerator(t *testing.T) {
	gen := uuid.NewGoogleUUIDGenerator()

	first := gen.New()
	second := gen.New()

	assert.True(t, uuid.IsValid(first))
	assert.True(t, uuid.IsValid(second))
	assert.NotEqual(t, first, second)
	assert.False(t, uuid.IsValid("not-a-uuid"))
}
