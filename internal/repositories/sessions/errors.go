package sessions

import (
	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
	"github.com/KirkDiggler/dune-bot-discord/internal/repositories"
)

func NewSessionNotFoundError(userID, guildID string) error {
	return repositories.NewRecordNotFoundError("session", entities.SessionKey(userID, guildID))
}

func validateKey(userID, guildID string) error {
	if userID == "" {
		return repositories.NewMissingKeyError("user ID")
	}
	if guildID == "" {
		return repositories.NewMissingKeyError("guild ID")
	}
	return nil
}
