package discord

import (
	"fmt"
	"strings"
)

// Component actions carried in button custom IDs
const (
	ActionFinalize = "finalize"
	ActionCancel   = "cancel"
)

const componentPrefix = "dune_create"

// ComponentAction is the state attached to a creation button. Custom IDs
// are capped at 100 characters, so the fields are joined rather than
// serialized.
type ComponentAction struct {
	Action  string
	UserID  string
	GuildID string
}

// Encode renders the custom ID
func (a *ComponentAction) Encode() string {
	return fmt.Sprintf("%s:%s:%s:%s", componentPrefix, a.Action, a.UserID, a.GuildID)
}

// DecodeComponentAction parses a custom ID produced by Encode
func DecodeComponentAction(customID string) (*ComponentAction, error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 4 || parts[0] != componentPrefix {
		return nil, fmt.Errorf("unrecognized custom ID %q", customID)
	}

	action := &ComponentAction{Action: parts[1], UserID: parts[2], GuildID: parts[3]}
	switch action.Action {
	case ActionFinalize, ActionCancel:
	default:
		return nil, fmt.Errorf("unknown component action %q", action.Action)
	}
	if action.UserID == "" || action.GuildID == "" {
		return nil, fmt.Errorf("custom ID %q is missing user or guild", customID)
	}
	return action, nil
}
