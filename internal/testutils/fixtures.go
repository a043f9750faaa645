package testutils

import (
	"time"

	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
)

// CreateTestCharacter creates a finalized Fremen with the default skill and
// drive spread.
func CreateTestCharacter(id, ownerID, realmID, name string) *entities.Character {
	return &entities.Character{
		ID:         id,
		OwnerID:    ownerID,
		RealmID:    realmID,
		Name:       name,
		Concepts:   []string{"Desert warrior"},
		Archetypes: []string{"Fremen"},
		Skills: map[string]int{
			"Battle":      10,
			"Communicate": 7,
			"Discipline":  7,
			"Move":        6,
			"Understand":  4,
		},
		Drives: map[string]int{
			"Duty":    8,
			"Faith":   7,
			"Justice": 6,
			"Power":   5,
			"Truth":   4,
		},
		Statements: map[string]string{
			"Duty":    "The sietch comes before me",
			"Faith":   "Shai-Hulud provides",
			"Justice": "Water debts are always paid",
		},
		Focuses: map[string][]string{"Battle": {"Knives"}},
		Talents: []string{"Sandwalker", "Water Discipline", "Desert Hunter"},
		Assets:  []string{"Crysknife", "Sietch Ally", "Water Rings"},
		Traits:  []string{"Fremen"},
		Resources: entities.CharacterResources{
			Determination:    1,
			MaxDetermination: 3,
		},
		Status: entities.CharacterStatusActive,
	}
}

// CreateTestSession creates a session parked at step with no data
func CreateTestSession(userID, guildID string, step entities.CreationStep, at time.Time) *entities.CreationSession {
	return &entities.CreationSession{
		UserID:      userID,
		GuildID:     guildID,
		CurrentStep: step,
		CreatedAt:   at,
		LastUpdated: at,
	}
}

// CompleteCreationData returns step data that satisfies every step of the
// default ruleset for a single Fremen archetype.
func CompleteCreationData() entities.CreationData {
	det := 1
	return entities.CreationData{
		Name:       "Chani",
		Concepts:   []string{"Daughter of the desert"},
		Archetypes: []string{"Fremen"},
		Skills: map[string]int{
			"Battle":      9,
			"Communicate": 5,
			"Discipline":  6,
			"Move":        7,
			"Understand":  4,
		},
		Focuses: map[string][]string{"Battle": {"Knives"}, "Move": {"Stealth"}},
		Drives: map[string]int{
			"Duty":    7,
			"Faith":   8,
			"Justice": 6,
			"Power":   4,
			"Truth":   5,
		},
		Statements: map[string]string{
			"Duty":    "The tribe must endure",
			"Faith":   "The desert provides for the patient",
			"Justice": "Harkonnen blood pays for Fremen water",
		},
		Talents:       []string{"Sandwalker", "Desert Hunter", "Wary"},
		Assets:        []string{"Crysknife", "Stillsuit (Superior Quality)", "Water Rings"},
		Traits:        []string{"Fremen", "Fierce"},
		Determination: &det,
	}
}
