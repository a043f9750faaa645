package entities

import (
	"maps"
	"slices"
	"time"
)

type CharacterStatus string

const (
	CharacterStatusActive   CharacterStatus = "active"
	CharacterStatusArchived CharacterStatus = "archived"
)

// Character is a finalized build. Skills and Drives hold the final values
// with archetype modifiers applied.
type Character struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	RealmID string `json:"realm_id"`
	Name    string `json:"name"`

	Concepts   []string `json:"concepts"`
	Archetypes []string `json:"archetypes"`

	Skills     map[string]int      `json:"skills"`
	Drives     map[string]int      `json:"drives"`
	Statements map[string]string   `json:"statements,omitempty"`
	Focuses    map[string][]string `json:"focuses"`

	Talents []string `json:"talents"`
	Assets  []string `json:"assets"`
	Traits  []string `json:"traits"`

	Resources CharacterResources `json:"resources"`
	Status    CharacterStatus    `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// IsActive reports whether the character can take tests
func (c *Character) IsActive() bool {
	return c.Status == CharacterStatusActive
}

// Skill returns the final value of a skill
func (c *Character) Skill(name string) (int, bool) {
	v, ok := c.Skills[name]
	return v, ok
}

// Drive returns the final value of a drive
func (c *Character) Drive(name string) (int, bool) {
	v, ok := c.Drives[name]
	return v, ok
}

// Clone returns a deep copy so stored records are never shared
func (c *Character) Clone() *Character {
	if c == nil {
		return nil
	}
	out := *c
	out.Concepts = slices.Clone(c.Concepts)
	out.Archetypes = slices.Clone(c.Archetypes)
	out.Skills = maps.Clone(c.Skills)
	out.Drives = maps.Clone(c.Drives)
	out.Statements = maps.Clone(c.Statements)
	out.Focuses = cloneFocuses(c.Focuses)
	out.Talents = slices.Clone(c.Talents)
	out.Assets = slices.Clone(c.Assets)
	out.Traits = slices.Clone(c.Traits)
	return &out
}

func cloneFocuses(in map[string][]string) map[string][]string {
	if in == nil {
		return nil
	}
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = slices.Clone(v)
	}
	return out
}
