package entities

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// CreationStep is a stage of the character builder
type CreationStep string

const (
	StepName            CreationStep = "name"
	StepConcept         CreationStep = "concept"
	StepArchetype       CreationStep = "archetype"
	StepSkills          CreationStep = "skills"
	StepFocuses         CreationStep = "focuses"
	StepDrives          CreationStep = "drives"
	StepDriveStatements CreationStep = "drive_statements"
	StepTalents         CreationStep = "talents"
	StepAssets          CreationStep = "assets"
	StepTraits          CreationStep = "traits"
	StepStartingPools   CreationStep = "starting_pools"
	StepSummary         CreationStep = "summary"
	StepFinalize        CreationStep = "finalize"
)

// CreationSteps lists the steps in the order they must be completed
var CreationSteps = []CreationStep{
	StepName,
	StepConcept,
	StepArchetype,
	StepSkills,
	StepFocuses,
	StepDrives,
	StepDriveStatements,
	StepTalents,
	StepAssets,
	StepTraits,
	StepStartingPools,
	StepSummary,
	StepFinalize,
}

// ParseCreationStep accepts step names in any case with '-' or ' ' as separators
func ParseCreationStep(s string) (CreationStep, bool) {
	norm := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
	step := CreationStep(norm)
	return step, step.Index() >= 0
}

// Index is the position of the step, -1 when unknown
func (s CreationStep) Index() int {
	return slices.Index(CreationSteps, s)
}

// Next returns the following step; FINALIZE is its own successor
func (s CreationStep) Next() CreationStep {
	i := s.Index()
	if i < 0 || i+1 >= len(CreationSteps) {
		return StepFinalize
	}
	return CreationSteps[i+1]
}

// Before reports whether s comes earlier than other
func (s CreationStep) Before(other CreationStep) bool {
	return s.Index() < other.Index()
}

// CreationData is the partial character accumulated across steps
type CreationData struct {
	Name       string              `json:"name,omitempty"`
	Concepts   []string            `json:"concepts,omitempty"`
	Archetypes []string            `json:"archetypes,omitempty"`
	Skills     map[string]int      `json:"skills,omitempty"`
	Focuses    map[string][]string `json:"focuses,omitempty"`
	Drives     map[string]int      `json:"drives,omitempty"`
	Statements map[string]string   `json:"statements,omitempty"`
	Talents    []string            `json:"talents,omitempty"`
	Assets     []string            `json:"assets,omitempty"`
	Traits     []string            `json:"traits,omitempty"`

	// Determination is nil until the starting pools step is submitted
	Determination *int `json:"determination,omitempty"`
}

// Clone returns a deep copy
func (d CreationData) Clone() CreationData {
	out := d
	out.Concepts = slices.Clone(d.Concepts)
	out.Archetypes = slices.Clone(d.Archetypes)
	out.Skills = maps.Clone(d.Skills)
	out.Focuses = cloneFocuses(d.Focuses)
	out.Drives = maps.Clone(d.Drives)
	out.Statements = maps.Clone(d.Statements)
	out.Talents = slices.Clone(d.Talents)
	out.Assets = slices.Clone(d.Assets)
	out.Traits = slices.Clone(d.Traits)
	if d.Determination != nil {
		v := *d.Determination
		out.Determination = &v
	}
	return out
}

// CreationSession tracks a character build in progress. There is at most
// one open session per user and guild.
type CreationSession struct {
	UserID      string       `json:"user_id"`
	GuildID     string       `json:"guild_id"`
	CurrentStep CreationStep `json:"current_step"`
	Data        CreationData `json:"data"`
	CreatedAt   time.Time    `json:"created_at"`
	LastUpdated time.Time    `json:"last_updated"`
	Completed   bool         `json:"completed"`
}

// SessionKey identifies the session of a user in a guild
func SessionKey(userID, guildID string) string {
	return fmt.Sprintf("%s:%s", userID, guildID)
}

// Key identifies the session
func (s *CreationSession) Key() string {
	return SessionKey(s.UserID, s.GuildID)
}

// IsExpired checks if the session has been idle longer than ttl
func (s *CreationSession) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastUpdated) > ttl
}

// Clone returns a deep copy
func (s *CreationSession) Clone() *CreationSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Data = s.Data.Clone()
	return &out
}
