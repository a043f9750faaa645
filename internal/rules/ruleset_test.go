package rules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
	"github.com/KirkDiggler/dune-bot-discord/internal/rules"
)

func TestDefaultRuleset(t *testing.T) {
	rs, err := rules.Default()
	require.NoError(t, err)

	assert.Equal(t, skillNames, rs.Skills.Names)
	assert.Equal(t, []int{9, 7, 6, 5, 4}, rs.Skills.Values)
	assert.Equal(t, []string{"Duty", "Faith", "Justice", "Power", "Truth"}, rs.Drives.Names)
	assert.Equal(t, 2, rs.CoreDice)
	assert.Equal(t, 20, rs.ComplicationValue)
	assert.Len(t, rs.Archetypes, 13)

	for _, a := range rs.Archetypes {
		assert.Len(t, a.Talents, 5, a.Name)
		assert.Len(t, a.Assets, 5, a.Name)
	}
}

func TestRuleset_Lookups(t *testing.T) {
	rs := rules.MustDefault()

	a, ok := rs.Archetype("  bene   GESSERIT ")
	require.True(t, ok)
	assert.Equal(t, "Bene Gesserit", a.Name)

	name, ok := rs.SkillName("understand")
	require.True(t, ok)
	assert.Equal(t, "Understand", name)

	_, ok = rs.DriveName("greed")
	assert.False(t, ok)

	assert.Equal(t, "Guild Agent", rules.NormalizeName("guild   agent"))
}

func TestRuleset_ValidateSkills(t *testing.T) {
	rs := rules.MustDefault()

	lower := map[string]int{"battle": 9, "communicate": 7, "discipline": 6, "move": 5, "understand": 4}
	assert.NoError(t, rs.ValidateSkills(lower, []string{"Swordmaster"}))

	err := rs.ValidateSkills(validAssignment(), []string{"Swordmaster", "Duelist"})
	require.Error(t, err)
	assert.Equal(t, rules.ReasonOutOfRange, dnderr.GetMeta(err)[dnderr.MetaReason])

	err = rs.ValidateSkills(validAssignment(), []string{"Harkonnen"})
	assert.True(t, dnderr.IsValidation(err))

	// Two spellings of one skill never pass, whatever the map order
	sixEntries := map[string]int{"Battle": 9, "battle": 8, "Communicate": 7, "Discipline": 6, "Move": 5, "Understand": 4}
	for i := 0; i < 50; i++ {
		err = rs.ValidateSkills(sixEntries, nil)
		require.Error(t, err)
		assert.True(t, dnderr.IsValidation(err))
		assert.Equal(t, rules.ReasonMissingOrUnknown, dnderr.GetMeta(err)[dnderr.MetaReason])
		assert.Equal(t, []string{"Battle", "battle"}, dnderr.GetMeta(err)["duplicates"])
	}

	_, err = rs.CanonicalDrives(map[string]int{"Duty": 8, " DUTY ": 7})
	assert.True(t, dnderr.IsValidation(err))

	final := rs.FinalSkills(lower, []string{"Mentat"})
	assert.Equal(t, 7, final["Discipline"])
	assert.Equal(t, 6, final["Understand"])
}

func TestRuleset_ValidateDrives(t *testing.T) {
	rs := rules.MustDefault()

	drives := map[string]int{"Duty": 8, "Faith": 7, "Justice": 6, "Power": 5, "Truth": 4}
	assert.NoError(t, rs.ValidateDrives(drives, []string{"Fremen"}))

	drives["Truth"] = 8
	err := rs.ValidateDrives(drives, nil)
	require.Error(t, err)
	assert.Equal(t, rules.ReasonInvalidDistribution, dnderr.GetMeta(err)[dnderr.MetaReason])
}

func TestRuleset_ResolveArchetypes(t *testing.T) {
	rs := rules.MustDefault()

	got, err := rs.ResolveArchetypes([]string{"fremen", "Mentat"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Fremen", got[0].Name)

	_, err = rs.ResolveArchetypes(nil)
	assert.True(t, dnderr.IsValidation(err))

	_, err = rs.ResolveArchetypes([]string{"Agent", "Noble", "Mentat", "Fremen"})
	assert.True(t, dnderr.IsValidation(err))

	_, err = rs.ResolveArchetypes([]string{"Noble", "noble"})
	assert.True(t, dnderr.IsValidation(err))
}

func TestRuleset_Selections(t *testing.T) {
	rs := rules.MustDefault()

	assert.Equal(t, 3, rs.ExpectedTalents(1))
	assert.Equal(t, 2, rs.ExpectedTalents(2))
	assert.Equal(t, 3, rs.ExpectedAssets(3))

	assert.NoError(t, rs.ValidateTalents(
		[]string{"Sandwalker", "Water Discipline", "Quick Study"}, []string{"Fremen"}))

	err := rs.ValidateTalents([]string{"Sandwalker"}, []string{"Fremen"})
	assert.Equal(t, 3, dnderr.GetMeta(err)[dnderr.MetaExpected])

	err = rs.ValidateTalents([]string{"Voice Mastery", "Wary", "Quick Study"}, []string{"Fremen"})
	assert.True(t, dnderr.IsValidation(err))

	err = rs.ValidateAssets([]string{"Crysknife", "crysknife"}, []string{"Fremen", "Mentat"})
	assert.True(t, dnderr.IsValidation(err))

	assert.NoError(t, rs.ValidateAssets([]string{"Crysknife", "Security Codes"}, []string{"Fremen", "Mentat"}))

	opts := rs.TalentOptions([]string{"Fremen"})
	assert.Equal(t, "Sandwalker", opts[0])
	assert.Equal(t, 1, countOf(opts, "Sandwalker"))
}

func TestRuleset_TraitsAndStatements(t *testing.T) {
	rs := rules.MustDefault()

	assert.NoError(t, rs.ValidateTraits([]string{"Loyal"}))
	assert.True(t, dnderr.IsValidation(rs.ValidateTraits(nil)))
	assert.True(t, dnderr.IsValidation(rs.ValidateTraits([]string{"a", "b", "c"})))
	assert.True(t, dnderr.IsValidation(rs.ValidateTraits([]string{" "})))

	drives := map[string]int{"duty": 8, "faith": 7, "justice": 6, "power": 5, "truth": 4}
	assert.Equal(t, []string{"Duty", "Faith", "Justice"}, rs.StatementDrives(drives))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: tiny
skills: {names: [A, B], values: [2, 1], range: {min: 1, max: 3}}
drives: {names: [X], values: [1], range: {min: 1, max: 1}}
archetype_count: {min: 1, max: 1}
trait_count: {min: 0, max: 1}
talent_count: 1
asset_count: 1
archetypes:
  - name: Only
    skill_modifiers: {A: 1}
`), 0o600))

	rs, err := rules.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tiny", rs.Name)
	assert.Equal(t, 2, rs.CoreDice)
	assert.NoError(t, rs.ValidateSkills(map[string]int{"a": 2, "b": 1}, []string{"only"}))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`
skills: {names: [A, B], values: [2], range: {min: 1, max: 3}}
`), 0o600))
	_, err = rules.Load(bad)
	assert.True(t, dnderr.IsInvalidArgument(err))

	_, err = rules.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func countOf(items []string, want string) int {
	n := 0
	for _, it := range items {
		if it == want {
			n++
		}
	}
	return n
}
