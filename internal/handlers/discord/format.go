package discord

import (
	"fmt"
	"slices"
	"strings"

	"github.com/KirkDiggler/dune-bot-discord/internal/dice"
	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
	"github.com/KirkDiggler/dune-bot-discord/internal/rules"
	"github.com/KirkDiggler/dune-bot-discord/internal/services/checks"
	"github.com/KirkDiggler/dune-bot-discord/internal/services/creation"
)

func formatRolls(rolls []int) string {
	parts := make([]string, len(rolls))
	for i, r := range rolls {
		parts[i] = fmt.Sprintf("%d", r)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatRoll(label string, res *dice.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎲 **%s** %s", label, formatRolls(res.Rolls))

	switch res.System {
	case dice.SystemStandard, dice.SystemExploding:
		if len(res.ExplodedDice) > 0 {
			fmt.Fprintf(&b, " exploded %s", formatRolls(res.ExplodedDice))
		}
		if res.Modifier != 0 {
			fmt.Fprintf(&b, " %+d", res.Modifier)
		}
		fmt.Fprintf(&b, "\n**Total: %d**", res.Total)
	case dice.SystemWorldOfDarkness:
		fmt.Fprintf(&b, "\nDifficulty %d", res.Difficulty)
		if res.Specialty {
			b.WriteString(", specialty")
		}
		fmt.Fprintf(&b, "\n**%d successes** (%d raw, %d ones)", res.Successes, res.RawSuccesses, res.Ones)
		if res.Botch {
			b.WriteString("\n💀 **Botch!**")
		}
	case dice.SystemDune:
		fmt.Fprintf(&b, "\nTarget %d", res.Target)
		if len(res.Selected) > 0 && len(res.Selected) < len(res.Rolls) {
			fmt.Fprintf(&b, ", kept %s", formatRolls(res.Selected))
		}
		fmt.Fprintf(&b, "\n**%d successes**", res.Successes)
		if res.Complications > 0 {
			fmt.Fprintf(&b, ", %d complications", res.Complications)
		}
	}
	return b.String()
}

func formatTest(out *checks.PerformOutput) string {
	res := out.Result
	req := out.Request

	var b strings.Builder
	fmt.Fprintf(&b, "🎲 **%s** tests %s + %s (target %d, difficulty %d)\n",
		out.Character.Name, req.SkillName, req.AttributeName, res.TargetNumber, res.Difficulty)
	fmt.Fprintf(&b, "Rolls %s: **%d successes**", formatRolls(res.Rolls), res.Successes)
	if res.Complications > 0 {
		fmt.Fprintf(&b, ", %d complications", res.Complications)
	}
	b.WriteString("\n" + out.Narrative())
	if res.Momentum > 0 {
		fmt.Fprintf(&b, "\n✨ +%d momentum", res.Momentum)
	}
	if req.Determination {
		fmt.Fprintf(&b, "\n🔥 Determination spent (%d left)", out.Character.Resources.Determination)
	}
	b.WriteString("\n" + formatPool(out.Pool))
	return b.String()
}

func formatPool(pool *entities.ResourcePool) string {
	return fmt.Sprintf("Momentum **%d** | Threat **%d**", pool.Momentum, pool.Threat)
}

func formatPoolList(pools []*entities.ResourcePool) string {
	if len(pools) == 0 {
		return "No pools in this server yet."
	}
	lines := make([]string, 0, len(pools))
	for _, pool := range pools {
		lines = append(lines, fmt.Sprintf("<#%s> %s", pool.ChannelID, formatPool(pool)))
	}
	return strings.Join(lines, "\n")
}

func formatProgress(p *creation.Progress) string {
	var b strings.Builder
	name := p.Session.Data.Name
	if name == "" {
		name = "New character"
	}
	fmt.Fprintf(&b, "📜 **%s** %d%% complete\n", name, p.Percent)

	for _, step := range entities.CreationSteps {
		mark := "⬜"
		if slices.Contains(p.Completed, step) {
			mark = "✅"
		} else if step == p.Next {
			mark = "➡️"
		}
		fmt.Fprintf(&b, "%s %s\n", mark, step)
	}

	if p.Blocker != nil {
		fmt.Fprintf(&b, "Next: **%s**. %s", p.Next, p.Blocker.Error())
	} else {
		b.WriteString("Ready to finalize.")
	}
	return b.String()
}

func formatOptions(rs *rules.Ruleset, session *entities.CreationSession) string {
	var b strings.Builder
	archetypes := session.Data.Archetypes

	if len(archetypes) == 0 {
		b.WriteString("**Archetypes**\n")
		for _, name := range rs.ArchetypeNames() {
			arch, _ := rs.Archetype(name)
			fmt.Fprintf(&b, "• %s: %s\n", arch.Name, arch.Description)
		}
		fmt.Fprintf(&b, "Pick %s with `/dune create step archetype`.", rs.ArchetypeCount)
		return b.String()
	}

	fmt.Fprintf(&b, "**Talents** (pick %d)\n%s\n", rs.ExpectedTalents(len(archetypes)), strings.Join(rs.TalentOptions(archetypes), ", "))
	fmt.Fprintf(&b, "**Assets** (pick %d)\n%s\n", rs.ExpectedAssets(len(archetypes)), strings.Join(rs.AssetOptions(archetypes), ", "))
	fmt.Fprintf(&b, "**Skills** values %v, **Drives** values %v", rs.Skills.Values, rs.Drives.Values)
	return b.String()
}

func formatCharacter(char *entities.Character) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📜 **%s** (`%s`)\n", char.Name, char.ID)
	if len(char.Concepts) > 0 {
		fmt.Fprintf(&b, "*%s*\n", strings.Join(char.Concepts, ", "))
	}
	fmt.Fprintf(&b, "Archetypes: %s\n", strings.Join(char.Archetypes, ", "))
	fmt.Fprintf(&b, "**Skills** %s\n", formatValues(char.Skills))
	fmt.Fprintf(&b, "**Drives** %s\n", formatValues(char.Drives))

	for _, drive := range sortedKeys(char.Statements) {
		fmt.Fprintf(&b, "> %s: %s\n", drive, char.Statements[drive])
	}
	for _, skill := range sortedKeys(char.Focuses) {
		fmt.Fprintf(&b, "Focus (%s): %s\n", skill, strings.Join(char.Focuses[skill], ", "))
	}
	if len(char.Talents) > 0 {
		fmt.Fprintf(&b, "Talents: %s\n", strings.Join(char.Talents, ", "))
	}
	if len(char.Assets) > 0 {
		fmt.Fprintf(&b, "Assets: %s\n", strings.Join(char.Assets, ", "))
	}
	if len(char.Traits) > 0 {
		fmt.Fprintf(&b, "Traits: %s\n", strings.Join(char.Traits, ", "))
	}
	fmt.Fprintf(&b, "Determination %d/%d", char.Resources.Determination, char.Resources.MaxDetermination)
	return b.String()
}

func formatCharacterList(chars []*entities.Character) string {
	if len(chars) == 0 {
		return "You have no characters here. Start one with `/dune create start`."
	}
	lines := make([]string, 0, len(chars))
	for _, char := range chars {
		line := fmt.Sprintf("• **%s** `%s` %s", char.Name, char.ID, strings.Join(char.Archetypes, "/"))
		if !char.IsActive() {
			line += " (archived)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatValues(values map[string]int) string {
	parts := make([]string, 0, len(values))
	for _, name := range sortedKeys(values) {
		parts = append(parts, fmt.Sprintf("%s %d", name, values[name]))
	}
	return strings.Join(parts, " | ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

const helpText = "**Dune 2d20 bot**\n" +
	"`/dune roll` roll dice: standard or exploding notation (3d6+2), wod pools, or a dune target roll\n" +
	"`/dune test` test a skill and drive of your character; momentum and threat go to this channel's pool\n" +
	"`/dune create start` begin a character, then `/dune create step` for each step in order\n" +
	"`/dune create options` list archetypes, talents and assets\n" +
	"`/dune create status` show progress, `/dune create finalize` to save\n" +
	"`/dune pool show|add|spend|reset|list` manage momentum and threat\n" +
	"`/dune character list|show|delete|determination` manage saved characters"
