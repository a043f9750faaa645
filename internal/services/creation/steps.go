package creation

import (
	"strconv"
	"strings"

	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
	"github.com/KirkDiggler/dune-bot-discord/internal/rules"
)

// CanAdvance reports whether data satisfies step. A nil error means the
// builder may move past the step.
func CanAdvance(rs *rules.Ruleset, step entities.CreationStep, data *entities.CreationData) error {
	if data == nil {
		data = &entities.CreationData{}
	}

	switch step {
	case entities.StepName:
		if strings.TrimSpace(data.Name) == "" {
			return dnderr.Validation("name is required").
				WithField("name", "non-empty", data.Name)
		}
	case entities.StepConcept:
		if countNonBlank(data.Concepts) == 0 {
			return dnderr.Validation("at least one concept is required").
				WithField("concepts", ">= 1", len(data.Concepts))
		}
	case entities.StepArchetype:
		if _, err := rs.ResolveArchetypes(data.Archetypes); err != nil {
			return err
		}
	case entities.StepSkills:
		return rs.ValidateSkills(data.Skills, data.Archetypes)
	case entities.StepFocuses:
		return validateFocuses(rs, data.Focuses)
	case entities.StepDrives:
		return rs.ValidateDrives(data.Drives, data.Archetypes)
	case entities.StepDriveStatements:
		return validateStatements(rs, data.Drives, data.Statements)
	case entities.StepTalents:
		return rs.ValidateTalents(data.Talents, data.Archetypes)
	case entities.StepAssets:
		return rs.ValidateAssets(data.Assets, data.Archetypes)
	case entities.StepTraits:
		return rs.ValidateTraits(data.Traits)
	case entities.StepStartingPools:
		if data.Determination == nil {
			return dnderr.Validation("starting determination is required").
				WithField("determination", "0-"+strconv.Itoa(rs.Determination.Max), nil)
		}
		if d := *data.Determination; d < 0 || d > rs.Determination.Max {
			return dnderr.Validationf("determination must be between 0 and %d", rs.Determination.Max).
				WithField("determination", "0-"+strconv.Itoa(rs.Determination.Max), d)
		}
	case entities.StepSummary, entities.StepFinalize:
		for _, prior := range entities.CreationSteps {
			if !prior.Before(step) {
				break
			}
			if err := CanAdvance(rs, prior, data); err != nil {
				return err
			}
		}
	default:
		return dnderr.InvalidArgumentf("unknown creation step '%s'", step)
	}
	return nil
}

// FirstIncomplete returns the earliest step whose predicate fails, or
// FINALIZE when the build is complete.
func FirstIncomplete(rs *rules.Ruleset, data *entities.CreationData) (entities.CreationStep, error) {
	for _, step := range entities.CreationSteps {
		if step == entities.StepSummary {
			break
		}
		if err := CanAdvance(rs, step, data); err != nil {
			return step, err
		}
	}
	return entities.StepFinalize, nil
}

func validateFocuses(rs *rules.Ruleset, focuses map[string][]string) error {
	total := 0
	for skill, list := range focuses {
		if _, ok := rs.SkillName(skill); !ok {
			return dnderr.Validationf("focus given for unknown skill '%s'", skill).
				WithField("focuses", rs.Skills.Names, skill)
		}
		for _, f := range list {
			if strings.TrimSpace(f) == "" {
				return dnderr.Validationf("blank focus for %s", skill).
					WithField("focuses", "non-empty", f)
			}
			total++
		}
	}
	if total < rs.MinFocuses {
		return dnderr.Validationf("choose at least %d focus", rs.MinFocuses).
			WithField("focuses", ">= "+strconv.Itoa(rs.MinFocuses), total)
	}
	return nil
}

func validateStatements(rs *rules.Ruleset, drives map[string]int, statements map[string]string) error {
	canon := make(map[string]string, len(statements))
	for drive, text := range statements {
		name, ok := rs.DriveName(drive)
		if !ok {
			return dnderr.Validationf("statement given for unknown drive '%s'", drive).
				WithField("statements", rs.Drives.Names, drive)
		}
		canon[name] = strings.TrimSpace(text)
	}

	var missing []string
	for _, drive := range rs.StatementDrives(drives) {
		if canon[drive] == "" {
			missing = append(missing, drive)
		}
	}
	if len(missing) > 0 {
		return dnderr.Validationf("drive statements required for %s", strings.Join(missing, ", ")).
			WithField("statements", rs.StatementDrives(drives), missing)
	}
	return nil
}

func countNonBlank(items []string) int {
	n := 0
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}
