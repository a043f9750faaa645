package discord

import (
	"strconv"
	"strings"

	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
	"github.com/KirkDiggler/dune-bot-discord/internal/rules"
)

// ParseStepPayload turns the free text of /dune create step into the
// fields owned by that step.
//
//	name, summary, finalize   anything, kept as typed
//	concept archetype talents assets traits   Comma, Separated, List
//	skills drives             Battle=9, Move=7
//	focuses                   Battle: Knives, Tactics; Move: Climbing
//	drive_statements          Duty: I serve the Atreides; Faith: ...
//	starting_pools            3 (blank keeps the default)
func ParseStepPayload(step entities.CreationStep, text string) (*entities.CreationData, error) {
	text = strings.TrimSpace(text)
	data := &entities.CreationData{}

	switch step {
	case entities.StepName:
		data.Name = text
	case entities.StepConcept:
		data.Concepts = splitList(text)
	case entities.StepArchetype:
		data.Archetypes = splitList(text)
	case entities.StepTalents:
		data.Talents = splitList(text)
	case entities.StepAssets:
		data.Assets = splitList(text)
	case entities.StepTraits:
		data.Traits = splitList(text)
	case entities.StepSkills:
		values, err := parseAssignment("skills", text)
		if err != nil {
			return nil, err
		}
		data.Skills = values
	case entities.StepDrives:
		values, err := parseAssignment("drives", text)
		if err != nil {
			return nil, err
		}
		data.Drives = values
	case entities.StepFocuses:
		focuses, err := parseFocuses(text)
		if err != nil {
			return nil, err
		}
		data.Focuses = focuses
	case entities.StepDriveStatements:
		statements, err := parseStatements(text)
		if err != nil {
			return nil, err
		}
		data.Statements = statements
	case entities.StepStartingPools:
		if text == "" {
			break
		}
		v, err := strconv.Atoi(text)
		if err != nil {
			return nil, dnderr.Validationf("determination must be a number, got '%s'", text).
				WithField("determination", "integer", text)
		}
		data.Determination = &v
	case entities.StepSummary, entities.StepFinalize:
	default:
		return nil, dnderr.InvalidArgumentf("unknown step '%s'", step)
	}

	return data, nil
}

func splitList(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseAssignment(field, text string) (map[string]int, error) {
	if text == "" {
		return nil, dnderr.Validationf("%s are required, e.g. Battle=9, Move=7", field).
			WithField(field, "Name=value list", text)
	}

	out := make(map[string]int)
	seen := make(map[string]string)
	for _, part := range splitList(text) {
		name, raw, ok := strings.Cut(part, "=")
		if !ok {
			name, raw, ok = strings.Cut(part, ":")
		}
		name, raw = strings.TrimSpace(name), strings.TrimSpace(raw)
		if !ok || name == "" {
			return nil, dnderr.Validationf("expected Name=value, got '%s'", part).
				WithField(field, "Name=value", part)
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, dnderr.Validationf("%s needs a number, got '%s'", name, raw).
				WithField(field, "integer", raw)
		}
		key := rules.NormalizeName(name)
		if prev, dup := seen[key]; dup {
			return nil, dnderr.Validationf("%s is listed twice", prev).
				WithField(field, "each name once", name)
		}
		seen[key] = name
		out[name] = v
	}
	return out, nil
}

func parseFocuses(text string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, group := range splitGroups(text) {
		skill, list, ok := strings.Cut(group, ":")
		skill = strings.TrimSpace(skill)
		if !ok || skill == "" {
			return nil, dnderr.Validationf("expected Skill: focus, focus; got '%s'", group).
				WithField("focuses", "Skill: focus list", group)
		}
		out[skill] = append(out[skill], splitList(list)...)
	}
	return out, nil
}

func parseStatements(text string) (map[string]string, error) {
	out := make(map[string]string)
	for _, group := range splitGroups(text) {
		drive, statement, ok := strings.Cut(group, ":")
		drive, statement = strings.TrimSpace(drive), strings.TrimSpace(statement)
		if !ok || drive == "" {
			return nil, dnderr.Validationf("expected Drive: statement, got '%s'", group).
				WithField("statements", "Drive: statement", group)
		}
		out[drive] = statement
	}
	return out, nil
}

func splitGroups(text string) []string {
	var out []string
	for _, group := range strings.Split(text, ";") {
		if group = strings.TrimSpace(group); group != "" {
			out = append(out, group)
		}
	}
	return out
}
