package dice

import (
	"strings"

	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
)

// System tags a dice mechanic
type System string

const (
	SystemStandard        System = "standard"
	SystemExploding       System = "exploding"
	SystemWorldOfDarkness System = "wod"
	SystemDune            System = "dune"
)

// Dune 2d20 constants
const (
	DuneSides             = 20
	DuneCoreDice          = 2
	DuneComplicationValue = 20
)

// Systems lists every supported system in display order
var Systems = []System{SystemStandard, SystemExploding, SystemWorldOfDarkness, SystemDune}

// ParseSystem maps a user supplied tag onto a System
func ParseSystem(tag string) (System, error) {
	switch System(strings.ToLower(strings.TrimSpace(tag))) {
	case SystemStandard, "":
		return SystemStandard, nil
	case SystemExploding, "explode":
		return SystemExploding, nil
	case SystemWorldOfDarkness, "worldofdarkness":
		return SystemWorldOfDarkness, nil
	case SystemDune, "2d20":
		return SystemDune, nil
	default:
		return "", dnderr.Validationf("unknown dice system '%s'", tag).
			WithField("system", Systems, tag)
	}
}

// Params carries the inputs of every system; each system reads the fields
// it needs.
type Params struct {
	Count    int
	Sides    int
	Modifier int

	// World of Darkness
	Difficulty int
	Specialty  bool

	// Dune: Count is the total pool, defaulting to the two core dice
	Target int
}

// Roll dispatches to the primitive named by system
func (e *Engine) Roll(system System, p Params) (*Result, error) {
	switch system {
	case SystemStandard:
		if err := ValidateParameters(p.Count, p.Sides); err != nil {
			return nil, err
		}
		return e.Standard(p.Count, p.Sides, p.Modifier)
	case SystemExploding:
		if err := ValidateParameters(p.Count, p.Sides); err != nil {
			return nil, err
		}
		return e.Exploding(p.Count, p.Sides, p.Modifier)
	case SystemWorldOfDarkness:
		difficulty := p.Difficulty
		if difficulty == 0 {
			difficulty = DefaultWoDDifficulty
		}
		if err := ValidateParameters(p.Count, 10); err != nil {
			return nil, err
		}
		return e.WorldOfDarkness(p.Count, difficulty, p.Specialty)
	case SystemDune:
		count := p.Count
		if count == 0 {
			count = DuneCoreDice
		}
		if count < DuneCoreDice {
			return nil, dnderr.Validationf("a 2d20 roll needs at least %d dice", DuneCoreDice).
				WithField("count", DuneCoreDice, count)
		}
		if err := ValidateParameters(count, DuneSides); err != nil {
			return nil, err
		}
		if p.Target < 1 {
			return nil, dnderr.Validation("target number must be at least 1").
				WithField("target", ">= 1", p.Target)
		}
		return e.Target(count, DuneSides, p.Target, DuneComplicationValue, DuneCoreDice)
	default:
		return nil, dnderr.Validationf("unknown dice system '%s'", system).
			WithField("system", Systems, string(system))
	}
}
