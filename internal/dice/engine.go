package dice

import (
	"sort"

	"go.uber.org/zap"

	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
)

const (
	// MaxExplosions caps the reroll chain of a single exploding die
	MaxExplosions = 100

	// DefaultWoDDifficulty is the target number of a World of Darkness pool
	DefaultWoDDifficulty = 6
)

// Result is the outcome of any dice system. Fields that do not apply to
// the system that produced it stay zero.
type Result struct {
	System   System `json:"system"`
	Rolls    []int  `json:"rolls"`
	Total    int    `json:"total"`
	Modifier int    `json:"modifier"`

	// Exploding
	ExplodedDice []int `json:"exploded_dice,omitempty"`

	// Success counting (WoD and target rolls). For target rolls these are
	// the stats of the selected subset.
	Successes     int  `json:"successes"`
	Complications int  `json:"complications"`
	Botch         bool `json:"botch"`

	// World of Darkness details
	Difficulty   int  `json:"difficulty,omitempty"`
	Ones         int  `json:"ones,omitempty"`
	RawSuccesses int  `json:"raw_successes,omitempty"`
	Specialty    bool `json:"specialty,omitempty"`

	// Target roll details
	Target           int   `json:"target,omitempty"`
	Selected         []int `json:"selected,omitempty"`
	AllSuccesses     int   `json:"all_successes,omitempty"`
	AllComplications int   `json:"all_complications,omitempty"`
}

// Engine turns a Roller into the supported dice systems
type Engine struct {
	roller Roller
	logger *zap.Logger
}

// EngineConfig holds configuration for the engine
type EngineConfig struct {
	Roller Roller      // Optional, random roller when nil
	Logger *zap.Logger // Optional
}

// NewEngine creates a dice engine
func NewEngine(cfg *EngineConfig) *Engine {
	e := &Engine{
		roller: NewRandomRoller(),
		logger: zap.NewNop(),
	}
	if cfg == nil {
		return e
	}
	if cfg.Roller != nil {
		e.roller = cfg.Roller
	}
	if cfg.Logger != nil {
		e.logger = cfg.Logger
	}
	return e
}

// RollN rolls count independent dice in [1, sides]
func (e *Engine) RollN(count, sides int) ([]int, error) {
	if count < 1 {
		return nil, dnderr.Validation("dice count must be at least 1").
			WithField("count", ">= 1", count)
	}
	if sides < 1 {
		return nil, dnderr.Validation("dice sides must be at least 1").
			WithField("sides", ">= 1", sides)
	}

	rolls, err := e.roller.RollN(count, sides)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to roll %dd%d", count, sides)
	}

	e.logger.Debug("rolled dice",
		zap.Int("count", count),
		zap.Int("sides", sides),
		zap.Ints("rolls", rolls))

	return rolls, nil
}

// Standard sums count dice and adds the modifier
func (e *Engine) Standard(count, sides, modifier int) (*Result, error) {
	rolls, err := e.RollN(count, sides)
	if err != nil {
		return nil, err
	}

	return &Result{
		System:   SystemStandard,
		Rolls:    rolls,
		Total:    sum(rolls) + modifier,
		Modifier: modifier,
	}, nil
}

// Exploding rerolls each die while it shows its maximum face. Rolls holds
// the chain total of every die and ExplodedDice every face that triggered
// a reroll.
func (e *Engine) Exploding(count, sides, modifier int) (*Result, error) {
	if count < 1 {
		return nil, dnderr.Validation("dice count must be at least 1").
			WithField("count", ">= 1", count)
	}
	if sides < 2 {
		return nil, dnderr.Validation("exploding dice need at least 2 sides").
			WithField("sides", ">= 2", sides)
	}

	totals := make([]int, 0, count)
	exploded := []int{}
	for i := 0; i < count; i++ {
		dieTotal := 0
		for chain := 0; ; chain++ {
			face, err := e.RollN(1, sides)
			if err != nil {
				return nil, err
			}
			dieTotal += face[0]
			if face[0] != sides {
				break
			}
			exploded = append(exploded, face[0])
			if chain >= MaxExplosions {
				break
			}
		}
		totals = append(totals, dieTotal)
	}

	return &Result{
		System:       SystemExploding,
		Rolls:        totals,
		Total:        sum(totals) + modifier,
		Modifier:     modifier,
		ExplodedDice: exploded,
	}, nil
}

// WorldOfDarkness rolls a d10 pool against difficulty. With specialty a
// natural 10 scores two successes and ones do not cancel successes.
func (e *Engine) WorldOfDarkness(count, difficulty int, specialty bool) (*Result, error) {
	if difficulty < 2 || difficulty > 10 {
		return nil, dnderr.Validation("difficulty must be between 2 and 10").
			WithField("difficulty", "2-10", difficulty)
	}

	rolls, err := e.RollN(count, 10)
	if err != nil {
		return nil, err
	}

	successes, ones := 0, 0
	for _, roll := range rolls {
		switch {
		case roll >= difficulty:
			successes++
			if specialty && roll == 10 {
				successes++
			}
		case roll == 1:
			ones++
		}
	}

	net := successes
	if !specialty {
		net = max(0, successes-ones)
	}

	return &Result{
		System:       SystemWorldOfDarkness,
		Rolls:        rolls,
		Total:        sum(rolls),
		Successes:    net,
		Botch:        successes == 0 && ones > 0,
		Difficulty:   difficulty,
		Ones:         ones,
		RawSuccesses: successes,
		Specialty:    specialty,
	}, nil
}

// Target rolls diceCount dice; a face <= target succeeds and a face equal
// to complicationValue is a complication. When more than coreDice dice are
// rolled only the coreDice lowest faces count toward Successes and
// Complications; AllSuccesses and AllComplications cover every die.
func (e *Engine) Target(diceCount, sides, target, complicationValue, coreDice int) (*Result, error) {
	if coreDice < 1 {
		return nil, dnderr.Validation("core dice must be at least 1").
			WithField("core_dice", ">= 1", coreDice)
	}

	rolls, err := e.RollN(diceCount, sides)
	if err != nil {
		return nil, err
	}

	allSuccesses, allComplications := countTarget(rolls, target, complicationValue)

	selected := append([]int{}, rolls...)
	if diceCount > coreDice {
		sort.Ints(selected)
		selected = selected[:coreDice]
	}
	successes, complications := countTarget(selected, target, complicationValue)

	return &Result{
		System:           SystemDune,
		Rolls:            rolls,
		Total:            sum(rolls),
		Successes:        successes,
		Complications:    complications,
		Target:           target,
		Selected:         selected,
		AllSuccesses:     allSuccesses,
		AllComplications: allComplications,
	}, nil
}

func countTarget(rolls []int, target, complicationValue int) (successes, complications int) {
	for _, roll := range rolls {
		if roll <= target {
			successes++
		}
		if roll == complicationValue {
			complications++
		}
	}
	return successes, complications
}

func sum(rolls []int) int {
	total := 0
	for _, r := range rolls {
		total += r
	}
	return total
}
