// Package resolution resolves Dune 2d20 skill tests
package resolution

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/KirkDiggler/dune-bot-discord/internal/dice"
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
)

const (
	// BaseDice is the pool every test starts with
	BaseDice = 2

	// MaxAssistDice caps the dice granted by assisting characters
	MaxAssistDice = 3

	// DefaultComplicationThreshold is the top face of a d20
	DefaultComplicationThreshold = dice.DuneSides
)

// Tier is the narrative grade of a test
type Tier string

const (
	TierCritical     Tier = "critical"
	TierExcellent    Tier = "excellent"
	TierSuccess      Tier = "success"
	TierCloseFailure Tier = "close_failure"
	TierFailure      Tier = "failure"
)

// Request describes a single skill test
type Request struct {
	// Attribute is the drive rating added to the skill
	Attribute int
	Skill     int

	Difficulty int
	BonusDice  int
	AssistDice int

	// Determination adds one die
	Determination bool

	// ComplicationThreshold defaults to 20 when zero
	ComplicationThreshold int

	// Labels used in the narrative only
	AttributeName string
	SkillName     string
}

// Result is the outcome of a resolved test
type Result struct {
	Rolls         []int `json:"rolls"`
	TargetNumber  int   `json:"target_number"`
	Difficulty    int   `json:"difficulty"`
	Successes     int   `json:"successes"`
	Complications int   `json:"complications"`
	CriticalHits  int   `json:"critical_hits"`
	Success       bool  `json:"success"`
	Momentum      int   `json:"momentum"`
	Threat        int   `json:"threat"`
	Tier          Tier  `json:"tier"`

	// ComplicationNote is empty when no complication was rolled
	ComplicationNote string `json:"complication_note,omitempty"`
}

// Narrative renders the tier and complication note as plain text
func (r *Result) Narrative(req Request) string {
	skill := req.SkillName
	if skill == "" {
		skill = "skill"
	}

	var text string
	switch r.Tier {
	case TierCritical:
		if req.AttributeName != "" {
			text = fmt.Sprintf("Critical success! Your %s and %s combine perfectly.", req.AttributeName, skill)
		} else {
			text = fmt.Sprintf("Critical success! Your %s is flawless.", skill)
		}
	case TierExcellent:
		text = fmt.Sprintf("Excellent success! You exceed expectations with your %s.", skill)
	case TierSuccess:
		text = fmt.Sprintf("Success! Your %s proves adequate for the task.", skill)
	case TierCloseFailure:
		text = fmt.Sprintf("Close failure. Your %s almost succeeds, but falls just short.", skill)
	default:
		text = fmt.Sprintf("Failure. Your %s attempt doesn't achieve the desired result.", skill)
	}

	if r.ComplicationNote != "" {
		text += " However, " + r.ComplicationNote + "..."
	}
	return text
}

// Resolver runs skill tests against an injectable dice engine
type Resolver struct {
	engine *dice.Engine
	logger *zap.Logger
}

// ResolverConfig holds configuration for the resolver
type ResolverConfig struct {
	Engine *dice.Engine // Optional, random engine when nil
	Logger *zap.Logger  // Optional
}

// NewResolver creates a resolver
func NewResolver(cfg *ResolverConfig) *Resolver {
	r := &Resolver{logger: zap.NewNop()}
	if cfg != nil {
		r.engine = cfg.Engine
		if cfg.Logger != nil {
			r.logger = cfg.Logger
		}
	}
	if r.engine == nil {
		r.engine = dice.NewEngine(&dice.EngineConfig{Logger: r.logger})
	}
	return r
}

// Validate rejects a request before any die is rolled
func (req Request) Validate() error {
	if req.Difficulty < 1 {
		return dnderr.Validation("difficulty must be at least 1").
			WithField("difficulty", ">= 1", req.Difficulty)
	}
	if req.BonusDice < 0 {
		return dnderr.Validation("bonus dice cannot be negative").
			WithField("bonus_dice", ">= 0", req.BonusDice)
	}
	if req.AssistDice < 0 || req.AssistDice > MaxAssistDice {
		return dnderr.Validationf("assist dice must be between 0 and %d", MaxAssistDice).
			WithField("assist_dice", fmt.Sprintf("0-%d", MaxAssistDice), req.AssistDice)
	}
	if t := req.ComplicationThreshold; t != 0 && (t < 1 || t > dice.DuneSides) {
		return dnderr.Validationf("complication threshold must be between 1 and %d", dice.DuneSides).
			WithField("complication_threshold", fmt.Sprintf("1-%d", dice.DuneSides), t)
	}
	if req.Attribute < 0 || req.Skill < 0 {
		return dnderr.Validation("attribute and skill ratings cannot be negative").
			WithField("target_number", ">= 0", req.Attribute+req.Skill)
	}
	return nil
}

// DiceCount is the size of the pool the request rolls
func (req Request) DiceCount() int {
	n := BaseDice + req.BonusDice + req.AssistDice
	if req.Determination {
		n++
	}
	return n
}

// Resolve rolls and scores a test
func (r *Resolver) Resolve(req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	threshold := req.ComplicationThreshold
	if threshold == 0 {
		threshold = DefaultComplicationThreshold
	}

	rolls, err := r.engine.RollN(req.DiceCount(), dice.DuneSides)
	if err != nil {
		return nil, err
	}

	res := Score(rolls, req.Attribute+req.Skill, req.Difficulty, threshold)

	r.logger.Debug("resolved test",
		zap.Ints("rolls", rolls),
		zap.Int("target", res.TargetNumber),
		zap.Int("difficulty", res.Difficulty),
		zap.Int("successes", res.Successes),
		zap.String("tier", string(res.Tier)))

	return res, nil
}

// Score grades a fixed set of d20 rolls
func Score(rolls []int, target, difficulty, threshold int) *Result {
	res := &Result{
		Rolls:        rolls,
		TargetNumber: target,
		Difficulty:   difficulty,
	}

	for _, roll := range rolls {
		if roll <= target {
			res.Successes++
			if roll == 1 {
				res.CriticalHits++
				res.Successes++
			}
		}
		if roll >= threshold {
			res.Complications++
		}
	}

	res.Success = res.Successes >= difficulty
	if res.Success {
		res.Momentum = max(0, res.Successes-difficulty)
	}
	res.Threat = res.Complications
	res.Tier = tier(res)

	switch {
	case res.Complications == 1:
		res.ComplicationNote = "a complication arises"
	case res.Complications > 1:
		res.ComplicationNote = "multiple complications emerge"
	}

	return res
}

// A natural 1 only grades as critical on a passed test
func tier(res *Result) Tier {
	switch {
	case res.Success && res.CriticalHits > 0:
		return TierCritical
	case res.Success && res.Successes >= res.Difficulty+2:
		return TierExcellent
	case res.Success:
		return TierSuccess
	case res.Successes == res.Difficulty-1:
		return TierCloseFailure
	default:
		return TierFailure
	}
}
