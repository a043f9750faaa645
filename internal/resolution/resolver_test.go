package resolution_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/dune-bot-discord/internal/dice"
	mockdice "github.com/KirkDiggler/dune-bot-discord/internal/dice/mock"
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
	"github.com/KirkDiggler/dune-bot-discord/internal/resolution"
)

func newResolver(rolls ...int) (*resolution.Resolver, *mockdice.ManualMockRoller) {
	roller := mockdice.NewManualMockRoller(rolls...)
	engine := dice.NewEngine(&dice.EngineConfig{Roller: roller})
	return resolution.NewResolver(&resolution.ResolverConfig{Engine: engine}), roller
}

func TestResolve_NaturalOneCountsTwice(t *testing.T) {
	r, roller := newResolver(1, 15)

	res, err := r.Resolve(resolution.Request{Attribute: 8, Skill: 4, Difficulty: 1})
	require.NoError(t, err)

	assert.Equal(t, 12, res.TargetNumber)
	assert.Equal(t, []int{1, 15}, res.Rolls)
	assert.Equal(t, 2, res.Successes)
	assert.Equal(t, 1, res.CriticalHits)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Momentum)
	assert.Equal(t, 0, res.Threat)
	assert.Equal(t, resolution.TierCritical, res.Tier)
	assert.Empty(t, res.ComplicationNote)
	assert.Zero(t, roller.Remaining())
}

func TestResolve_DicePool(t *testing.T) {
	tests := []struct {
		name string
		req  resolution.Request
		want int
	}{
		{name: "base pool", req: resolution.Request{Difficulty: 1}, want: 2},
		{name: "bonus and assist", req: resolution.Request{Difficulty: 1, BonusDice: 1, AssistDice: 2}, want: 5},
		{name: "determination adds one", req: resolution.Request{Difficulty: 1, Determination: true}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rolls := make([]int, tt.want)
			for i := range rolls {
				rolls[i] = 10
			}
			r, roller := newResolver(rolls...)

			res, err := r.Resolve(tt.req)
			require.NoError(t, err)
			assert.Len(t, res.Rolls, tt.want)
			assert.Equal(t, tt.want, tt.req.DiceCount())
			assert.Zero(t, roller.Remaining())
		})
	}
}

func TestResolve_Tiers(t *testing.T) {
	tests := []struct {
		name          string
		rolls         []int
		target        int
		difficulty    int
		wantTier      resolution.Tier
		wantMomentum  int
		wantSuccesses int
	}{
		{name: "excellent", rolls: []int{3, 4, 5}, target: 10, difficulty: 1, wantTier: resolution.TierExcellent, wantMomentum: 2, wantSuccesses: 3},
		{name: "plain success", rolls: []int{3, 15}, target: 10, difficulty: 1, wantTier: resolution.TierSuccess, wantSuccesses: 1},
		{name: "close failure", rolls: []int{3, 15}, target: 10, difficulty: 2, wantTier: resolution.TierCloseFailure, wantSuccesses: 1},
		{name: "failure", rolls: []int{13, 15}, target: 10, difficulty: 2, wantTier: resolution.TierFailure},
		{name: "failed natural one is not critical", rolls: []int{1, 15}, target: 10, difficulty: 4, wantTier: resolution.TierFailure, wantSuccesses: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resolution.Score(tt.rolls, tt.target, tt.difficulty, 20)
			assert.Equal(t, tt.wantTier, res.Tier)
			assert.Equal(t, tt.wantMomentum, res.Momentum)
			assert.Equal(t, tt.wantSuccesses, res.Successes)
			if !res.Success {
				assert.Zero(t, res.Momentum)
			}
		})
	}
}

func TestScore_Complications(t *testing.T) {
	res := resolution.Score([]int{20, 5}, 10, 1, 20)
	assert.Equal(t, 1, res.Complications)
	assert.Equal(t, 1, res.Threat)
	assert.Equal(t, "a complication arises", res.ComplicationNote)

	res = resolution.Score([]int{19, 20, 20}, 10, 1, 19)
	assert.Equal(t, 3, res.Complications)
	assert.False(t, res.Success)
	assert.Equal(t, 3, res.Threat)
	assert.Equal(t, "multiple complications emerge", res.ComplicationNote)
	assert.LessOrEqual(t, res.Complications, len(res.Rolls))

	text := res.Narrative(resolution.Request{SkillName: "Battle"})
	assert.Contains(t, text, "Battle")
	assert.Contains(t, text, "multiple complications emerge")
}

func TestResolve_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   resolution.Request
		field string
	}{
		{name: "zero difficulty", req: resolution.Request{Difficulty: 0}, field: "difficulty"},
		{name: "negative bonus", req: resolution.Request{Difficulty: 1, BonusDice: -1}, field: "bonus_dice"},
		{name: "too many assists", req: resolution.Request{Difficulty: 1, AssistDice: 4}, field: "assist_dice"},
		{name: "threshold above die", req: resolution.Request{Difficulty: 1, ComplicationThreshold: 21}, field: "complication_threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// An empty roller proves nothing was rolled
			r, _ := newResolver()

			_, err := r.Resolve(tt.req)
			require.Error(t, err)
			assert.True(t, dnderr.IsValidation(err))
			assert.Equal(t, tt.field, dnderr.GetMeta(err)[dnderr.MetaField])
		})
	}
}

func TestExtendedProgress(t *testing.T) {
	results := []*resolution.Result{
		{Successes: 2, Complications: 1},
		{Successes: 1},
	}

	p, err := resolution.ExtendedProgress(results, 6, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, p.TotalSuccesses)
	assert.Equal(t, 1, p.Complications)
	assert.Equal(t, 50, p.Percent)
	assert.False(t, p.Complete)
	require.NotNil(t, p.TimeRemaining)
	assert.Equal(t, 2, *p.TimeRemaining)

	p, err = resolution.ExtendedProgress(append(results, &resolution.Result{Successes: 5}), 6, 0)
	require.NoError(t, err)
	assert.True(t, p.Complete)
	assert.Equal(t, 100, p.Percent)
	assert.Nil(t, p.TimeRemaining)

	_, err = resolution.ExtendedProgress(results, 0, 0)
	assert.True(t, dnderr.IsValidation(err))
}
