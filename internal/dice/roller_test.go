package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/dune-bot-discord/internal/dice"
	mockdice "github.com/KirkDiggler/dune-bot-discord/internal/dice/mock"
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
)

func newEngine(rolls ...int) (*dice.Engine, *mockdice.ManualMockRoller) {
	roller := mockdice.NewManualMockRoller(rolls...)
	return dice.NewEngine(&dice.EngineConfig{Roller: roller}), roller
}

func TestManualMockRoller_RollN(t *testing.T) {
	tests := []struct {
		name       string
		setupRolls []int
		count      int
		sides      int
		wantRolls  []int
		wantErr    bool
	}{
		{
			name:       "single d20 roll",
			setupRolls: []int{15},
			count:      1,
			sides:      20,
			wantRolls:  []int{15},
		},
		{
			name:       "2d6",
			setupRolls: []int{4, 5},
			count:      2,
			sides:      6,
			wantRolls:  []int{4, 5},
		},
		{
			name:       "not enough rolls",
			setupRolls: []int{10},
			count:      2,
			sides:      20,
			wantErr:    true,
		},
		{
			name:       "invalid roll for die size",
			setupRolls: []int{7},
			count:      1,
			sides:      6,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roller := mockdice.NewManualMockRoller()
			roller.SetRolls(tt.setupRolls)

			rolls, err := roller.RollN(tt.count, tt.sides)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantRolls, rolls)
		})
	}
}

func TestRandomRoller_StaysInRange(t *testing.T) {
	engine := dice.NewEngine(nil)

	for _, sides := range []int{2, 6, 10, 20, 100} {
		rolls, err := engine.RollN(50, sides)
		require.NoError(t, err)
		require.Len(t, rolls, 50)
		for _, r := range rolls {
			assert.GreaterOrEqual(t, r, 1)
			assert.LessOrEqual(t, r, sides)
		}
	}
}

func TestEngine_RollNRejectsEmptyPool(t *testing.T) {
	engine, _ := newEngine()

	_, err := engine.RollN(0, 6)
	assert.True(t, dnderr.IsValidation(err))

	_, err = engine.RollN(1, 0)
	assert.True(t, dnderr.IsValidation(err))
}

func TestEngine_Standard(t *testing.T) {
	engine, _ := newEngine(4, 5)

	result, err := engine.Standard(2, 6, 3)
	require.NoError(t, err)

	assert.Equal(t, dice.SystemStandard, result.System)
	assert.Equal(t, []int{4, 5}, result.Rolls)
	assert.Equal(t, 12, result.Total)
	assert.Equal(t, 3, result.Modifier)
}

func TestEngine_Exploding(t *testing.T) {
	t.Run("chain of maximum faces", func(t *testing.T) {
		engine, roller := newEngine(6, 6, 3)

		result, err := engine.Exploding(1, 6, 0)
		require.NoError(t, err)

		assert.Equal(t, []int{15}, result.Rolls)
		assert.Equal(t, []int{6, 6}, result.ExplodedDice)
		assert.Equal(t, 15, result.Total)
		assert.Zero(t, roller.Remaining())
	})

	t.Run("each die explodes independently", func(t *testing.T) {
		engine, _ := newEngine(2, 10, 1, 7)

		result, err := engine.Exploding(3, 10, 2)
		require.NoError(t, err)

		assert.Equal(t, []int{2, 11, 7}, result.Rolls)
		assert.Equal(t, []int{10}, result.ExplodedDice)
		assert.Equal(t, 22, result.Total)
	})

	t.Run("exploded faces always equal sides and totals cover first roll", func(t *testing.T) {
		engine := dice.NewEngine(nil)

		result, err := engine.Exploding(20, 4, 0)
		require.NoError(t, err)

		for _, face := range result.ExplodedDice {
			assert.Equal(t, 4, face)
		}
		for _, total := range result.Rolls {
			assert.GreaterOrEqual(t, total, 1)
		}
	})

	t.Run("single sided dice are rejected", func(t *testing.T) {
		engine, _ := newEngine()

		_, err := engine.Exploding(1, 1, 0)
		assert.True(t, dnderr.IsValidation(err))
	})
}

func TestEngine_WorldOfDarkness(t *testing.T) {
	tests := []struct {
		name          string
		rolls         []int
		difficulty    int
		specialty     bool
		wantSuccesses int
		wantRaw       int
		wantOnes      int
		wantBotch     bool
	}{
		{
			name:          "ones cancel successes",
			rolls:         []int{7, 8, 1, 3},
			difficulty:    6,
			wantSuccesses: 1,
			wantRaw:       2,
			wantOnes:      1,
		},
		{
			name:          "net successes never negative",
			rolls:         []int{6, 1, 1},
			difficulty:    6,
			wantSuccesses: 0,
			wantRaw:       1,
			wantOnes:      2,
		},
		{
			name:          "botch with no successes and a one",
			rolls:         []int{1, 4, 5},
			difficulty:    6,
			wantSuccesses: 0,
			wantRaw:       0,
			wantOnes:      1,
			wantBotch:     true,
		},
		{
			name:          "no botch without ones",
			rolls:         []int{2, 3},
			difficulty:    6,
			wantSuccesses: 0,
		},
		{
			name:          "specialty doubles natural tens and ignores ones",
			rolls:         []int{10, 7, 1},
			difficulty:    6,
			specialty:     true,
			wantSuccesses: 3,
			wantRaw:       3,
			wantOnes:      1,
		},
		{
			name:          "ones still cancel at low difficulty",
			rolls:         []int{2, 1},
			difficulty:    2,
			wantSuccesses: 0,
			wantRaw:       1,
			wantOnes:      1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _ := newEngine(tt.rolls...)

			result, err := engine.WorldOfDarkness(len(tt.rolls), tt.difficulty, tt.specialty)
			require.NoError(t, err)

			assert.Equal(t, tt.wantSuccesses, result.Successes)
			assert.Equal(t, tt.wantRaw, result.RawSuccesses)
			assert.Equal(t, tt.wantOnes, result.Ones)
			assert.Equal(t, tt.wantBotch, result.Botch)
			assert.Equal(t, result.RawSuccesses == 0 && result.Ones > 0, result.Botch)
		})
	}

	t.Run("difficulty out of range", func(t *testing.T) {
		engine, _ := newEngine()

		_, err := engine.WorldOfDarkness(3, 11, false)
		assert.True(t, dnderr.IsValidation(err))
	})
}

func TestEngine_Target(t *testing.T) {
	t.Run("core pool counts every die", func(t *testing.T) {
		engine, _ := newEngine(3, 20)

		result, err := engine.Target(2, 20, 12, 20, 2)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Successes)
		assert.Equal(t, 1, result.Complications)
		assert.Equal(t, result.Successes, result.AllSuccesses)
		assert.Equal(t, []int{3, 20}, result.Selected)
	})

	t.Run("bonus dice keep the lowest core faces", func(t *testing.T) {
		engine, _ := newEngine(18, 4, 20, 9)

		result, err := engine.Target(4, 20, 10, 20, 2)
		require.NoError(t, err)

		assert.Equal(t, []int{18, 4, 20, 9}, result.Rolls)
		assert.Equal(t, []int{4, 9}, result.Selected)
		assert.Equal(t, 2, result.Successes)
		assert.Equal(t, 0, result.Complications)
		assert.Equal(t, 2, result.AllSuccesses)
		assert.Equal(t, 1, result.AllComplications)
	})
}

func TestEngine_RollDispatch(t *testing.T) {
	t.Run("dune defaults to two dice", func(t *testing.T) {
		engine, roller := newEngine(5, 15)

		result, err := engine.Roll(dice.SystemDune, dice.Params{Target: 10})
		require.NoError(t, err)

		assert.Equal(t, dice.SystemDune, result.System)
		assert.Equal(t, 1, result.Successes)
		assert.Zero(t, roller.Remaining())
	})

	t.Run("wod defaults difficulty", func(t *testing.T) {
		engine, _ := newEngine(6, 5)

		result, err := engine.Roll(dice.SystemWorldOfDarkness, dice.Params{Count: 2})
		require.NoError(t, err)

		assert.Equal(t, dice.DefaultWoDDifficulty, result.Difficulty)
		assert.Equal(t, 1, result.Successes)
	})

	t.Run("standard validates the pool", func(t *testing.T) {
		engine, _ := newEngine()

		_, err := engine.Roll(dice.SystemStandard, dice.Params{Count: 101, Sides: 6})
		assert.True(t, dnderr.IsValidation(err))
	})

	t.Run("dune needs a target", func(t *testing.T) {
		engine, _ := newEngine()

		_, err := engine.Roll(dice.SystemDune, dice.Params{Count: 3})
		assert.True(t, dnderr.IsValidation(err))
	})

	t.Run("unknown system", func(t *testing.T) {
		engine, _ := newEngine()

		_, err := engine.Roll(dice.System("fate"), dice.Params{})
		assert.True(t, dnderr.IsValidation(err))
	})
}

func TestParseSystem(t *testing.T) {
	for tag, want := range map[string]dice.System{
		"":          dice.SystemStandard,
		"Exploding": dice.SystemExploding,
		"WOD":       dice.SystemWorldOfDarkness,
		"2d20":      dice.SystemDune,
	} {
		got, err := dice.ParseSystem(tag)
		require.NoError(t, err, tag)
		assert.Equal(t, want, got, tag)
	}

	_, err := dice.ParseSystem("fudge")
	assert.True(t, dnderr.IsValidation(err))
}

func TestParseNotation(t *testing.T) {
	tests := []struct {
		input   string
		want    dice.Notation
		wantErr bool
	}{
		{input: "3d6+2", want: dice.Notation{Count: 3, Sides: 6, Modifier: 2}},
		{input: "d20", want: dice.Notation{Count: 1, Sides: 20}},
		{input: " 2D10 - 1 ", want: dice.Notation{Count: 2, Sides: 10, Modifier: -1}},
		{input: "20", wantErr: true},
		{input: "xd6", wantErr: true},
		{input: "2d6+x", wantErr: true},
		{input: "101d6", wantErr: true},
		{input: "1d1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := dice.ParseNotation(tt.input)
			if tt.wantErr {
				assert.True(t, dnderr.IsValidation(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "2d10-1", dice.Notation{Count: 2, Sides: 10, Modifier: -1}.String())
	assert.Equal(t, "3d6+2", dice.Notation{Count: 3, Sides: 6, Modifier: 2}.String())
}
