package dice

import (
	"errors"
	"math/rand/v2"
)

// randomRoller implements Roller with uniformly distributed faces
type randomRoller struct{}

// NewRandomRoller creates a new random dice roller
func NewRandomRoller() Roller {
	return &randomRoller{}
}

// RollN implements Roller.RollN
func (r *randomRoller) RollN(count, sides int) ([]int, error) {
	if count < 0 {
		return nil, errors.New("invalid dice count")
	}

	if sides < 1 {
		return nil, errors.New("invalid dice size")
	}

	out := make([]int, count)
	for i := range out {
		out[i] = rand.IntN(sides) + 1
	}

	return out, nil
}
