package dice

//go:generate mockgen -destination=mock/mock_roller.go -package=mockdice -source=roller.go

// Roller is the random source behind every roll.
// Tests inject a roller that replays a fixed sequence.
type Roller interface {
	// RollN rolls count dice with the given number of sides and returns each face
	RollN(count, sides int) ([]int, error)
}
