package dice

import (
	"fmt"
	"strconv"
	"strings"

	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
)

// Limits accepted from user input
const (
	MinCount = 1
	MaxCount = 100
	MinSides = 2
	MaxSides = 1000
)

// Notation is a parsed "NdS+M" expression
type Notation struct {
	Count    int
	Sides    int
	Modifier int
}

func (n Notation) String() string {
	switch {
	case n.Modifier > 0:
		return fmt.Sprintf("%dd%d+%d", n.Count, n.Sides, n.Modifier)
	case n.Modifier < 0:
		return fmt.Sprintf("%dd%d%d", n.Count, n.Sides, n.Modifier)
	default:
		return fmt.Sprintf("%dd%d", n.Count, n.Sides)
	}
}

// ParseNotation parses strings like "3d6+2", "d20" or "2d10-1".
// Whitespace and case are ignored; the count defaults to 1.
func ParseNotation(notation string) (Notation, error) {
	clean := strings.ToLower(strings.Join(strings.Fields(notation), ""))
	invalid := func() (Notation, error) {
		return Notation{}, dnderr.Validationf("invalid dice notation '%s'", notation).
			WithField("notation", "NdS+M", notation)
	}

	dicePart := clean
	modifier := 0
	if idx := strings.IndexAny(clean, "+-"); idx >= 0 {
		dicePart = clean[:idx]
		mod, err := strconv.Atoi(clean[idx:])
		if err != nil {
			return invalid()
		}
		modifier = mod
	}

	countStr, sidesStr, found := strings.Cut(dicePart, "d")
	if !found {
		return invalid()
	}

	count := 1
	if countStr != "" {
		c, err := strconv.Atoi(countStr)
		if err != nil {
			return invalid()
		}
		count = c
	}

	sides, err := strconv.Atoi(sidesStr)
	if err != nil {
		return invalid()
	}

	n := Notation{Count: count, Sides: sides, Modifier: modifier}
	if err := ValidateParameters(n.Count, n.Sides); err != nil {
		return Notation{}, err
	}
	return n, nil
}

// ValidateParameters keeps user supplied pools within sane bounds
func ValidateParameters(count, sides int) error {
	if count < MinCount || count > MaxCount {
		return dnderr.Validationf("dice count must be between %d and %d", MinCount, MaxCount).
			WithField("count", fmt.Sprintf("%d-%d", MinCount, MaxCount), count)
	}
	if sides < MinSides || sides > MaxSides {
		return dnderr.Validationf("dice sides must be between %d and %d", MinSides, MaxSides).
			WithField("sides", fmt.Sprintf("%d-%d", MinSides, MaxSides), sides)
	}
	return nil
}
