package rules

import (
	"fmt"
	"slices"
	"sort"

	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
)

// Reasons attached to point-buy validation errors under dnderr.MetaReason
const (
	ReasonMissingOrUnknown    = "missing_or_unknown_name"
	ReasonInvalidDistribution = "invalid_distribution"
	ReasonOutOfRange          = "out_of_range"
)

// Range is an inclusive [Min, Max] bound
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Contains reports whether v lies inside the range
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// Validate checks a point-buy assignment.
//
// The key set of assignment must equal required, the values must be a
// permutation of allowed, and when modifier maps are given every final
// value (raw plus the sum of all modifiers for that name) must lie within
// ranges[name]. Names missing from ranges are not range checked.
func Validate(assignment map[string]int, required []string, allowed []int, ranges map[string]Range, modifiers ...map[string]int) error {
	var missing, unknown []string
	for _, name := range required {
		if _, ok := assignment[name]; !ok {
			missing = append(missing, name)
		}
	}
	for name := range assignment {
		if !slices.Contains(required, name) {
			unknown = append(unknown, name)
		}
	}
	if len(missing) > 0 || len(unknown) > 0 {
		sort.Strings(unknown)
		return dnderr.Validationf("assignment must name exactly %v", required).
			WithField("names", required, sortedKeys(assignment)).
			WithMeta(dnderr.MetaReason, ReasonMissingOrUnknown).
			WithMeta("missing", missing).
			WithMeta("unknown", unknown)
	}

	expected := sortedDesc(allowed)
	actual := make([]int, 0, len(assignment))
	for _, name := range required {
		actual = append(actual, assignment[name])
	}
	actual = sortedDesc(actual)
	if !slices.Equal(expected, actual) {
		dupes := duplicates(assignment, allowed)
		msg := fmt.Sprintf("values must use each of %v exactly once", expected)
		if len(dupes) > 0 {
			msg = fmt.Sprintf("%s; %s", msg, describeDuplicates(dupes))
		}
		return dnderr.Validation(msg).
			WithField("values", expected, actual).
			WithMeta(dnderr.MetaReason, ReasonInvalidDistribution).
			WithMeta("duplicates", dupes)
	}

	if len(modifiers) == 0 {
		return nil
	}

	for _, name := range required {
		bounds, ok := ranges[name]
		if !ok {
			continue
		}
		final := assignment[name]
		for _, mods := range modifiers {
			final += mods[name]
		}
		if !bounds.Contains(final) {
			return dnderr.Validationf("%s would be %d after modifiers, must be between %d and %d",
				name, final, bounds.Min, bounds.Max).
				WithField(name, bounds.String(), final).
				WithMeta(dnderr.MetaReason, ReasonOutOfRange).
				WithMeta("value", final).
				WithMeta("min", bounds.Min).
				WithMeta("max", bounds.Max)
		}
	}

	return nil
}

// duplicates maps every value used more often than allowed permits to the
// names holding it.
func duplicates(assignment map[string]int, allowed []int) map[int][]string {
	budget := make(map[int]int, len(allowed))
	for _, v := range allowed {
		budget[v]++
	}

	holders := make(map[int][]string)
	for _, name := range sortedKeys(assignment) {
		v := assignment[name]
		holders[v] = append(holders[v], name)
	}

	dupes := make(map[int][]string)
	for v, names := range holders {
		if len(names) > budget[v] && len(names) > 1 {
			dupes[v] = names
		}
	}
	return dupes
}

func describeDuplicates(dupes map[int][]string) string {
	values := make([]int, 0, len(dupes))
	for v := range dupes {
		values = append(values, v)
	}
	values = sortedDesc(values)

	out := ""
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%d used by %v", v, dupes[v])
	}
	return out
}

func sortedDesc(values []int) []int {
	out := slices.Clone(values)
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
