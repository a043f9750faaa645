package resolution

import (
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
)

// Progress tracks an extended test built from several rolls
type Progress struct {
	TotalSuccesses int `json:"total_successes"`
	Complications  int `json:"complications"`
	// Percent is capped at 100
	Percent  int  `json:"percent"`
	Complete bool `json:"complete"`
	// TimeRemaining is nil for untimed tests
	TimeRemaining *int `json:"time_remaining,omitempty"`
}

// ExtendedProgress sums the successes and complications of results
// toward target. A timeLimit of zero means the test is untimed; otherwise
// each result spends one interval.
func ExtendedProgress(results []*Result, target, timeLimit int) (*Progress, error) {
	if target < 1 {
		return nil, dnderr.Validation("extended test target must be at least 1").
			WithField("target", ">= 1", target)
	}
	if timeLimit < 0 {
		return nil, dnderr.Validation("time limit cannot be negative").
			WithField("time_limit", ">= 0", timeLimit)
	}

	p := &Progress{}
	for _, r := range results {
		if r == nil {
			continue
		}
		p.TotalSuccesses += r.Successes
		p.Complications += r.Complications
	}

	p.Percent = min(100, p.TotalSuccesses*100/target)
	p.Complete = p.TotalSuccesses >= target
	if timeLimit > 0 {
		remaining := max(0, timeLimit-len(results))
		p.TimeRemaining = &remaining
	}
	return p, nil
}
