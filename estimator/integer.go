package estimator

import (
	"fmt"
	"sort"

	"casper-project/justification"
	"casper-project/models"
	"casper-project/weights"
)

// Integer is an integer-valued estimate.
type Integer int64

// EstimateBytes returns the canonical encoding of the integer.
func (i Integer) EstimateBytes() ([]byte, error) {
	return models.MarshalCanonical(int64(i))
}

// Equal reports whether the other estimate is the same integer.
func (i Integer) Equal(other models.Estimate) bool {
	o, ok := other.(Integer)
	return ok && o == i
}

// Median estimates the weighted median of the latest honest integer
// opinions: the messages are ordered by estimate and the value found after
// accumulating half of the represented weight is the consensus value.
type Median struct{}

func (Median) Estimate(latest justification.LatestHonest, w *weights.Table, _ justification.Resolver) (models.Estimate, error) {
	if len(latest) == 0 {
		return nil, ErrNoMessages
	}

	type weighted struct {
		value  Integer
		weight weights.Weight
	}
	entries := make([]weighted, 0, len(latest))
	var total weights.Weight
	for sender, msg := range latest {
		value, ok := msg.Estimate().(Integer)
		if !ok {
			return nil, fmt.Errorf("message %s does not carry an integer estimate", msg.ID())
		}
		weight, err := w.Weight(sender)
		if err != nil {
			return nil, fmt.Errorf("weighting %s: %w", sender, err)
		}
		entries = append(entries, weighted{value: value, weight: weight})
		total += weight
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].value < entries[j].value })

	var running weights.Weight
	for _, entry := range entries {
		running += entry.weight
		if 2*running >= total {
			return entry.value, nil
		}
	}
	// only reachable when every weight is zero; the smallest value is as
	// good an answer as any and keeps the function deterministic
	return entries[0].value, nil
}

func (Median) Agrees(candidate, estimate models.Estimate) bool {
	return candidate.Equal(estimate)
}
