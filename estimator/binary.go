package estimator

import (
	"fmt"

	"casper-project/justification"
	"casper-project/models"
	"casper-project/weights"
)

// Boolean is a binary decision estimate.
type Boolean bool

// EstimateBytes returns the canonical encoding of the flag.
func (b Boolean) EstimateBytes() ([]byte, error) {
	return models.MarshalCanonical(bool(b))
}

// Equal reports whether the other estimate is the same boolean value.
func (b Boolean) Equal(other models.Estimate) bool {
	o, ok := other.(Boolean)
	return ok && o == b
}

// Binary estimates the weighted majority of the latest honest boolean
// opinions. Ties resolve to false, so the outcome never depends on
// iteration order.
type Binary struct{}

func (Binary) Estimate(latest justification.LatestHonest, w *weights.Table, _ justification.Resolver) (models.Estimate, error) {
	if len(latest) == 0 {
		return nil, ErrNoMessages
	}
	var yes, no weights.Weight
	for sender, msg := range latest {
		opinion, ok := msg.Estimate().(Boolean)
		if !ok {
			return nil, fmt.Errorf("message %s does not carry a boolean estimate", msg.ID())
		}
		weight, err := w.Weight(sender)
		if err != nil {
			return nil, fmt.Errorf("weighting %s: %w", sender, err)
		}
		if opinion {
			yes += weight
		} else {
			no += weight
		}
	}
	return Boolean(yes > no), nil
}

func (Binary) Agrees(candidate, estimate models.Estimate) bool {
	return candidate.Equal(estimate)
}
