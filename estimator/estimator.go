// Package estimator defines the pluggable estimate capability and ships the
// scalar estimators: weighted boolean, weighted-median integer and the vote
// counter.
package estimator

import (
	"errors"

	"casper-project/justification"
	"casper-project/models"
	"casper-project/weights"
)

// ErrNoMessages is returned by estimators invoked on an empty input.
var ErrNoMessages = errors.New("no messages to estimate from")

// Estimator computes a new estimate from the latest honest messages. It must
// be a deterministic, pure function of its input: fork-choice correctness
// depends on every honest validator computing the same value from the same
// observed state. The resolver gives access to the causal history of the
// input messages for estimators that need it.
type Estimator interface {
	Estimate(latest justification.LatestHonest, w *weights.Table, r justification.Resolver) (models.Estimate, error)

	// Agrees reports whether an estimate agrees with, or is derived from,
	// the candidate. Scalar estimators use value equality; chain-structured
	// estimates use ancestry.
	Agrees(candidate, estimate models.Estimate) bool
}
