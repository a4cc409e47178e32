// Package forkchoice turns the observed latest messages into the current
// best estimate by dispatching to the estimator capability.
package forkchoice

import (
	"errors"

	"casper-project/estimator"
	"casper-project/justification"
	"casper-project/models"
	"casper-project/weights"
)

// ErrNoLatestMessages is returned when fork choice is queried before any
// honest validator has published a message. It means "no opinion yet", not
// a corrupted state.
var ErrNoLatestMessages = errors.New("no latest messages from honest validators")

// Estimate computes the current estimate from the tracker's latest
// messages. Messages of equivocating validators are excluded before the
// estimator runs; the safety argument only holds over honest participants.
// The result is a pure function of the inputs and is never cached: callers
// must re-run it whenever the view changes.
func Estimate(latest *justification.LatestMessages, est estimator.Estimator, w *weights.Table, r justification.Resolver) (models.Estimate, error) {
	return EstimateHonest(latest.Honest(), est, w, r)
}

// EstimateHonest runs the estimator over an already filtered honest set.
func EstimateHonest(honest justification.LatestHonest, est estimator.Estimator, w *weights.Table, r justification.Resolver) (models.Estimate, error) {
	if len(honest) == 0 {
		return nil, ErrNoLatestMessages
	}
	return est.Estimate(honest, w, r)
}
