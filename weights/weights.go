package weights

import (
	"errors"
	"sync"

	"casper-project/models"
)

// Weight is a non-negative validator weight. It is a fixed-point quantity:
// the unit (whole tokens, thousandths, ...) is the caller's choice, the
// protocol only ever compares and sums weights, so all arithmetic stays
// exact.
type Weight uint64

// ErrUnknownValidator is returned when a weight is requested for a validator
// that has no entry in the table.
var ErrUnknownValidator = errors.New("validator weight not found")

// Table maps validators to their weights. It abstracts the weight provider
// from the consensus logic; the safety oracle and fork choice consult it but
// never mutate it during a query.
type Table struct {
	mu      sync.RWMutex
	weights map[models.ValidatorID]Weight
}

// NewTable creates a weight table from the given assignment.
func NewTable(assignment map[models.ValidatorID]Weight) *Table {
	w := make(map[models.ValidatorID]Weight, len(assignment))
	for id, weight := range assignment {
		w[id] = weight
	}
	return &Table{weights: w}
}

// Insert sets the weight of a validator.
func (t *Table) Insert(id models.ValidatorID, weight Weight) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.weights[id] = weight
}

// Weight returns the weight of a validator.
func (t *Table) Weight(id models.ValidatorID) (Weight, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	w, ok := t.weights[id]
	if !ok {
		return 0, ErrUnknownValidator
	}
	return w, nil
}

// Validators returns the validators with strictly positive weight.
func (t *Table) Validators() models.ValidatorSet {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(models.ValidatorSet, len(t.weights))
	for id, w := range t.weights {
		if w > 0 {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sum returns the summed weight of the given validators. Validators without
// an entry contribute nothing.
func (t *Table) Sum(ids models.ValidatorSet) Weight {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var total Weight
	for id := range ids {
		total += t.weights[id]
	}
	return total
}

// Total returns the summed weight of every validator in the table.
func (t *Table) Total() Weight {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var total Weight
	for _, w := range t.weights {
		total += w
	}
	return total
}
