package estimator

import (
	"casper-project/justification"
	"casper-project/models"
	"casper-project/weights"
)

// VoteCount tallies yes and no votes. A vote is a genesis message carrying a
// VoteCount of exactly one yes or exactly one no; anything else is invalid
// and ignored.
type VoteCount struct {
	Yes uint32 `cbor:"yes" json:"yes"`
	No  uint32 `cbor:"no" json:"no"`
}

// EstimateBytes returns the canonical encoding of the tally.
func (v VoteCount) EstimateBytes() ([]byte, error) {
	return models.MarshalCanonical(v)
}

// Equal reports whether the other estimate is the same tally.
func (v VoteCount) Equal(other models.Estimate) bool {
	o, ok := other.(VoteCount)
	return ok && o == v
}

func (v VoteCount) isValidVote() bool {
	return (v.Yes == 1 && v.No == 0) || (v.Yes == 0 && v.No == 1)
}

// NewVoteMessage creates the genesis vote message of a validator.
func NewVoteMessage(sender models.ValidatorID, vote bool) (*models.Message, error) {
	tally := VoteCount{No: 1}
	if vote {
		tally = VoteCount{Yes: 1}
	}
	return models.NewMessage(sender, tally, nil)
}

// Tally sums the votes found in the causal history of the latest honest
// messages. A validator that cast both a yes and a no vote cancels itself
// out: neither vote is counted.
type Tally struct{}

func (Tally) Estimate(latest justification.LatestHonest, _ *weights.Table, r justification.Resolver) (models.Estimate, error) {
	if len(latest) == 0 {
		return nil, ErrNoMessages
	}

	type cast struct{ yes, no bool }
	votes := make(map[models.ValidatorID]*cast)

	visit := func(msg *models.Message) {
		if !msg.IsGenesis() {
			return
		}
		tally, ok := msg.Estimate().(VoteCount)
		if !ok || !tally.isValidVote() {
			return
		}
		c := votes[msg.Sender()]
		if c == nil {
			c = &cast{}
			votes[msg.Sender()] = c
		}
		if tally.Yes == 1 {
			c.yes = true
		} else {
			c.no = true
		}
	}

	visited := make(map[models.MessageID]struct{})
	var queue []*models.Message
	for _, msg := range latest {
		if _, ok := visited[msg.ID()]; ok {
			continue
		}
		visited[msg.ID()] = struct{}{}
		queue = append(queue, msg)
	}
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		visit(msg)
		for _, ref := range msg.Justification() {
			if _, ok := visited[ref]; ok {
				continue
			}
			visited[ref] = struct{}{}
			if dep, ok := r.Get(ref); ok {
				queue = append(queue, dep)
			}
		}
	}

	var result VoteCount
	for _, c := range votes {
		if c.yes && c.no {
			// equivocated vote pair, cancels out
			continue
		}
		if c.yes {
			result.Yes++
		} else {
			result.No++
		}
	}
	return result, nil
}

func (Tally) Agrees(candidate, estimate models.Estimate) bool {
	return candidate.Equal(estimate)
}
