package blockchain

import (
	"fmt"

	"casper-project/estimator"
	"casper-project/justification"
	"casper-project/models"
	"casper-project/weights"
)

// Ghost is the block-head estimator: it walks the block tree spanned by the
// latest honest messages and follows the heaviest subtree at every fork,
// where the weight of a block is the summed weight of the validators whose
// latest block sits in its subtree.
type Ghost struct{}

func (Ghost) Estimate(latest justification.LatestHonest, w *weights.Table, _ justification.Resolver) (models.Estimate, error) {
	if len(latest) == 0 {
		return nil, estimator.ErrNoMessages
	}

	blocks := make(map[string]*Block)
	supporters := make(map[string]models.ValidatorSet)
	children := make(map[string]map[string]*Block)
	roots := make(map[string]*Block)

	for sender, msg := range latest {
		tip, ok := msg.Estimate().(*Block)
		if !ok || tip == nil {
			return nil, fmt.Errorf("message %s does not carry a block estimate", msg.ID())
		}
		for b := tip; b != nil; b = b.Parent() {
			blocks[b.ID()] = b
			if supporters[b.ID()] == nil {
				supporters[b.ID()] = make(models.ValidatorSet)
			}
			supporters[b.ID()].Add(sender)
			if parent := b.Parent(); parent != nil {
				if children[parent.ID()] == nil {
					children[parent.ID()] = make(map[string]*Block)
				}
				children[parent.ID()][b.ID()] = b
			} else {
				roots[b.ID()] = b
			}
		}
	}

	pick := func(candidates map[string]*Block) *Block {
		var best *Block
		var bestWeight weights.Weight
		for _, b := range candidates {
			weight := w.Sum(supporters[b.ID()])
			switch {
			case best == nil || weight > bestWeight:
				best, bestWeight = b, weight
			case weight == bestWeight && b.ID() < best.ID():
				// deterministic tie-break on the block hash
				best = b
			}
		}
		return best
	}

	head := pick(roots)
	for head != nil && len(children[head.ID()]) > 0 {
		head = pick(children[head.ID()])
	}
	if head == nil {
		return nil, estimator.ErrNoMessages
	}
	return head, nil
}

// Agrees reports whether the candidate block belongs to the chain ending at
// the estimated head.
func (Ghost) Agrees(candidate, estimate models.Estimate) bool {
	c, ok := candidate.(*Block)
	if !ok || c == nil {
		return false
	}
	tip, ok := estimate.(*Block)
	if !ok || tip == nil {
		return false
	}
	return c.IsMember(tip)
}
